package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/spf13/cobra"
)

// Exit codes follow the SAT competition convention for the two verdicts
const (
	exitFailure      = 1
	exitInvalidInput = 2
	exitScheduled    = 10
	exitInconsistent = 15
	exitInfeasible   = 20
	exitTimeout      = 30
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	exitCode := 0
	root := newRootCommand(stdout, &exitCode)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)

		var validationError *model.ValidationError
		var consistencyError *model.ConsistencyError
		switch {
		case errors.As(err, &validationError):
			return exitInvalidInput
		case errors.As(err, &consistencyError):
			return exitInconsistent
		default:
			return exitFailure
		}
	}
	return exitCode
}

func exitCodeFor(outcome model.Outcome) int {
	switch outcome {
	case model.Scheduled:
		return exitScheduled
	case model.InfeasibleResult:
		return exitInfeasible
	default:
		return exitTimeout
	}
}

func newRootCommand(stdout io.Writer, exitCode *int) *cobra.Command {
	flags := &commandFlags{}

	cmdSchedule := &cobra.Command{
		Use:   "schedule",
		Short: "Course slot scheduler",
		Long: "Assigns every course section to weekly time slots so that its hours are met\n" +
			"and no class, teacher or room is double-booked",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmdSchedule.PersistentFlags().StringVar(&flags.config, "config", "", "configuration file; config.json next to the executable is used when empty")
	cmdSchedule.PersistentFlags().StringVar(&flags.in, "in", "", "course records (.csv or .json)")
	cmdSchedule.PersistentFlags().StringVar(&flags.out, "out", "", "output file; standard output when empty")

	cmdAnalyze := &cobra.Command{
		Use:   "analyze",
		Short: "validate course records and report demand against capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			defer app.logger.Sync()
			return analyze(app, flags, stdout)
		},
	}
	cmdSchedule.AddCommand(cmdAnalyze)

	cmdSolve := &cobra.Command{
		Use:   "solve",
		Short: "build the constraint model, solve it and write the assignment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			defer app.logger.Sync()
			if err := app.override(cmd, flags); err != nil {
				return err
			}

			outcome, err := solve(cmd.Context(), app, flags, stdout)
			if err != nil {
				return err
			}
			*exitCode = exitCodeFor(outcome)
			return nil
		},
	}
	cmdSolve.Flags().StringVar(&flags.solver, "solver", "", "solver to use, the configured one when empty")
	cmdSolve.Flags().DurationVar(&flags.timeout, "timeout", 0, "solver time budget, the configured one when zero")
	cmdSolve.Flags().StringSliceVar(&flags.constraints, "constraints", nil, "conflict dimensions to enforce: class, teacher, room or none")
	cmdSolve.Flags().BoolVar(&flags.staged, "staged", false, "enable the conflict dimensions one at a time and stop at the first that fails")
	cmdSolve.Flags().StringVar(&flags.format, "format", "csv", "assignment format: csv, txt or pdf")
	cmdSchedule.AddCommand(cmdSolve)

	cmdExport := &cobra.Command{
		Use:   "export-model",
		Short: "write the constraint model for an external solver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			defer app.logger.Sync()
			if err := app.override(cmd, flags); err != nil {
				return err
			}
			return exportModel(app, flags, stdout)
		},
	}
	cmdExport.Flags().StringSliceVar(&flags.constraints, "constraints", nil, "conflict dimensions to enforce: class, teacher, room or none")
	cmdExport.Flags().StringVar(&flags.modelFormat, "format", "lp", "model format: lp or dimacs")
	cmdSchedule.AddCommand(cmdExport)

	return cmdSchedule
}

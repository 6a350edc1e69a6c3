package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/limaJavier/coursescheduler/internal/config"
	"github.com/limaJavier/coursescheduler/internal/csvio"
	"github.com/limaJavier/coursescheduler/internal/logger"
	"github.com/limaJavier/coursescheduler/internal/metrics"
	"github.com/limaJavier/coursescheduler/internal/report"
	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/limaJavier/coursescheduler/pkg/solver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type commandFlags struct {
	config      string
	in          string
	out         string
	solver      string
	timeout     time.Duration
	constraints []string
	staged      bool
	format      string
	modelFormat string
}

type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	calendar model.Calendar
	toggle   model.ConstraintToggle
	demand   model.Demand
}

// Loads configuration and normalizes the input file
func setup(flags *commandFlags) (*application, error) {
	if flags.in == "" {
		return nil, fmt.Errorf("an input file must be specified")
	}

	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("cannot build logger: %w", err)
	}
	calendar, err := cfg.Calendar.Calendar()
	if err != nil {
		return nil, err
	}

	rows, err := csvio.LoadFile(flags.in)
	if err != nil {
		return nil, fmt.Errorf("cannot read input file: %w", err)
	}
	normalizer, err := model.NewNormalizer(cfg.Calendar.HoursPerSlot, log)
	if err != nil {
		return nil, err
	}
	demand, err := normalizer.Normalize(rows)
	if err != nil {
		return nil, err
	}
	log.Info("course records loaded", zap.String("file", flags.in), zap.Int("courses", len(demand.Courses)))

	return &application{
		cfg:      cfg,
		logger:   log,
		calendar: calendar,
		toggle:   cfg.Constraints.Toggle(),
		demand:   demand,
	}, nil
}

// Applies command line flags on top of the configuration
func (app *application) override(cmd *cobra.Command, flags *commandFlags) error {
	if cmd.Flags().Changed("constraints") {
		toggle, err := model.ParseConstraintToggle(flags.constraints)
		if err != nil {
			return err
		}
		app.toggle = toggle
	}
	if flags.solver != "" {
		app.cfg.Solver.Name = flags.solver
	}
	if cmd.Flags().Changed("timeout") {
		if flags.timeout <= 0 {
			return fmt.Errorf("timeout must be positive: %v", flags.timeout)
		}
		app.cfg.Solver.Timeout = flags.timeout
	}
	return nil
}

func (app *application) options() model.Options {
	return model.Options{
		Calendar:      app.calendar,
		Toggle:        app.toggle,
		Timeout:       app.cfg.Solver.Timeout,
		SizeThreshold: app.cfg.Model.SizeThreshold,
		Top:           app.cfg.Report.Top,
		Logger:        app.logger,
	}
}

func analyze(app *application, flags *commandFlags, stdout io.Writer) error {
	gaps := model.AnalyzeGaps(app.demand, app.calendar.Size(), app.cfg.Report.Top)
	if err := report.WriteGaps(stdout, gaps, app.demand.Notes); err != nil {
		return err
	}
	if flags.out == "" {
		return nil
	}

	buffer := &bytes.Buffer{}
	if err := csvio.ExportGaps(gaps, buffer); err != nil {
		return err
	}
	return os.WriteFile(flags.out, buffer.Bytes(), 0o666)
}

func solve(ctx context.Context, app *application, flags *commandFlags, stdout io.Writer) (model.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	instance, err := solver.New(app.cfg.Solver.Name, app.cfg.Solver.Paths)
	if err != nil {
		return 0, err
	}

	var results []model.Result
	if flags.staged {
		results, err = model.BuildStaged(ctx, instance, app.options(), app.demand)
	} else {
		var result model.Result
		result, err = model.NewTimetabler(instance, app.options()).Build(ctx, app.demand)
		results = append(results, result)
	}
	if err != nil {
		return 0, err
	}

	m := metrics.New()
	for _, result := range results {
		m.Observe(strings.ToLower(app.cfg.Solver.Name), app.demand, result)
	}
	if app.cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(app.cfg.Metrics.Textfile); err != nil {
			app.logger.Warn("cannot write metrics", zap.Error(err))
		}
	}

	last := results[len(results)-1]
	if last.Outcome == model.Scheduled {
		return last.Outcome, writeAssignment(last.Assignment, app, flags, stdout)
	}

	// A staged search keeps the assignment of the last stage that succeeded
	if len(results) > 1 && flags.out != "" {
		previous := results[len(results)-2]
		app.logger.Info("writing assignment of the last feasible stage", zap.Stringer("constraints", previous.Toggle))
		if err := writeAssignment(previous.Assignment, app, flags, stdout); err != nil {
			return 0, err
		}
		return last.Outcome, report.WriteDiagnostic(stdout, *last.Diagnostic)
	}

	if flags.out == "" {
		return last.Outcome, report.WriteDiagnostic(stdout, *last.Diagnostic)
	}
	buffer := &bytes.Buffer{}
	if err := report.WriteDiagnostic(buffer, *last.Diagnostic); err != nil {
		return 0, err
	}
	return last.Outcome, os.WriteFile(flags.out, buffer.Bytes(), 0o666)
}

func writeAssignment(assignment model.Assignment, app *application, flags *commandFlags, stdout io.Writer) error {
	records := model.Records(assignment, app.demand)
	buffer := &bytes.Buffer{}

	switch strings.ToLower(flags.format) {
	case "csv":
		if err := csvio.ExportAssignment(records, buffer); err != nil {
			return err
		}
	case "txt":
		if err := report.WriteDetails(buffer, records); err != nil {
			return err
		}
	case "pdf":
		if flags.out == "" {
			return fmt.Errorf("pdf output requires an output file")
		}
		content, err := report.RenderPDF(records, "Course schedule", app.cfg.Report.Font)
		if err != nil {
			return err
		}
		buffer.Write(content)
	default:
		return fmt.Errorf("%v is not a valid format, allowed values are: csv, txt, pdf", flags.format)
	}

	if flags.out == "" {
		_, err := stdout.Write(buffer.Bytes())
		return err
	}
	return os.WriteFile(flags.out, buffer.Bytes(), 0o666)
}

func exportModel(app *application, flags *commandFlags, stdout io.Writer) error {
	constraintModel := model.BuildModel(app.demand, app.calendar, app.toggle)
	if warning, ok := constraintModel.SizeWarning(app.cfg.Model.SizeThreshold); ok {
		app.logger.Warn(warning.String())
	}

	var content string
	switch strings.ToLower(flags.modelFormat) {
	case "lp":
		content = constraintModel.Problem.ToLP()
	case "dimacs":
		content = solver.Encode(constraintModel.Problem).ToDIMACS()
	default:
		return fmt.Errorf("%v is not a valid format, allowed values are: lp, dimacs", flags.modelFormat)
	}
	app.logger.Info("model exported",
		zap.Uint64("variables", constraintModel.Variables()),
		zap.Int("constraints", constraintModel.Constraints()),
		zap.String("format", flags.modelFormat),
	)

	if flags.out == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	return os.WriteFile(flags.out, []byte(content), 0o666)
}

package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
)

type commandResult struct {
	exitCode int
	stdout   string
	stderr   string
}

// Runs an external solver. The returned flag reports whether ctx ended the execution before the solver did
func runCommand(ctx context.Context, path string, args []string, stdin string) (commandResult, bool, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	err := cmd.Run()
	if ctx.Err() != nil {
		return commandResult{}, true, nil
	}

	result := commandResult{stdout: stdOut.String(), stderr: stdErr.String()}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return result, false, fmt.Errorf("cannot execute %v: %w", path, err)
	}
	result.exitCode = cmd.ProcessState.ExitCode()
	return result, false, nil
}

// Runs a DIMACS based SAT solver following the 10/20 exit-code convention and parses its answer with parse
func solveDIMACS(
	ctx context.Context,
	problem Problem,
	name, path string,
	args []string,
	parse func(result commandResult) (Solution, error),
) (Status, Solution, error) {
	if _, ok := problem.Contradiction(); ok {
		return Infeasible, nil, nil
	}

	dimacs := Encode(problem).ToDIMACS() // Transform the problem into DIMACS-CNF string format

	result, timedOut, err := runCommand(ctx, path, args, dimacs)
	if err != nil {
		return Infeasible, nil, err
	} else if timedOut {
		return Timeout, nil, nil
	}

	switch result.exitCode {
	case exitUnsatisfiable:
		return Infeasible, nil, nil
	case exitSatisfiable:
		solution, err := parse(result)
		if err != nil {
			return Infeasible, nil, fmt.Errorf("cannot parse %v output: %w", name, err)
		}
		return Feasible, restrict(solution, problem.Variables), nil
	default:
		return Infeasible, nil, fmt.Errorf("an error occurred during %v execution (exit code %d): %v", name, result.exitCode, result.stderr)
	}
}

// Drops auxiliary variables introduced by the CNF encoding
func restrict(solution Solution, variables uint64) Solution {
	return lo.Filter(solution, func(literal int64, _ int) bool {
		return literal != 0 && uint64(max(literal, -literal)) <= variables
	})
}

// Parses the "v" lines of the SAT competition output format
func parseSolution(solverOutput string) (Solution, error) {
	lines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] == 'v'
	})
	return parseLiterals(lo.FlatMap(lines, func(line string, _ int) []string {
		return strings.Fields(line[1:])
	}))
}

func parseLiterals(fields []string) (Solution, error) {
	solution := make(Solution, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if value != 0 {
			solution = append(solution, value)
		}
	}
	return solution, nil
}

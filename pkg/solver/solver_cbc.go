package solver

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

type cbcSolver struct {
	path string
}

// NewCbcSolver hands the problem to the COIN-OR CBC mixed-integer solver through an LP file
func NewCbcSolver(path string) Solver {
	return &cbcSolver{path: path}
}

func (solver *cbcSolver) Solve(ctx context.Context, problem Problem) (Status, Solution, error) {
	if _, ok := problem.Contradiction(); ok {
		return Infeasible, nil, nil
	}

	modelFile, err := os.CreateTemp("", "model-*.lp")
	if err != nil {
		return Infeasible, nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(modelFile.Name())
	if _, err := modelFile.WriteString(problem.ToLP()); err != nil {
		return Infeasible, nil, fmt.Errorf("failed to write LP to temporary file: %w", err)
	}
	if err := modelFile.Close(); err != nil {
		return Infeasible, nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	solutionFile, err := os.CreateTemp("", "cbc_solution-*.txt")
	if err != nil {
		return Infeasible, nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	solutionFile.Close()
	defer os.Remove(solutionFile.Name())

	args := []string{modelFile.Name()}
	// Let cbc stop by itself slightly before the deadline so that it still reports its status
	if deadline, ok := ctx.Deadline(); ok {
		seconds := math.Max(1, math.Floor(time.Until(deadline).Seconds())-1)
		args = append(args, "sec", strconv.FormatFloat(seconds, 'f', 0, 64))
	}
	args = append(args, "solve", "solu", solutionFile.Name())

	result, timedOut, err := runCommand(ctx, solver.path, args, "")
	if err != nil {
		return Infeasible, nil, err
	} else if timedOut {
		return Timeout, nil, nil
	} else if result.exitCode != 0 {
		return Infeasible, nil, fmt.Errorf("an error occurred during cbc execution (exit code %d): %v", result.exitCode, result.stderr)
	}

	output, err := os.ReadFile(solutionFile.Name())
	if err != nil {
		return Infeasible, nil, fmt.Errorf("failed to read solution file: %w", err)
	}
	return parseCbcSolution(string(output), problem.Variables)
}

// The first word of a cbc solution file is its verdict, the remaining lines are "index name value reduced-cost" rows
func parseCbcSolution(output string, variables uint64) (Status, Solution, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	header := strings.Fields(lines[0])
	if len(header) == 0 {
		return Infeasible, nil, fmt.Errorf("empty cbc solution file")
	}

	switch header[0] {
	case "Optimal":
	case "Infeasible", "Integer":
		return Infeasible, nil, nil
	case "Stopped":
		return Timeout, nil, nil
	default:
		return Infeasible, nil, fmt.Errorf("unexpected cbc status: %v", lines[0])
	}

	solution := make(Solution, 0)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 || !strings.HasPrefix(fields[1], "x") {
			continue
		}

		variable, err := strconv.ParseUint(fields[1][1:], 10, 64)
		if err != nil || variable == 0 || variable > variables {
			return Infeasible, nil, fmt.Errorf("unknown variable in cbc solution: %v", fields[1])
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Infeasible, nil, fmt.Errorf("invalid value in cbc solution: %w", err)
		}
		if value > 0.5 {
			solution = append(solution, int64(variable))
		} else {
			solution = append(solution, -int64(variable))
		}
	}
	return Feasible, solution, nil
}

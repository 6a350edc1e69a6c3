package solver

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type minisatSolver struct {
	path string
}

func NewMinisatSolver(path string) Solver {
	return &minisatSolver{path: path}
}

func (solver *minisatSolver) Solve(ctx context.Context, problem Problem) (Status, Solution, error) {
	if _, ok := problem.Contradiction(); ok {
		return Infeasible, nil, nil
	}

	dimacs := Encode(problem).ToDIMACS()

	// Create a temporary file to hold the DIMACS content
	inputTempFile, err := os.CreateTemp("", "dimacs-*.cnf")
	if err != nil {
		return Infeasible, nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(inputTempFile.Name())

	outputTempFile, err := os.CreateTemp("", "minisat_output-*.txt")
	if err != nil {
		return Infeasible, nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	outputTempFile.Close()
	defer os.Remove(outputTempFile.Name())

	// Write the DIMACS content to the temporary file
	if _, err := inputTempFile.WriteString(dimacs); err != nil {
		return Infeasible, nil, fmt.Errorf("failed to write DIMACS to temporary file: %w", err)
	}
	if err := inputTempFile.Close(); err != nil {
		return Infeasible, nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	result, timedOut, err := runCommand(ctx, solver.path, []string{"-verb=0", inputTempFile.Name(), outputTempFile.Name()}, "")
	if err != nil {
		return Infeasible, nil, err
	} else if timedOut {
		return Timeout, nil, nil
	} else if result.exitCode == exitUnsatisfiable {
		return Infeasible, nil, nil
	} else if result.exitCode != exitSatisfiable {
		return Infeasible, nil, fmt.Errorf("an error occurred during minisat execution (exit code %d): %v", result.exitCode, result.stderr)
	}

	output, err := os.ReadFile(outputTempFile.Name())
	if err != nil {
		return Infeasible, nil, fmt.Errorf("failed to read output file: %w", err)
	}
	solution, err := parseMinisatSolution(string(output))
	if err != nil {
		return Infeasible, nil, err
	}
	return Feasible, restrict(solution, problem.Variables), nil
}

// The first line of minisat's result file is the verdict, the second one holds the model
func parseMinisatSolution(solverOutput string) (Solution, error) {
	lines := strings.Split(strings.TrimSpace(solverOutput), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "SAT" {
		return nil, fmt.Errorf("unexpected minisat output: %q", solverOutput)
	}
	return parseLiterals(strings.Fields(lines[1]))
}

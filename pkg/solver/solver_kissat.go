package solver

import "context"

type kissatSolver struct {
	path string
}

func NewKissatSolver(path string) Solver {
	return &kissatSolver{path: path}
}

func (solver *kissatSolver) Solve(ctx context.Context, problem Problem) (Status, Solution, error) {
	// DIMACS is fed through kissat's standard input
	return solveDIMACS(ctx, problem, "kissat", solver.path, []string{"-q", "--relaxed"}, func(result commandResult) (Solution, error) {
		return parseSolution(result.stdout)
	})
}

package solver

import "context"

type cadicalSolver struct {
	path string
}

func NewCadicalSolver(path string) Solver {
	return &cadicalSolver{path: path}
}

func (solver *cadicalSolver) Solve(ctx context.Context, problem Problem) (Status, Solution, error) {
	return solveDIMACS(ctx, problem, "cadical", solver.path, []string{"-q"}, func(result commandResult) (Solution, error) {
		return parseSolution(result.stdout)
	})
}

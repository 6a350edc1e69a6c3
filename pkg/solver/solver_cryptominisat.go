package solver

import "context"

type cryptominisatSolver struct {
	path string
}

func NewCryptominisatSolver(path string) Solver {
	return &cryptominisatSolver{path: path}
}

func (solver *cryptominisatSolver) Solve(ctx context.Context, problem Problem) (Status, Solution, error) {
	return solveDIMACS(ctx, problem, "cryptominisat", solver.path, []string{"--verb", "0"}, func(result commandResult) (Solution, error) {
		return parseSolution(result.stdout)
	})
}

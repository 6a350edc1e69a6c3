package solver

import (
	"context"

	gophersat "github.com/crillab/gophersat/solver"
	"github.com/samber/lo"
)

type gophersatSolver struct{}

// NewGophersatSolver solves the problem in-process; cardinality constraints are handled natively, so no CNF encoding is needed
func NewGophersatSolver() Solver {
	return &gophersatSolver{}
}

func (solver *gophersatSolver) Solve(ctx context.Context, problem Problem) (Status, Solution, error) {
	if _, ok := problem.Contradiction(); ok {
		return Infeasible, nil, nil
	}

	constraints := make([]gophersat.CardConstr, 0, len(problem.Constraints)*2)
	for _, constraint := range problem.Constraints {
		literals := lo.Map(constraint.Literals, func(literal int64, _ int) int { return int(literal) })
		switch constraint.Sense {
		case Equal:
			if constraint.Bound > 0 {
				constraints = append(constraints, gophersat.CardConstr{Lits: literals, AtLeast: constraint.Bound})
			}
			constraints = append(constraints, cardinalityAtMost(literals, constraint.Bound))
		case LessEqual:
			if !constraint.redundant() {
				constraints = append(constraints, cardinalityAtMost(literals, constraint.Bound))
			}
		}
	}
	if len(constraints) == 0 {
		return Feasible, falseSolution(problem.Variables), nil
	}

	instance := gophersat.New(gophersat.ParseCardConstrs(constraints))

	// The search cannot be interrupted: on timeout it keeps running in the background until it reaches a verdict
	verdict := make(chan gophersat.Status, 1)
	go func() {
		verdict <- instance.Solve()
	}()

	select {
	case <-ctx.Done():
		return Timeout, nil, nil
	case status := <-verdict:
		switch status {
		case gophersat.Sat:
			model := instance.Model()
			solution := falseSolution(problem.Variables)
			for i, value := range model {
				if value && uint64(i) < problem.Variables {
					solution[i] = int64(i + 1)
				}
			}
			return Feasible, solution, nil
		case gophersat.Unsat:
			return Infeasible, nil, nil
		default:
			return Timeout, nil, nil
		}
	}
}

// At most k literals are true iff at least n-k of their negations are true
func cardinalityAtMost(literals []int, k int) gophersat.CardConstr {
	return gophersat.CardConstr{
		Lits:    lo.Map(literals, func(literal int, _ int) int { return -literal }),
		AtLeast: len(literals) - k,
	}
}

func falseSolution(variables uint64) Solution {
	solution := make(Solution, variables)
	for i := range solution {
		solution[i] = -int64(i + 1)
	}
	return solution
}

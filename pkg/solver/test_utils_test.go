package solver

import (
	"math/rand/v2"

	gophersat "github.com/crillab/gophersat/solver"
	"github.com/samber/lo"
)

// Generates a random problem mixing equality and at-most constraints over small sets of variables
func generateProblem(variables uint64, constraints int) Problem {
	problem := Problem{
		Variables:   variables,
		Constraints: make([]Constraint, 0, constraints),
	}

	for range constraints {
		literals := make([]int64, 0, variables)
		for variable := range variables {
			if rand.Float32() < 0.4 {
				literals = append(literals, int64(variable+1))
			}
		}
		if len(literals) == 0 {
			literals = append(literals, 1+rand.Int64N(int64(variables)))
		}

		sense := LessEqual
		if rand.Float32() < 0.3 {
			sense = Equal
		}
		problem.Constraints = append(problem.Constraints, Constraint{
			Literals: literals,
			Sense:    sense,
			Bound:    rand.IntN(len(literals) + 1),
		})
	}

	return problem
}

// Enumerates every assignment of a small problem looking for one that satisfies it
func bruteForceFeasible(problem Problem) bool {
	for mask := range uint64(1) << problem.Variables {
		solution := make(Solution, problem.Variables)
		for variable := range problem.Variables {
			if mask&(1<<variable) != 0 {
				solution[variable] = int64(variable + 1)
			} else {
				solution[variable] = -int64(variable + 1)
			}
		}
		if problem.Holds(solution) {
			return true
		}
	}
	return false
}

// Checks whether the clauses are satisfiable once the given literals are fixed
func satisfiableWith(cnf CNF, fixed []int64) bool {
	clauses := lo.Map(cnf.Clauses, func(clause []int64, _ int) []int {
		return lo.Map(clause, func(literal int64, _ int) int { return int(literal) })
	})
	for _, literal := range fixed {
		clauses = append(clauses, []int{int(literal)})
	}
	instance := gophersat.New(gophersat.ParseSlice(clauses))
	return instance.Solve() == gophersat.Sat
}

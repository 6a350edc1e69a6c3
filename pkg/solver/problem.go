package solver

import (
	"fmt"
	"strings"
)

type Sense int

const (
	Equal     Sense = iota // Σ literals = Bound
	LessEqual              // Σ literals <= Bound
)

func (sense Sense) String() string {
	if sense == Equal {
		return "="
	}
	return "<="
}

// Constraint is a linear constraint with unit coefficients over binary variables
type Constraint struct {
	Name     string
	Literals []int64 // 1-based variable indices
	Sense    Sense
	Bound    int
}

// Problem is a feasibility problem: a set of linear constraints over the binary variables 1..Variables and a zero objective
type Problem struct {
	Variables   uint64
	Constraints []Constraint
}

// Solution holds the signed literals of a satisfying assignment (a positive literal stands for a variable set to 1)
type Solution []int64

// Positives returns the variables of the original problem that were set to 1, discarding any auxiliary variable introduced by an encoding
func (solution Solution) Positives(variables uint64) []uint64 {
	positives := make([]uint64, 0)
	for _, literal := range solution {
		if literal > 0 && uint64(literal) <= variables {
			positives = append(positives, uint64(literal))
		}
	}
	return positives
}

func (constraint Constraint) String() string {
	var builder strings.Builder
	for i, literal := range constraint.Literals {
		if i > 0 {
			builder.WriteString(" + ")
		}
		fmt.Fprintf(&builder, "x%d", literal)
	}
	fmt.Fprintf(&builder, " %v %d", constraint.Sense, constraint.Bound)
	return builder.String()
}

// Checks whether a constraint can never be satisfied regardless of the values of its variables
func (constraint Constraint) contradictory() bool {
	switch constraint.Sense {
	case Equal:
		return constraint.Bound < 0 || constraint.Bound > len(constraint.Literals)
	default:
		return constraint.Bound < 0
	}
}

// Checks whether a constraint holds regardless of the values of its variables
func (constraint Constraint) redundant() bool {
	return constraint.Sense == LessEqual && constraint.Bound >= len(constraint.Literals)
}

// Contradiction returns the first constraint that cannot be satisfied under any assignment, if any
func (problem Problem) Contradiction() (Constraint, bool) {
	for _, constraint := range problem.Constraints {
		if constraint.contradictory() {
			return constraint, true
		}
	}
	return Constraint{}, false
}

// Holds checks whether the given solution satisfies every constraint of the problem
func (problem Problem) Holds(solution Solution) bool {
	values := make(map[int64]bool, len(solution))
	for _, literal := range solution {
		if literal > 0 {
			values[literal] = true
		}
	}

	for _, constraint := range problem.Constraints {
		sum := 0
		for _, literal := range constraint.Literals {
			if values[literal] {
				sum++
			}
		}
		if constraint.Sense == Equal && sum != constraint.Bound || constraint.Sense == LessEqual && sum > constraint.Bound {
			return false
		}
	}
	return true
}

package solver

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// At-most-one constraints over at most this many literals are encoded pairwise, which needs no auxiliary variables
const pairwiseThreshold = 6

// CNF is a SAT instance in conjunctive normal form
type CNF struct {
	Variables uint64
	Clauses   [][]int64
}

func (cnf CNF) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", cnf.Variables, len(cnf.Clauses))
	for _, clause := range cnf.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Encode translates the cardinality constraints of a problem into clauses using the sequential counter encoding (Sinz, 2005).
// Variables 1..problem.Variables keep their meaning, auxiliary variables are appended after them
func Encode(problem Problem) CNF {
	encoder := &cnfEncoder{
		cnf: CNF{
			Variables: problem.Variables,
			Clauses:   make([][]int64, 0, len(problem.Constraints)),
		},
	}

	for _, constraint := range problem.Constraints {
		switch constraint.Sense {
		case Equal:
			encoder.atMost(constraint.Literals, constraint.Bound)
			encoder.atLeast(constraint.Literals, constraint.Bound)
		case LessEqual:
			encoder.atMost(constraint.Literals, constraint.Bound)
		}
	}
	return encoder.cnf
}

type cnfEncoder struct {
	cnf CNF
}

func (encoder *cnfEncoder) fresh() int64 {
	encoder.cnf.Variables++
	return int64(encoder.cnf.Variables)
}

func (encoder *cnfEncoder) add(clause ...int64) {
	encoder.cnf.Clauses = append(encoder.cnf.Clauses, clause)
}

// Adds a pair of clauses that no assignment satisfies
func (encoder *cnfEncoder) contradiction() {
	variable := encoder.fresh()
	encoder.add(variable)
	encoder.add(-variable)
}

func (encoder *cnfEncoder) atLeast(literals []int64, k int) {
	if k <= 0 {
		return
	} else if k > len(literals) {
		encoder.contradiction()
		return
	}
	// At least k literals are true iff at most n-k of their negations are true
	negated := lo.Map(literals, func(literal int64, _ int) int64 { return -literal })
	encoder.atMost(negated, len(literals)-k)
}

func (encoder *cnfEncoder) atMost(literals []int64, k int) {
	n := len(literals)
	if k < 0 {
		encoder.contradiction()
		return
	} else if k >= n {
		return
	} else if k == 0 {
		for _, literal := range literals {
			encoder.add(-literal)
		}
		return
	} else if k == 1 && n <= pairwiseThreshold {
		for i := range n - 1 {
			for j := i + 1; j < n; j++ {
				encoder.add(-literals[i], -literals[j])
			}
		}
		return
	}

	// counter[i][j] holds when at least j+1 of the literals 0..i are true
	counter := make([][]int64, n-1)
	for i := range counter {
		counter[i] = make([]int64, k)
		for j := range k {
			counter[i][j] = encoder.fresh()
		}
	}

	encoder.add(-literals[0], counter[0][0])
	for j := 1; j < k; j++ {
		encoder.add(-counter[0][j])
	}
	for i := 1; i < n-1; i++ {
		encoder.add(-literals[i], counter[i][0])
		encoder.add(-counter[i-1][0], counter[i][0])
		for j := 1; j < k; j++ {
			encoder.add(-literals[i], -counter[i-1][j-1], counter[i][j])
			encoder.add(-counter[i-1][j], counter[i][j])
		}
		encoder.add(-literals[i], -counter[i-1][k-1])
	}
	encoder.add(-literals[n-1], -counter[n-2][k-1])
}

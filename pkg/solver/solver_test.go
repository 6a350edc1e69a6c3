package solver

import (
	"context"
	"math/rand/v2"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGophersat(t *testing.T) {
	solver := NewGophersatSolver()

	t.Run("Random instances", func(t *testing.T) {
		randomExecution(t, solver)
	})
	t.Run("Contradictory instance", func(t *testing.T) {
		contradictoryExecution(t, solver)
	})
	t.Run("Instance without constraints", func(t *testing.T) {
		status, solution, err := solver.Solve(context.Background(), Problem{Variables: 3})

		require.NoError(t, err)
		assert.Equal(t, Feasible, status)
		assert.Equal(t, Solution{-1, -2, -3}, solution)
	})
}

func TestKissat(t *testing.T) {
	externalExecution(t, "kissat", NewKissatSolver("kissat"))
}

func TestCadical(t *testing.T) {
	externalExecution(t, "cadical", NewCadicalSolver("cadical"))
}

func TestCryptominisat(t *testing.T) {
	externalExecution(t, "cryptominisat5", NewCryptominisatSolver("cryptominisat5"))
}

func TestMinisat(t *testing.T) {
	externalExecution(t, "minisat", NewMinisatSolver("minisat"))
}

func TestCbc(t *testing.T) {
	externalExecution(t, "cbc", NewCbcSolver("cbc"))
}

func TestNew(t *testing.T) {
	t.Run("Known solvers", func(t *testing.T) {
		for _, name := range Names() {
			solver, err := New(strings.ToUpper(name), map[string]string{"kissat": "/opt/kissat"})
			assert.NoError(t, err)
			assert.NotNil(t, solver)
		}
	})
	t.Run("Unknown solver", func(t *testing.T) {
		_, err := New("glpk", nil)
		assert.ErrorContains(t, err, "glpk is not a valid solver")
	})
	t.Run("Configured path", func(t *testing.T) {
		solver, err := New("kissat", map[string]string{"kissat": "/opt/kissat"})
		require.NoError(t, err)
		assert.Equal(t, "/opt/kissat", solver.(*kissatSolver).path)
	})
}

func TestParseSolution(t *testing.T) {
	output := "s SATISFIABLE\nv 1 -2 3\nv -4 5 0\n"

	solution, err := parseSolution(output)

	require.NoError(t, err)
	assert.Equal(t, Solution{1, -2, 3, -4, 5}, solution)
}

func TestParseMinisatSolution(t *testing.T) {
	solution, err := parseMinisatSolution("SAT\n-1 2 -3 0\n")
	require.NoError(t, err)
	assert.Equal(t, Solution{-1, 2, -3}, solution)

	_, err = parseMinisatSolution("UNSAT\n")
	assert.Error(t, err)
}

func TestParseCbcSolution(t *testing.T) {
	t.Run("Optimal", func(t *testing.T) {
		output := "Optimal - objective value 0.00000000\n" +
			"      0 x1                     1                       0\n" +
			"      2 x3                     1                       0\n" +
			"      3 x4                     0                       0\n"

		status, solution, err := parseCbcSolution(output, 4)

		require.NoError(t, err)
		assert.Equal(t, Feasible, status)
		assert.Equal(t, []uint64{1, 3}, solution.Positives(4))
	})
	t.Run("Infeasible", func(t *testing.T) {
		status, _, err := parseCbcSolution("Infeasible - objective value 0.00000000\n", 4)
		require.NoError(t, err)
		assert.Equal(t, Infeasible, status)

		status, _, err = parseCbcSolution("Integer infeasible - objective value 0.00000000\n", 4)
		require.NoError(t, err)
		assert.Equal(t, Infeasible, status)
	})
	t.Run("Stopped", func(t *testing.T) {
		status, _, err := parseCbcSolution("Stopped on time - objective value 0.00000000\n", 4)
		require.NoError(t, err)
		assert.Equal(t, Timeout, status)
	})
	t.Run("Unknown variable", func(t *testing.T) {
		_, _, err := parseCbcSolution("Optimal - objective value 0\n      0 x9   1   0\n", 4)
		assert.Error(t, err)
	})
}

func TestToLP(t *testing.T) {
	problem := Problem{
		Variables: 3,
		Constraints: []Constraint{
			{Name: "hours C1", Literals: []int64{1, 2}, Sense: Equal, Bound: 1},
			{Name: "class X/W1", Literals: []int64{2, 3}, Sense: LessEqual, Bound: 1},
		},
	}

	lp := problem.ToLP()

	assert.Contains(t, lp, "Minimize\n obj: 0 x1\n")
	assert.Contains(t, lp, " hours_C1_1: x1 + x2 = 1\n")
	assert.Contains(t, lp, " class_X_W1_2: x2 + x3 <= 1\n")
	assert.Contains(t, lp, "Binaries\n x1 x2 x3\nEnd\n")
}

func TestProblemHolds(t *testing.T) {
	problem := Problem{
		Variables: 3,
		Constraints: []Constraint{
			{Literals: []int64{1, 2, 3}, Sense: Equal, Bound: 2},
			{Literals: []int64{1, 2}, Sense: LessEqual, Bound: 1},
		},
	}

	assert.True(t, problem.Holds(Solution{1, -2, 3}))
	assert.False(t, problem.Holds(Solution{1, 2, -3}))
	assert.False(t, problem.Holds(Solution{1, -2, -3}))
}

func randomExecution(t *testing.T, solver Solver) {
	for range 25 {
		//** Arrange
		problem := generateProblem(uint64(rand.IntN(8)+1), rand.IntN(10)+1)

		//** Act
		status, solution, err := solver.Solve(context.Background(), problem)

		//** Assert
		require.NoError(t, err)
		if status == Feasible {
			assert.True(t, problem.Holds(solution), "solution %v does not satisfy %v", solution, problem.Constraints)
		} else {
			assert.Equal(t, Infeasible, status)
			assert.False(t, bruteForceFeasible(problem), "problem %v was reported infeasible", problem.Constraints)
		}
	}
}

func contradictoryExecution(t *testing.T, solver Solver) {
	problem := Problem{
		Variables:   2,
		Constraints: []Constraint{{Literals: []int64{1, 2}, Sense: Equal, Bound: 3}},
	}

	status, _, err := solver.Solve(context.Background(), problem)

	require.NoError(t, err)
	assert.Equal(t, Infeasible, status)
}

func externalExecution(t *testing.T, binary string, solver Solver) {
	if _, err := exec.LookPath(binary); err != nil {
		t.Skipf("%v is not available: %v", binary, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	t.Run("Random instances", func(t *testing.T) {
		randomExecution(t, solver)
	})
	t.Run("Contradictory instance", func(t *testing.T) {
		contradictoryExecution(t, solver)
	})
	t.Run("Equality instance", func(t *testing.T) {
		problem := Problem{
			Variables: 6,
			Constraints: []Constraint{
				{Literals: []int64{1, 2, 3}, Sense: Equal, Bound: 2},
				{Literals: []int64{4, 5, 6}, Sense: Equal, Bound: 1},
				{Literals: []int64{1, 4}, Sense: LessEqual, Bound: 1},
			},
		}

		status, solution, err := solver.Solve(ctx, problem)

		require.NoError(t, err)
		assert.Equal(t, Feasible, status)
		assert.True(t, problem.Holds(solution))
	})
}

package solver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

type Status int

const (
	Feasible Status = iota
	Infeasible
	Timeout
)

func (status Status) String() string {
	switch status {
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	default:
		return "timeout"
	}
}

type Solver interface {
	// Returns Feasible together with a solution, Infeasible or Timeout (these are valid outputs where error shall be nil).
	// A Timeout is reported when ctx is done before the solver reaches a verdict
	Solve(ctx context.Context, problem Problem) (Status, Solution, error)
}

var constructors = map[string]func(paths map[string]string) Solver{
	"gophersat": func(map[string]string) Solver { return NewGophersatSolver() },
	"kissat": func(paths map[string]string) Solver {
		return NewKissatSolver(executable(paths, "kissat", "kissat"))
	},
	"cadical": func(paths map[string]string) Solver {
		return NewCadicalSolver(executable(paths, "cadical", "cadical"))
	},
	"cryptominisat": func(paths map[string]string) Solver {
		return NewCryptominisatSolver(executable(paths, "cryptominisat", "cryptominisat5"))
	},
	"minisat": func(paths map[string]string) Solver {
		return NewMinisatSolver(executable(paths, "minisat", "minisat"))
	},
	"cbc": func(paths map[string]string) Solver {
		return NewCbcSolver(executable(paths, "cbc", "cbc"))
	},
}

func executable(paths map[string]string, solver, fallback string) string {
	if path := paths[solver]; path != "" {
		return path
	}
	return fallback
}

// Names returns the solver names accepted by New in lexicographic order
func Names() []string {
	names := lo.Keys(constructors)
	slices.Sort(names)
	return names
}

// New builds the solver registered under name. External solvers look up their executable in paths and fall back to their usual binary name
func New(name string, paths map[string]string) (Solver, error) {
	constructor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%v is not a valid solver, allowed values are: %v", name, strings.Join(Names(), ", "))
	}
	return constructor(paths), nil
}

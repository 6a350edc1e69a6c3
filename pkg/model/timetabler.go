package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/coursescheduler/pkg/solver"
	"go.uber.org/zap"
)

type Timetabler interface {
	// Runs gap analysis, builds the model and solves it. Infeasible and timed out runs are reported through Result.Outcome and Result.Diagnostic with a nil error.
	// Errors are reserved for invalid options, solver failures and a *ConsistencyError in the solver output
	Build(ctx context.Context, demand Demand) (Result, error)

	Verify(assignment Assignment, demand Demand) bool
}

type Options struct {
	Calendar      Calendar
	Toggle        ConstraintToggle
	Timeout       time.Duration // Required unless the context given to Build already carries a deadline
	SizeThreshold uint64        // Variable count above which a ModelSizeWarning is raised, zero disables it
	Top           int           // Length of the ranked gap views
	Logger        *zap.Logger
}

type Result struct {
	RunId       string
	Outcome     Outcome
	Toggle      ConstraintToggle
	Assignment  Assignment  // Only set when Outcome is Scheduled
	Diagnostic  *Diagnostic // Only set when Outcome is not Scheduled
	Warning     *ModelSizeWarning
	Gaps        GapReport
	Variables   uint64
	Constraints int
	Families    map[Family]int
	Duration    time.Duration // Time spent by the solver
}

type timetabler struct {
	solver  solver.Solver
	options Options
	logger  *zap.Logger
}

func NewTimetabler(solver solver.Solver, options Options) Timetabler {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &timetabler{
		solver:  solver,
		options: options,
		logger:  logger,
	}
}

func (timetabler *timetabler) Build(ctx context.Context, demand Demand) (Result, error) {
	calendar := timetabler.options.Calendar
	if calendar.Size() <= 0 {
		return Result{}, fmt.Errorf("invalid calendar: %v", calendar)
	}

	if timetabler.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timetabler.options.Timeout)
		defer cancel()
	} else if _, ok := ctx.Deadline(); !ok {
		return Result{}, errors.New("a solver timeout is required")
	}

	result := Result{
		RunId:  uuid.NewString(),
		Toggle: timetabler.options.Toggle,
	}
	logger := timetabler.logger.With(zap.String("run_id", result.RunId), zap.Stringer("constraints", result.Toggle))

	//** Analyze gaps
	result.Gaps = AnalyzeGaps(demand, calendar.Size(), timetabler.options.Top)
	logger.Info("gap analysis",
		zap.Int("capacity", result.Gaps.Capacity),
		zap.Int("total_demand", result.Gaps.TotalDemand),
		zap.Int("total_gap", result.Gaps.TotalGap()),
	)
	for _, violation := range result.Gaps.Violations() {
		logger.Warn("demand exceeds capacity",
			zap.Stringer("dimension", violation.Dimension),
			zap.String("value", violation.Value),
			zap.Int("demand", violation.Demand),
			zap.Int("gap", violation.Gap),
		)
	}

	//** Build model
	model := BuildModel(demand, calendar, result.Toggle)
	result.Variables, result.Constraints, result.Families = model.Variables(), model.Constraints(), model.Families
	logger.Info("model built",
		zap.Uint64("variables", result.Variables),
		zap.Int("constraints", result.Constraints),
		zap.Any("families", result.Families),
	)
	if warning, ok := model.SizeWarning(timetabler.options.SizeThreshold); ok {
		result.Warning = &warning
		logger.Warn(warning.String())
	}

	//** Solve model
	start := time.Now()
	status, solution, err := timetabler.solver.Solve(ctx, model.Problem)
	result.Duration = time.Since(start)
	if err != nil {
		return Result{}, fmt.Errorf("solver failed: %w", err)
	}
	result.Outcome = outcomeFromStatus(status)
	logger.Info("model solved", zap.Stringer("status", status), zap.Duration("duration", result.Duration))

	//** Interpret outcome
	if result.Outcome != Scheduled {
		diagnostic := Diagnose(result.Outcome, result.Toggle, result.Gaps)
		result.Diagnostic = &diagnostic
		return result, nil
	}

	assignment, err := Reconstruct(model, demand, solution)
	if err != nil {
		logger.Error("inconsistent solution", zap.Error(err))
		return Result{}, err
	}
	result.Assignment = assignment
	return result, nil
}

func (timetabler *timetabler) Verify(assignment Assignment, demand Demand) bool {
	return verify(assignment, demand, timetabler.options.Calendar, timetabler.options.Toggle)
}

// BuildStaged tightens the model one dimension at a time following Stages(options.Toggle) and stops at the first stage that is not scheduled.
// Every stage gets its own timeout. The results of the stages that were run are returned in order.
// The gophersat search cannot be interrupted: a stage that times out leaves its search running in the background until it reaches a verdict,
// so long-lived processes calling BuildStaged repeatedly can accumulate such searches
func BuildStaged(ctx context.Context, solver solver.Solver, options Options, demand Demand) ([]Result, error) {
	stages := Stages(options.Toggle)
	results := make([]Result, 0, len(stages))

	for _, toggle := range stages {
		stageOptions := options
		stageOptions.Toggle = toggle

		result, err := NewTimetabler(solver, stageOptions).Build(ctx, demand)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if result.Outcome != Scheduled {
			break
		}
	}

	return results, nil
}

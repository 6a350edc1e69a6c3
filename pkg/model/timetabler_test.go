package model

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/limaJavier/coursescheduler/pkg/solver"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolver struct {
	status   solver.Status
	solution solver.Solution
	err      error
}

func (fake *fakeSolver) Solve(ctx context.Context, problem solver.Problem) (solver.Status, solver.Solution, error) {
	return fake.status, fake.solution, fake.err
}

func options(calendar Calendar, toggle ConstraintToggle) Options {
	return Options{
		Calendar: calendar,
		Toggle:   toggle,
		Timeout:  time.Minute,
		Top:      5,
	}
}

// Every subset of the conflict dimensions
func toggles() []ConstraintToggle {
	toggles := make([]ConstraintToggle, 0, 1<<len(Dimensions))
	for mask := range 1 << len(Dimensions) {
		var toggle ConstraintToggle
		for i, dimension := range Dimensions {
			if mask&(1<<i) != 0 {
				toggle = toggle.With(dimension)
			}
		}
		toggles = append(toggles, toggle)
	}
	return toggles
}

func TestTimetablerSharedClass(t *testing.T) {
	//** Arrange
	normalizer, _ := NewNormalizer(2, nil)
	demand, err := normalizer.Normalize([]RawCourse{
		rawCourse("A", "Smith", "X", "R1", "2"),
		rawCourse("B", "Jones", "X", "R2", "2"),
	})
	require.NoError(t, err)
	calendar, _ := NewCalendar(1, 1, 2)
	timetabler := NewTimetabler(solver.NewGophersatSolver(), options(calendar, NewConstraintToggle(ClassDimension)))

	for range 5 {
		//** Act
		result, err := timetabler.Build(context.Background(), demand)

		//** Assert
		require.NoError(t, err)
		require.Equal(t, Scheduled, result.Outcome)
		assert.Nil(t, result.Diagnostic)
		require.Len(t, result.Assignment[1], 1)
		require.Len(t, result.Assignment[2], 1)
		assert.NotEqual(t, result.Assignment[1][0], result.Assignment[2][0])
		assert.True(t, timetabler.Verify(result.Assignment, demand))
		assert.NotEmpty(t, result.RunId)
	}
}

func TestTimetablerOversizedCourse(t *testing.T) {
	demand := NewDemand([]CourseDemand{
		course("Smith", []string{"X"}, "R1", 3),
		course("Jones", []string{"Y"}, "R2", 1),
	}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)

	for _, toggle := range toggles() {
		t.Run(toggle.String(), func(t *testing.T) {
			timetabler := NewTimetabler(solver.NewGophersatSolver(), options(calendar, toggle))

			result, err := timetabler.Build(context.Background(), demand)

			require.NoError(t, err)
			assert.Equal(t, InfeasibleResult, result.Outcome)
			require.NotNil(t, result.Diagnostic)
			assert.Equal(t, toggle, result.Diagnostic.Toggle)
			assert.Contains(t, remediationCodes(*result.Diagnostic), "fix-course-hours")
			assert.Nil(t, result.Assignment)
		})
	}
}

func TestTimetablerWithoutConflicts(t *testing.T) {
	calendar, _ := NewCalendar(1, 2, 2)

	for range 10 {
		//** Arrange
		courses := make([]CourseDemand, rand.Intn(6)+1)
		for i := range courses {
			// Every course shares teacher, class and room with every other one
			courses[i] = course("Smith", []string{"X"}, "R", rand.Intn(calendar.Size())+1)
		}
		demand := NewDemand(courses, nil, 2)
		timetabler := NewTimetabler(solver.NewGophersatSolver(), options(calendar, NewConstraintToggle()))

		//** Act
		result, err := timetabler.Build(context.Background(), demand)

		//** Assert
		require.NoError(t, err)
		require.Equal(t, Scheduled, result.Outcome)
		for _, course := range demand.Courses {
			assert.Len(t, result.Assignment[course.Id], course.RequiredSlots)
		}
	}
}

func TestTimetablerRandomInstances(t *testing.T) {
	calendar, _ := NewCalendar(1, 2, 3)
	teachers, classes, rooms := []string{"T1", "T2", "T3"}, []string{"X", "Y", "Z"}, []string{"R1", "R2"}

	for i := range 20 {
		//** Arrange
		courses := make([]CourseDemand, rand.Intn(6)+2)
		for j := range courses {
			courses[j] = course(
				teachers[rand.Intn(len(teachers))],
				lo.Uniq([]string{classes[rand.Intn(len(classes))], classes[rand.Intn(len(classes))]}),
				rooms[rand.Intn(len(rooms))],
				rand.Intn(3)+1,
			)
		}
		demand := NewDemand(courses, nil, 2)
		toggle := toggles()[rand.Intn(1<<len(Dimensions))]
		timetabler := NewTimetabler(solver.NewGophersatSolver(), options(calendar, toggle))

		t.Run(fmt.Sprintf("Instance %d (%v)", i, toggle), func(t *testing.T) {
			//** Act
			result, err := timetabler.Build(context.Background(), demand)

			//** Assert
			require.NoError(t, err)
			if result.Outcome == Scheduled {
				assert.True(t, timetabler.Verify(result.Assignment, demand))
			} else {
				assert.Equal(t, InfeasibleResult, result.Outcome)
				assert.NotEmpty(t, result.Diagnostic.Remediations)
			}
		})
	}
}

func TestTimetablerRequiresTimeout(t *testing.T) {
	demand := NewDemand([]CourseDemand{course("Smith", []string{"X"}, "R1", 1)}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)
	noTimeout := options(calendar, NewConstraintToggle())
	noTimeout.Timeout = 0
	timetabler := NewTimetabler(solver.NewGophersatSolver(), noTimeout)

	t.Run("Without deadline", func(t *testing.T) {
		_, err := timetabler.Build(context.Background(), demand)
		assert.ErrorContains(t, err, "timeout is required")
	})
	t.Run("With deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		result, err := timetabler.Build(ctx, demand)

		require.NoError(t, err)
		assert.Equal(t, Scheduled, result.Outcome)
	})
}

func TestTimetablerTimeout(t *testing.T) {
	demand := NewDemand([]CourseDemand{course("Smith", []string{"X"}, "R1", 1)}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)
	timetabler := NewTimetabler(&fakeSolver{status: solver.Timeout}, options(calendar, NewConstraintToggle(ClassDimension)))

	result, err := timetabler.Build(context.Background(), demand)

	require.NoError(t, err)
	assert.Equal(t, TimeoutResult, result.Outcome)
	require.NotNil(t, result.Diagnostic)
	assert.Equal(t, "extend-timeout", result.Diagnostic.Remediations[0].Code)
	assert.NotContains(t, remediationCodes(*result.Diagnostic), "inspect-outliers")
}

func TestTimetablerSolverFailure(t *testing.T) {
	demand := NewDemand([]CourseDemand{course("Smith", []string{"X"}, "R1", 1)}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)
	timetabler := NewTimetabler(&fakeSolver{err: fmt.Errorf("binary not found")}, options(calendar, NewConstraintToggle()))

	_, err := timetabler.Build(context.Background(), demand)

	assert.ErrorContains(t, err, "binary not found")
}

func TestTimetablerInconsistentSolution(t *testing.T) {
	demand := NewDemand([]CourseDemand{course("Smith", []string{"X"}, "R1", 1)}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)
	timetabler := NewTimetabler(&fakeSolver{status: solver.Feasible, solution: solver.Solution{1, 2}}, options(calendar, NewConstraintToggle()))

	_, err := timetabler.Build(context.Background(), demand)

	var consistencyError *ConsistencyError
	require.ErrorAs(t, err, &consistencyError)
	assert.Equal(t, uint64(1), consistencyError.Course)
}

func TestTimetablerSizeWarning(t *testing.T) {
	demand := NewDemand([]CourseDemand{course("Smith", []string{"X"}, "R1", 1)}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)
	warned := options(calendar, NewConstraintToggle())
	warned.SizeThreshold = 1

	result, err := NewTimetabler(solver.NewGophersatSolver(), warned).Build(context.Background(), demand)

	require.NoError(t, err)
	require.NotNil(t, result.Warning)
	assert.Equal(t, uint64(2), result.Warning.Variables)
	assert.Equal(t, Scheduled, result.Outcome)
}

func TestReconstructDetectsDoubleBooking(t *testing.T) {
	//** Arrange
	demand := NewDemand([]CourseDemand{
		course("Smith", []string{"X"}, "R1", 1),
		course("Jones", []string{"X"}, "R2", 1),
	}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)
	model := BuildModel(demand, calendar, NewConstraintToggle(ClassDimension))

	//** Act
	_, err := Reconstruct(model, demand, solver.Solution{1, -2, 3, -4})

	//** Assert
	var consistencyError *ConsistencyError
	require.ErrorAs(t, err, &consistencyError)
	assert.Contains(t, consistencyError.Message, "double-booked")
}

func TestVerify(t *testing.T) {
	demand := NewDemand([]CourseDemand{
		course("Smith", []string{"X"}, "R1", 3),
		course("Jones", []string{"Y"}, "R2", 1),
	}, nil, 2)
	calendar, _ := NewCalendar(1, 2, 2)
	timetabler := NewTimetabler(solver.NewGophersatSolver(), options(calendar, NewConstraintToggle(ClassDimension)))
	slot := func(day, period int) TimeSlot { return TimeSlot{Week: 1, Day: day, Period: period} }

	tests := []struct {
		name       string
		assignment Assignment
		message    string
	}{
		{"Valid", Assignment{1: {slot(1, 1), slot(1, 2), slot(2, 1)}, 2: {slot(1, 1)}}, ""},
		{"Slot assigned twice", Assignment{1: {slot(1, 1), slot(2, 1), slot(1, 1)}, 2: {slot(1, 1)}}, "assigned twice"},
		{"Slot outside the calendar", Assignment{1: {slot(1, 1), slot(1, 2), slot(3, 1)}, 2: {slot(1, 1)}}, "outside the calendar"},
		{"Missing slots", Assignment{1: {slot(1, 1)}, 2: {slot(1, 1)}}, "1 slot(s) assigned, 3 required"},
		{"Unknown course", Assignment{1: {slot(1, 1), slot(1, 2), slot(2, 1)}, 2: {slot(1, 1)}, 3: {slot(2, 2)}}, "course does not exist"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			//** Act
			err := checkAssignment(test.assignment, demand, calendar, NewConstraintToggle(ClassDimension))

			//** Assert
			if test.message == "" {
				assert.NoError(t, err)
				assert.True(t, timetabler.Verify(test.assignment, demand))
				return
			}
			var consistencyError *ConsistencyError
			require.ErrorAs(t, err, &consistencyError)
			assert.Contains(t, consistencyError.Message, test.message)
			assert.False(t, timetabler.Verify(test.assignment, demand))
		})
	}
}

func TestReconstruct(t *testing.T) {
	demand := NewDemand([]CourseDemand{
		course("Smith", []string{"X"}, "R1", 2),
		course("Jones", []string{"X"}, "R2", 1),
	}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 3)
	model := BuildModel(demand, calendar, NewConstraintToggle(ClassDimension))

	assignment, err := Reconstruct(model, demand, solver.Solution{-1, 2, 3, 4, -5, -6, 7})

	require.NoError(t, err)
	assert.Equal(t, Assignment{
		1: {{Week: 1, Day: 1, Period: 2}, {Week: 1, Day: 1, Period: 3}},
		2: {{Week: 1, Day: 1, Period: 1}},
	}, assignment)

	records := Records(assignment, demand)
	require.Len(t, records, 2)
	assert.Equal(t, "C1", records[0].Code)
	assert.Equal(t, []string{"W1-D1-P2", "W1-D1-P3"}, records[0].Slots)
	assert.Equal(t, "X", records[1].JoinedClasses())
}

func TestBuildStaged(t *testing.T) {
	//** Arrange
	// Feasible while only classes are checked, infeasible once the shared teacher is
	demand := NewDemand([]CourseDemand{
		course("Smith", []string{"X"}, "R1", 2),
		course("Smith", []string{"Y"}, "R2", 2),
	}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)

	//** Act
	results, err := BuildStaged(context.Background(), solver.NewGophersatSolver(), options(calendar, NewConstraintToggle(Dimensions...)), demand)

	//** Assert
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Scheduled, results[0].Outcome)
	assert.Equal(t, NewConstraintToggle(ClassDimension), results[0].Toggle)
	assert.Equal(t, InfeasibleResult, results[1].Outcome)
	assert.Equal(t, NewConstraintToggle(ClassDimension, TeacherDimension), results[1].Toggle)
	require.Len(t, results[1].Diagnostic.Blocking, 1)
	assert.Equal(t, "Smith", results[1].Diagnostic.Blocking[0].Value)
}

func TestDiagnose(t *testing.T) {
	demand := NewDemand([]CourseDemand{
		course("Smith", []string{"X"}, "R1", 2),
		course("Smith", []string{"Y"}, "R2", 2),
	}, nil, 2)
	gaps := AnalyzeGaps(demand, 2, 5)
	toggle := NewConstraintToggle(ClassDimension, TeacherDimension)

	diagnostic := Diagnose(InfeasibleResult, toggle, gaps)

	assert.Equal(t, []string{"relax-class-conflict", "relax-teacher-conflict", "inspect-outliers", "check-total-hours"}, remediationCodes(diagnostic))
	assert.Contains(t, diagnostic.Remediations[1].Message, "Smith (2 slots over)")
	assert.Equal(t, toggle, diagnostic.Toggle)
}

func remediationCodes(diagnostic Diagnostic) []string {
	return lo.Map(diagnostic.Remediations, func(remediation Remediation, _ int) string { return remediation.Code })
}

package model

import (
	"testing"

	"github.com/limaJavier/coursescheduler/pkg/solver"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Three courses over two slots: A and B share class X and teacher T1, A and C share room R1
func builderDemand() (Demand, Calendar) {
	demand := NewDemand([]CourseDemand{
		course("T1", []string{"X"}, "R1", 1),
		course("T1", []string{"X", "Y"}, "R2", 1),
		course("T2", []string{"Z"}, "R1", 2),
	}, nil, 2)
	calendar, _ := NewCalendar(1, 1, 2)
	return demand, calendar
}

func TestBuildModelHoursOnly(t *testing.T) {
	demand, calendar := builderDemand()

	model := BuildModel(demand, calendar, NewConstraintToggle())

	assert.Equal(t, uint64(6), model.Variables())
	assert.Equal(t, map[Family]int{HoursFamily: 3}, model.Families)
	assert.Equal(t, []solver.Constraint{
		{Name: "hours_C1", Literals: []int64{1, 2}, Sense: solver.Equal, Bound: 1},
		{Name: "hours_C2", Literals: []int64{3, 4}, Sense: solver.Equal, Bound: 1},
		{Name: "hours_C3", Literals: []int64{5, 6}, Sense: solver.Equal, Bound: 2},
	}, model.Problem.Constraints)
}

func TestBuildModelConflictFamilies(t *testing.T) {
	//** Arrange
	demand, calendar := builderDemand()

	//** Act
	model := BuildModel(demand, calendar, NewConstraintToggle(Dimensions...))

	//** Assert
	assert.Equal(t, map[Family]int{HoursFamily: 3, ClassFamily: 2, TeacherFamily: 2, RoomFamily: 2}, model.Families)
	assert.Equal(t, []string{
		"hours_C1", "hours_C2", "hours_C3",
		"class_X_W1-D1-P1", "class_X_W1-D1-P2",
		"teacher_T1_W1-D1-P1", "teacher_T1_W1-D1-P2",
		"room_R1_W1-D1-P1", "room_R1_W1-D1-P2",
	}, lo.Map(model.Problem.Constraints, func(constraint solver.Constraint, _ int) string { return constraint.Name }))

	conflicts := model.Problem.Constraints[3:]
	for _, constraint := range conflicts {
		assert.Equal(t, solver.LessEqual, constraint.Sense)
		assert.Equal(t, 1, constraint.Bound)
	}
	assert.Equal(t, []int64{1, 3}, conflicts[0].Literals)
	assert.Equal(t, []int64{2, 4}, conflicts[1].Literals)
	assert.Equal(t, []int64{1, 5}, conflicts[4].Literals)
	assert.Equal(t, []int64{2, 6}, conflicts[5].Literals)
}

func TestBuildModelIsDeterministic(t *testing.T) {
	demand, calendar := builderDemand()
	toggle := NewConstraintToggle(ClassDimension, RoomDimension)

	first := BuildModel(demand, calendar, toggle)
	for range 10 {
		assert.Equal(t, first.Problem, BuildModel(demand, calendar, toggle).Problem)
	}
}

func TestBuildModelDoesNotMutateDemand(t *testing.T) {
	demand, calendar := builderDemand()
	before := append([]CourseDemand(nil), demand.Courses...)

	BuildModel(demand, calendar, NewConstraintToggle(Dimensions...))

	assert.Equal(t, before, demand.Courses)
}

func TestConstraintModelVariables(t *testing.T) {
	demand, calendar := builderDemand()
	model := BuildModel(demand, calendar, NewConstraintToggle())

	for _, course := range demand.Courses {
		for _, slot := range calendar.Slots() {
			decodedCourse, decodedSlot := model.Decode(model.Variable(course.Id, slot))
			assert.Equal(t, course.Id, decodedCourse)
			assert.Equal(t, slot, decodedSlot)
		}
	}
}

func TestSizeWarning(t *testing.T) {
	demand, calendar := builderDemand()
	model := BuildModel(demand, calendar, NewConstraintToggle())

	warning, ok := model.SizeWarning(5)
	require.True(t, ok)
	assert.Equal(t, ModelSizeWarning{Variables: 6, Threshold: 5}, warning)

	_, ok = model.SizeWarning(6)
	assert.False(t, ok)
	_, ok = model.SizeWarning(0)
	assert.False(t, ok)
}

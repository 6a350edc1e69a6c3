package model

import (
	"sync"

	"github.com/limaJavier/coursescheduler/pkg/solver"
	"github.com/samber/lo"
)

// Family names a group of constraints generated together
type Family string

const (
	HoursFamily   Family = "hours"
	ClassFamily   Family = "class"
	TeacherFamily Family = "teacher"
	RoomFamily    Family = "room"
)

// ConstraintModel is the feasibility model for one demand, one calendar and one toggle. Variable (c, t) means "course c occupies slot t"
type ConstraintModel struct {
	Problem  solver.Problem
	Toggle   ConstraintToggle
	Calendar Calendar
	Families map[Family]int // Number of constraints generated by each family

	indexer indexer
}

type family struct {
	name     Family
	generate func(state constraintState) []solver.Constraint
}

// BuildModel expands the demand into |courses| × |slots| binary variables, one equality per course and the conflict rows of each enabled dimension.
// Families are generated concurrently and merged in a fixed order (hours, class, teacher, room), so the model is deterministic. The demand is only read
func BuildModel(demand Demand, calendar Calendar, toggle ConstraintToggle) ConstraintModel {
	slots := uint64(calendar.Size())
	indexer := newIndexer(uint64(len(demand.Courses)), slots)

	families := []family{{HoursFamily, hoursConstraints}}
	if toggle.Enabled(ClassDimension) {
		families = append(families, family{ClassFamily, classConstraints})
	}
	if toggle.Enabled(TeacherDimension) {
		families = append(families, family{TeacherFamily, teacherConstraints})
	}
	if toggle.Enabled(RoomDimension) {
		families = append(families, family{RoomFamily, roomConstraints})
	}

	state := constraintState{
		demand:   demand,
		calendar: calendar,
		indexer:  indexer,
		slots:    slots,
	}

	// Execute families on different goroutines, each one writes only its own slot of results
	results := make([][]solver.Constraint, len(families))
	var wg sync.WaitGroup
	for i, family := range families {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = family.generate(state)
		}()
	}
	wg.Wait()

	model := ConstraintModel{
		Problem: solver.Problem{
			Variables:   indexer.Variables(),
			Constraints: make([]solver.Constraint, 0, lo.SumBy(results, func(constraints []solver.Constraint) int { return len(constraints) })),
		},
		Toggle:   toggle,
		Calendar: calendar,
		Families: make(map[Family]int, len(families)),
		indexer:  indexer,
	}
	for i, family := range families {
		model.Problem.Constraints = append(model.Problem.Constraints, results[i]...)
		model.Families[family.name] = len(results[i])
	}
	return model
}

func (model ConstraintModel) Variables() uint64 {
	return model.Problem.Variables
}

func (model ConstraintModel) Constraints() int {
	return len(model.Problem.Constraints)
}

// Variable returns the index of the decision variable for a course and a slot
func (model ConstraintModel) Variable(course uint64, slot TimeSlot) uint64 {
	return model.indexer.Index(course, uint64(model.Calendar.Ordinal(slot)))
}

// Decode maps a variable index back to its course and slot
func (model ConstraintModel) Decode(variable uint64) (course uint64, slot TimeSlot) {
	course, ordinal := model.indexer.Attributes(variable)
	return course, model.Calendar.Slot(int(ordinal))
}

// SizeWarning reports whether the model crosses the variable threshold. A zero threshold disables the check
func (model ConstraintModel) SizeWarning(threshold uint64) (ModelSizeWarning, bool) {
	if threshold == 0 || model.Variables() <= threshold {
		return ModelSizeWarning{}, false
	}
	return ModelSizeWarning{Variables: model.Variables(), Threshold: threshold}, true
}

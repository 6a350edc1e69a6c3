package model

import (
	"fmt"

	"github.com/limaJavier/coursescheduler/pkg/solver"
)

type constraintState struct {
	demand   Demand
	calendar Calendar
	indexer  indexer
	slots    uint64
}

// Every course occupies exactly its required number of slots: Σ_t x(c, t) = required(c)
func hoursConstraints(state constraintState) []solver.Constraint {
	constraints := make([]solver.Constraint, 0, len(state.demand.Courses))

	for _, course := range state.demand.Courses {
		literals := make([]int64, 0, state.slots)
		for slot := range state.slots {
			literals = append(literals, int64(state.indexer.Index(course.Id, slot)))
		}
		constraints = append(constraints, solver.Constraint{
			Name:     fmt.Sprintf("hours_%v", course.Code()),
			Literals: literals,
			Sense:    solver.Equal,
			Bound:    course.RequiredSlots,
		})
	}

	return constraints
}

func classConstraints(state constraintState) []solver.Constraint {
	return conflictConstraints(state, ClassDimension)
}

func teacherConstraints(state constraintState) []solver.Constraint {
	return conflictConstraints(state, TeacherDimension)
}

func roomConstraints(state constraintState) []solver.Constraint {
	return conflictConstraints(state, RoomDimension)
}

// For every value of the dimension and every slot, at most one of the courses sharing that value occupies the slot: Σ_{c ∈ C(v)} x(c, t) <= 1.
// Values referenced by a single course are skipped since their rows always hold
func conflictConstraints(state constraintState, dimension Dimension) []solver.Constraint {
	constraints := make([]solver.Constraint, 0)

	for _, resource := range state.demand.Resources(dimension) {
		if len(resource.Courses) < 2 {
			continue
		}
		for slot := range state.slots {
			literals := make([]int64, 0, len(resource.Courses))
			for _, course := range resource.Courses {
				literals = append(literals, int64(state.indexer.Index(course, slot)))
			}
			constraints = append(constraints, solver.Constraint{
				Name:     fmt.Sprintf("%v_%v_%v", dimension, resource.Value, state.calendar.Slot(int(slot)).Label()),
				Literals: literals,
				Sense:    solver.LessEqual,
				Bound:    1,
			})
		}
	}

	return constraints
}

package model

import "fmt"

// checkAssignment validates an assignment against the demand independently of any model: every slot exists, every course gets exactly its required slots,
// and no value of an enabled dimension is booked twice in the same slot
func checkAssignment(assignment Assignment, demand Demand, calendar Calendar, toggle ConstraintToggle) error {
	for id := range assignment {
		if _, ok := demand.Course(id); !ok {
			return &ConsistencyError{Course: id, Message: "course does not exist"}
		}
	}

	for _, course := range demand.Courses {
		slots := assignment[course.Id]
		if len(slots) != course.RequiredSlots {
			return &ConsistencyError{
				Course:  course.Id,
				Message: fmt.Sprintf("%d slot(s) assigned, %d required", len(slots), course.RequiredSlots),
			}
		}
		assigned := make(map[TimeSlot]struct{}, len(slots))
		for _, slot := range slots {
			if !calendar.Contains(slot) {
				return &ConsistencyError{Course: course.Id, Message: fmt.Sprintf("slot %v is outside the calendar", slot)}
			}
			if _, ok := assigned[slot]; ok {
				return &ConsistencyError{Course: course.Id, Message: fmt.Sprintf("slot %v assigned twice", slot)}
			}
			assigned[slot] = struct{}{}
		}
	}

	for _, dimension := range toggle.Dimensions() {
		for _, resource := range demand.Resources(dimension) {
			booked := make(map[TimeSlot]uint64)
			for _, course := range resource.Courses {
				for _, slot := range assignment[course] {
					if other, ok := booked[slot]; ok {
						return &ConsistencyError{
							Course:  course,
							Message: fmt.Sprintf("%v %q is double-booked at %v with C%d", dimension, resource.Value, slot, other),
						}
					}
					booked[slot] = course
				}
			}
		}
	}

	return nil
}

func verify(assignment Assignment, demand Demand, calendar Calendar, toggle ConstraintToggle) bool {
	return checkAssignment(assignment, demand, calendar, toggle) == nil
}

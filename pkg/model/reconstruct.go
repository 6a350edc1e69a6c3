package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/coursescheduler/pkg/solver"
	"github.com/samber/lo"
)

// Outcome is the terminal state of a scheduling run. Infeasible and timed out runs are normal outcomes, not errors
type Outcome int

const (
	Scheduled Outcome = iota
	InfeasibleResult
	TimeoutResult
)

func (outcome Outcome) String() string {
	switch outcome {
	case Scheduled:
		return "scheduled"
	case InfeasibleResult:
		return "infeasible"
	default:
		return "timeout"
	}
}

func outcomeFromStatus(status solver.Status) Outcome {
	switch status {
	case solver.Feasible:
		return Scheduled
	case solver.Infeasible:
		return InfeasibleResult
	default:
		return TimeoutResult
	}
}

// Assignment maps a course identifier to its occupied slots, in calendar order
type Assignment map[uint64][]TimeSlot

// Reconstruct collects the slots whose variable is set for each course and re-checks the result against the model.
// Any mismatch is returned as a *ConsistencyError
func Reconstruct(model ConstraintModel, demand Demand, solution solver.Solution) (Assignment, error) {
	if uint64(len(demand.Courses))*uint64(model.Calendar.Size()) != model.Variables() {
		return nil, &ConsistencyError{Message: "model was not built from this demand"}
	}

	assignment := make(Assignment, len(demand.Courses))
	for _, course := range demand.Courses {
		assignment[course.Id] = make([]TimeSlot, 0, course.RequiredSlots)
	}

	for _, variable := range solution.Positives(model.Variables()) {
		course, slot := model.Decode(variable)
		assignment[course] = append(assignment[course], slot)
	}
	for _, slots := range assignment {
		slices.SortFunc(slots, TimeSlot.Compare)
	}

	if err := checkAssignment(assignment, demand, model.Calendar, model.Toggle); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Remediation is a suggested corrective action. Code is stable, Message is meant for humans
type Remediation struct {
	Code    string
	Message string
}

// Diagnostic explains a run that did not produce an assignment
type Diagnostic struct {
	Outcome      Outcome
	Toggle       ConstraintToggle
	Gaps         GapReport
	Blocking     []ResourceDemand // Gap violations in the enabled dimensions
	Remediations []Remediation
}

// Diagnose builds the report for an infeasible or timed out run
func Diagnose(outcome Outcome, toggle ConstraintToggle, gaps GapReport) Diagnostic {
	diagnostic := Diagnostic{
		Outcome:      outcome,
		Toggle:       toggle,
		Gaps:         gaps,
		Blocking:     gaps.Blocking(toggle),
		Remediations: make([]Remediation, 0),
	}

	if outcome == TimeoutResult {
		diagnostic.Remediations = append(diagnostic.Remediations, Remediation{
			Code:    "extend-timeout",
			Message: "the solver ran out of time without a verdict; extend the timeout, try another solver or search in stages with fewer conflict dimensions",
		})
	}

	if len(gaps.Oversized) > 0 {
		codes := lo.Map(gaps.Oversized, func(id uint64, _ int) string { return fmt.Sprintf("C%d", id) })
		diagnostic.Remediations = append(diagnostic.Remediations, Remediation{
			Code:    "fix-course-hours",
			Message: fmt.Sprintf("course(s) %v require more than the %d available slots and can never be scheduled", strings.Join(codes, ", "), gaps.Capacity),
		})
	}

	for _, dimension := range toggle.Dimensions() {
		blocking := lo.Filter(diagnostic.Blocking, func(resource ResourceDemand, _ int) bool { return resource.Dimension == dimension })
		message := fmt.Sprintf("disable the %v conflict constraint to check whether the rest of the model is feasible", dimension)
		if len(blocking) > 0 {
			values := lo.Map(blocking, func(resource ResourceDemand, _ int) string {
				return fmt.Sprintf("%v (%d slots over)", resource.Value, resource.Gap)
			})
			message = fmt.Sprintf("%v demand exceeds capacity for %v; split their courses or relax the %v conflict constraint", dimension, strings.Join(values, ", "), dimension)
		}
		diagnostic.Remediations = append(diagnostic.Remediations, Remediation{
			Code:    fmt.Sprintf("relax-%v-conflict", dimension),
			Message: message,
		})
	}

	if outcome == InfeasibleResult {
		diagnostic.Remediations = append(diagnostic.Remediations,
			Remediation{
				Code:    "inspect-outliers",
				Message: fmt.Sprintf("inspect records whose demand is far above the rest, such as a class needing close to or more than %d slots", gaps.Capacity),
			},
			Remediation{
				Code:    "check-total-hours",
				Message: "check total hours for typing errors, such as 16 hours entered as 160",
			},
		)
	}

	return diagnostic
}

// Record is the flat output row of a scheduled course
type Record struct {
	Code          string
	Name          string
	Teacher       string
	Classes       []string
	Room          string
	TotalHours    int
	HourType      string
	RequiredSlots int
	Slots         []string // Slot labels in calendar order
}

// JoinedClasses returns the classes separated by "|"
func (record Record) JoinedClasses() string {
	return strings.Join(record.Classes, "|")
}

// Records flattens an assignment into one record per course in identifier order
func Records(assignment Assignment, demand Demand) []Record {
	return lo.Map(demand.Courses, func(course CourseDemand, _ int) Record {
		return Record{
			Code:          course.Code(),
			Name:          course.Name,
			Teacher:       course.Teacher,
			Classes:       course.Classes,
			Room:          course.Room,
			TotalHours:    course.TotalHours,
			HourType:      course.HourType,
			RequiredSlots: course.RequiredSlots,
			Slots:         lo.Map(assignment[course.Id], func(slot TimeSlot, _ int) string { return slot.Label() }),
		}
	})
}

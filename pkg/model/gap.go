package model

import (
	"slices"

	"github.com/samber/lo"
)

// ResourceDemand aggregates the slots demanded from a single resource value. Gap is Demand minus capacity, so a positive gap proves the dimension infeasible
type ResourceDemand struct {
	Dimension Dimension
	Value     string
	Courses   []uint64
	Demand    int
	Gap       int
}

func (resource ResourceDemand) Violation() bool {
	return resource.Gap > 0
}

// GapReport compares aggregated demand against the capacity of a single resource over the whole slot universe.
// Passing it is necessary but not sufficient for a feasible assignment
type GapReport struct {
	Capacity    int
	TotalDemand int // Sum of required slots over every course
	Top         int
	Oversized   []uint64 // Courses requiring more slots than the universe holds

	rankings map[Dimension][]ResourceDemand
}

// AnalyzeGaps never fails: violations are reported, not raised. A course with several classes contributes its full slot count to each of them
func AnalyzeGaps(demand Demand, capacity, top int) GapReport {
	report := GapReport{
		Capacity:    capacity,
		TotalDemand: demand.TotalSlots(),
		Top:         top,
		Oversized:   make([]uint64, 0),
		rankings:    make(map[Dimension][]ResourceDemand, len(Dimensions)),
	}

	for _, course := range demand.Courses {
		if course.RequiredSlots > capacity {
			report.Oversized = append(report.Oversized, course.Id)
		}
	}

	for _, dimension := range Dimensions {
		ranking := lo.Map(demand.Resources(dimension), func(resource Resource, _ int) ResourceDemand {
			slots := lo.SumBy(resource.Courses, func(id uint64) int {
				course, _ := demand.Course(id)
				return course.RequiredSlots
			})
			return ResourceDemand{
				Dimension: dimension,
				Value:     resource.Value,
				Courses:   resource.Courses,
				Demand:    slots,
				Gap:       slots - capacity,
			}
		})
		// Ties keep first-seen order
		slices.SortStableFunc(ranking, func(a, b ResourceDemand) int { return b.Demand - a.Demand })
		report.rankings[dimension] = ranking
	}

	return report
}

// Ranking returns every value of a dimension, descending by demand
func (report GapReport) Ranking(dimension Dimension) []ResourceDemand {
	return report.rankings[dimension]
}

// TopN returns the head of the ranking of a dimension. A non-positive Top returns the whole ranking
func (report GapReport) TopN(dimension Dimension) []ResourceDemand {
	ranking := report.rankings[dimension]
	if report.Top <= 0 || report.Top >= len(ranking) {
		return ranking
	}
	return ranking[:report.Top]
}

func (report GapReport) Teachers() []ResourceDemand {
	return report.Ranking(TeacherDimension)
}

func (report GapReport) Classes() []ResourceDemand {
	return report.Ranking(ClassDimension)
}

func (report GapReport) Rooms() []ResourceDemand {
	return report.Ranking(RoomDimension)
}

// Violations lists every resource value whose demand exceeds capacity, in dimension order
func (report GapReport) Violations() []ResourceDemand {
	violations := make([]ResourceDemand, 0)
	for _, dimension := range Dimensions {
		violations = append(violations, lo.Filter(report.rankings[dimension], func(resource ResourceDemand, _ int) bool {
			return resource.Violation()
		})...)
	}
	return violations
}

// Blocking restricts the violations to the dimensions enabled in toggle, those are the ones that make the model infeasible
func (report GapReport) Blocking(toggle ConstraintToggle) []ResourceDemand {
	return lo.Filter(report.Violations(), func(resource ResourceDemand, _ int) bool {
		return toggle.Enabled(resource.Dimension)
	})
}

// TotalGap is the overall demand minus the capacity of one resource
func (report GapReport) TotalGap() int {
	return report.TotalDemand - report.Capacity
}

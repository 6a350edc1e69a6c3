package csvio

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/samber/lo"
)

// AssignmentRow is the CSV form of a scheduled course
type AssignmentRow struct {
	Id            string `csv:"id"`
	Name          string `csv:"name"`
	Teacher       string `csv:"teacher"`
	Classes       string `csv:"classes"`
	Room          string `csv:"room"`
	TotalHours    int    `csv:"total_hours"`
	HourType      string `csv:"hour_type"`
	RequiredSlots int    `csv:"required_slots"`
	Slots         string `csv:"slots"`
}

// GapRow is the CSV form of the demand aggregated for one resource value
type GapRow struct {
	Dimension string `csv:"dimension"`
	Value     string `csv:"value"`
	Courses   int    `csv:"courses"`
	Demand    int    `csv:"demand"`
	Capacity  int    `csv:"capacity"`
	Gap       int    `csv:"gap"`
	Violation bool   `csv:"violation"`
}

// ExportAssignment writes one row per course. Classes are joined with "|" and slots with spaces
func ExportAssignment(records []model.Record, out io.Writer) error {
	rows := lo.Map(records, func(record model.Record, _ int) *AssignmentRow {
		return &AssignmentRow{
			Id:            record.Code,
			Name:          record.Name,
			Teacher:       record.Teacher,
			Classes:       record.JoinedClasses(),
			Room:          record.Room,
			TotalHours:    record.TotalHours,
			HourType:      record.HourType,
			RequiredSlots: record.RequiredSlots,
			Slots:         strings.Join(record.Slots, " "),
		}
	})
	return gocsv.Marshal(&rows, out)
}

// ExportGaps writes the full ranking of every dimension
func ExportGaps(report model.GapReport, out io.Writer) error {
	rows := make([]*GapRow, 0)
	for _, dimension := range model.Dimensions {
		for _, resource := range report.Ranking(dimension) {
			rows = append(rows, &GapRow{
				Dimension: dimension.String(),
				Value:     resource.Value,
				Courses:   len(resource.Courses),
				Demand:    resource.Demand,
				Capacity:  report.Capacity,
				Gap:       resource.Gap,
				Violation: resource.Violation(),
			})
		}
	}
	return gocsv.Marshal(&rows, out)
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/samber/lo"
)

const separator = "------------------------------------------------------------"

// WriteDetails writes one block per scheduled course
func WriteDetails(out io.Writer, records []model.Record) error {
	var builder strings.Builder
	builder.WriteString("======= Schedule details =======\n")
	for _, record := range records {
		fmt.Fprintf(&builder, "\n[%v] %v (teacher: %v)\n", record.Code, record.Name, record.Teacher)
		fmt.Fprintf(&builder, "classes: %v\n", strings.Join(record.Classes, ", "))
		fmt.Fprintf(&builder, "room: %v\n", record.Room)
		fmt.Fprintf(&builder, "total hours: %d (%d slots, %v)\n", record.TotalHours, record.RequiredSlots, record.HourType)
		fmt.Fprintf(&builder, "slots: %v\n", strings.Join(record.Slots, ", "))
		builder.WriteString(separator + "\n")
	}
	_, err := io.WriteString(out, builder.String())
	return err
}

// WriteGaps writes the demand summary, the top of every ranking and the normalization notes
func WriteGaps(out io.Writer, gaps model.GapReport, notes []model.Note) error {
	var builder strings.Builder
	writeGaps(&builder, gaps)

	if len(notes) > 0 {
		builder.WriteString("\nNotes:\n")
		for _, note := range notes {
			fmt.Fprintf(&builder, "  %v\n", note.Message)
		}
	}

	_, err := io.WriteString(out, builder.String())
	return err
}

// WriteDiagnostic explains a run without assignment: outcome, active constraints, gaps and remediation steps
func WriteDiagnostic(out io.Writer, diagnostic model.Diagnostic) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "======= No schedule: %v =======\n", diagnostic.Outcome)
	fmt.Fprintf(&builder, "conflict constraints: %v\n", diagnostic.Toggle)

	if len(diagnostic.Blocking) > 0 {
		builder.WriteString("\nDemand above capacity in enabled dimensions:\n")
		for _, resource := range diagnostic.Blocking {
			fmt.Fprintf(&builder, "  %v %v: %d slots, %d over\n", resource.Dimension, resource.Value, resource.Demand, resource.Gap)
		}
	}

	builder.WriteString("\n")
	writeGaps(&builder, diagnostic.Gaps)

	builder.WriteString("\nSuggested steps:\n")
	for i, remediation := range diagnostic.Remediations {
		fmt.Fprintf(&builder, "  %d. [%v] %v\n", i+1, remediation.Code, remediation.Message)
	}

	_, err := io.WriteString(out, builder.String())
	return err
}

func writeGaps(builder *strings.Builder, gaps model.GapReport) {
	fmt.Fprintf(builder, "Resource summary (available slots per resource: %d)\n", gaps.Capacity)
	fmt.Fprintf(builder, "total demand: %d slots\n", gaps.TotalDemand)
	fmt.Fprintf(builder, "total gap (demand - available): %d\n", gaps.TotalGap())

	if len(gaps.Oversized) > 0 {
		codes := lo.Map(gaps.Oversized, func(id uint64, _ int) string { return fmt.Sprintf("C%d", id) })
		fmt.Fprintf(builder, "courses larger than the calendar: %v\n", strings.Join(codes, ", "))
	}

	for _, dimension := range []model.Dimension{model.TeacherDimension, model.ClassDimension, model.RoomDimension} {
		top := gaps.TopN(dimension)
		if len(top) == 0 {
			continue
		}
		fmt.Fprintf(builder, "\nTop %v demand:\n", dimension)
		for _, resource := range top {
			status := "ok"
			if resource.Violation() {
				status = fmt.Sprintf("short by %d slots", resource.Gap)
			}
			fmt.Fprintf(builder, "  %v: %d slots (%v)\n", resource.Value, resource.Demand, status)
		}
	}
}

package model

import (
	"fmt"
	"strings"
)

// FieldIssue pinpoints a single problem in the raw input. Row is 1-based
type FieldIssue struct {
	Row   int
	Field string
	Rule  string
	Value string
}

func (issue FieldIssue) String() string {
	if issue.Value != "" {
		return fmt.Sprintf("row %d: field %q fails %q (value %q)", issue.Row, issue.Field, issue.Rule, issue.Value)
	}
	return fmt.Sprintf("row %d: field %q fails %q", issue.Row, issue.Field, issue.Rule)
}

// ValidationError gathers every offending row and field of an input batch
type ValidationError struct {
	Issues []FieldIssue
}

func (err *ValidationError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d invalid field(s) in course records", len(err.Issues))
	for _, issue := range err.Issues {
		builder.WriteString("\n\t")
		builder.WriteString(issue.String())
	}
	return builder.String()
}

// Rows returns the distinct offending rows in ascending order
func (err *ValidationError) Rows() []int {
	rows := make([]int, 0, len(err.Issues))
	seen := make(map[int]bool)
	for _, issue := range err.Issues {
		if !seen[issue.Row] {
			seen[issue.Row] = true
			rows = append(rows, issue.Row)
		}
	}
	return rows
}

// ConsistencyError reports an assignment that contradicts the model it was solved from. It always points to a solver or adapter bug
type ConsistencyError struct {
	Course  uint64
	Message string
}

func (err *ConsistencyError) Error() string {
	if err.Course == 0 {
		return fmt.Sprintf("inconsistent solver output: %v", err.Message)
	}
	return fmt.Sprintf("inconsistent solver output for course C%d: %v", err.Course, err.Message)
}

// ModelSizeWarning is advisory: the model is large enough that the solver will likely run out of time
type ModelSizeWarning struct {
	Variables uint64
	Threshold uint64
}

func (warning ModelSizeWarning) String() string {
	return fmt.Sprintf("model has %d variables, above the threshold of %d: the solver may time out", warning.Variables, warning.Threshold)
}

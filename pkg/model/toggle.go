package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Dimension is a resource type that cannot be double-booked in a slot when its conflict constraints are enabled
type Dimension int

const (
	ClassDimension Dimension = iota
	TeacherDimension
	RoomDimension
)

// Dimensions lists every conflict dimension in the order their constraints are generated and tightened
var Dimensions = []Dimension{ClassDimension, TeacherDimension, RoomDimension}

var dimensionNames = map[Dimension]string{
	ClassDimension:   "class",
	TeacherDimension: "teacher",
	RoomDimension:    "room",
}

func (dimension Dimension) String() string {
	return dimensionNames[dimension]
}

func ParseDimension(value string) (Dimension, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	dimension, ok := lo.FindKey(dimensionNames, value)
	if !ok {
		return 0, fmt.Errorf("%v is not a valid conflict dimension, allowed values are: class, teacher, room", value)
	}
	return dimension, nil
}

// ConstraintToggle is the set of conflict dimensions whose constraints are generated. It is a plain value, so several configurations can be built and compared side by side
type ConstraintToggle struct {
	enabled [3]bool
}

func NewConstraintToggle(dimensions ...Dimension) ConstraintToggle {
	var toggle ConstraintToggle
	for _, dimension := range dimensions {
		toggle.enabled[dimension] = true
	}
	return toggle
}

// ParseConstraintToggle accepts dimension names; "none" (or no value at all) disables every dimension
func ParseConstraintToggle(values []string) (ConstraintToggle, error) {
	var toggle ConstraintToggle
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), "none") || strings.TrimSpace(value) == "" {
			continue
		}
		dimension, err := ParseDimension(value)
		if err != nil {
			return ConstraintToggle{}, err
		}
		toggle = toggle.With(dimension)
	}
	return toggle, nil
}

func (toggle ConstraintToggle) Enabled(dimension Dimension) bool {
	return toggle.enabled[dimension]
}

func (toggle ConstraintToggle) With(dimension Dimension) ConstraintToggle {
	toggle.enabled[dimension] = true
	return toggle
}

func (toggle ConstraintToggle) Without(dimension Dimension) ConstraintToggle {
	toggle.enabled[dimension] = false
	return toggle
}

func (toggle ConstraintToggle) Dimensions() []Dimension {
	return lo.Filter(Dimensions, func(dimension Dimension, _ int) bool { return toggle.enabled[dimension] })
}

func (toggle ConstraintToggle) String() string {
	dimensions := toggle.Dimensions()
	if len(dimensions) == 0 {
		return "none"
	}
	return strings.Join(lo.Map(dimensions, func(dimension Dimension, _ int) string { return dimension.String() }), ",")
}

// Stages returns the tightening sequence used by a staged feasibility search: the enabled dimensions of final are switched on one at a time, class first.
// The last stage always equals final
func Stages(final ConstraintToggle) []ConstraintToggle {
	dimensions := final.Dimensions()
	if len(dimensions) == 0 {
		return []ConstraintToggle{final}
	}

	stages := make([]ConstraintToggle, 0, len(dimensions))
	var current ConstraintToggle
	for _, dimension := range dimensions {
		current = current.With(dimension)
		stages = append(stages, current)
	}
	return stages
}

package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Upper bound of total hours, keeps slot sums over a whole batch within int
const maxTotalHours = math.MaxInt32

// Class-membership delimiters, tried in this order
const (
	primaryClassDelimiter   = "、"
	secondaryClassDelimiter = ","
)

// CourseDemand is a normalized course section. It is never modified after normalization
type CourseDemand struct {
	Id            uint64 // Sequential, starting at 1, stable within a run
	Name          string
	Teacher       string
	Classes       []string
	Room          string
	TotalHours    int
	HourType      string // Opaque metadata carried through to the output
	RequiredSlots int
}

func (course CourseDemand) Code() string {
	return fmt.Sprintf("C%d", course.Id)
}

// Values returns the resource values the course references in the given dimension
func (course CourseDemand) Values(dimension Dimension) []string {
	switch dimension {
	case ClassDimension:
		return course.Classes
	case TeacherDimension:
		return []string{course.Teacher}
	default:
		return []string{course.Room}
	}
}

// Note is an informational message produced while normalizing a course
type Note struct {
	Course  uint64
	Message string
}

// Resource is a distinct value of a conflict dimension together with the courses referencing it
type Resource struct {
	Value   string
	Courses []uint64
}

type resourceIndex struct {
	values  []string // First-seen order
	courses map[string][]uint64
}

// Demand is the output of normalization: the courses plus an index from every resource value to the courses referencing it
type Demand struct {
	Courses      []CourseDemand
	Notes        []Note
	HoursPerSlot int

	index map[Dimension]*resourceIndex
}

// NewDemand indexes already normalized courses. Identifiers are reassigned from their position so they stay sequential
func NewDemand(courses []CourseDemand, notes []Note, hoursPerSlot int) Demand {
	demand := Demand{
		Courses:      make([]CourseDemand, len(courses)),
		Notes:        notes,
		HoursPerSlot: hoursPerSlot,
		index:        make(map[Dimension]*resourceIndex, len(Dimensions)),
	}
	for _, dimension := range Dimensions {
		demand.index[dimension] = &resourceIndex{courses: make(map[string][]uint64)}
	}

	for i, course := range courses {
		course.Id = uint64(i + 1)
		demand.Courses[i] = course

		for _, dimension := range Dimensions {
			index := demand.index[dimension]
			for _, value := range course.Values(dimension) {
				if _, ok := index.courses[value]; !ok {
					index.values = append(index.values, value)
				}
				index.courses[value] = append(index.courses[value], course.Id)
			}
		}
	}
	return demand
}

// Course returns the course with the given identifier
func (demand Demand) Course(id uint64) (CourseDemand, bool) {
	if id == 0 || id > uint64(len(demand.Courses)) {
		return CourseDemand{}, false
	}
	return demand.Courses[id-1], true
}

// Resources lists the distinct values of a dimension in first-seen order
func (demand Demand) Resources(dimension Dimension) []Resource {
	index, ok := demand.index[dimension]
	if !ok {
		return nil
	}
	return lo.Map(index.values, func(value string, _ int) Resource {
		return Resource{Value: value, Courses: index.courses[value]}
	})
}

// TotalSlots is the sum of required slots over every course
func (demand Demand) TotalSlots() int {
	return lo.SumBy(demand.Courses, func(course CourseDemand) int { return course.RequiredSlots })
}

// Normalizer turns raw course records into a Demand
type Normalizer struct {
	hoursPerSlot int
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewNormalizer(hoursPerSlot int, logger *zap.Logger) (*Normalizer, error) {
	if hoursPerSlot < 1 {
		return nil, fmt.Errorf("hours per slot must be positive, got %d", hoursPerSlot)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	validate := validator.New()
	// Report fields by their column name
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("csv"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &Normalizer{
		hoursPerSlot: hoursPerSlot,
		validate:     validate,
		logger:       logger,
	}, nil
}

// Normalize validates every row before building anything. When any row is invalid a *ValidationError naming every offending row and field is returned
func (normalizer *Normalizer) Normalize(rows []RawCourse) (Demand, error) {
	issues := make([]FieldIssue, 0)
	courses := make([]CourseDemand, 0, len(rows))
	notes := make([]Note, 0)

	for i, row := range rows {
		number := i + 1
		row = trimRow(row)

		if err := normalizer.validate.Struct(row); err != nil {
			validationErrors, ok := err.(validator.ValidationErrors)
			if !ok {
				return Demand{}, err
			}
			for _, fieldError := range validationErrors {
				issues = append(issues, FieldIssue{
					Row:   number,
					Field: fieldError.Field(),
					Rule:  fieldError.Tag(),
					Value: fmt.Sprint(fieldError.Value()),
				})
			}
			continue
		}

		hours, rule := parseTotalHours(row.TotalHours)
		if rule != "" {
			issues = append(issues, FieldIssue{Row: number, Field: "total_hours", Rule: rule, Value: row.TotalHours})
			continue
		}

		classes := SplitClasses(row.Classes)
		if len(classes) == 0 {
			issues = append(issues, FieldIssue{Row: number, Field: "classes", Rule: "required", Value: row.Classes})
			continue
		}

		course := CourseDemand{
			Id:            uint64(len(courses) + 1),
			Name:          row.Name,
			Teacher:       row.Teacher,
			Classes:       classes,
			Room:          row.Room,
			TotalHours:    hours,
			HourType:      row.HourType,
			RequiredSlots: RequiredSlots(hours, normalizer.hoursPerSlot),
		}
		if hours%normalizer.hoursPerSlot != 0 {
			note := Note{
				Course: course.Id,
				Message: fmt.Sprintf(
					"%v %q: %d hours are not a multiple of %d hours per slot, rounded up to %d slots (%d hours)",
					course.Code(), course.Name, hours, normalizer.hoursPerSlot, course.RequiredSlots, course.RequiredSlots*normalizer.hoursPerSlot,
				),
			}
			notes = append(notes, note)
			normalizer.logger.Info("slot count rounded up",
				zap.String("course", course.Code()),
				zap.Int("hours", hours),
				zap.Int("slots", course.RequiredSlots),
			)
		}
		courses = append(courses, course)
	}

	if len(issues) > 0 {
		normalizer.logger.Warn("invalid course records", zap.Int("issues", len(issues)))
		return Demand{}, &ValidationError{Issues: issues}
	}

	normalizer.logger.Debug("course records normalized",
		zap.Int("courses", len(courses)),
		zap.Int("notes", len(notes)),
	)
	return NewDemand(courses, notes, normalizer.hoursPerSlot), nil
}

// parseTotalHours returns the hours of a record, or the rule they fail
func parseTotalHours(value string) (int, string) {
	hours, err := strconv.Atoi(value)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(value, "-"):
		return 0, "max"
	case err != nil || hours <= 0:
		return 0, "gt"
	case hours > maxTotalHours:
		return 0, "max"
	}
	return hours, ""
}

// RequiredSlots rounds up so a course is never given fewer slots than its hours need
func RequiredSlots(hours, hoursPerSlot int) int {
	slots := hours / hoursPerSlot
	if hours%hoursPerSlot != 0 {
		slots++
	}
	return slots
}

// SplitClasses splits a class-membership field on the primary delimiter if it occurs, otherwise on the secondary one, otherwise the whole field is a single class.
// Blank names are dropped and duplicates collapse into their first occurrence
func SplitClasses(field string) []string {
	var parts []string
	switch {
	case strings.Contains(field, primaryClassDelimiter):
		parts = strings.Split(field, primaryClassDelimiter)
	case strings.Contains(field, secondaryClassDelimiter):
		parts = strings.Split(field, secondaryClassDelimiter)
	default:
		parts = []string{field}
	}

	parts = lo.Map(parts, func(part string, _ int) string { return strings.TrimSpace(part) })
	parts = lo.Compact(parts)
	return lo.Uniq(parts)
}

func trimRow(row RawCourse) RawCourse {
	return RawCourse{
		Name:       strings.TrimSpace(row.Name),
		Teacher:    strings.TrimSpace(row.Teacher),
		Classes:    strings.TrimSpace(row.Classes),
		Room:       strings.TrimSpace(row.Room),
		TotalHours: strings.TrimSpace(row.TotalHours),
		HourType:   strings.TrimSpace(row.HourType),
	}
}

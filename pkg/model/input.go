package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// RawCourse is one untyped course record as it comes out of a spreadsheet export
type RawCourse struct {
	Name       string `csv:"name" mapstructure:"name" validate:"required"`
	Teacher    string `csv:"teacher" mapstructure:"teacher" validate:"required"`
	Classes    string `csv:"classes" mapstructure:"classes" validate:"required"`
	Room       string `csv:"room" mapstructure:"room" validate:"required"`
	TotalHours string `csv:"total_hours" mapstructure:"total_hours" validate:"required,number"`
	HourType   string `csv:"hour_type" mapstructure:"hour_type" validate:"required"`
}

// InputFromJson reads a JSON array of course records. Numbers are accepted wherever a string is expected
func InputFromJson(file string) ([]RawCourse, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var inputJson []map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, fmt.Errorf("cannot parse %v: %w", file, err)
	}

	var rows []RawCourse
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rows,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return nil, fmt.Errorf("cannot decode course records from %v: %w", file, err)
	}
	return rows, nil
}

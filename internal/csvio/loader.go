package csvio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/coursescheduler/pkg/model"
)

// LoadCourses reads course rows from CSV with the header name,teacher,classes,room,total_hours,hour_type.
// Missing columns are left empty so that normalization reports them together with every other issue
func LoadCourses(in io.Reader) ([]model.RawCourse, error) {
	rows := []model.RawCourse{}
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse course records: %w", err)
	}
	return rows, nil
}

// LoadFile reads course rows from a .json file or, for any other extension, from CSV
func LoadFile(path string) ([]model.RawCourse, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return model.InputFromJson(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCourses(file)
}

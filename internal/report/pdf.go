package report

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/samber/lo"
)

var pdfColumns = []struct {
	header string
	width  float64
}{
	{"Id", 12},
	{"Name", 50},
	{"Teacher", 35},
	{"Classes", 45},
	{"Room", 35},
	{"Hours", 15},
	{"Slots", 15},
	{"Assigned slots", 70},
}

const (
	builtinFamily = "Arial"
	utf8Family    = "Report"

	// Highest code point of each font kind: Latin-1 for the cp1252 built-in fonts, the basic multilingual plane for TrueType fonts
	builtinLimit = 0xff
	utf8Limit    = 0xffff
)

// RenderPDF lays the assignment out as a landscape table. Long slot lists wrap inside their cell.
// fontFile is a TrueType font used for every cell; when empty the built-in Arial is used and any text it cannot encode is an error
func RenderPDF(records []model.Record, title, fontFile string) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Code,
			record.Name,
			record.Teacher,
			record.JoinedClasses(),
			record.Room,
			strconv.Itoa(record.TotalHours),
			strconv.Itoa(record.RequiredSlots),
			strings.Join(record.Slots, " "),
		})
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	family := builtinFamily
	limit := rune(builtinLimit)
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if fontFile != "" {
		font, err := os.ReadFile(fontFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read pdf font: %w", err)
		}
		pdf.AddUTF8FontFromBytes(utf8Family, "", font)
		pdf.AddUTF8FontFromBytes(utf8Family, "B", font)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("cannot load pdf font %v: %w", fontFile, err)
		}
		family, limit = utf8Family, utf8Limit
		translate = func(value string) string { return value }
	}

	texts := append([]string{title}, lo.Flatten(rows)...)
	for _, text := range texts {
		if r, ok := unsupportedRune(text, limit); ok {
			if fontFile == "" {
				return nil, fmt.Errorf("%q cannot be rendered with the built-in pdf font (%q is outside Latin-1), set report.font to a TrueType font covering it", text, r)
			}
			return nil, fmt.Errorf("%q cannot be rendered with pdf font %v (%q is outside the basic multilingual plane)", text, fontFile, r)
		}
	}

	// Number of lines a value wraps into inside a column
	lines := func(value string, width float64) int {
		if fontFile != "" {
			return len(pdf.SplitText(value, width-2))
		}
		return len(pdf.SplitLines([]byte(translate(value)), width-2))
	}

	pdf.AddPage()
	if title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, translate(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont(family, "B", 9)
	for _, column := range pdfColumns {
		pdf.CellFormat(column.width, 8, column.header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 8)
	const lineHeight = 5.0
	for _, values := range rows {
		// Row height follows the tallest cell
		height := 1
		for i, value := range values {
			height = max(height, lines(value, pdfColumns[i].width))
		}
		rowHeight := float64(height) * lineHeight

		x, y := pdf.GetXY()
		for i, value := range values {
			pdf.Rect(x, y, pdfColumns[i].width, rowHeight, "D")
			pdf.MultiCell(pdfColumns[i].width, lineHeight, translate(value), "", "L", false)
			x += pdfColumns[i].width
			pdf.SetXY(x, y)
		}
		pdf.SetXY(10, y+rowHeight)
	}

	buffer := &bytes.Buffer{}
	if err := pdf.Output(buffer); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buffer.Bytes(), nil
}

func unsupportedRune(text string, limit rune) (rune, bool) {
	for _, r := range text {
		if r > limit {
			return r, true
		}
	}
	return 0, false
}

package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// AnalyzeXLSX profiles one sheet of an XLSX workbook. sheetName wins over
// sheetIndex (1-based); with neither set the first sheet is used.
func AnalyzeXLSX(path string, opt Options, sheetName string, sheetIndex int) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets: %s", path)
	}
	sheet := sheets[0]
	switch {
	case strings.TrimSpace(sheetName) != "":
		idx, err := f.GetSheetIndex(sheetName)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("sheet %q not found (have %s)", sheetName, strings.Join(sheets, ", "))
		}
		sheet = sheetName
	case sheetIndex > 0:
		if sheetIndex > len(sheets) {
			return nil, fmt.Errorf("sheet index %d out of range (1..%d)", sheetIndex, len(sheets))
		}
		sheet = sheets[sheetIndex-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	name := fmt.Sprintf("%s[%s]", filepath.Base(path), sheet)
	if len(rows) == 0 {
		return &Report{Name: name}, nil
	}
	return analyzeRows(name, rows[0], rows[1:], opt), nil
}

package farmdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads a farm export from an Excel workbook. The first row of the
// sheet is the header. An empty sheet name selects the first sheet.
func LoadXLSX(path, sheet string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &Dataset{Source: path}, nil
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as serial numbers regardless of the
	// workbook's display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return &Dataset{Source: path}, nil
	}

	return buildDataset(path, rows[0], rows[1:], parseExcelDate), nil
}

// parseExcelDate accepts text dates and Excel serial date numbers.
func parseExcelDate(s string) (time.Time, bool) {
	if t, ok := ParseDate(s); ok {
		return t, true
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

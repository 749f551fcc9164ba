package farmdata

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned by Load for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported data source format")

// RawRecord is one batch row of a farm export after column normalisation.
type RawRecord struct {
	BatchID     string
	CropType    string
	HarvestDate time.Time
	// ModalPrice is NaN when the cell is empty or not a number.
	ModalPrice float64
	// Attributes holds every other column, keyed by canonical name.
	Attributes map[string]string
}

// Dataset is the content of one data source.
type Dataset struct {
	Source  string
	Columns []string // canonical names, in file order
	Records []RawRecord
	// Dropped counts rows discarded because HarvestDate was missing or unparseable.
	Dropped int
}

// HasColumn reports whether the source carried the canonical column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"01-02-06",
}

// ParseDate parses a harvest date in any of the layouts farm exports use.
// The result is normalised to UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parsePrice reads a numeric cell. Thousands separators are ignored and
// "inf", "-Inf" and similar spellings are accepted.
func parsePrice(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

type dateParser func(string) (time.Time, bool)

// buildDataset turns a header row plus data rows into a Dataset. Rows may be
// shorter than the header; missing cells read as empty.
func buildDataset(source string, header []string, rows [][]string, parseDate dateParser) *Dataset {
	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		columns[i] = CanonicalName(strings.TrimSpace(h))
	}

	ds := &Dataset{Source: source, Columns: columns}

	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		rec := RawRecord{ModalPrice: math.NaN(), Attributes: map[string]string{}}
		dated := false

		for i, col := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			switch col {
			case FieldBatchID:
				rec.BatchID = strings.TrimSpace(cell)
			case FieldCropType:
				rec.CropType = strings.TrimSpace(cell)
			case FieldHarvestDate:
				rec.HarvestDate, dated = parseDate(cell)
			case FieldModalPrice:
				rec.ModalPrice = parsePrice(cell)
			default:
				rec.Attributes[col] = cell
			}
		}

		if !dated {
			ds.Dropped++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

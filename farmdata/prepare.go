package farmdata

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/agrichain/pricecast/timeseries"
)

// SeriesName is the name PrepareSeries gives the price series of a crop.
func SeriesName(cropType string) string {
	return capitalize(strings.TrimSpace(cropType)) + "_" + FieldModalPrice
}

// PrepareSeries builds the monthly modal price series of one crop.
//
// Matching rows are sorted by harvest date, infinite prices are treated as
// missing, and gaps are filled forward then backward. Prices are then averaged
// per calendar month over every month between the first and last harvest,
// months with no batches carry the previous month forward, and any NaN left
// at either end is dropped.
//
// The result is empty, never nil, when no row matches the crop or the source
// has no price column.
func PrepareSeries(ds *Dataset, cropType string) *timeseries.Series {
	name := SeriesName(cropType)
	if ds == nil || !ds.HasColumn(FieldModalPrice) {
		return timeseries.Empty(name)
	}

	want := strings.TrimSpace(cropType)
	var matched []RawRecord
	for _, rec := range ds.Records {
		if strings.EqualFold(strings.TrimSpace(rec.CropType), want) {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 0 {
		return timeseries.Empty(name)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].HarvestDate.Before(matched[j].HarvestDate)
	})

	timestamps := make([]time.Time, len(matched))
	values := make([]float64, len(matched))
	for i, rec := range matched {
		timestamps[i] = rec.HarvestDate
		values[i] = rec.ModalPrice
	}

	raw := &timeseries.Series{Timestamps: timestamps, Values: values, Name: name}

	monthly := raw.
		ReplaceInf().
		ForwardFill().
		BackwardFill().
		ResampleMonthlyMean().
		ForwardFill().
		TrimNaN()
	monthly.Name = name
	return monthly
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

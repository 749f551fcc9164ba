package timeseries

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes the series as a two-column "ds,y" CSV document. Timestamps
// are written as calendar dates.
func WriteCSV(w io.Writer, series *Series) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"ds", "y"}); err != nil {
		return err
	}

	for i, v := range series.Values {
		ds := strconv.Itoa(i + 1)
		if len(series.Timestamps) == len(series.Values) {
			ds = series.Timestamps[i].Format("2006-01-02")
		}
		if err := writer.Write([]string{ds, strconv.FormatFloat(v, 'f', -1, 64)}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

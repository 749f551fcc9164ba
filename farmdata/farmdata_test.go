package farmdata

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const farmCSV = `BatchID,croptype,Harvest Date,modalprice,FarmLocation,Rainfallmm
B-07,Tomato,2024-03-15,90,North,12
B-01,tomato,2024-01-05,100,North,10
B-02,Corn,2024-01-07,40,South,8
B-03, TOMATO ,2024-01-20,120,North,11
B-04,Tomato,2024-03-10,inf,North,9
B-05,Tomato,not-a-date,75,North,9
B-06,Corn,2024-02-11,44,South,7
B-08,tomato,2024-04-02,,North,5
`

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"modalprice", FieldModalPrice},
		{"Modal Price", FieldModalPrice},
		{"MODAL_PRICE", FieldModalPrice},
		{"croptype", FieldCropType},
		{"harvest_date", FieldHarvestDate},
		{"batchid", FieldBatchID},
		{"Fertilizerkgperha", "Fertilizer_kg_per_ha"},
		{"SoilMoisture%", "SoilMoisture_%"},
		{"SatisfactionScore010", "SatisfactionScore_0_10"},
		{"FarmerNotes", "FarmerNotes"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(farmCSV), "farm_a.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"BatchID", "CropType", "HarvestDate", "ModalPrice", "FarmLocation", "Rainfall_mm"}, ds.Columns)
	assert.True(t, ds.HasColumn(FieldModalPrice))
	assert.Len(t, ds.Records, 7)
	assert.Equal(t, 1, ds.Dropped)

	first := ds.Records[0]
	assert.Equal(t, "B-07", first.BatchID)
	assert.Equal(t, "Tomato", first.CropType)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), first.HarvestDate)
	assert.Equal(t, 90.0, first.ModalPrice)
	assert.Equal(t, "North", first.Attributes["FarmLocation"])
	assert.Equal(t, "12", first.Attributes["Rainfall_mm"])

	// B-05 is dropped, so the remaining rows keep their file order.
	assert.Equal(t, "B-04", ds.Records[4].BatchID)
	assert.True(t, math.IsInf(ds.Records[4].ModalPrice, 1))
	assert.Equal(t, "B-08", ds.Records[6].BatchID)
	assert.True(t, math.IsNaN(ds.Records[6].ModalPrice))
}

func TestReadCSVEmpty(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(""), "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, ds.Records)
	assert.False(t, ds.HasColumn(FieldModalPrice))
}

func TestPrepareSeries(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(farmCSV), "farm_a.csv")
	require.NoError(t, err)

	series := PrepareSeries(ds, "tomato")

	assert.Equal(t, "Tomato_ModalPrice", series.Name)
	// January averages 100 and 120, February is a gap carried forward,
	// March averages the forward-filled Inf (120) with 90, April carries 90.
	assert.Equal(t, []float64{110, 110, 105, 90}, series.Values)
	assert.Equal(t, []time.Time{
		month(2024, time.January),
		month(2024, time.February),
		month(2024, time.March),
		month(2024, time.April),
	}, series.Timestamps)
}

func TestPrepareSeriesMonthCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("BatchID,CropType,HarvestDate,ModalPrice\n")
	start := time.Date(2021, time.November, 14, 0, 0, 0, 0, time.UTC)
	// One batch every 40 days leaves some months without a harvest.
	for i := 0; i < 20; i++ {
		d := start.AddDate(0, 0, 40*i)
		b.WriteString("B," + "Wheat," + d.Format("2006-01-02") + ",")
		b.WriteString([]string{"210", "215.5", "198", "220"}[i%4])
		b.WriteString("\n")
	}
	last := start.AddDate(0, 0, 40*19)

	ds, err := ReadCSV(strings.NewReader(b.String()), "wheat.csv")
	require.NoError(t, err)

	series := PrepareSeries(ds, "wheat")

	wantMonths := (last.Year()-start.Year())*12 + int(last.Month()-start.Month()) + 1
	require.Equal(t, wantMonths, series.Len())
	assert.False(t, series.HasNonFinite())
	for i := 1; i < series.Len(); i++ {
		assert.True(t, series.Timestamps[i].After(series.Timestamps[i-1]))
		assert.Equal(t, 1, series.Timestamps[i].Day())
	}
}

func TestPrepareSeriesEmptyResults(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(farmCSV), "farm_a.csv")
	require.NoError(t, err)

	t.Run("absent crop", func(t *testing.T) {
		series := PrepareSeries(ds, "kale")
		require.NotNil(t, series)
		assert.True(t, series.IsEmpty())
		assert.Equal(t, "Kale_ModalPrice", series.Name)
	})

	t.Run("no price column", func(t *testing.T) {
		noPrice, err := ReadCSV(strings.NewReader("BatchID,CropType,HarvestDate\nB1,tomato,2024-01-01\n"), "x.csv")
		require.NoError(t, err)
		assert.True(t, PrepareSeries(noPrice, "tomato").IsEmpty())
	})

	t.Run("all prices missing", func(t *testing.T) {
		allNaN, err := ReadCSV(strings.NewReader("CropType,HarvestDate,ModalPrice\ntomato,2024-01-01,\ntomato,2024-02-01,n/a\n"), "x.csv")
		require.NoError(t, err)
		assert.True(t, PrepareSeries(allNaN, "tomato").IsEmpty())
	})

	t.Run("nil dataset", func(t *testing.T) {
		assert.True(t, PrepareSeries(nil, "tomato").IsEmpty())
	})
}

func TestPrepareSeriesIsDeterministic(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(farmCSV), "farm_a.csv")
	require.NoError(t, err)

	a := PrepareSeries(ds, "tomato")
	b := PrepareSeries(ds, "Tomato")
	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, a.Timestamps, b.Timestamps)
}

func TestSeriesName(t *testing.T) {
	assert.Equal(t, "Sweet corn_ModalPrice", SeriesName(" sweet CORN"))
	assert.Equal(t, "_ModalPrice", SeriesName(""))
}

func TestLoadXLSX(t *testing.T) {
	tmpDir := t.TempDir()

	f := excelize.NewFile()
	sheet := "Batches"
	f.SetSheetName(f.GetSheetName(0), sheet)

	rows := [][]interface{}{
		{"batch_id", "Crop Type", "HarvestDate", "Modal Price"},
		{"B-1", "Lettuce", time.Date(2023, time.May, 3, 0, 0, 0, 0, time.UTC), 30.5},
		{"B-2", "Lettuce", "2023-06-20", 32},
		{"B-3", "Lettuce", time.Date(2023, time.August, 9, 0, 0, 0, 0, time.UTC), 28},
	}
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	path := filepath.Join(tmpDir, "farm_b.xlsx")
	require.NoError(t, f.SaveAs(path))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)
	assert.Equal(t, time.Date(2023, time.May, 3, 0, 0, 0, 0, time.UTC), ds.Records[0].HarvestDate)
	assert.Equal(t, 30.5, ds.Records[0].ModalPrice)

	series := PrepareSeries(ds, "lettuce")
	assert.Equal(t, []float64{30.5, 32, 32, 28}, series.Values)
	assert.Equal(t, month(2023, time.May), series.First())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	_, err = Load("farm.parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

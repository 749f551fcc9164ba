package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/pricecast/arima"
	"github.com/agrichain/pricecast/pricemodel"
	"github.com/agrichain/pricecast/timeseries"
)

func modelFor(t *testing.T, values []float64, p, d, q int, stage pricemodel.Stage) *pricemodel.TrainedModel {
	t.Helper()

	series := timeseries.New(values)
	est := arima.New(p, d, q)
	require.NoError(t, est.Fit(series))

	m, err := pricemodel.FromARIMA(pricemodel.Info{
		Crop:       "tomato_price",
		Key:        "tomato_price",
		Stage:      stage,
		FirstMonth: series.First(),
		LastMonth:  series.Last(),
	}, est)
	require.NoError(t, err)
	return m
}

func alternating(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100
		if i%2 == 1 {
			values[i] = 120
		}
	}
	return values
}

func TestGenerate(t *testing.T) {
	m := modelFor(t, alternating(24), 1, 1, 1, pricemodel.StageNonSeasonal)

	fc, err := Generate(m, 6, DefaultConfidence)
	require.NoError(t, err)

	assert.Equal(t, "tomato_price", fc.Crop)
	assert.Equal(t, pricemodel.StageNonSeasonal, fc.Stage)
	assert.Equal(t, pricemodel.Order{P: 1, D: 1, Q: 1, M: 1}, fc.Order)
	assert.Equal(t, DefaultConfidence, fc.Confidence)
	require.Len(t, fc.Points, 6)

	// 24 months from January 2000 end in December 2001.
	want := time.Date(2002, time.January, 1, 0, 0, 0, 0, time.UTC)
	prevWidth := 0.0
	for i, p := range fc.Points {
		assert.True(t, p.Date.Equal(want), "point %d dated %v, want %v", i, p.Date, want)
		want = want.AddDate(0, 1, 0)

		assert.LessOrEqual(t, p.Lower, p.Value)
		assert.LessOrEqual(t, p.Value, p.Upper)
		assert.InDelta(t, p.Value-p.Lower, p.Upper-p.Value, 1e-9)

		width := p.Upper - p.Lower
		assert.GreaterOrEqual(t, width, prevWidth)
		prevWidth = width
	}
}

func TestGenerateConfidenceWidensInterval(t *testing.T) {
	m := modelFor(t, alternating(24), 0, 1, 0, pricemodel.StageFixed010)

	narrow, err := Generate(m, 3, 0.8)
	require.NoError(t, err)
	wide, err := Generate(m, 3, 0.99)
	require.NoError(t, err)

	for i := range narrow.Points {
		assert.InDelta(t, narrow.Points[i].Value, wide.Points[i].Value, 1e-12)
		assert.Greater(t, wide.Points[i].Upper-wide.Points[i].Lower, narrow.Points[i].Upper-narrow.Points[i].Lower)
	}
}

func TestGenerateConstantModel(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = 50
	}
	m := modelFor(t, values, 0, 0, 0, pricemodel.StageConstant)

	fc, err := Generate(m, 4, DefaultConfidence)
	require.NoError(t, err)
	for _, p := range fc.Points {
		assert.InDelta(t, 50, p.Value, 1e-9)
		assert.InDelta(t, 50, p.Lower, 1e-9)
		assert.InDelta(t, 50, p.Upper, 1e-9)
	}
}

func TestGenerateInvalidArguments(t *testing.T) {
	m := modelFor(t, alternating(24), 0, 1, 0, pricemodel.StageFixed010)

	for _, n := range []int{0, -3} {
		_, err := Generate(m, n, DefaultConfidence)
		assert.ErrorIs(t, err, ErrInvalidHorizon)
	}
	for _, c := range []float64{0, 1, -0.1, 1.2} {
		_, err := Generate(m, 6, c)
		assert.ErrorIs(t, err, ErrInvalidConfidence)
	}

	_, err := Generate(nil, 6, DefaultConfidence)
	assert.Error(t, err)
}

package sarima

import (
	"errors"
	"math"
	"testing"

	"github.com/agrichain/pricecast/timeseries"
)

// seasonalPrices builds a monthly price series with a yearly cycle and a
// mild upward drift.
func seasonalPrices(n int) *timeseries.Series {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		trend := float64(i) * 0.3
		seasonal := 15 * math.Cos(2*math.Pi*float64(i)/12)
		values[i] = 50 + trend + seasonal + float64(i%7-3)/3
	}
	return timeseries.New(values)
}

func TestNewSARIMA(t *testing.T) {
	model := New(1, 1, 1, 1, 1, 1, 12)

	want := Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12}
	if model.Order != want {
		t.Errorf("Expected %v, got %v", want, model.Order)
	}
	if len(model.SARCoeffs) != 1 || len(model.SMACoeffs) != 1 {
		t.Errorf("Expected one seasonal coefficient each, got %d SAR and %d SMA",
			len(model.SARCoeffs), len(model.SMACoeffs))
	}
}

func TestOrderString(t *testing.T) {
	o := Order{P: 2, D: 1, Q: 0, SP: 1, SD: 1, SQ: 2, M: 12}
	if got := o.String(); got != "SARIMA(2,1,0)(1,1,2)[12]" {
		t.Errorf("Unexpected order string %q", got)
	}
}

func TestMinObservations(t *testing.T) {
	tests := []struct {
		order    Order
		expected int
	}{
		{Order{D: 1, SD: 1, M: 12}, 33},
		{Order{P: 2, D: 1, Q: 2, SP: 2, SD: 1, SQ: 2, M: 12}, 85},
		{Order{P: 1, M: 4}, 21},
	}

	for _, tt := range tests {
		if got := tt.order.MinObservations(); got != tt.expected {
			t.Errorf("%s: expected %d, got %d", tt.order, tt.expected, got)
		}
	}
}

func TestSARIMAFitMonthlyData(t *testing.T) {
	n := 120
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		trend := float64(i) * 0.5
		seasonal := 20 * math.Sin(2*math.Pi*float64(i)/12)
		noise := float64(i%5-2) / 2
		values[i] = 100 + trend + seasonal + noise
	}

	model := New(1, 0, 0, 1, 0, 0, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit SARIMA model: %v", err)
	}

	if math.IsNaN(model.BIC) || math.IsInf(model.BIC, 0) {
		t.Errorf("Expected finite BIC, got %f", model.BIC)
	}

	t.Logf("SARIMA(1,0,0)(1,0,0)[12] - AIC: %f, BIC: %f", model.AIC, model.BIC)
	t.Logf("AR coeffs: %v", model.ARCoeffs)
	t.Logf("SAR coeffs: %v", model.SARCoeffs)
}

func TestSARIMAWithDifferencing(t *testing.T) {
	series := seasonalPrices(144)
	model := New(1, 1, 0, 1, 1, 0, 12)

	if err := model.Fit(series); err != nil {
		t.Fatalf("Failed to fit SARIMA(1,1,0)(1,1,0)[12]: %v", err)
	}

	// One regular and one seasonal difference
	if got := len(model.Residuals()); got != 144-1-12 {
		t.Errorf("Expected %d residuals, got %d", 144-13, got)
	}

	t.Logf("SARIMA(1,1,0)(1,1,0)[12] - AIC: %f, BIC: %f", model.AIC, model.BIC)
}

func TestSARIMAInsufficientData(t *testing.T) {
	// Two years of monthly prices is not enough for a seasonal difference
	// plus the minimum working sample.
	model := New(0, 1, 0, 0, 1, 0, 12)
	err := model.Fit(seasonalPrices(24))
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestSARIMARejectsNonFinite(t *testing.T) {
	series := seasonalPrices(60)
	series.Values[10] = math.NaN()

	if err := New(1, 0, 0, 1, 0, 0, 12).Fit(series); err == nil {
		t.Error("Expected error for NaN input")
	}
}

func TestSARIMAPredict(t *testing.T) {
	n := 96
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal := 10 * math.Sin(2*math.Pi*float64(i)/12)
		values[i] = 100 + seasonal + float64(i%5-2)/2
	}

	model := New(0, 0, 0, 1, 0, 0, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	forecasts, err := model.Predict(12)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	if len(forecasts) != 12 {
		t.Errorf("Expected 12 forecasts, got %d", len(forecasts))
	}

	for i, f := range forecasts {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Errorf("Forecast %d is NaN or Inf", i)
		}
		if f < 50 || f > 150 {
			t.Logf("Forecast %d may be unusual: %f", i, f)
		}
	}
}

func TestSARIMAPredictWithInterval(t *testing.T) {
	model := New(1, 1, 0, 0, 1, 0, 12)
	if err := model.Fit(seasonalPrices(72)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	forecasts, lower, upper, err := model.PredictWithInterval(6, 0.95)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	prevWidth := 0.0
	for h := range forecasts {
		if !(lower[h] <= forecasts[h] && forecasts[h] <= upper[h]) {
			t.Errorf("Step %d: %f not within [%f, %f]", h, forecasts[h], lower[h], upper[h])
		}
		width := upper[h] - lower[h]
		if width < prevWidth {
			t.Errorf("Step %d: interval narrowed from %f to %f", h, prevWidth, width)
		}
		prevWidth = width
	}
}

func TestSARIMAPredictErrors(t *testing.T) {
	model := New(1, 0, 0, 1, 0, 0, 12)
	if _, err := model.Predict(3); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}

	if err := model.Fit(seasonalPrices(60)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	if _, err := model.Predict(0); err == nil {
		t.Error("Expected error for zero steps")
	}
	for _, c := range []float64{0, 1, -0.5, 1.5} {
		if _, _, _, err := model.PredictWithInterval(3, c); err == nil {
			t.Errorf("Expected error for confidence %v", c)
		}
	}
}

func TestSARIMASummary(t *testing.T) {
	n := 60
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + 5*math.Sin(2*math.Pi*float64(i)/12)
	}

	model := New(1, 0, 1, 1, 0, 1, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	summary := model.Summary()
	if summary == nil {
		t.Fatal("Summary should not be nil")
	}
	if summary.NObs != n {
		t.Errorf("Expected NObs=%d, got %d", n, summary.NObs)
	}
	if summary.LjungBox == nil {
		t.Error("Expected Ljung-Box result on residuals")
	}

	t.Logf("Summary: %s AIC: %f, BIC: %f", summary.Order, summary.AIC, summary.BIC)
	t.Logf("  AR: %v, MA: %v", summary.ARCoeffs, summary.MACoeffs)
	t.Logf("  SAR: %v, SMA: %v", summary.SARCoeffs, summary.SMACoeffs)
}

func TestSARIMAResiduals(t *testing.T) {
	n := 60
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + 5*math.Sin(2*math.Pi*float64(i)/12)
	}

	model := New(1, 0, 0, 1, 0, 0, 12)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	residuals := model.Residuals()
	if len(residuals) != n {
		t.Fatalf("Expected %d residuals, got %d", n, len(residuals))
	}

	for i := range values {
		pred := model.predictAt(values, residuals, i)
		if diff := math.Abs(pred + residuals[i] - values[i]); diff > 1e-9 {
			t.Errorf("Index %d: prediction + residual differs from observation by %g", i, diff)
		}
	}
}

func TestSARIMAMultipleOrders(t *testing.T) {
	series := seasonalPrices(96)

	tests := []struct {
		name          string
		p, d, q       int
		sp, sd, sq, m int
	}{
		{"SARIMA(1,0,0)(1,0,0)12", 1, 0, 0, 1, 0, 0, 12},
		{"SARIMA(0,0,1)(0,0,1)12", 0, 0, 1, 0, 0, 1, 12},
		{"SARIMA(1,0,1)(1,0,1)12", 1, 0, 1, 1, 0, 1, 12},
		{"SARIMA(1,1,0)(1,1,0)12", 1, 1, 0, 1, 1, 0, 12},
		{"SARIMA(2,1,1)(1,0,1)12", 2, 1, 1, 1, 0, 1, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(tt.p, tt.d, tt.q, tt.sp, tt.sd, tt.sq, tt.m)
			if err := model.Fit(series); err != nil {
				t.Fatalf("Model %s failed: %v", tt.name, err)
			}

			forecasts, err := model.Predict(6)
			if err != nil {
				t.Fatalf("Prediction failed: %v", err)
			}

			t.Logf("%s - BIC: %.2f, Forecasts: %v", tt.name, model.BIC, forecasts)
		})
	}
}

func TestSARIMAQuarterlyData(t *testing.T) {
	n := 80
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		var seasonal float64
		switch i % 4 {
		case 0:
			seasonal = -10
		case 1:
			seasonal = 5
		case 2:
			seasonal = 15
		case 3:
			seasonal = -5
		}
		values[i] = 100 + float64(i)*0.5 + seasonal + float64(i%3-1)
	}

	model := New(1, 0, 0, 1, 0, 0, 4)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit quarterly SARIMA: %v", err)
	}

	forecasts, _ := model.Predict(4)
	t.Logf("Quarterly SARIMA - AIC: %f, Forecasts: %v", model.AIC, forecasts)
}

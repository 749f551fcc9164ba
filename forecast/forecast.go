// Package forecast turns a trained price model into dated monthly forecasts.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/agrichain/pricecast/pricemodel"
	"github.com/agrichain/pricecast/timeseries"
)

// DefaultConfidence is the interval level used when callers have no preference.
const DefaultConfidence = 0.95

var (
	// ErrInvalidHorizon is returned for a forecast horizon below one month.
	ErrInvalidHorizon = errors.New("forecast horizon must be at least 1")
	// ErrInvalidConfidence is returned for a confidence level outside (0, 1).
	ErrInvalidConfidence = errors.New("confidence must be in (0, 1)")
)

// Point is the forecast for one month.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Forecast is a sequence of monthly points following the model's last
// observed month.
type Forecast struct {
	Crop       string           `json:"crop"`
	Key        string           `json:"key"`
	Stage      pricemodel.Stage `json:"stage"`
	Order      pricemodel.Order `json:"order"`
	Confidence float64          `json:"confidence"`
	Points     []Point          `json:"points"`
}

// Generate forecasts nPeriods months ahead with intervals at the given
// confidence level. Intervals are symmetric around the point forecast and
// widen with the horizon for differenced models.
func Generate(m *pricemodel.TrainedModel, nPeriods int, confidence float64) (*Forecast, error) {
	if m == nil {
		return nil, errors.New("forecast: nil model")
	}
	if nPeriods < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, nPeriods)
	}
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidConfidence, confidence)
	}

	values, lower, upper, err := m.Predict(nPeriods, confidence)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", m.Crop(), err)
	}

	last := m.LastMonth()
	points := make([]Point, nPeriods)
	for i := range points {
		points[i] = Point{
			Date:  timeseries.AddMonths(last, i+1),
			Value: values[i],
			Lower: lower[i],
			Upper: upper[i],
		}
	}

	return &Forecast{
		Crop:       m.Crop(),
		Key:        m.Key(),
		Stage:      m.Stage(),
		Order:      m.Order(),
		Confidence: confidence,
		Points:     points,
	}, nil
}

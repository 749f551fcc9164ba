package arima

import (
	"errors"
	"fmt"
)

// State is the serialisable form of a fitted model: everything Predict
// needs, nothing derived. Information criteria are recomputed on restore.
type State struct {
	Order     Order     `json:"order"`
	ARCoeffs  []float64 `json:"ar"`
	MACoeffs  []float64 `json:"ma"`
	Intercept float64   `json:"intercept"`
	Variance  float64   `json:"variance"`
	Data      []float64 `json:"data"`
	Diff      []float64 `json:"diff"`
	Residuals []float64 `json:"residuals"`
}

// Snapshot captures the fitted state of the model.
func (m *Model) Snapshot() (State, error) {
	if !m.fitted {
		return State{}, ErrNotFitted
	}
	return State{
		Order:     m.Order,
		ARCoeffs:  append([]float64(nil), m.ARCoeffs...),
		MACoeffs:  append([]float64(nil), m.MACoeffs...),
		Intercept: m.Intercept,
		Variance:  m.Variance,
		Data:      append([]float64(nil), m.data...),
		Diff:      append([]float64(nil), m.diffData...),
		Residuals: append([]float64(nil), m.residuals...),
	}, nil
}

// Restore rebuilds a fitted model from a snapshot after checking that the
// snapshot is internally consistent.
func Restore(s State) (*Model, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	m := New(s.Order.P, s.Order.D, s.Order.Q)
	copy(m.ARCoeffs, s.ARCoeffs)
	copy(m.MACoeffs, s.MACoeffs)
	m.Intercept = s.Intercept
	m.Variance = s.Variance
	m.data = append([]float64(nil), s.Data...)
	m.diffData = append([]float64(nil), s.Diff...)
	m.residuals = append([]float64(nil), s.Residuals...)

	if !m.finite() {
		return nil, errors.New("arima state: non-finite parameters")
	}

	m.calculateIC()
	m.fitted = true
	return m, nil
}

func (s State) validate() error {
	o := s.Order
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fmt.Errorf("arima state: invalid order %s", o)
	}
	if len(s.ARCoeffs) != o.P || len(s.MACoeffs) != o.Q {
		return fmt.Errorf("arima state: %d AR / %d MA coefficients for %s",
			len(s.ARCoeffs), len(s.MACoeffs), o)
	}
	if len(s.Data) == 0 {
		return errors.New("arima state: no observations")
	}
	if len(s.Diff) != len(s.Data)-o.D {
		return fmt.Errorf("arima state: %d differenced values for %d observations with d=%d",
			len(s.Diff), len(s.Data), o.D)
	}
	if len(s.Residuals) != len(s.Diff) {
		return fmt.Errorf("arima state: %d residuals for %d differenced values",
			len(s.Residuals), len(s.Diff))
	}
	if s.Variance < 0 {
		return errors.New("arima state: negative variance")
	}
	return nil
}

package sarima

import (
	"errors"
	"fmt"
)

// State is the serialisable form of a fitted seasonal model.
type State struct {
	Order     Order     `json:"order"`
	ARCoeffs  []float64 `json:"ar"`
	MACoeffs  []float64 `json:"ma"`
	SARCoeffs []float64 `json:"sar"`
	SMACoeffs []float64 `json:"sma"`
	Intercept float64   `json:"intercept"`
	Variance  float64   `json:"variance"`
	Data      []float64 `json:"data"`
	Diff      []float64 `json:"diff"`
	Residuals []float64 `json:"residuals"`
	StartIdx  int       `json:"start_idx"`
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
		SARCoeffs: append([]float64(nil), m.SARCoeffs...),
		SMACoeffs: append([]float64(nil), m.SMACoeffs...),
		Intercept: m.Intercept,
		Variance:  m.Variance,
		Data:      append([]float64(nil), m.data...),
		Diff:      append([]float64(nil), m.diffData...),
		Residuals: append([]float64(nil), m.residuals...),
		StartIdx:  m.startIdx,
	}, nil
}

// Restore rebuilds a fitted model from a snapshot.
func Restore(s State) (*Model, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	o := s.Order
	m := New(o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
	copy(m.ARCoeffs, s.ARCoeffs)
	copy(m.MACoeffs, s.MACoeffs)
	copy(m.SARCoeffs, s.SARCoeffs)
	copy(m.SMACoeffs, s.SMACoeffs)
	m.Intercept = s.Intercept
	m.Variance = s.Variance
	m.startIdx = s.StartIdx
	m.data = append([]float64(nil), s.Data...)
	m.diffData = append([]float64(nil), s.Diff...)
	m.residuals = append([]float64(nil), s.Residuals...)

	if !m.finite() {
		return nil, errors.New("sarima state: non-finite parameters")
	}

	m.calculateIC()
	m.fitted = true
	return m, nil
}

func (s State) validate() error {
	o := s.Order
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.M < 1 {
		return fmt.Errorf("sarima state: invalid order %s", o)
	}
	if len(s.ARCoeffs) != o.P || len(s.MACoeffs) != o.Q ||
		len(s.SARCoeffs) != o.SP || len(s.SMACoeffs) != o.SQ {
		return fmt.Errorf("sarima state: coefficient counts do not match %s", o)
	}
	if len(s.Data) == 0 {
		return errors.New("sarima state: no observations")
	}
	if want := len(s.Data) - o.D - o.SD*o.M; len(s.Diff) != want {
		return fmt.Errorf("sarima state: %d differenced values, want %d", len(s.Diff), want)
	}
	if len(s.Residuals) != len(s.Diff) {
		return fmt.Errorf("sarima state: %d residuals for %d differenced values",
			len(s.Residuals), len(s.Diff))
	}
	if s.StartIdx < 0 || s.StartIdx > len(s.Diff) {
		return fmt.Errorf("sarima state: start index %d out of range", s.StartIdx)
	}
	if s.Variance < 0 {
		return errors.New("sarima state: negative variance")
	}
	return nil
}

// Package pricemodel defines the trained crop price model and its persisted form.
package pricemodel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/agrichain/pricecast/arima"
	"github.com/agrichain/pricecast/sarima"
	"github.com/agrichain/pricecast/stats"
)

// Order is a (p,d,q)(P,D,Q)[m] order. M == 1 means the model is not seasonal.
type Order struct {
	P  int `json:"p"`
	D  int `json:"d"`
	Q  int `json:"q"`
	SP int `json:"sp"`
	SD int `json:"sd"`
	SQ int `json:"sq"`
	M  int `json:"m"`
}

// Seasonal reports whether the order has a seasonal part.
func (o Order) Seasonal() bool {
	return o.M > 1
}

func (o Order) String() string {
	if o.Seasonal() {
		return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
	}
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Stage identifies the step of the selection cascade that produced a model.
type Stage int

const (
	StageEmptyCheck Stage = iota
	StageConstant
	StageSeasonal
	StageNonSeasonal
	StageFixed111
	StageFixed010
)

var stageNames = [...]string{
	StageEmptyCheck:  "empty_check",
	StageConstant:    "constant",
	StageSeasonal:    "seasonal",
	StageNonSeasonal: "non_seasonal",
	StageFixed111:    "fixed_111",
	StageFixed010:    "fixed_010",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage is the inverse of Stage.String.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stageNames) {
		return nil, fmt.Errorf("unknown stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	stage, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

// estimator is the part of a fitted arima or sarima model used for forecasting.
type estimator interface {
	PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error)
	NObs() int
}

// Info describes where a model came from.
type Info struct {
	Crop       string
	Key        string
	Stage      Stage
	FirstMonth time.Time
	LastMonth  time.Time
	TrainedAt  time.Time
	RunID      uuid.UUID
}

// TrainedModel is a fitted price model for one crop. It is immutable once
// built.
type TrainedModel struct {
	info  Info
	order Order
	bic   float64
	est   estimator
}

// FromARIMA wraps a fitted non-seasonal model.
func FromARIMA(info Info, m *arima.Model) (*TrainedModel, error) {
	if m == nil || m.NObs() == 0 {
		return nil, errors.New("pricemodel: arima model is not fitted")
	}
	return &TrainedModel{
		info:  info,
		order: Order{P: m.Order.P, D: m.Order.D, Q: m.Order.Q, M: 1},
		bic:   m.BIC,
		est:   m,
	}, nil
}

// FromSARIMA wraps a fitted seasonal model.
func FromSARIMA(info Info, m *sarima.Model) (*TrainedModel, error) {
	if m == nil || m.NObs() == 0 {
		return nil, errors.New("pricemodel: sarima model is not fitted")
	}
	o := m.Order
	return &TrainedModel{
		info:  info,
		order: Order{P: o.P, D: o.D, Q: o.Q, SP: o.SP, SD: o.SD, SQ: o.SQ, M: o.M},
		bic:   m.BIC,
		est:   m,
	}, nil
}

// Accessors for the model metadata.
func (m *TrainedModel) Crop() string          { return m.info.Crop }
func (m *TrainedModel) Key() string           { return m.info.Key }
func (m *TrainedModel) Stage() Stage          { return m.info.Stage }
func (m *TrainedModel) Order() Order          { return m.order }
func (m *TrainedModel) FirstMonth() time.Time { return m.info.FirstMonth }
func (m *TrainedModel) LastMonth() time.Time  { return m.info.LastMonth }
func (m *TrainedModel) TrainedAt() time.Time  { return m.info.TrainedAt }
func (m *TrainedModel) RunID() uuid.UUID      { return m.info.RunID }

// BIC of the fit. It is +Inf for a constant series, whose residual variance is zero.
func (m *TrainedModel) BIC() float64 { return m.bic }

// NObs is the number of monthly observations the model was fitted to.
func (m *TrainedModel) NObs() int { return m.est.NObs() }

// Predict returns point forecasts and symmetric intervals for the next steps months.
func (m *TrainedModel) Predict(steps int, confidence float64) (forecasts, lower, upper []float64, err error) {
	return m.est.PredictWithInterval(steps, confidence)
}

// Diagnostics are residual checks of a fit. LjungBoxP is NaN when there are
// too few residuals for the test and DurbinWatson is NaN when they are all zero.
type Diagnostics struct {
	LjungBoxP    float64
	DurbinWatson float64
}

// Diagnostics reads the residual checks from the estimator summary. The
// Ljung-Box test runs up to lag 10.
func (m *TrainedModel) Diagnostics() Diagnostics {
	var (
		lb *stats.LjungBoxResult
		dw *stats.DurbinWatsonResult
	)
	switch est := m.est.(type) {
	case *arima.Model:
		if s := est.Summary(); s != nil {
			lb, dw = s.LjungBox, s.DurbinWatson
		}
	case *sarima.Model:
		if s := est.Summary(); s != nil {
			lb, dw = s.LjungBox, s.DurbinWatson
		}
	}

	d := Diagnostics{LjungBoxP: math.NaN(), DurbinWatson: math.NaN()}
	if lb != nil {
		d.LjungBoxP = lb.PValue
	}
	if dw != nil {
		d.DurbinWatson = dw.Statistic
	}
	return d
}

func (m *TrainedModel) String() string {
	return fmt.Sprintf("%s %s (%s)", m.info.Crop, m.order, m.info.Stage)
}

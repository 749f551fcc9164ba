package selection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	mstats "github.com/montanaflynn/stats"

	"github.com/agrichain/pricecast/arima"
	"github.com/agrichain/pricecast/autoarima"
	"github.com/agrichain/pricecast/internal/logger"
	"github.com/agrichain/pricecast/pricemodel"
	"github.com/agrichain/pricecast/store"
	"github.com/agrichain/pricecast/timeseries"
)

var (
	// ErrEmptySeries is returned when there is nothing to train on.
	ErrEmptySeries = errors.New("empty price series")
	// ErrUntrainable is returned when every stage of the cascade failed.
	ErrUntrainable = errors.New("no model could be fitted")
)

// MinHistory is the number of monthly observations below which training
// proceeds with a warning.
const MinHistory = 12

// Recorder receives one call per fit attempt.
type Recorder interface {
	RecordFitAttempt(stage string, success bool, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordFitAttempt(string, bool, time.Duration) {}

// Config bounds the automatic searches of the seasonal and non-seasonal stages.
type Config struct {
	MaxP           int
	MaxQ           int
	MaxSP          int
	MaxSQ          int
	MaxOrder       int
	SeasonalPeriod int
	Criterion      string
}

// DefaultConfig returns p,q,P,Q in [0,2], p+q+P+Q <= 5, m=12, scored by BIC.
func DefaultConfig() Config {
	return Config{
		MaxP:           2,
		MaxQ:           2,
		MaxSP:          2,
		MaxSQ:          2,
		MaxOrder:       5,
		SeasonalPeriod: 12,
		Criterion:      "bic",
	}
}

// Engine fits a model to a crop's price series by walking the fallback
// cascade and saves the first model that fits.
type Engine struct {
	store   store.Store
	cfg     Config
	log     *logger.Logger
	metrics Recorder
	now     func() time.Time
	runID   uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the search bounds of the seasonal and non-seasonal stages.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger for fit attempts and outcomes.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics sets the recorder that receives every fit attempt.
func WithMetrics(r Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithClock replaces time.Now for training timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID stamps every model with the same batch run id. Without it each
// model gets its own id.
func WithRunID(id uuid.UUID) Option {
	return func(e *Engine) { e.runID = id }
}

// New creates an engine that saves fitted models to s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		cfg:     DefaultConfig(),
		log:     logger.Nop(),
		metrics: nopRecorder{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// constantTolerance is the spread, relative to the price level, below which
// a series counts as constant. Monthly means of equal prices can differ in
// the last bits.
const constantTolerance = 1e-9

// Entry returns the first stage for a series: StageEmptyCheck when the
// series is empty (nothing to fit), StageConstant when all its values are
// equal up to rounding, StageSeasonal otherwise.
func Entry(series *timeseries.Series) pricemodel.Stage {
	if series.Len() == 0 {
		return pricemodel.StageEmptyCheck
	}
	if isConstant(series.Values) {
		return pricemodel.StageConstant
	}
	return pricemodel.StageSeasonal
}

// isConstant reports whether the range of values is within constantTolerance
// of their mean magnitude. A single value has no spread to measure.
func isConstant(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	lo, err := mstats.Min(values)
	if err != nil {
		return false
	}
	hi, err := mstats.Max(values)
	if err != nil {
		return false
	}
	mean, err := mstats.Mean(values)
	if err != nil {
		return false
	}
	return hi-lo <= constantTolerance*math.Max(1, math.Abs(mean))
}

// Next returns the stage to try after s failed. The constant model and the
// final fixed order have no fallback.
func Next(s pricemodel.Stage) (pricemodel.Stage, bool) {
	switch s {
	case pricemodel.StageSeasonal:
		return pricemodel.StageNonSeasonal, true
	case pricemodel.StageNonSeasonal:
		return pricemodel.StageFixed111, true
	case pricemodel.StageFixed111:
		return pricemodel.StageFixed010, true
	default:
		return 0, false
	}
}

// SelectAndFit trains a model for crop and saves it. It returns
// ErrEmptySeries for an empty series and ErrUntrainable when no stage could
// fit the data. The context is checked between attempts.
func (e *Engine) SelectAndFit(ctx context.Context, crop string, series *timeseries.Series) (*pricemodel.TrainedModel, error) {
	log := e.log.With(logger.String("crop", crop))

	stage := Entry(series)
	if stage == pricemodel.StageEmptyCheck {
		log.Warn("cannot train model, series is empty")
		return nil, fmt.Errorf("%s: %w", crop, ErrEmptySeries)
	}

	if n := series.Len(); n < MinHistory {
		log.Warn("less than 12 months of data, model quality may suffer",
			logger.Int("points", n))
	}
	if stage == pricemodel.StageConstant {
		log.Warn("series has zero variance, using mean model")
	}

	var lastErr error
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		m, err := e.attempt(crop, stage, series)
		took := time.Since(start)
		e.metrics.RecordFitAttempt(stage.String(), err == nil, took)

		if err == nil {
			diag := m.Diagnostics()
			log.Info("model fitted",
				logger.String("stage", stage.String()),
				logger.String("order", m.Order().String()),
				logger.Float("bic", m.BIC()),
				logger.Int("points", m.NObs()),
				logger.Float("ljung_box_p", diag.LjungBoxP),
				logger.Float("durbin_watson", diag.DurbinWatson),
				logger.Duration("took_ms", took))
			if diag.LjungBoxP < 0.05 {
				log.Warn("residuals are autocorrelated, forecasts may be biased",
					logger.Float("ljung_box_p", diag.LjungBoxP))
			}

			if err := e.store.Save(ctx, m); err != nil {
				log.Error("failed to save model", logger.Error(err))
				return nil, fmt.Errorf("save model %s: %w", crop, err)
			}
			return m, nil
		}

		log.Warn("fit attempt failed",
			logger.String("stage", stage.String()),
			logger.Duration("took_ms", took),
			logger.Error(err))
		lastErr = err

		next, ok := Next(stage)
		if !ok {
			break
		}
		stage = next
	}

	log.Error("all model fitting attempts failed", logger.Error(lastErr))
	return nil, fmt.Errorf("%s: %w: %v", crop, ErrUntrainable, lastErr)
}

func (e *Engine) attempt(crop string, stage pricemodel.Stage, series *timeseries.Series) (*pricemodel.TrainedModel, error) {
	info := pricemodel.Info{
		Crop:       crop,
		Key:        store.Key(crop),
		Stage:      stage,
		FirstMonth: timeseries.MonthStart(series.First()),
		LastMonth:  timeseries.MonthStart(series.Last()),
		TrainedAt:  e.now().UTC(),
		RunID:      e.runID,
	}
	if info.RunID == uuid.Nil {
		info.RunID = uuid.New()
	}

	switch stage {
	case pricemodel.StageConstant:
		return fitFixed(info, series, 0, 0, 0)
	case pricemodel.StageSeasonal:
		return e.search(info, series, true)
	case pricemodel.StageNonSeasonal:
		return e.search(info, series, false)
	case pricemodel.StageFixed111:
		return fitFixed(info, series, 1, 1, 1)
	case pricemodel.StageFixed010:
		return fitFixed(info, series, 0, 1, 0)
	default:
		return nil, fmt.Errorf("stage %s has no fit", stage)
	}
}

func (e *Engine) search(info pricemodel.Info, series *timeseries.Series, seasonal bool) (*pricemodel.TrainedModel, error) {
	result, err := autoarima.Search(series, &autoarima.Config{
		MaxP:      e.cfg.MaxP,
		MaxQ:      e.cfg.MaxQ,
		MaxSP:     e.cfg.MaxSP,
		MaxSQ:     e.cfg.MaxSQ,
		D:         1,
		SD:        1,
		Seasonal:  seasonal,
		SeasonalM: e.cfg.SeasonalPeriod,
		MaxOrder:  e.cfg.MaxOrder,
		Criterion: e.cfg.Criterion,
	})
	if err != nil {
		return nil, err
	}
	if err := checkForecastable(result); err != nil {
		return nil, err
	}
	if seasonal {
		return pricemodel.FromSARIMA(info, result.SeasonalModel)
	}
	return pricemodel.FromARIMA(info, result.Model)
}

func fitFixed(info pricemodel.Info, series *timeseries.Series, p, d, q int) (*pricemodel.TrainedModel, error) {
	est := arima.New(p, d, q)
	if err := est.Fit(series); err != nil {
		return nil, err
	}
	if err := checkForecastable(est); err != nil {
		return nil, err
	}
	return pricemodel.FromARIMA(info, est)
}

// checkForecastable rejects fits whose one-step forecast is not finite.
func checkForecastable(est interface {
	Predict(steps int) ([]float64, error)
}) error {
	f, err := est.Predict(1)
	if err != nil {
		return err
	}
	if math.IsNaN(f[0]) || math.IsInf(f[0], 0) {
		return arima.ErrNotConverged
	}
	return nil
}

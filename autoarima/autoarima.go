// Package autoarima implements bounded automatic ARIMA model selection.
package autoarima

import (
	"errors"
	"fmt"
	"math"

	"github.com/agrichain/pricecast/arima"
	"github.com/agrichain/pricecast/sarima"
	"github.com/agrichain/pricecast/timeseries"
)

// ErrNoCandidate is returned when no order in the search space could be fitted.
var ErrNoCandidate = errors.New("no candidate model could be fitted")

// Config holds configuration for the order search.
type Config struct {
	MaxP      int    // Maximum AR order (default: 2)
	MaxQ      int    // Maximum MA order (default: 2)
	MaxSP     int    // Maximum seasonal AR order (default: 2)
	MaxSQ     int    // Maximum seasonal MA order (default: 2)
	D         int    // Differencing order (default: 1)
	SD        int    // Seasonal differencing order, ignored when Seasonal is false (default: 1)
	Seasonal  bool   // Whether to consider seasonal models
	SeasonalM int    // Seasonal period (required if Seasonal=true)
	MaxOrder  int    // Cap on p+q+P+Q, 0 disables the cap (default: 5)
	Criterion string // Information criterion: "aic", "aicc" or "bic" (default: "bic")
}

// DefaultConfig returns the default search configuration: a monthly seasonal
// search with one regular and one seasonal difference.
func DefaultConfig() *Config {
	return &Config{
		MaxP:      2,
		MaxQ:      2,
		MaxSP:     2,
		MaxSQ:     2,
		D:         1,
		SD:        1,
		Seasonal:  true,
		SeasonalM: 12,
		MaxOrder:  5,
		Criterion: "bic",
	}
}

func (c *Config) validate() error {
	if c.MaxP < 0 || c.MaxQ < 0 || c.MaxSP < 0 || c.MaxSQ < 0 || c.D < 0 || c.SD < 0 || c.MaxOrder < 0 {
		return errors.New("autoarima: negative bound in config")
	}
	if c.Seasonal && c.SeasonalM < 2 {
		return fmt.Errorf("autoarima: seasonal search needs a period of at least 2, got %d", c.SeasonalM)
	}
	switch c.Criterion {
	case "", "aic", "aicc", "bic":
	default:
		return fmt.Errorf("autoarima: unknown criterion %q", c.Criterion)
	}
	return nil
}

// Result represents the result of model selection.
type Result struct {
	// Non-seasonal model (if no seasonality)
	Model *arima.Model
	// Seasonal model (if seasonal)
	SeasonalModel *sarima.Model

	// Best parameters found
	P  int
	D  int
	Q  int
	SP int
	SD int
	SQ int
	M  int

	// Model metrics
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	Criterion float64

	// Search information
	ModelsEvaluated int
	ModelsFailed    int
	IsSeasonal      bool
}

// candidate is what the search needs from a fitted model.
type candidate struct {
	arima  *arima.Model
	sarima *sarima.Model
	aic    float64
	aicc   float64
	bic    float64
	logLik float64
}

func (c *candidate) score(criterion string) float64 {
	switch criterion {
	case "aic":
		return c.aic
	case "aicc":
		return c.aicc
	default:
		return c.bic
	}
}

// Search fits every order inside the configured bounds and returns the one
// with the lowest information criterion. Candidates that fail to fit or
// produce a non-finite criterion are skipped.
func Search(series *timeseries.Series, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, ErrNoCandidate
	}

	sd, m, maxSP, maxSQ := 0, 1, 0, 0
	if config.Seasonal {
		sd, m, maxSP, maxSQ = config.SD, config.SeasonalM, config.MaxSP, config.MaxSQ
	}

	best := &Result{Criterion: math.Inf(1), IsSeasonal: config.Seasonal}
	found := false

	// Grid search
	for p := 0; p <= config.MaxP; p++ {
		for q := 0; q <= config.MaxQ; q++ {
			for sp := 0; sp <= maxSP; sp++ {
				for sq := 0; sq <= maxSQ; sq++ {
					if config.MaxOrder > 0 && p+q+sp+sq > config.MaxOrder {
						continue
					}

					c, err := fitCandidate(series, p, config.D, q, sp, sd, sq, m, config.Seasonal)
					if err != nil {
						best.ModelsFailed++
						continue
					}
					best.ModelsEvaluated++

					criterion := c.score(config.Criterion)
					if math.IsNaN(criterion) || math.IsInf(criterion, 0) {
						best.ModelsFailed++
						continue
					}

					if criterion < best.Criterion {
						found = true
						best.Model = c.arima
						best.SeasonalModel = c.sarima
						best.P, best.D, best.Q = p, config.D, q
						best.SP, best.SD, best.SQ, best.M = sp, sd, sq, m
						best.AIC = c.aic
						best.AICc = c.aicc
						best.BIC = c.bic
						best.LogLik = c.logLik
						best.Criterion = criterion
					}
				}
			}
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %d orders tried", ErrNoCandidate, best.ModelsEvaluated+best.ModelsFailed)
	}
	return best, nil
}

func fitCandidate(series *timeseries.Series, p, d, q, sp, sd, sq, m int, seasonal bool) (*candidate, error) {
	if seasonal {
		model := sarima.New(p, d, q, sp, sd, sq, m)
		if err := model.Fit(series); err != nil {
			return nil, err
		}
		return &candidate{
			sarima: model,
			aic:    model.AIC,
			aicc:   model.AICc,
			bic:    model.BIC,
			logLik: model.LogLik,
		}, nil
	}

	model := arima.New(p, d, q)
	if err := model.Fit(series); err != nil {
		return nil, err
	}
	return &candidate{
		arima:  model,
		aic:    model.AIC,
		aicc:   model.AICc,
		bic:    model.BIC,
		logLik: model.LogLik,
	}, nil
}

// Predict generates forecasts using the selected model.
func (r *Result) Predict(steps int) ([]float64, error) {
	forecasts, _, _, err := r.PredictWithInterval(steps, 0.95)
	return forecasts, err
}

// PredictWithInterval generates forecasts and intervals using the selected model.
func (r *Result) PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error) {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel.PredictWithInterval(steps, confidence)
	}
	if r.Model != nil {
		return r.Model.PredictWithInterval(steps, confidence)
	}
	return nil, nil, nil, ErrNoCandidate
}

// Residuals returns the model residuals.
func (r *Result) Residuals() []float64 {
	if r.IsSeasonal && r.SeasonalModel != nil {
		return r.SeasonalModel.Residuals()
	}
	if r.Model != nil {
		return r.Model.Residuals()
	}
	return nil
}

// String describes the selected order.
func (r *Result) String() string {
	if r.IsSeasonal {
		return sarima.Order{P: r.P, D: r.D, Q: r.Q, SP: r.SP, SD: r.SD, SQ: r.SQ, M: r.M}.String()
	}
	return arima.Order{P: r.P, D: r.D, Q: r.Q}.String()
}

// Package sarima implements Seasonal ARIMA (SARIMA) models.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"github.com/agrichain/pricecast/stats"
	"github.com/agrichain/pricecast/timeseries"
)

var (
	// ErrInsufficientData is returned when the series is too short for the order.
	ErrInsufficientData = errors.New("insufficient data points for the specified order")
	// ErrNotConverged is returned when estimation produces non-finite parameters.
	ErrNotConverged = errors.New("estimation did not converge")
	// ErrNotFitted is returned when predicting with an unfitted model.
	ErrNotFitted = errors.New("model must be fitted before prediction")
)

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int `json:"p"` // Non-seasonal AR order
	D int `json:"d"` // Non-seasonal differencing order
	Q int `json:"q"` // Non-seasonal MA order
	// Seasonal components
	SP int `json:"sp"` // Seasonal AR order
	SD int `json:"sd"` // Seasonal differencing order
	SQ int `json:"sq"` // Seasonal MA order
	M  int `json:"m"`  // Seasonal period (12 for monthly data with yearly seasonality)
}

func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// MinObservations returns the shortest series the order can be fitted to.
func (o Order) MinObservations() int {
	return o.P + o.Q + o.D + (o.SP+o.SD+o.SQ)*o.M + 20
}

// Model represents a SARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64   // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64
	fitted    bool
	data      []float64
	diffData  []float64
	residuals []float64
	startIdx  int
}

// New creates a new SARIMA model with the specified order.
func New(p, d, q, sp, sd, sq, m int) *Model {
	return &Model{
		Order: Order{
			P: p, D: d, Q: q,
			SP: sp, SD: sd, SQ: sq, M: m,
		},
		ARCoeffs:  make([]float64, p),
		MACoeffs:  make([]float64, q),
		SARCoeffs: make([]float64, sp),
		SMACoeffs: make([]float64, sq),
	}
}

// Fit fits the SARIMA model to the given time series data.
func (m *Model) Fit(series *timeseries.Series) error {
	if m.Order.M < 1 {
		return fmt.Errorf("seasonal period must be positive, got %d", m.Order.M)
	}
	if series.Len() < m.Order.MinObservations() {
		return ErrInsufficientData
	}
	if series.HasNonFinite() {
		return errors.New("series contains NaN or infinite values")
	}

	m.data = append([]float64(nil), series.Values...)

	// Non-seasonal differencing first, then seasonal
	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return errors.New("differencing resulted in empty series")
		}
	}
	for i := 0; i < m.Order.SD; i++ {
		diffSeries = diffSeries.SeasonalDiff(m.Order.M)
		if diffSeries.Len() == 0 {
			return errors.New("seasonal differencing resulted in empty series")
		}
	}
	m.diffData = diffSeries.Values

	m.fitCSS()

	if !m.finite() {
		return ErrNotConverged
	}

	m.calculateIC()
	m.fitted = true
	return nil
}

// fitCSS fits the model using Conditional Sum of Squares estimation.
func (m *Model) fitCSS() {
	y := m.diffData
	n := len(y)
	p := m.Order.P
	sp := m.Order.SP
	period := m.Order.M

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	m.Intercept = mean / float64(n)

	if p > 0 {
		if acf := stats.ACF(y, p); acf != nil {
			m.ARCoeffs = initARCoeffs(acf, p)
		}
	}

	if sp > 0 {
		if acf := stats.ACF(y, sp*period); acf != nil {
			for i := 0; i < sp; i++ {
				idx := (i + 1) * period
				if idx < len(acf) {
					m.SARCoeffs[i] = acf[idx] * 0.5
				}
			}
		}
	}

	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}
	for i := range m.SMACoeffs {
		m.SMACoeffs[i] = 0.1
	}

	m.optimizeCSS(y)
}

// predictAt is the one-step prediction for index t. Seasonal lags reaching
// before the start of the series contribute nothing.
func (m *Model) predictAt(y, residuals []float64, t int) float64 {
	period := m.Order.M
	pred := m.Intercept

	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Order.SP; i++ {
		if lag := (i + 1) * period; t-lag >= 0 {
			pred += m.SARCoeffs[i] * (y[t-lag] - m.Intercept)
		}
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	for i := 0; i < m.Order.SQ; i++ {
		if lag := (i + 1) * period; t-lag >= 0 {
			pred += m.SMACoeffs[i] * residuals[t-lag]
		}
	}
	return pred
}

// optimizeCSS optimizes SARIMA parameters with adaptive learning and momentum.
func (m *Model) optimizeCSS(y []float64) {
	n := len(y)
	p := m.Order.P
	q := m.Order.Q
	sp := m.Order.SP
	sq := m.Order.SQ
	period := m.Order.M

	maxIter := 200
	tolerance := 1e-8
	learningRate := 0.005
	momentum := 0.9
	decay := 0.99

	arMomentum := make([]float64, p)
	maMomentum := make([]float64, q)
	sarMomentum := make([]float64, sp)
	smaMomentum := make([]float64, sq)

	startIdx := max(max(p, q), max(sp*period, sq*period))
	if startIdx >= n-10 {
		startIdx = 0
	}
	m.startIdx = startIdx

	bestSSE := math.Inf(1)
	bestARCoeffs := make([]float64, p)
	bestMACoeffs := make([]float64, q)
	bestSARCoeffs := make([]float64, sp)
	bestSMACoeffs := make([]float64, sq)
	noImproveCount := 0

	for iter := 0; iter < maxIter; iter++ {
		residuals := make([]float64, n)
		currentSSE := 0.0

		for t := startIdx; t < n; t++ {
			residuals[t] = y[t] - m.predictAt(y, residuals, t)
			currentSSE += residuals[t] * residuals[t]
		}

		if currentSSE < bestSSE {
			bestSSE = currentSSE
			copy(bestARCoeffs, m.ARCoeffs)
			copy(bestMACoeffs, m.MACoeffs)
			copy(bestSARCoeffs, m.SARCoeffs)
			copy(bestSMACoeffs, m.SMACoeffs)
			noImproveCount = 0
		} else {
			noImproveCount++
		}

		if noImproveCount > 20 {
			break
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		sarGrad := make([]float64, sp)
		smaGrad := make([]float64, sq)

		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < sp; i++ {
				if lag := (i + 1) * period; t-lag >= 0 {
					sarGrad[i] -= 2 * residuals[t] * (y[t-lag] - m.Intercept)
				}
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
			for i := 0; i < sq; i++ {
				if lag := (i + 1) * period; t-lag >= 0 {
					smaGrad[i] -= 2 * residuals[t] * residuals[t-lag]
				}
			}
		}

		step := func(coeffs, velocity, grad []float64) {
			for i := range coeffs {
				velocity[i] = momentum*velocity[i] + learningRate*grad[i]/float64(n)
				coeffs[i] = clamp(coeffs[i]-velocity[i], -0.99, 0.99)
			}
		}
		step(m.ARCoeffs, arMomentum, arGrad)
		step(m.SARCoeffs, sarMomentum, sarGrad)
		step(m.MACoeffs, maMomentum, maGrad)
		step(m.SMACoeffs, smaMomentum, smaGrad)

		learningRate *= decay

		if iter > 0 && math.Abs(currentSSE-bestSSE) < tolerance {
			break
		}
	}

	copy(m.ARCoeffs, bestARCoeffs)
	copy(m.MACoeffs, bestMACoeffs)
	copy(m.SARCoeffs, bestSARCoeffs)
	copy(m.SMACoeffs, bestSMACoeffs)

	m.residuals = make([]float64, n)
	for t := 0; t < n; t++ {
		m.residuals[t] = y[t] - m.predictAt(y, m.residuals, t)
	}

	m.Variance = m.residualVariance()
}

func (m *Model) residualVariance() float64 {
	sse := 0.0
	count := 0
	for t := m.startIdx; t < len(m.residuals); t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}

	numParams := m.Order.P + m.Order.Q + m.Order.SP + m.Order.SQ + 1
	switch {
	case count > numParams:
		return sse / float64(count-numParams)
	case count > 0:
		return sse / float64(count)
	default:
		return 0
	}
}

func (m *Model) finite() bool {
	for _, coeffs := range [][]float64{m.ARCoeffs, m.MACoeffs, m.SARCoeffs, m.SMACoeffs, {m.Intercept, m.Variance}} {
		for _, v := range coeffs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// calculateIC calculates AIC, AICc, and BIC.
func (m *Model) calculateIC() {
	k := m.Order.P + m.Order.Q + m.Order.SP + m.Order.SQ + 1
	logLik := stats.GaussianLogLik(m.residuals, m.Variance)
	ic := stats.CalculateIC(logLik, len(m.residuals), k)

	m.LogLik = ic.LogLik
	m.AIC = ic.AIC
	m.AICc = ic.AICc
	m.BIC = ic.BIC
}

// Predict generates forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	forecasts, _, _, err := m.PredictWithInterval(steps, 0.95)
	return forecasts, err
}

// PredictWithInterval generates forecasts with prediction intervals.
// Returns point forecasts, lower bounds, and upper bounds at the given confidence level.
func (m *Model) PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error) {
	if !m.fitted {
		return nil, nil, nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, nil, nil, errors.New("steps must be at least 1")
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, nil, nil, fmt.Errorf("confidence %v outside (0, 1)", confidence)
	}

	d := m.Order.D
	sd := m.Order.SD
	period := m.Order.M

	y := m.diffData
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)

	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		// Future residuals have expectation 0
		extY[t] = m.predictAt(extY, extResiduals, t)
		extResiduals[t] = 0
	}

	forecasts = make([]float64, steps)
	copy(forecasts, extY[n:])
	forecasts = m.integrate(forecasts)

	z := stats.TwoSidedZ(confidence)
	lower = make([]float64, steps)
	upper = make([]float64, steps)

	for h := 0; h < steps; h++ {
		se := math.Sqrt(m.Variance)

		// Error grows with the horizon for integrated and seasonally integrated series
		if d > 0 {
			se *= math.Sqrt(float64(h + 1))
		}
		if sd > 0 && period > 0 {
			se *= math.Sqrt(float64(h/period + 1))
		}

		lower[h] = forecasts[h] - z*se
		upper[h] = forecasts[h] + z*se
	}

	return forecasts, lower, upper, nil
}

// integrate undoes differencing to return forecasts on original scale.
// Fit differences non-seasonally first and seasonally second, so integration
// undoes the seasonal step first.
func (m *Model) integrate(forecasts []float64) []float64 {
	d := m.Order.D
	sd := m.Order.SD
	period := m.Order.M
	original := m.data
	n := len(original)

	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	nonSeasonalDiff := original
	for i := 0; i < d && len(nonSeasonalDiff) > 1; i++ {
		next := make([]float64, len(nonSeasonalDiff)-1)
		for j := 1; j < len(nonSeasonalDiff); j++ {
			next[j-1] = nonSeasonalDiff[j] - nonSeasonalDiff[j-1]
		}
		nonSeasonalDiff = next
	}

	// y_t = z_t + y_{t-m}
	if sd > 0 && period > 0 {
		nDiff := len(nonSeasonalDiff)
		for i := 0; i < sd; i++ {
			for j := range result {
				if j < period {
					if idx := nDiff - period + j; idx >= 0 && idx < nDiff {
						result[j] += nonSeasonalDiff[idx]
					}
				} else {
					result[j] += result[j-period]
				}
			}
		}
	}

	// y_t = y'_t + y_{t-1}
	for i := 0; i < d; i++ {
		for j := range result {
			if j == 0 {
				result[j] += original[n-1]
			} else {
				result[j] += result[j-1]
			}
		}
	}

	return result
}

// Residuals returns the model residuals.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals...)
}

// NObs returns the number of observations the model was fitted to.
func (m *Model) NObs() int {
	return len(m.data)
}

// Summary represents a model summary.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	SARCoeffs []float64
	SMACoeffs []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	NObs      int
	LjungBox  *stats.LjungBoxResult

	// DurbinWatson is nil when the residuals are all zero.
	DurbinWatson *stats.DurbinWatsonResult
}

// Summary returns a summary of the fitted model.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	s := &Summary{
		Order:     m.Order,
		ARCoeffs:  m.ARCoeffs,
		MACoeffs:  m.MACoeffs,
		SARCoeffs: m.SARCoeffs,
		SMACoeffs: m.SMACoeffs,
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      len(m.data),
		LjungBox:  stats.LjungBox(m.residuals, 10, m.Order.P+m.Order.Q+m.Order.SP+m.Order.SQ),
	}
	s.DurbinWatson = stats.DurbinWatson(m.residuals)
	return s
}

// initARCoeffs initializes AR coefficients from ACF.
func initARCoeffs(acf []float64, order int) []float64 {
	coeffs := make([]float64, order)
	for i := 0; i < order && i+1 < len(acf); i++ {
		coeffs[i] = acf[i+1] * 0.5
	}
	return coeffs
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}

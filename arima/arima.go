// Package arima implements ARIMA (AutoRegressive Integrated Moving Average) models.
package arima

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

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int `json:"p"` // AR order (number of autoregressive terms)
	D int `json:"d"` // Differencing order
	Q int `json:"q"` // MA order (number of moving average terms)
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// MinObservations returns the shortest series the order can be fitted to.
// The constant model (0,0,0) needs a single observation.
func (o Order) MinObservations() int {
	if o.P+o.D+o.Q == 0 {
		return 1
	}
	return o.P + o.Q + o.D + 10
}

// Model represents an ARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi)
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64
	Variance  float64   // Residual variance
	AIC       float64
	AICc      float64   // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64
	fitted    bool
	data      []float64
	diffData  []float64
	residuals []float64
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// Fit fits the ARIMA model to the given time series data.
func (m *Model) Fit(series *timeseries.Series) error {
	if series.Len() < m.Order.MinObservations() {
		return ErrInsufficientData
	}
	if series.HasNonFinite() {
		return errors.New("series contains NaN or infinite values")
	}

	m.data = append([]float64(nil), series.Values...)

	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return errors.New("differencing resulted in empty series")
		}
	}
	m.diffData = diffSeries.Values

	// Fit using Conditional Sum of Squares (CSS) method
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
	q := m.Order.Q

	if p == 0 && q == 0 {
		// White noise around a constant level
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		m.Intercept = mean / float64(n)
		m.Variance = 0
		for _, v := range y {
			diff := v - m.Intercept
			m.Variance += diff * diff
		}
		if n > 1 {
			m.Variance /= float64(n - 1)
		}
		m.residuals = make([]float64, n)
		for i, v := range y {
			m.residuals[i] = v - m.Intercept
		}
		return
	}

	if p > 0 {
		// Yule-Walker for initial AR estimates
		if acf := stats.ACF(y, p); acf != nil {
			if phi := yuleWalker(acf, p); phi != nil {
				copy(m.ARCoeffs, phi)
			}
		}
	}

	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}

	m.optimizeCSS(y)
}

// optimizeCSS refines AR and MA coefficients by gradient descent on the
// conditional sum of squares.
func (m *Model) optimizeCSS(y []float64) {
	n := len(y)
	p := m.Order.P
	q := m.Order.Q

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	m.Intercept = mean / float64(n)

	maxIter := 100
	tolerance := 1e-6
	learningRate := 0.01
	startIdx := max(p, q)
	residuals := make([]float64, n)

	for iter := 0; iter < maxIter; iter++ {
		prevSSE := m.conditionalResiduals(y, residuals, startIdx)

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)

		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
		}

		// Bounds keep the AR part stationary and the MA part invertible
		for i := 0; i < p; i++ {
			m.ARCoeffs[i] -= learningRate * arGrad[i] / float64(n)
			m.ARCoeffs[i] = math.Max(-0.99, math.Min(0.99, m.ARCoeffs[i]))
		}
		for i := 0; i < q; i++ {
			m.MACoeffs[i] -= learningRate * maGrad[i] / float64(n)
			m.MACoeffs[i] = math.Max(-0.99, math.Min(0.99, m.MACoeffs[i]))
		}

		newSSE := m.conditionalResiduals(y, residuals, startIdx)
		if math.Abs(prevSSE-newSSE) < tolerance {
			break
		}
	}

	m.residuals = make([]float64, n)

	for t := 0; t < n; t++ {
		if t < startIdx {
			m.residuals[t] = y[t] - m.Intercept
			continue
		}
		m.residuals[t] = y[t] - m.predictAt(y, m.residuals, t)
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	switch {
	case count > p+q+1:
		m.Variance = sse / float64(count-p-q-1)
	case count > 0:
		m.Variance = sse / float64(count)
	default:
		m.Variance = 0
	}
}

// conditionalResiduals fills residuals from startIdx on and returns their SSE.
func (m *Model) conditionalResiduals(y, residuals []float64, startIdx int) float64 {
	sse := 0.0
	for t := startIdx; t < len(y); t++ {
		residuals[t] = y[t] - m.predictAt(y, residuals, t)
		sse += residuals[t] * residuals[t]
	}
	return sse
}

// predictAt is the one-step prediction for index t given past values and residuals.
func (m *Model) predictAt(y, residuals []float64, t int) float64 {
	pred := m.Intercept
	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	return pred
}

func (m *Model) finite() bool {
	check := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}
	return check(m.ARCoeffs...) && check(m.MACoeffs...) && check(m.Intercept, m.Variance)
}

// calculateIC calculates AIC, AICc, and BIC.
func (m *Model) calculateIC() {
	k := m.Order.P + m.Order.Q + 1 // AR + MA + intercept
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

// PredictWithInterval generates forecasts with symmetric normal prediction
// intervals at the given confidence level.
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
	if m.Order.D > 0 {
		forecasts = m.integrate(forecasts)
	}

	z := stats.TwoSidedZ(confidence)
	lower = make([]float64, steps)
	upper = make([]float64, steps)
	se := math.Sqrt(m.Variance)

	for h := 0; h < steps; h++ {
		// Forecast error grows with the horizon for integrated series
		width := z * se
		if m.Order.D > 0 {
			width *= math.Sqrt(float64(h + 1))
		}
		lower[h] = forecasts[h] - width
		upper[h] = forecasts[h] + width
	}

	return forecasts, lower, upper, nil
}

// integrate undoes differencing to return forecasts on original scale.
func (m *Model) integrate(forecasts []float64) []float64 {
	original := m.data

	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for i := 0; i < m.Order.D; i++ {
		lastVal := original[len(original)-1-i]
		for j := range result {
			if j == 0 {
				result[j] += lastVal
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

// Summary returns a summary of the fitted model.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64 // Corrected AIC
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
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      len(m.data),
		LjungBox:  stats.LjungBox(m.residuals, 10, m.Order.P+m.Order.Q),
	}
	s.DurbinWatson = stats.DurbinWatson(m.residuals)
	return s
}

// yuleWalker estimates AR coefficients from autocorrelations with the
// Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]

	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		newPhi := make([]float64, i+1)
		for j := 0; j < i; j++ {
			newPhi[j] = phi[j] - lambda*phi[i-1-j]
		}
		newPhi[i] = lambda
		copy(phi, newPhi)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}

	return phi
}

// Package stats provides the statistical helpers used to fit and diagnose
// price models.
//
// # Autocorrelation
//
//	acf := stats.ACF(values, 12) // lags 0..12
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 10, p+q)
//	if lb != nil && lb.PValue > 0.05 {
//	    // Residuals are white noise (good)
//	}
//
//	dw := stats.DurbinWatson(residuals)
//
// # Information Criteria
//
//	logLik := stats.GaussianLogLik(residuals, variance)
//	ic := stats.CalculateIC(logLik, len(residuals), p+q+1)
//	// ic.AIC, ic.AICc, ic.BIC
//
// # Interval Multipliers
//
//	z := stats.TwoSidedZ(0.95) // ~1.96
package stats

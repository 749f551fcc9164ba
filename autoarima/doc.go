// Package autoarima implements bounded automatic ARIMA model selection.
//
// Search fits every order inside the configured bounds and keeps the one with
// the lowest information criterion. The search is exhaustive, so the result
// is the true minimum over the grid rather than a local optimum.
//
// # Basic Usage
//
// Seasonal monthly selection with the default bounds, which are
// d=1, D=1, m=12, p,q,P,Q in [0,2] and p+q+P+Q <= 5, scored by BIC:
//
//	result, err := autoarima.Search(series, autoarima.DefaultConfig())
//	if errors.Is(err, autoarima.ErrNoCandidate) {
//	    // nothing in the grid could be fitted
//	}
//
//	fmt.Printf("Best model: %s, BIC: %.2f\n", result, result.BIC)
//	forecasts, lower, upper, _ := result.PredictWithInterval(6, 0.95)
//
// # Non-seasonal Search
//
// Disable seasonality to search ARIMA(p,d,q) orders only:
//
//	config := autoarima.DefaultConfig()
//	config.Seasonal = false
//
// Candidates that fail to fit, including those with too few observations for
// their order, are counted in Result.ModelsFailed and skipped.
package autoarima

// Package sarima implements Seasonal ARIMA (SARIMA) models for time series with seasonality.
//
// SARIMA models extend ARIMA to handle seasonal patterns. A SARIMA(p,d,q)(P,D,Q)[m] model includes:
//   - Non-seasonal components: AR(p), I(d), MA(q)
//   - Seasonal components: SAR(P), SI(D), SMA(Q) at seasonal period m
//
// # Basic Usage
//
// Fit the classic monthly price model with one regular and one seasonal
// difference:
//
//	// SARIMA(1,1,0)(1,1,0)[12]
//	model := sarima.New(1, 1, 0, 1, 1, 0, 12)
//
//	err := model.Fit(series)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Six months ahead with 95% intervals
//	forecasts, lower, upper, _ := model.PredictWithInterval(6, 0.95)
//
// # Data Requirements
//
// Fit needs at least Order.MinObservations() points, which is
// p+q+d+(P+D+Q)*m+20. Two years of monthly data is therefore too short for a
// seasonally differenced model and Fit returns ErrInsufficientData.
//
// # Seasonal Periods
//
// Common seasonal periods:
//   - Monthly data with yearly seasonality: m = 12
//   - Quarterly data: m = 4
//   - Daily data with weekly seasonality: m = 7
//
// # Persistence
//
// Snapshot and Restore convert a fitted model to and from a JSON-friendly
// State, in the same way as the arima package.
//
// For bounded automatic seasonal model selection, use autoarima with Seasonal=true.
package sarima

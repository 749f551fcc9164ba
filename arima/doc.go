// Package arima implements AutoRegressive Integrated Moving Average (ARIMA) models.
//
// ARIMA models are used for analyzing and forecasting time series data. An ARIMA(p,d,q)
// model combines:
//   - AR(p): AutoRegressive component with p lags
//   - I(d): Integration (differencing) of order d
//   - MA(q): Moving Average component with q lags
//
// # Basic Usage
//
// Create and fit an ARIMA model:
//
//	// Create ARIMA(1,1,0) model
//	model := arima.New(1, 1, 0)
//
//	// Fit the model to data
//	err := model.Fit(series)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Get model summary
//	summary := model.Summary()
//	fmt.Printf("AIC: %.2f, BIC: %.2f\n", summary.AIC, summary.BIC)
//
//	// Generate forecasts with 95% intervals
//	forecasts, lower, upper, _ := model.PredictWithInterval(10, 0.95)
//
// The constant model ARIMA(0,0,0) fits any non-empty series, including one
// with zero variance; its forecasts equal the series mean.
//
// # Model Selection
//
// Use information criteria (AIC, AICc, BIC) to compare models:
//
//	model1 := arima.New(1, 1, 0)
//	model2 := arima.New(1, 1, 1)
//	model1.Fit(series)
//	model2.Fit(series)
//
//	// Lower AICc is better
//	if model1.AICc < model2.AICc {
//	    // Use model1
//	}
//
// # Residual Analysis
//
// Analyze model residuals to check model adequacy:
//
//	residuals := model.Residuals()
//	// Use stats.LjungBox to test for autocorrelation in residuals
//
// # Persistence
//
// A fitted model is captured as a State value that serialises to JSON and is
// rebuilt with Restore; a restored model produces identical forecasts:
//
//	state, _ := model.Snapshot()
//	restored, err := arima.Restore(state)
//
// For seasonal data, use the sarima package instead.
// For automatic order selection, use the autoarima package.
package arima

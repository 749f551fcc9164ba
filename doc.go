// Package pricecast trains monthly crop price models from farm supply-chain
// exports and produces price forecasts with confidence intervals.
//
// A training batch reads CSV and XLSX exports, builds one monthly modal price
// series per crop and fits the best model it can find for each. Each fitted
// model is saved under a key derived from its name and can later be loaded to
// forecast the months that follow its last observation.
//
// # Model Selection
//
// Series are fitted through a fallback cascade:
//
//   - zero variance: a constant ARIMA(0,0,0) mean model
//   - seasonal search: SARIMA(p,1,q)(P,1,Q)[12] with p,q,P,Q in [0,2] and
//     p+q+P+Q <= 5, minimising BIC
//   - non-seasonal search: ARIMA(p,1,q) over the same bounds
//   - fixed ARIMA(1,1,1), then fixed ARIMA(0,1,0)
//
// The stage that produced a model is kept with it and reported with every
// forecast, so consumers can tell a seasonal fit from a last resort.
//
// # Quick Start
//
// Prepare a series and train a model:
//
//	ds, _ := farmdata.Load("updated_farm_a_data.csv")
//	series := farmdata.PrepareSeries(ds, "tomato")
//
//	engine := selection.New(store.NewFileStore("models"))
//	model, err := engine.SelectAndFit(ctx, "tomato_price", series)
//
// Forecast six months ahead:
//
//	fc, _ := forecast.Generate(model, 6, forecast.DefaultConfidence)
//	for _, p := range fc.Points {
//	    fmt.Printf("%s %.2f [%.2f, %.2f]\n", p.Date.Format("2006-01"), p.Value, p.Lower, p.Upper)
//	}
//
// # Packages
//
//   - timeseries: Series type, monthly resampling and gap filling
//   - stats: autocorrelation, diagnostics and information criteria
//   - arima: non-seasonal ARIMA models
//   - sarima: seasonal ARIMA models
//   - autoarima: bounded order search
//   - farmdata: farm export loaders and series preparation
//   - selection: the fallback cascade
//   - pricemodel: trained models and their saved form
//   - store: file and Redis model stores
//   - forecast: dated forecasts with intervals
//
// The pricecast command in cmd/pricecast wires these together for batch
// training and ad hoc forecasts.
package pricecast

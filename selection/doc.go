// Package selection picks and fits a price model for one crop.
//
// A series enters the cascade at one of three stages:
//
//   - empty series: nothing is fitted and ErrEmptySeries is returned
//   - zero variance: a constant ARIMA(0,0,0) model, with no fallback
//   - otherwise: a bounded seasonal SARIMA search
//
// Each failed stage hands over to the next one, in order: the seasonal
// search, a non-seasonal ARIMA search, a fixed ARIMA(1,1,1) and finally a
// fixed ARIMA(0,1,0). The first model that fits is saved to the store and
// returned together with the stage that produced it.
//
//	engine := selection.New(store.NewFileStore("models"),
//	    selection.WithLogger(log),
//	    selection.WithMetrics(recorder))
//
//	model, err := engine.SelectAndFit(ctx, "tomato_price", series)
//	if errors.Is(err, selection.ErrUntrainable) {
//	    // every stage failed
//	}
package selection

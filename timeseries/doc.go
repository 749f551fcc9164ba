// Package timeseries provides time series data structures and utilities.
//
// The Series type pairs timestamps with values. Price series used for
// forecasting are monthly: one entry per calendar month, stamped with the
// month start in UTC.
//
// # Creating a Series
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values) // monthly, starting January 2000
//
//	series, err := timeseries.NewWithTimestamps(dates, prices)
//
// # Cleaning and Resampling
//
// Batch-level observations are cleaned and bucketed by calendar month:
//
//	monthly := series.
//	    ReplaceInf().
//	    ForwardFill().
//	    BackwardFill().
//	    ResampleMonthlyMean().
//	    ForwardFill().
//	    TrimNaN()
//
// Every operation returns a new Series; the receiver is never modified.
//
// # Transformations
//
//	diff := series.Diff()            // First difference
//	sdiff := series.SeasonalDiff(12) // Seasonal difference
//
// # Export
//
//	err := timeseries.WriteCSV(os.Stdout, monthly) // "ds,y" columns
package timeseries

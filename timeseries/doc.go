// Package timeseries provides the canonical time series type and the
// standardizer that builds it from raw tabular rows.
//
// # Standardizing Raw Rows
//
// Rows arrive already decoded from a file or quote feed. Standardize checks
// the schema, parses dates strictly, drops rows whose value is not a finite
// number, and sorts by date:
//
//	rows := []timeseries.Row{
//	    {"Date": "2024-01-02", "Close": "101.5"},
//	    {"Date": "2024-01-01", "Close": "100"},
//	    {"Date": "2024-01-03", "Close": "NA"}, // dropped
//	}
//	series, err := timeseries.Standardize(rows, "Date", "Close")
//
// A bad date fails the whole call with errs.ErrParse; a missing column fails
// with errs.ErrSchema. Duplicate dates are passed through untouched.
//
// # Creating a Series
//
// Build a series directly, indexed by consecutive days:
//
//	series := timeseries.New([]float64{100, 102, 105, 103, 108, 110})
//
// # Basic Statistics
//
//	mean := series.Mean()
//	std := series.Std()
//	median := series.Median()
//
// # Transformations
//
//	diff := series.Diff()         // first difference
//	returns := series.PctChange() // simple returns
//	train := series.Slice(0, 80)  // sub-range copy
package timeseries

// Package features turns a price series into a supervised-learning matrix
// for tree models.
//
// For every retained observation the matrix holds, in order:
//
//	lag_1 .. lag_L                          values 1..L steps back
//	rolling_mean_W, rolling_std_W           over the W observations before the row
//	day, month, year, day_of_week, quarter  optional, from the timestamp
//
// The first max(L, max W) observations lack full history and are dropped,
// so no row ever looks at its own value or the future:
//
//	m, err := features.Build(series, 5, []int{7, 14, 30}, true)
//	// 100 observations -> 70 rows
//
// Builder.Next produces the row for the not yet observed next period, and
// Row.Advance shifts the lags forward by one predicted value:
//
//	seed, err := b.Next(series, series.NextTimestamp())
//	next := seed.Advance(prediction)
package features

// Package goforecast forecasts univariate financial price series.
//
// A run standardizes raw (date, price) rows into a sorted series, checks
// stationarity, and trains two kinds of model on a chronological holdout:
// an ARIMA model whose order is chosen automatically, and a gradient-boosted
// tree ensemble over lag, rolling and calendar features. Both are scored
// with the same fifteen metrics and then refitted to forecast forward.
//
// # Quick Start
//
//	series, err := timeseries.Standardize(rows, "Date", "Close")
//	if err != nil {
//	    return err
//	}
//
//	f, err := forecast.Train(forecast.KindStatistical,
//	    forecast.History{Series: series}, forecast.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	res, _ := f.Forecast(30) // res.Values, res.Lower, res.Upper
//
// # Packages
//
//   - timeseries: series type and row standardization
//   - datasource: CSV and XLSX row readers
//   - stats: unit-root tests, differencing, ACF/PACF, descriptive statistics
//   - features: lag, rolling and calendar feature matrices
//   - split: chronological train/test splitting
//   - arima: ARIMA(p,d,q) estimation and forecasting
//   - autoarima: automatic order selection
//   - gbm: gradient-boosted regression trees
//   - forecast: the Forecaster interface over both model kinds
//   - evaluation: forecast accuracy metrics and model comparison
//   - config, logger, pipeline, report: the application around the library
//
// The cmd/goforecast binary wires these together.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Chen, T., & Guestrin, C. (2016). XGBoost: A Scalable Tree Boosting System
package goforecast

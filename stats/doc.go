// Package stats provides stationarity tests, differencing analysis,
// autocorrelation diagnostics and descriptive statistics for price series.
//
// # Stationarity Tests
//
// All tests return a *Result and fail with errs.ErrInsufficientData when the
// series is too short or constant:
//
//	// Augmented Dickey-Fuller, H0: unit root. Lag chosen by AIC.
//	adf, err := stats.ADF(series, stats.ADFOptions{})
//
//	// KPSS, H0: stationary.
//	kpss, err := stats.KPSS(series, stats.KPSSOptions{Regression: "c"})
//
//	// Phillips-Perron, H0: unit root.
//	pp, err := stats.PhillipsPerron(series, stats.PPOptions{})
//
// # Making a Series Stationary
//
// The Analyzer differences until the configured test passes, up to
// MaxDifferencing times:
//
//	a, err := stats.NewAnalyzer(stats.DefaultConfig())
//	result, err := a.Test(series)
//	diffed, d, err := a.MakeStationary(series) // errs.ErrNonConvergence past the cap
//
// NDiffs picks the differencing order for ARIMA order search:
//
//	d := stats.NDiffs(series, 2, "kpss")
//
// # Residual Diagnostics
//
//	acf := stats.ACFWithConfidence(residuals, 20, 0.95)
//	lags := acf.Significant()
//	lb := stats.LjungBox(residuals, 10, p+q)
//
// # Descriptive Statistics
//
//	summary := stats.Describe(series)
//	returns := stats.Returns(series)
package stats

// Package arima implements AutoRegressive Integrated Moving Average (ARIMA) models.
//
// An ARIMA(p,d,q) model combines:
//   - AR(p): AutoRegressive component with p lags
//   - I(d): Integration (differencing) of order d
//   - MA(q): Moving Average component with q lags
//
// Coefficients are estimated by conditional sum of squares, minimised with
// Nelder-Mead over coefficients bounded to (-0.99, 0.99). The likelihood
// starts after max(p, Conditioning) observations; set Conditioning to the
// largest p under comparison so that information criteria share a sample.
//
// # Basic Usage
//
//	model := arima.New(1, 1, 0)
//	if err := model.Fit(series); err != nil {
//	    return err
//	}
//
//	forecasts, _ := model.Predict(10)
//
// # Trend
//
// NewWithTrend adds a deterministic trend: a fitted line when d = 0, a drift
// term when d >= 1.
//
//	model := arima.NewWithTrend(1, 1, 1)
//
// # Confidence Bands
//
// PredictInterval propagates the innovation variance through the psi weights
// of the integrated model:
//
//	pred, _ := model.PredictInterval(30, 0.95)
//	// pred.Mean, pred.Lower, pred.Upper
//
// # Diagnostics
//
//	fitted := model.FittedValues() // original scale, one per observation
//	summary := model.Summary()     // AIC/AICc/BIC, Ljung-Box, Durbin-Watson
//
// For automatic order selection, use the autoarima package.
package arima

// Package forecast puts the statistical and boosted-tree models behind one
// Forecaster interface and dispatches on a model-kind tag.
//
//	f, err := forecast.Train(forecast.KindStatistical,
//	    forecast.History{Series: train}, forecast.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	res, _ := f.Forecast(30) // res.Values, res.Lower, res.Upper
//
// The boosted variant trains on a feature matrix and forecasts by recursive
// rollout. Each step feeds its prediction back as lag_1 and shifts the other
// lags; rolling and calendar features are not recomputed from the synthetic
// values, which biases long horizons.
//
//	f, err := forecast.Train(forecast.KindBoostedTree,
//	    forecast.History{X: m, Y: m.Target}, forecast.DefaultConfig())
package forecast

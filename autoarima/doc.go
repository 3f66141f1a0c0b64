// Package autoarima implements automatic ARIMA order selection.
//
// The differencing order d is chosen first with a unit-root test (KPSS by
// default). Every (p, q) pair up to MaxP and MaxQ is then fitted concurrently,
// each conditioned on the first MaxP observations, and the model with the
// lowest information criterion wins. No seasonal terms are searched.
//
// # Basic Usage
//
//	config := autoarima.DefaultConfig()
//	result, err := autoarima.Search(series, config)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("Best model: %s\n", result.Order)
//	fmt.Printf("AIC: %.2f, Models evaluated: %d\n",
//	    result.AIC, result.ModelsEvaluated)
//
//	pred, _ := result.PredictInterval(10, 0.95)
//
// # Configuration Options
//
//	config := autoarima.Config{
//	    MaxP:        3,      // Maximum AR order
//	    MaxD:        2,      // Maximum differencing order
//	    MaxQ:        3,      // Maximum MA order
//	    Criterion:   "aicc", // "aic", "aicc", or "bic"
//	    Trend:       true,   // Fit a trend or drift term
//	    StationTest: "kpss", // "kpss", "adf" or "pp"
//	    Workers:     4,      // Concurrent fits, 0 means GOMAXPROCS
//	}
//
// # Search Methods
//
//   - Grid (default): every combination, evaluated by a bounded worker pool
//   - Stepwise: neighbourhood search from a few simple orders (set Stepwise=true)
//
// Both are deterministic. Equal criteria are resolved in favour of the
// smaller p+q, then the smaller p.
package autoarima

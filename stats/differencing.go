package stats

import (
	"math"

	"github.com/sartorproj/goforecast/timeseries"
)

// NDiffs determines the number of first differences required for stationarity.
// test is "kpss" (default), "adf" or "pp"; maxD defaults to 2.
// A series that becomes too short to test stops the search at the current d.
func NDiffs(series *timeseries.Series, maxD int, test string) int {
	if maxD <= 0 {
		maxD = 2
	}
	if test == "" {
		test = TestKPSS
	}
	tester, err := NewTester(test)
	if err != nil {
		return 0
	}

	current := series
	for d := 0; d < maxD; d++ {
		result, err := tester.Test(current, DefaultSignificance)
		if err != nil || result.IsStationary {
			return d
		}
		current = current.Diff()
	}
	return maxD
}

// InformationCriteria holds the model selection criteria of a fit.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC calculates AIC, AICc and BIC from a log-likelihood, the number
// of observations and the number of estimated parameters.
func CalculateIC(logLik float64, nObs, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return &InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    bic,
		LogLik: logLik,
	}
}

package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// PortmanteauResult is the outcome of a Ljung-Box or Box-Pierce test.
type PortmanteauResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests residuals for autocorrelation up to lag h.
// The null is no autocorrelation; fitdf is the number of fitted ARMA
// parameters (p + q). Returns nil for fewer than 10 values.
func LjungBox(residuals []float64, lags, fitdf int) *PortmanteauResult {
	return portmanteau(residuals, lags, fitdf, true)
}

// BoxPierce is the unweighted variant of LjungBox.
func BoxPierce(residuals []float64, lags, fitdf int) *PortmanteauResult {
	return portmanteau(residuals, lags, fitdf, false)
}

func portmanteau(x []float64, lags, fitdf int, ljung bool) *PortmanteauResult {
	n := len(x)
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(x, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		if ljung {
			q += acf[k] * acf[k] / float64(n-k)
		} else {
			q += acf[k] * acf[k]
		}
	}
	if ljung {
		q *= float64(n * (n + 2))
	} else {
		q *= float64(n)
	}

	dof := max(lags-fitdf, 1)
	chi := distuv.ChiSquared{K: float64(dof)}

	return &PortmanteauResult{
		Statistic: q,
		PValue:    chi.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// DurbinWatson returns the Durbin-Watson statistic of residuals: about 2 for
// no first-order autocorrelation, below 2 for positive, above for negative.
// It is NaN for fewer than two values or all-zero residuals.
func DurbinWatson(residuals []float64) float64 {
	n := len(residuals)
	if n < 2 {
		return nan
	}
	den := floats.Dot(residuals, residuals)
	if den == 0 {
		return nan
	}
	d := make([]float64, n-1)
	floats.SubTo(d, residuals[1:], residuals[:n-1])
	return floats.Dot(d, d) / den
}

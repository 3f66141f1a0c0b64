package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ACF returns the sample autocorrelations of x for lags 0..maxLag.
// It returns nil for a constant or empty input.
func ACF(x []float64, maxLag int) []float64 {
	n := len(x)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(x, nil)
	centered := make([]float64, n)
	variance := 0.0
	for i, v := range x {
		centered[i] = v - mean
		variance += centered[i] * centered[i]
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += centered[i] * centered[i-k]
		}
		acf[k] = sum / variance
	}
	return acf
}

// PACF returns partial autocorrelations for lags 0..maxLag using the
// Durbin-Levinson recursion. PACF[0] is 1.
func PACF(x []float64, maxLag int) []float64 {
	if maxLag >= len(x) {
		maxLag = len(x) - 1
	}
	if maxLag < 1 {
		return nil
	}

	acf := ACF(x, maxLag)
	if acf == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1

	prev := make([]float64, maxLag+1)
	cur := make([]float64, maxLag+1)
	prev[1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}
		if den == 0 {
			break
		}

		cur[k] = num / den
		for j := 1; j < k; j++ {
			cur[j] = prev[j] - cur[k]*prev[k-j]
		}
		pacf[k] = cur[k]
		prev, cur = cur, prev
	}

	return pacf
}

// Correlogram is an ACF or PACF with its white-noise confidence bound.
type Correlogram struct {
	Values     []float64 // index is the lag
	ConfBounds float64
}

// Significant returns the lags above lag 0 whose value exceeds the bound.
func (c *Correlogram) Significant() []int {
	var lags []int
	for i := 1; i < len(c.Values); i++ {
		if math.Abs(c.Values[i]) > c.ConfBounds {
			lags = append(lags, i)
		}
	}
	return lags
}

// ACFWithConfidence computes the ACF with a two-sided bound at level
// (e.g. 0.95 gives 1.96/sqrt(n)).
func ACFWithConfidence(x []float64, maxLag int, level float64) *Correlogram {
	return correlogram(ACF(x, maxLag), len(x), level)
}

// PACFWithConfidence computes the PACF with a two-sided bound at level.
func PACFWithConfidence(x []float64, maxLag int, level float64) *Correlogram {
	return correlogram(PACF(x, maxLag), len(x), level)
}

func correlogram(values []float64, n int, level float64) *Correlogram {
	if values == nil {
		return nil
	}
	if level <= 0 || level >= 1 {
		level = 0.95
	}
	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	return &Correlogram{Values: values, ConfBounds: z / math.Sqrt(float64(n))}
}

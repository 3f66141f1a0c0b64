package stats

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/timeseries"
)

func whiteNoise(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.NormFloat64()
	}
	return values
}

func alternating(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 1
		if i%2 == 1 {
			values[i] = -1
		}
	}
	return values
}

func TestACF(t *testing.T) {
	acf := ACF(alternating(100), 3)
	require.Len(t, acf, 4)

	assert.InDelta(t, 1.0, acf[0], 1e-12)
	assert.InDelta(t, -0.99, acf[1], 1e-12)
	assert.InDelta(t, 0.98, acf[2], 1e-12)

	assert.Nil(t, ACF([]float64{4, 4, 4}, 2), "constant input has no ACF")
	assert.Len(t, ACF([]float64{1, 2, 3}, 10), 3, "maxLag is capped at n-1")
}

func TestPACF(t *testing.T) {
	x := alternating(100)
	acf := ACF(x, 5)
	pacf := PACF(x, 5)
	require.Len(t, pacf, 6)

	assert.Equal(t, 1.0, pacf[0])
	assert.InDelta(t, acf[1], pacf[1], 1e-12)

	// AR(1) with phi=0.7: lag-1 partial autocorrelation near phi.
	noise := whiteNoise(500, 7)
	ar := make([]float64, len(noise))
	for i := 1; i < len(ar); i++ {
		ar[i] = 0.7*ar[i-1] + noise[i]
	}
	p := PACF(ar, 5)
	t.Logf("AR(1) PACF: %v", p)
	assert.Greater(t, p[1], 0.4)
}

func TestCorrelogram(t *testing.T) {
	c := ACFWithConfidence(alternating(100), 4, 0.95)
	require.NotNil(t, c)

	assert.InDelta(t, 0.196, c.ConfBounds, 1e-3)
	assert.Equal(t, []int{1, 2, 3, 4}, c.Significant())

	assert.Nil(t, PACFWithConfidence([]float64{1}, 3, 0.95))
}

func TestLjungBox(t *testing.T) {
	lb := LjungBox(alternating(100), 10, 2)
	require.NotNil(t, lb)
	assert.Equal(t, 8, lb.DOF)
	assert.Less(t, lb.PValue, 1e-6, "alternating signs are strongly autocorrelated")

	noise := LjungBox(whiteNoise(200, 3), 10, 0)
	require.NotNil(t, noise)
	t.Logf("white noise Ljung-Box: Q=%.3f p=%.3f", noise.Statistic, noise.PValue)

	bp := BoxPierce(alternating(100), 10, 0)
	require.NotNil(t, bp)
	assert.Less(t, bp.Statistic, lb.Statistic)

	assert.Nil(t, LjungBox([]float64{1, 2, 3}, 2, 0), "too few values")
}

func TestDurbinWatson(t *testing.T) {
	assert.InDelta(t, 3.0, DurbinWatson([]float64{1, -1, 1, -1}), 1e-12)
	assert.True(t, math.IsNaN(DurbinWatson([]float64{1})))
	assert.True(t, math.IsNaN(DurbinWatson([]float64{0, 0, 0})))
}

func TestADFWhiteNoise(t *testing.T) {
	series := timeseries.New(whiteNoise(200, 42))

	result, err := ADF(series, ADFOptions{})
	require.NoError(t, err)

	t.Logf("ADF white noise: stat=%.3f p=%.5f lag=%d nobs=%d",
		result.Statistic, result.PValue, result.UsedLag, result.NObs)

	assert.Equal(t, TestADF, result.Test)
	assert.True(t, result.IsStationary)
	assert.Len(t, result.CriticalValues, 3)
	assert.Equal(t, 200-1-result.UsedLag, result.NObs)
	assert.LessOrEqual(t, result.UsedLag, 15)
}

func TestADFRandomWalk(t *testing.T) {
	noise := whiteNoise(200, 11)
	walk := make([]float64, len(noise))
	walk[0] = 100
	for i := 1; i < len(walk); i++ {
		walk[i] = walk[i-1] + noise[i]
	}

	result, err := ADF(timeseries.New(walk), ADFOptions{})
	require.NoError(t, err)
	t.Logf("ADF random walk: stat=%.3f p=%.3f stationary=%v",
		result.Statistic, result.PValue, result.IsStationary)
}

func TestADFFixedLag(t *testing.T) {
	result, err := ADF(timeseries.New(whiteNoise(100, 5)), ADFOptions{MaxLag: 2, FixedLag: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.UsedLag)
	assert.Equal(t, 100-1-2, result.NObs)
}

func TestADFInsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"empty", nil},
		{"short", []float64{1, 3, 2, 5, 4, 6}},
		{"constant", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ADF(timeseries.New(tt.values), ADFOptions{})
			assert.ErrorIs(t, err, errs.ErrInsufficientData)
		})
	}
}

func TestMacKinnonPValue(t *testing.T) {
	assert.Equal(t, 1.0, mackinnonPValue(3))
	assert.Equal(t, 0.0, mackinnonPValue(-20))

	// Close to the asymptotic 5% critical value.
	assert.InDelta(t, 0.05, mackinnonPValue(-2.86), 0.005)

	prev := 0.0
	for stat := -6.0; stat <= 2.0; stat += 0.25 {
		p := mackinnonPValue(stat)
		assert.GreaterOrEqual(t, p, prev, "p-value must not decrease at %v", stat)
		prev = p
	}
}

func TestMacKinnonCritical(t *testing.T) {
	asymptotic := mackinnonCritical(1_000_000_000)
	assert.InDelta(t, -3.43035, asymptotic["1%"], 1e-6)
	assert.InDelta(t, -2.86154, asymptotic["5%"], 1e-6)
	assert.InDelta(t, -2.56677, asymptotic["10%"], 1e-6)

	small := mackinnonCritical(100)
	assert.InDelta(t, -3.4975, small["1%"], 1e-3)
	assert.Less(t, small["1%"], small["5%"])
	assert.Less(t, small["5%"], small["10%"])
}

func TestKPSSTrend(t *testing.T) {
	n := 100
	trend := make([]float64, n)
	noise := whiteNoise(n, 9)
	for i := range trend {
		trend[i] = 100 + 2*float64(i) + noise[i]
	}

	level, err := KPSS(timeseries.New(trend), KPSSOptions{Regression: "c"})
	require.NoError(t, err)
	assert.Equal(t, 0.01, level.PValue)
	assert.False(t, level.IsStationary)

	detrended, err := KPSS(timeseries.New(trend), KPSSOptions{Regression: "ct"})
	require.NoError(t, err)
	t.Logf("KPSS trend-stationary: stat=%.4f p=%.3f", detrended.Statistic, detrended.PValue)
	assert.Equal(t, 0.146, detrended.CriticalValues["5%"])

	_, err = KPSS(timeseries.New([]float64{1, 2, 3}), KPSSOptions{})
	assert.ErrorIs(t, err, errs.ErrInsufficientData)
}

func TestKPSSPValue(t *testing.T) {
	assert.Equal(t, 0.10, kpssPValue(0.1, kpssLevelTable))
	assert.Equal(t, 0.01, kpssPValue(2.0, kpssLevelTable))
	assert.InDelta(t, 0.075, kpssPValue(0.405, kpssLevelTable), 1e-9)
}

func TestPhillipsPerron(t *testing.T) {
	result, err := PhillipsPerron(timeseries.New(whiteNoise(200, 13)), PPOptions{})
	require.NoError(t, err)

	t.Logf("PP white noise: stat=%.3f p=%.5f", result.Statistic, result.PValue)
	assert.Equal(t, TestPP, result.Test)
	assert.True(t, result.IsStationary)
	assert.Equal(t, 199, result.NObs)
}

func TestNDiffs(t *testing.T) {
	n := 100
	noise := whiteNoise(n, 21)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = 100 + 2*float64(i) + noise[i]
	}

	d := NDiffs(timeseries.New(trend), 2, "kpss")
	t.Logf("trend ndiffs: %d", d)
	assert.GreaterOrEqual(t, d, 1)
	assert.LessOrEqual(t, d, 2)

	assert.Equal(t, 0, NDiffs(timeseries.New(trend), 2, "bogus"))
	assert.Equal(t, 0, NDiffs(timeseries.New([]float64{1, 2}), 2, "adf"), "too short to test")
}

func TestCalculateIC(t *testing.T) {
	ic := CalculateIC(-100, 50, 3)
	assert.InDelta(t, 206.0, ic.AIC, 1e-9)
	assert.InDelta(t, 206.0+24.0/46.0, ic.AICc, 1e-9)
	assert.InDelta(t, 200+3*math.Log(50), ic.BIC, 1e-9)

	assert.True(t, math.IsInf(CalculateIC(-1, 3, 3).AICc, 1))
}

func TestDescribe(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err := timeseries.NewWithTimestamps(
		[]time.Time{start, start.AddDate(0, 0, 1), start.AddDate(0, 0, 2)},
		[]float64{3, 1, 2},
	)
	require.NoError(t, err)

	s := Describe(series)
	assert.Equal(t, 3, s.NObs)
	assert.Equal(t, start, s.Start)
	assert.Equal(t, start.AddDate(0, 0, 2), s.End)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.Equal(t, 2.0, s.Median)
	assert.InDelta(t, 1.0, s.Std, 1e-12)

	empty := Describe(timeseries.New(nil))
	assert.Zero(t, empty.NObs)
	assert.True(t, math.IsNaN(empty.Mean))

	single := Describe(timeseries.New([]float64{5}))
	assert.Equal(t, 5.0, single.Median)
	assert.True(t, math.IsNaN(single.Std))
}

func TestReturns(t *testing.T) {
	r := Returns(timeseries.New([]float64{100, 110, 99}))
	require.True(t, r.Defined)
	assert.InDelta(t, 0.0, r.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.02), r.Volatility, 1e-12)
	assert.InDelta(t, -0.1, r.Min, 1e-12)
	assert.InDelta(t, 0.1, r.Max, 1e-12)

	assert.False(t, Returns(timeseries.New([]float64{100, 101})).Defined)
}

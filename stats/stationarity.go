package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/timeseries"
)

// DefaultSignificance is the level used when a test is given none.
const DefaultSignificance = 0.05

// minTestObs is the smallest regression sample a unit-root test accepts.
const minTestObs = 10

// Result is the outcome of a stationarity test.
type Result struct {
	Test           string
	Statistic      float64
	PValue         float64
	UsedLag        int
	NObs           int
	CriticalValues map[string]float64 // keyed "1%", "5%", "10%"
	IsStationary   bool
}

// ADFOptions configures the Augmented Dickey-Fuller test.
type ADFOptions struct {
	// MaxLag bounds the lag search. Zero picks ceil(12*(n/100)^(1/4)).
	MaxLag int
	// FixedLag skips the AIC search and uses MaxLag as is.
	FixedLag bool
	// Significance for IsStationary (default 0.05).
	Significance float64
}

// ADF performs the Augmented Dickey-Fuller test with a constant term.
// The null hypothesis is a unit root; IsStationary reports p < significance.
//
// Lagged differences are chosen by AIC over 0..MaxLag on a common sample,
// the p-value follows MacKinnon (1994) and the critical values MacKinnon (2010).
func ADF(series *timeseries.Series, opts ADFOptions) (*Result, error) {
	const op = "stats.ADF"

	y := series.Values
	n := len(y)
	if isConstant(y) {
		return nil, errs.New(errs.ErrInsufficientData, op, "series of length %d is constant", n)
	}

	maxLag := opts.MaxLag
	if maxLag <= 0 && !opts.FixedLag {
		maxLag = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if limit := n/2 - 2; maxLag > limit {
		maxLag = limit
	}
	if maxLag < 0 || n-1-maxLag < minTestObs {
		return nil, errs.New(errs.ErrInsufficientData, op, "%d observations are too few for a unit-root test", n)
	}

	dy := diff(y)

	usedLag := maxLag
	if !opts.FixedLag {
		best := math.Inf(1)
		for lag := 0; lag <= maxLag; lag++ {
			x, target := adfDesign(y, dy, maxLag, lag)
			fit, err := ols(x, target)
			if err != nil {
				continue
			}
			if aic := fit.aic(); aic < best {
				best = aic
				usedLag = lag
			}
		}
		if math.IsInf(best, 1) {
			return nil, errs.New(errs.ErrInsufficientData, op, "no lag order produced a usable regression")
		}
	}

	x, target := adfDesign(y, dy, usedLag, usedLag)
	fit, err := ols(x, target)
	if err != nil {
		return nil, errs.Wrap(errs.ErrInsufficientData, op, err, "test regression failed")
	}

	statistic := fit.tStat(1)
	pValue := mackinnonPValue(statistic)

	return &Result{
		Test:           TestADF,
		Statistic:      statistic,
		PValue:         pValue,
		UsedLag:        usedLag,
		NObs:           fit.NObs,
		CriticalValues: mackinnonCritical(fit.NObs),
		IsStationary:   pValue < significance(opts.Significance),
	}, nil
}

// adfDesign builds dy[t] ~ 1 + y[t] + dy[t-1] + ... + dy[t-lag] for t >= trim.
func adfDesign(y, dy []float64, trim, lag int) (*mat.Dense, []float64) {
	nobs := len(dy) - trim
	x := mat.NewDense(nobs, 2+lag, nil)
	target := make([]float64, nobs)
	for i := 0; i < nobs; i++ {
		t := i + trim
		target[i] = dy[t]
		x.Set(i, 0, 1)
		x.Set(i, 1, y[t])
		for j := 1; j <= lag; j++ {
			x.Set(i, 1+j, dy[t-j])
		}
	}
	return x, target
}

// KPSSOptions configures the KPSS test.
type KPSSOptions struct {
	// Regression is "c" (level) or "ct" (trend). Default "c".
	Regression string
	// Lags for the Newey-West variance. Zero picks ceil(12*(n/100)^(1/4)).
	Lags         int
	Significance float64
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test.
// The null hypothesis is stationarity; IsStationary reports p >= significance.
// P-values are interpolated from the published table and clipped to [0.01, 0.10].
func KPSS(series *timeseries.Series, opts KPSSOptions) (*Result, error) {
	const op = "stats.KPSS"

	n := series.Len()
	if n < minTestObs {
		return nil, errs.New(errs.ErrInsufficientData, op, "%d observations are too few for a KPSS test", n)
	}
	if isConstant(series.Values) {
		return nil, errs.New(errs.ErrInsufficientData, op, "series of length %d is constant", n)
	}

	nlags := opts.Lags
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	residuals := make([]float64, n)
	if opts.Regression == "ct" {
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i)
		}
		a, b := stat.LinearRegression(t, series.Values, nil, false)
		for i, v := range series.Values {
			residuals[i] = v - a - b*t[i]
		}
	} else {
		mean := stat.Mean(series.Values, nil)
		for i, v := range series.Values {
			residuals[i] = v - mean
		}
	}

	cumSum := make([]float64, n)
	floats.CumSum(cumSum, residuals)

	// Newey-West long-run variance with Bartlett weights.
	s2 := floats.Dot(residuals, residuals) / float64(n)
	for l := 1; l <= nlags; l++ {
		cov := floats.Dot(residuals[l:], residuals[:n-l]) / float64(n)
		weight := 1.0 - float64(l)/float64(nlags+1)
		s2 += 2 * weight * cov
	}
	if s2 <= 0 {
		return nil, errs.New(errs.ErrInsufficientData, op, "long-run variance is not positive")
	}

	statistic := floats.Dot(cumSum, cumSum) / (float64(n) * float64(n) * s2)

	table := kpssLevelTable
	if opts.Regression == "ct" {
		table = kpssTrendTable
	}
	pValue := kpssPValue(statistic, table)

	return &Result{
		Test:      TestKPSS,
		Statistic: statistic,
		PValue:    pValue,
		UsedLag:   nlags,
		NObs:      n,
		CriticalValues: map[string]float64{
			"10%": table[0],
			"5%":  table[1],
			"1%":  table[3],
		},
		IsStationary: pValue >= significance(opts.Significance),
	}, nil
}

// PPOptions configures the Phillips-Perron test.
type PPOptions struct {
	// Lags for the long-run variance. Zero picks floor(4*(n/100)^(1/4)).
	Lags         int
	Significance float64
}

// PhillipsPerron performs the Phillips-Perron Z-tau test with a constant.
// Like ADF the null is a unit root, but serial correlation is handled with a
// non-parametric correction instead of lagged differences.
func PhillipsPerron(series *timeseries.Series, opts PPOptions) (*Result, error) {
	const op = "stats.PhillipsPerron"

	y := series.Values
	n := len(y)
	if n-1 < minTestObs {
		return nil, errs.New(errs.ErrInsufficientData, op, "%d observations are too few for a unit-root test", n)
	}
	if isConstant(y) {
		return nil, errs.New(errs.ErrInsufficientData, op, "series of length %d is constant", n)
	}

	nlags := opts.Lags
	if nlags <= 0 {
		nlags = int(math.Floor(4 * math.Pow(float64(n)/100, 0.25)))
	}

	dy := diff(y)
	x, target := adfDesign(y, dy, 0, 0)
	fit, err := ols(x, target)
	if err != nil {
		return nil, errs.Wrap(errs.ErrInsufficientData, op, err, "test regression failed")
	}

	nObs := len(target)
	residuals := make([]float64, nObs)
	for i := range residuals {
		residuals[i] = target[i] - fit.Coeffs[0] - fit.Coeffs[1]*x.At(i, 1)
	}

	s2 := fit.SSR / float64(nObs-2)
	gamma0 := fit.SSR / float64(nObs)
	lambda2 := gamma0
	for l := 1; l <= nlags && l < nObs; l++ {
		gammaL := floats.Dot(residuals[l:], residuals[:nObs-l]) / float64(nObs)
		weight := 1.0 - float64(l)/float64(nlags+1)
		lambda2 += 2 * weight * gammaL
	}
	if lambda2 <= 0 {
		return nil, errs.New(errs.ErrInsufficientData, op, "long-run variance is not positive")
	}

	tStat := fit.tStat(1)
	correction := (lambda2 - gamma0) / (2 * math.Sqrt(lambda2)) * (float64(nObs) * fit.StdErrors[1] / math.Sqrt(s2))
	statistic := math.Sqrt(gamma0/lambda2)*tStat - correction
	pValue := mackinnonPValue(statistic)

	return &Result{
		Test:           TestPP,
		Statistic:      statistic,
		PValue:         pValue,
		UsedLag:        nlags,
		NObs:           nObs,
		CriticalValues: mackinnonCritical(nObs),
		IsStationary:   pValue < significance(opts.Significance),
	}, nil
}

// MacKinnon (1994) response surface for the constant-only, single series case.
var (
	tauSmallP = []float64{2.1659, 1.4412, 0.038269}
	tauLargeP = []float64{1.7339, 0.93202, -0.12745, -0.010368}
)

const (
	tauStar = -1.61
	tauMax  = 2.74
	tauMin  = -18.83
)

// MacKinnon (2010) finite-sample critical value coefficients, constant only.
var tauCritical = map[string][]float64{
	"1%":  {-3.43035, -6.5393, -16.786, -79.433},
	"5%":  {-2.86154, -2.8903, -4.234, -40.040},
	"10%": {-2.56677, -1.5384, -2.809, 0},
}

func mackinnonPValue(stat float64) float64 {
	switch {
	case stat > tauMax:
		return 1
	case stat < tauMin:
		return 0
	}

	coef := tauLargeP
	if stat <= tauStar {
		coef = tauSmallP
	}
	return distuv.UnitNormal.CDF(polyval(coef, stat))
}

func mackinnonCritical(nobs int) map[string]float64 {
	inv := 1 / float64(nobs)
	crit := make(map[string]float64, len(tauCritical))
	for level, coef := range tauCritical {
		crit[level] = polyval(coef, inv)
	}
	return crit
}

// polyval evaluates c[0] + c[1]x + c[2]x^2 + ...
func polyval(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}

// KPSS critical values at 10%, 5%, 2.5% and 1%.
var (
	kpssLevelTable = []float64{0.347, 0.463, 0.574, 0.739}
	kpssTrendTable = []float64{0.119, 0.146, 0.176, 0.216}
	kpssPValues    = []float64{0.10, 0.05, 0.025, 0.01}
)

func kpssPValue(stat float64, crit []float64) float64 {
	if stat <= crit[0] {
		return kpssPValues[0]
	}
	last := len(crit) - 1
	if stat >= crit[last] {
		return kpssPValues[last]
	}
	for i := 1; i <= last; i++ {
		if stat <= crit[i] {
			frac := (stat - crit[i-1]) / (crit[i] - crit[i-1])
			return kpssPValues[i-1] + frac*(kpssPValues[i]-kpssPValues[i-1])
		}
	}
	return kpssPValues[last]
}

func significance(alpha float64) float64 {
	if alpha <= 0 || alpha >= 1 {
		return DefaultSignificance
	}
	return alpha
}

func diff(y []float64) []float64 {
	if len(y) < 2 {
		return nil
	}
	d := make([]float64, len(y)-1)
	floats.SubTo(d, y[1:], y[:len(y)-1])
	return d
}

func isConstant(y []float64) bool {
	if len(y) == 0 {
		return true
	}
	return floats.Max(y) == floats.Min(y)
}

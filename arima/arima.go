package arima

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// coefBound keeps every AR and MA coefficient inside (-coefBound, coefBound).
const coefBound = 0.99

// minVariance floors the innovation variance of a perfect fit.
const minVariance = 1e-12

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model represents an ARIMA model.
//
// With Trend set, a d = 0 model is fitted around an OLS line a + b*t and a
// d >= 1 model carries a drift (the mean of the differenced series). Without
// Trend, a d = 0 model is fitted around the sample mean and a d >= 1 model has
// no constant.
type Model struct {
	Order        Order
	Trend        bool
	// Conditioning is the number of leading observations of the modelled
	// series held out of the likelihood; values below P count as P. Models
	// compared by information criterion must share it.
	Conditioning int

	ARCoeffs  []float64 // phi
	MACoeffs  []float64 // theta
	Intercept float64   // mean of the modelled series, or drift when d >= 1
	Slope     float64   // linear trend slope, d = 0 with Trend only
	TrendBase float64   // linear trend intercept, d = 0 with Trend only
	Variance  float64   // innovation variance
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64

	fitted    bool
	data      []float64
	work      []float64 // differenced or detrended series the ARMA part is fitted on
	lasts     []float64 // last value at each differencing level 0..d-1
	residuals []float64
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// NewWithTrend creates a model with a deterministic trend term.
func NewWithTrend(p, d, q int) *Model {
	m := New(p, d, q)
	m.Trend = true
	return m
}

// MinObservations is the shortest series Fit accepts for order o.
func MinObservations(o Order) int {
	return o.P + o.Q + o.D + 10
}

// Fit estimates the model by conditional sum of squares. The model is left
// unchanged when Fit fails.
func (m *Model) Fit(series *timeseries.Series) error {
	const op = "arima.Fit"

	if m.Order.P < 0 || m.Order.D < 0 || m.Order.Q < 0 || m.Conditioning < 0 {
		return errs.New(errs.ErrConfig, op, "negative order %s or conditioning %d", m.Order, m.Conditioning)
	}
	need := MinObservations(m.Order) + max(0, m.Conditioning-m.Order.P)
	if series.Len() < need {
		return errs.New(errs.ErrInsufficientData, op,
			"%d observations are too few for %s conditioned on %d", series.Len(), m.Order, m.start())
	}

	next := &Model{Order: m.Order, Trend: m.Trend, Conditioning: m.Conditioning}
	next.data = slices.Clone(series.Values)
	next.lasts = make([]float64, m.Order.D)

	work := series
	for i := 0; i < m.Order.D; i++ {
		next.lasts[i] = work.Values[work.Len()-1]
		work = work.Diff()
	}
	next.work = slices.Clone(work.Values)

	if m.Order.D == 0 && m.Trend {
		t := make([]float64, len(next.work))
		for i := range t {
			t[i] = float64(i)
		}
		next.TrendBase, next.Slope = stat.LinearRegression(t, next.work, nil, false)
		for i := range next.work {
			next.work[i] -= next.TrendBase + next.Slope*t[i]
		}
	}

	if next.hasMean() {
		next.Intercept = stat.Mean(next.work, nil)
	}

	if err := next.fitCSS(); err != nil {
		return err
	}

	next.calculateIC()
	next.fitted = true
	*m = *next
	return nil
}

// start is the first index of the modelled series inside the likelihood.
func (m *Model) start() int {
	return max(m.Order.P, m.Conditioning)
}

func (m *Model) hasMean() bool {
	return m.Order.D == 0 || m.Trend
}

// nParams counts estimated parameters including the innovation variance.
func (m *Model) nParams() int {
	k := m.Order.P + m.Order.Q + 1
	if m.hasMean() {
		k++
	}
	if m.Order.D == 0 && m.Trend {
		k++
	}
	return k
}

// fitCSS minimises the conditional sum of squares with Nelder-Mead over
// tanh-bounded coefficients, starting from Yule-Walker AR estimates.
func (m *Model) fitCSS() error {
	const op = "arima.Fit"

	p, q := m.Order.P, m.Order.Q
	m.ARCoeffs = make([]float64, p)
	m.MACoeffs = make([]float64, q)

	if p+q > 0 {
		init := make([]float64, p+q)
		if p > 0 {
			if acf := stats.ACF(m.work, p); acf != nil {
				for i, phi := range yuleWalker(acf, p) {
					init[i] = unbound(phi)
				}
			}
		}

		// Scale-free objective: the sum of squares relative to the mean model.
		scale := 0.0
		for _, y := range m.work[m.start():] {
			scale += (y - m.Intercept) * (y - m.Intercept)
		}
		if scale <= 0 {
			scale = 1
		}

		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				ar, ma := m.split(x)
				sse, _ := m.css(ar, ma)
				return sse / scale
			},
		}
		settings := &optimize.Settings{
			FuncEvaluations: 400 * (p + q + 1),
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Relative:   1e-10,
				Iterations: 100,
			},
		}

		result, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
		if result == nil || len(result.X) != p+q {
			return errs.Wrap(errs.ErrNonConvergence, op, err, "CSS optimisation of %s failed", m.Order)
		}
		m.ARCoeffs, m.MACoeffs = m.split(result.X)
	}

	sse, residuals := m.css(m.ARCoeffs, m.MACoeffs)
	count := len(m.work) - m.start()
	if math.IsNaN(sse) || math.IsInf(sse, 0) || count <= 0 {
		return errs.New(errs.ErrNonConvergence, op, "CSS of %s is not finite", m.Order)
	}

	for t := 0; t < m.start() && t < len(residuals); t++ {
		residuals[t] = m.work[t] - m.Intercept
	}
	m.residuals = residuals
	m.Variance = max(sse/float64(count), minVariance)
	return nil
}

// css returns the conditional sum of squares from start() onwards and the
// residual path (zero before start()).
func (m *Model) css(ar, ma []float64) (float64, []float64) {
	y := m.work
	mu := m.Intercept
	residuals := make([]float64, len(y))

	sse := 0.0
	for t := m.start(); t < len(y); t++ {
		pred := mu
		for i, phi := range ar {
			pred += phi * (y[t-i-1] - mu)
		}
		for j, theta := range ma {
			if t-j-1 >= 0 {
				pred += theta * residuals[t-j-1]
			}
		}
		residuals[t] = y[t] - pred
		sse += residuals[t] * residuals[t]
	}
	return sse, residuals
}

func (m *Model) split(x []float64) (ar, ma []float64) {
	p := m.Order.P
	ar = make([]float64, p)
	ma = make([]float64, len(x)-p)
	for i := range ar {
		ar[i] = bound(x[i])
	}
	for j := range ma {
		ma[j] = bound(x[p+j])
	}
	return ar, ma
}

func bound(x float64) float64 {
	return coefBound * math.Tanh(x)
}

func unbound(c float64) float64 {
	c = math.Max(-coefBound+1e-6, math.Min(coefBound-1e-6, c))
	return math.Atanh(c / coefBound)
}

// calculateIC calculates the Gaussian log-likelihood, AIC, AICc and BIC.
func (m *Model) calculateIC() {
	n := len(m.work) - m.start()
	nf := float64(n)
	m.LogLik = -nf / 2 * (math.Log(2*math.Pi*m.Variance) + 1)

	ic := stats.CalculateIC(m.LogLik, n, m.nParams())
	m.AIC = ic.AIC
	m.AICc = ic.AICc
	m.BIC = ic.BIC
}

// Predict generates point forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, errs.New(errs.ErrNotTrained, "arima.Predict", "model must be fitted before prediction")
	}
	if steps < 1 {
		return nil, errs.New(errs.ErrConfig, "arima.Predict", "steps %d must be at least 1", steps)
	}

	p := m.Order.P
	y := m.work
	n := len(y)

	ext := make([]float64, n+steps)
	copy(ext, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for t := n; t < n+steps; t++ {
		pred := m.Intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.ARCoeffs[i] * (ext[t-i-1] - m.Intercept)
		}
		for j, theta := range m.MACoeffs {
			if t-j-1 >= 0 {
				pred += theta * extResiduals[t-j-1]
			}
		}
		ext[t] = pred
	}

	forecasts := slices.Clone(ext[n:])
	switch {
	case m.Order.D > 0:
		forecasts = m.integrate(forecasts)
	case m.Trend:
		for h := range forecasts {
			forecasts[h] += m.TrendBase + m.Slope*float64(n+h)
		}
	}
	return forecasts, nil
}

// integrate undoes d levels of differencing, innermost first.
func (m *Model) integrate(forecasts []float64) []float64 {
	out := slices.Clone(forecasts)
	for k := len(m.lasts) - 1; k >= 0; k-- {
		level := m.lasts[k]
		for j := range out {
			level += out[j]
			out[j] = level
		}
	}
	return out
}

// Prediction holds point forecasts with a symmetric confidence band.
type Prediction struct {
	Mean  []float64
	Lower []float64
	Upper []float64
	Level float64
}

// PredictInterval forecasts steps ahead with a two-sided band at level
// (e.g. 0.95). The band width follows the psi-weight variance of the
// integrated model, so it grows with the horizon.
func (m *Model) PredictInterval(steps int, level float64) (*Prediction, error) {
	if !(level > 0 && level < 1) {
		return nil, errs.New(errs.ErrConfig, "arima.PredictInterval", "confidence level %v must be in (0, 1)", level)
	}
	mean, err := m.Predict(steps)
	if err != nil {
		return nil, err
	}

	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	sigma := math.Sqrt(m.Variance)
	psi := m.psiWeights(steps)

	pred := &Prediction{
		Mean:  mean,
		Lower: make([]float64, steps),
		Upper: make([]float64, steps),
		Level: level,
	}
	cum := 0.0
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		half := z * sigma * math.Sqrt(cum)
		pred.Lower[h] = mean[h] - half
		pred.Upper[h] = mean[h] + half
	}
	return pred, nil
}

// psiWeights returns the first n MA(infinity) weights of phi(B)(1-B)^d.
func (m *Model) psiWeights(n int) []float64 {
	// phi(B)(1-B)^d = 1 - sum a_i B^i
	poly := make([]float64, m.Order.P+1)
	poly[0] = 1
	for i, phi := range m.ARCoeffs {
		poly[i+1] = -phi
	}
	for range m.Order.D {
		next := make([]float64, len(poly)+1)
		for i, c := range poly {
			next[i] += c
			next[i+1] -= c
		}
		poly = next
	}

	psi := make([]float64, n)
	psi[0] = 1
	for j := 1; j < n; j++ {
		v := 0.0
		if j <= len(m.MACoeffs) {
			v = m.MACoeffs[j-1]
		}
		for i := 1; i < len(poly) && i <= j; i++ {
			v -= poly[i] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

// Residuals returns the one-step residuals of the modelled (differenced or
// detrended) series.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return slices.Clone(m.residuals)
}

// FittedValues returns one-step-ahead fitted values on the original scale,
// one per training observation. The first d values equal the observations.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	d := m.Order.D
	fitted := make([]float64, len(m.data))
	for t, y := range m.data {
		if t < d {
			fitted[t] = y
			continue
		}
		fitted[t] = y - m.residuals[t-d]
	}
	return fitted
}

// Summary describes a fitted model.
type Summary struct {
	Order        Order
	Trend        bool
	ARCoeffs     []float64
	MACoeffs     []float64
	Intercept    float64
	Slope        float64
	Variance     float64
	AIC          float64
	AICc         float64
	BIC          float64
	LogLik       float64
	NObs         int
	LjungBox     *stats.PortmanteauResult
	DurbinWatson float64
}

// Summary returns a summary of the fitted model, or nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	return &Summary{
		Order:        m.Order,
		Trend:        m.Trend,
		ARCoeffs:     slices.Clone(m.ARCoeffs),
		MACoeffs:     slices.Clone(m.MACoeffs),
		Intercept:    m.Intercept,
		Slope:        m.Slope,
		Variance:     m.Variance,
		AIC:          m.AIC,
		AICc:         m.AICc,
		BIC:          m.BIC,
		LogLik:       m.LogLik,
		NObs:         len(m.data),
		LjungBox:     stats.LjungBox(m.residuals, 10, m.Order.P+m.Order.Q),
		DurbinWatson: stats.DurbinWatson(m.residuals),
	}
}

// yuleWalker estimates AR coefficients from autocorrelations with the
// Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	v := 1 - phi[0]*phi[0]

	for i := 1; i < order; i++ {
		if v <= 0 {
			break
		}
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
	}

	return phi
}

package autoarima

import (
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/goforecast/arima"
	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// Information criteria accepted by Config.Criterion.
const (
	CriterionAIC  = "aic"
	CriterionAICc = "aicc"
	CriterionBIC  = "bic"
)

// Config holds configuration for the order search.
type Config struct {
	MaxP        int    `mapstructure:"max_p" yaml:"max_p" default:"6" validate:"gte=0"`
	MaxD        int    `mapstructure:"max_d" yaml:"max_d" default:"2" validate:"gte=0"`
	MaxQ        int    `mapstructure:"max_q" yaml:"max_q" default:"6" validate:"gte=0"`
	Criterion   string `mapstructure:"criterion" yaml:"criterion" default:"aic" validate:"oneof=aic aicc bic"`
	Trend       bool   `mapstructure:"trend" yaml:"trend" default:"true"`
	StationTest string `mapstructure:"station_test" yaml:"station_test" default:"kpss" validate:"oneof=kpss adf pp"`
	Stepwise    bool   `mapstructure:"stepwise" yaml:"stepwise"`
	Workers     int    `mapstructure:"workers" yaml:"workers" validate:"gte=0"` // 0 means GOMAXPROCS
}

// DefaultConfig returns the default search configuration: p and q up to 6,
// d up to 2, AIC, with a trend term and an exhaustive parallel grid.
func DefaultConfig() Config {
	return Config{
		MaxP:        6,
		MaxD:        2,
		MaxQ:        6,
		Criterion:   CriterionAIC,
		Trend:       true,
		StationTest: stats.TestKPSS,
	}
}

func (c Config) validate() error {
	const op = "autoarima.Search"

	if c.MaxP < 0 || c.MaxD < 0 || c.MaxQ < 0 {
		return errs.New(errs.ErrConfig, op, "negative order bound (p<=%d, d<=%d, q<=%d)", c.MaxP, c.MaxD, c.MaxQ)
	}
	switch strings.ToLower(c.Criterion) {
	case CriterionAIC, CriterionAICc, CriterionBIC, "":
	default:
		return errs.New(errs.ErrConfig, op, "unknown information criterion %q", c.Criterion)
	}
	if c.Workers < 0 {
		return errs.New(errs.ErrConfig, op, "workers %d is negative", c.Workers)
	}
	return nil
}

// Result represents the selected model.
type Result struct {
	Model *arima.Model
	Order arima.Order

	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	Criterion float64

	ModelsEvaluated int
}

// Search selects d with a unit-root test and then the (p, q) pair with the
// lowest information criterion. Every candidate is conditioned on the first
// MaxP observations of the differenced series, so all criteria are computed
// over the same sample. The result does not depend on the order in which
// candidates finish: ties go to the lowest p+q, then the lowest p.
func Search(series *timeseries.Series, cfg Config) (*Result, error) {
	const op = "autoarima.Search"

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := 0
	if cfg.MaxD > 0 {
		d = stats.NDiffs(series, cfg.MaxD, cfg.StationTest)
	}
	if n := series.Len(); n < arima.MinObservations(arima.Order{P: cfg.MaxP, D: d}) {
		return nil, errs.New(errs.ErrInsufficientData, op,
			"%d observations are too few for any order with d=%d and p<=%d", n, d, cfg.MaxP)
	}

	var (
		result *Result
		err    error
	)
	if cfg.Stepwise {
		result = stepwise(series, d, cfg)
	} else {
		result, err = grid(series, d, cfg)
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errs.New(errs.ErrNonConvergence, op, "no candidate order with d=%d could be fitted", d)
	}
	return result, nil
}

type candidate struct {
	p, q int
}

// better reports whether a beats b: lower criterion, then lower p+q, then lower p.
func better(a, b *Result) bool {
	if b == nil {
		return true
	}
	if a.Criterion != b.Criterion {
		return a.Criterion < b.Criterion
	}
	if sa, sb := a.Order.P+a.Order.Q, b.Order.P+b.Order.Q; sa != sb {
		return sa < sb
	}
	return a.Order.P < b.Order.P
}

// fit fits one candidate; nil when it cannot be fitted or scores NaN.
func fit(series *timeseries.Series, p, d, q int, cfg Config) *Result {
	model := arima.New(p, d, q)
	model.Trend = cfg.Trend
	model.Conditioning = cfg.MaxP
	if err := model.Fit(series); err != nil {
		return nil
	}

	c := criterion(model, cfg.Criterion)
	if math.IsNaN(c) {
		return nil
	}
	return &Result{
		Model:     model,
		Order:     model.Order,
		AIC:       model.AIC,
		AICc:      model.AICc,
		BIC:       model.BIC,
		LogLik:    model.LogLik,
		Criterion: c,
	}
}

func criterion(model *arima.Model, name string) float64 {
	switch strings.ToLower(name) {
	case CriterionBIC:
		return model.BIC
	case CriterionAICc:
		return model.AICc
	default:
		return model.AIC
	}
}

// grid evaluates every (p, q) pair concurrently.
func grid(series *timeseries.Series, d int, cfg Config) (*Result, error) {
	candidates := make([]candidate, 0, (cfg.MaxP+1)*(cfg.MaxQ+1))
	for p := 0; p <= cfg.MaxP; p++ {
		for q := 0; q <= cfg.MaxQ; q++ {
			candidates = append(candidates, candidate{p, q})
		}
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(candidates))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, s := range candidates {
		g.Go(func() error {
			results[i] = fit(series, s.p, d, s.q, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *Result
	evaluated := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		evaluated++
		if better(r, best) {
			best = r
		}
	}
	if best != nil {
		best.ModelsEvaluated = evaluated
	}
	return best, nil
}

// stepwise starts from a few simple orders and moves to neighbouring
// orders while the criterion improves.
func stepwise(series *timeseries.Series, d int, cfg Config) *Result {
	inBounds := func(s candidate) bool {
		return s.p >= 0 && s.p <= cfg.MaxP && s.q >= 0 && s.q <= cfg.MaxQ
	}

	seen := make(map[candidate]bool)
	var best *Result
	evaluated := 0
	try := func(s candidate) bool {
		if !inBounds(s) || seen[s] {
			return false
		}
		seen[s] = true
		r := fit(series, s.p, d, s.q, cfg)
		if r == nil {
			return false
		}
		evaluated++
		if better(r, best) {
			best = r
			return true
		}
		return false
	}

	for _, s := range []candidate{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}} {
		try(s)
	}

	for improved := best != nil; improved; {
		improved = false
		at := candidate{best.Order.P, best.Order.Q}
		for _, s := range []candidate{
			{at.p + 1, at.q},
			{at.p - 1, at.q},
			{at.p, at.q + 1},
			{at.p, at.q - 1},
			{at.p + 1, at.q + 1},
			{at.p - 1, at.q - 1},
		} {
			if try(s) {
				improved = true
			}
		}
	}

	if best != nil {
		best.ModelsEvaluated = evaluated
	}
	return best
}

// Predict generates point forecasts using the selected model.
func (r *Result) Predict(steps int) ([]float64, error) {
	return r.Model.Predict(steps)
}

// PredictInterval generates forecasts with a confidence band.
func (r *Result) PredictInterval(steps int, level float64) (*arima.Prediction, error) {
	return r.Model.PredictInterval(steps, level)
}

// FittedValues returns the in-sample fitted values on the original scale.
func (r *Result) FittedValues() []float64 {
	return r.Model.FittedValues()
}

// Residuals returns the model residuals.
func (r *Result) Residuals() []float64 {
	return r.Model.Residuals()
}

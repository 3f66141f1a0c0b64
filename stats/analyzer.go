package stats

import (
	"strings"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/timeseries"
)

// Names of the available stationarity tests.
const (
	TestADF  = "adf"
	TestKPSS = "kpss"
	TestPP   = "pp"
)

// Tester runs a stationarity test at the given significance level.
type Tester interface {
	Test(series *timeseries.Series, alpha float64) (*Result, error)
}

// TesterFunc adapts a function to Tester.
type TesterFunc func(series *timeseries.Series, alpha float64) (*Result, error)

// Test calls f.
func (f TesterFunc) Test(series *timeseries.Series, alpha float64) (*Result, error) {
	return f(series, alpha)
}

// NewTester returns the tester named by test ("adf", "kpss" or "pp").
func NewTester(test string) (Tester, error) {
	switch strings.ToLower(test) {
	case TestADF, "":
		return TesterFunc(func(s *timeseries.Series, alpha float64) (*Result, error) {
			return ADF(s, ADFOptions{Significance: alpha})
		}), nil
	case TestKPSS:
		return TesterFunc(func(s *timeseries.Series, alpha float64) (*Result, error) {
			return KPSS(s, KPSSOptions{Regression: "c", Significance: alpha})
		}), nil
	case TestPP:
		return TesterFunc(func(s *timeseries.Series, alpha float64) (*Result, error) {
			return PhillipsPerron(s, PPOptions{Significance: alpha})
		}), nil
	default:
		return nil, errs.New(errs.ErrConfig, "stats.NewTester", "unknown stationarity test %q", test)
	}
}

// Config controls the Analyzer.
type Config struct {
	Significance    float64 `mapstructure:"significance" yaml:"significance" default:"0.05" validate:"gt=0,lt=1"`
	MaxDifferencing int     `mapstructure:"max_differencing" yaml:"max_differencing" default:"10" validate:"gte=1"`
	Test            string  `mapstructure:"test" yaml:"test" default:"adf" validate:"oneof=adf kpss pp"`
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		Significance:    DefaultSignificance,
		MaxDifferencing: 10,
		Test:            TestADF,
	}
}

// Analyzer decides whether a series is stationary and differences it until
// it is.
type Analyzer struct {
	cfg    Config
	tester Tester
}

// NewAnalyzer validates cfg and builds an Analyzer using the configured test.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	const op = "stats.NewAnalyzer"

	if cfg.Significance <= 0 || cfg.Significance >= 1 {
		return nil, errs.New(errs.ErrConfig, op, "significance %v must be in (0, 1)", cfg.Significance)
	}
	if cfg.MaxDifferencing < 1 {
		return nil, errs.New(errs.ErrConfig, op, "max differencing %d must be at least 1", cfg.MaxDifferencing)
	}
	tester, err := NewTester(cfg.Test)
	if err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg, tester: tester}, nil
}

// WithTester replaces the unit-root test.
func (a *Analyzer) WithTester(t Tester) *Analyzer {
	return &Analyzer{cfg: a.cfg, tester: t}
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Test runs the configured test on series.
func (a *Analyzer) Test(series *timeseries.Series) (*Result, error) {
	return a.tester.Test(series, a.cfg.Significance)
}

// MakeStationary differences series until the test passes and returns the
// differenced series with the number of differences applied. It gives up with
// errs.ErrNonConvergence after MaxDifferencing differences.
func (a *Analyzer) MakeStationary(series *timeseries.Series) (*timeseries.Series, int, error) {
	const op = "stats.MakeStationary"

	current := series
	for d := 0; ; d++ {
		result, err := a.Test(current)
		if err != nil {
			return nil, 0, err
		}
		if result.IsStationary {
			return current, d, nil
		}
		if d == a.cfg.MaxDifferencing {
			return nil, 0, errs.New(errs.ErrNonConvergence, op,
				"not stationary after %d differences (p=%.4f)", d, result.PValue)
		}
		current = current.Diff()
	}
}

package forecast

import (
	"strings"

	"github.com/sartorproj/goforecast/autoarima"
	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/features"
	"github.com/sartorproj/goforecast/gbm"
	"github.com/sartorproj/goforecast/timeseries"
)

// Kind identifies a forecaster variant.
type Kind string

const (
	KindStatistical Kind = "STATISTICAL"
	KindBoostedTree Kind = "BOOSTED_TREE"
)

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{KindStatistical, KindBoostedTree}
}

// ParseKind resolves a model tag. The legacy tags AUTO_ARIMA and XGBOOST are
// accepted as aliases.
func ParseKind(tag string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case string(KindStatistical), "AUTO_ARIMA", "ARIMA":
		return KindStatistical, nil
	case string(KindBoostedTree), "XGBOOST", "GBM":
		return KindBoostedTree, nil
	}
	return "", errs.New(errs.ErrUnsupportedModel, "forecast.ParseKind", "unknown model kind %q", tag)
}

// Config holds the settings of both variants.
type Config struct {
	Statistical StatisticalConfig `mapstructure:"statistical" yaml:"statistical"`
	Boosted     gbm.Config        `mapstructure:"boosted" yaml:"boosted"`
}

// StatisticalConfig adds the band confidence level to the order search.
type StatisticalConfig struct {
	autoarima.Config `mapstructure:",squash" yaml:",inline"`

	Confidence float64 `mapstructure:"confidence" yaml:"confidence" default:"0.95" validate:"gt=0,lt=1"`
}

// DefaultConfig returns the default settings for both variants.
func DefaultConfig() Config {
	return Config{
		Statistical: StatisticalConfig{
			Config:     autoarima.DefaultConfig(),
			Confidence: 0.95,
		},
		Boosted: gbm.DefaultConfig(),
	}
}

// History is the training input. The statistical variant reads Series; the
// boosted variant reads X and Y.
type History struct {
	Series *timeseries.Series
	X      *features.Matrix
	Y      []float64
}

// Result holds a multi-step forecast. Lower and Upper are nil when the
// variant produces no band.
type Result struct {
	Values []float64
	Lower  []float64
	Upper  []float64
}

// HasBounds reports whether the result carries a confidence band.
func (r *Result) HasBounds() bool {
	return r.Lower != nil && r.Upper != nil
}

// Forecaster is a trainable model able to forecast forward.
type Forecaster interface {
	Kind() Kind
	Fit(h History) error
	PredictInSample() ([]float64, error)
	Forecast(periods int) (*Result, error)
}

// New constructs the variant named by kind.
func New(kind Kind, cfg Config) (Forecaster, error) {
	switch kind {
	case KindStatistical:
		return NewStatistical(cfg.Statistical)
	case KindBoostedTree:
		return NewBoosted(cfg.Boosted)
	}
	return nil, errs.New(errs.ErrUnsupportedModel, "forecast.New", "unknown model kind %q", kind)
}

// Train constructs the variant named by kind and fits it.
func Train(kind Kind, h History, cfg Config) (Forecaster, error) {
	f, err := New(kind, cfg)
	if err != nil {
		return nil, err
	}
	if err := f.Fit(h); err != nil {
		return nil, err
	}
	return f, nil
}

func checkPeriods(op string, periods int) error {
	if periods < 1 {
		return errs.New(errs.ErrConfig, op, "periods must be at least 1, got %d", periods)
	}
	return nil
}

package features

import (
	"fmt"
	"slices"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/timeseries"
)

// Calendar column names, in matrix order.
var CalendarColumns = []string{"day", "month", "year", "day_of_week", "quarter"}

// Config controls which features are derived.
type Config struct {
	Lags           int   `mapstructure:"lags" yaml:"lags" default:"5" validate:"gte=0"`
	RollingWindows []int `mapstructure:"rolling_windows" yaml:"rolling_windows" default:"[7,14,30]" validate:"dive,gte=2"`
	Calendar       bool  `mapstructure:"calendar" yaml:"calendar" default:"true"`
}

// DefaultConfig returns 5 lags, windows of 7, 14 and 30 and calendar features.
func DefaultConfig() Config {
	return Config{
		Lags:           5,
		RollingWindows: []int{7, 14, 30},
		Calendar:       true,
	}
}

// Builder derives feature matrices from a series.
type Builder struct {
	cfg     Config
	columns []string
	warmUp  int
}

// NewBuilder validates cfg.
func NewBuilder(cfg Config) (*Builder, error) {
	const op = "features.NewBuilder"

	if cfg.Lags < 0 {
		return nil, errs.New(errs.ErrConfig, op, "lag count %d is negative", cfg.Lags)
	}
	if cfg.Lags == 0 && len(cfg.RollingWindows) == 0 {
		return nil, errs.New(errs.ErrConfig, op, "no lags and no rolling windows")
	}

	warmUp := cfg.Lags
	columns := make([]string, 0, cfg.Lags+2*len(cfg.RollingWindows)+len(CalendarColumns))
	for k := 1; k <= cfg.Lags; k++ {
		columns = append(columns, LagColumn(k))
	}
	for _, w := range cfg.RollingWindows {
		if w < 2 {
			return nil, errs.New(errs.ErrConfig, op, "rolling window %d must be at least 2", w)
		}
		warmUp = max(warmUp, w)
		columns = append(columns, fmt.Sprintf("rolling_mean_%d", w), fmt.Sprintf("rolling_std_%d", w))
	}
	if cfg.Calendar {
		columns = append(columns, CalendarColumns...)
	}

	cfg.RollingWindows = slices.Clone(cfg.RollingWindows)
	return &Builder{cfg: cfg, columns: columns, warmUp: warmUp}, nil
}

// Build is a shorthand for NewBuilder followed by Builder.Build.
func Build(series *timeseries.Series, lags int, windows []int, calendar bool) (*Matrix, error) {
	b, err := NewBuilder(Config{Lags: lags, RollingWindows: windows, Calendar: calendar})
	if err != nil {
		return nil, err
	}
	return b.Build(series)
}

// Columns returns the feature names in matrix order.
func (b *Builder) Columns() []string {
	return slices.Clone(b.columns)
}

// WarmUp is the number of leading observations without full history.
func (b *Builder) WarmUp() int {
	return b.warmUp
}

// Build returns one row per observation after the warm-up. Every feature of
// a row is computed from observations strictly before it.
func (b *Builder) Build(series *timeseries.Series) (*Matrix, error) {
	const op = "features.Build"

	if b.cfg.Calendar && !series.HasDateIndex() {
		return nil, errs.New(errs.ErrIndexType, op, "calendar features need a date index")
	}
	n := series.Len()
	rows := n - b.warmUp
	if rows <= 0 {
		return nil, errs.New(errs.ErrInsufficientData, op,
			"%d observations leave no rows after a warm-up of %d", n, b.warmUp)
	}

	means := b.rollingMeans(series.Values)

	m := &Matrix{
		Columns: b.Columns(),
		Index:   make([]time.Time, 0, rows),
		Rows:    make([][]float64, 0, rows),
		Target:  make([]float64, 0, rows),
	}
	for t := b.warmUp; t < n; t++ {
		var ts time.Time
		if len(series.Timestamps) == n {
			ts = series.Timestamps[t]
		}
		m.Index = append(m.Index, ts)
		m.Rows = append(m.Rows, b.row(series.Values, means, t, ts))
		m.Target = append(m.Target, series.Values[t])
	}
	return m, nil
}

// Next returns the feature row for the period after the last observation,
// dated at. It is the seed for a recursive forecast.
func (b *Builder) Next(series *timeseries.Series, at time.Time) (Row, error) {
	const op = "features.Next"

	if b.cfg.Calendar && at.IsZero() {
		return Row{}, errs.New(errs.ErrIndexType, op, "calendar features need a timestamp")
	}
	n := series.Len()
	if n < b.warmUp {
		return Row{}, errs.New(errs.ErrInsufficientData, op,
			"%d observations are fewer than the warm-up of %d", n, b.warmUp)
	}

	values := b.row(series.Values, b.rollingMeans(series.Values), n, at)
	return Row{Columns: b.Columns(), Values: values}, nil
}

// rollingMeans computes one SMA per window; sma[j] is the mean of values[j:j+w].
func (b *Builder) rollingMeans(values []float64) [][]float64 {
	means := make([][]float64, len(b.cfg.RollingWindows))
	for i, w := range b.cfg.RollingWindows {
		if len(values) < w {
			continue
		}
		sma := trend.NewSmaWithPeriod[float64](w)
		means[i] = helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	}
	return means
}

// row builds the features of position t, which may equal len(values).
func (b *Builder) row(values []float64, means [][]float64, t int, ts time.Time) []float64 {
	out := make([]float64, 0, len(b.columns))
	for k := 1; k <= b.cfg.Lags; k++ {
		out = append(out, values[t-k])
	}
	for i, w := range b.cfg.RollingWindows {
		out = append(out, means[i][t-w], stat.StdDev(values[t-w:t], nil))
	}
	if b.cfg.Calendar {
		out = append(out, calendar(ts)...)
	}
	return out
}

func calendar(ts time.Time) []float64 {
	month := int(ts.Month())
	return []float64{
		float64(ts.Day()),
		float64(month),
		float64(ts.Year()),
		float64((int(ts.Weekday()) + 6) % 7), // Monday is 0
		float64((month-1)/3 + 1),
	}
}

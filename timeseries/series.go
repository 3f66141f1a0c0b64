// Package timeseries provides the canonical date-indexed series and its construction.
package timeseries

import (
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/errs"
)

// epoch anchors the synthetic daily index built by New.
var epoch = time.Date(2000, time.January, 3, 0, 0, 0, 0, time.UTC)

// Series represents a time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a new time series from values, indexed by consecutive days
// starting at 2000-01-03 UTC.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = epoch.AddDate(0, 0, i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errs.New(errs.ErrLengthMismatch, "timeseries.NewWithTimestamps",
			"%d timestamps but %d values", len(timestamps), len(values))
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// HasDateIndex reports whether every value has a non-zero timestamp.
func (s *Series) HasDateIndex() bool {
	if len(s.Timestamps) != len(s.Values) {
		return false
	}
	for _, ts := range s.Timestamps {
		if ts.IsZero() {
			return false
		}
	}
	return true
}

// IsIncreasing reports whether timestamps are strictly increasing.
func (s *Series) IsIncreasing() bool {
	for i := 1; i < len(s.Timestamps); i++ {
		if !s.Timestamps[i].After(s.Timestamps[i-1]) {
			return false
		}
	}
	return true
}

// Validate checks the canonical-series invariants: a date index of matching
// length and finite values.
func (s *Series) Validate() error {
	const op = "timeseries.Validate"

	if !s.HasDateIndex() {
		return errs.New(errs.ErrIndexType, op, "%d values but %d usable timestamps", len(s.Values), len(s.Timestamps))
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.New(errs.ErrParse, op, "value %d is not finite", i)
		}
	}
	return nil
}

// NextTimestamp extrapolates the timestamp following the last observation
// using the most recent spacing. A series shorter than two falls back to one day.
func (s *Series) NextTimestamp() time.Time {
	n := len(s.Timestamps)
	if n == 0 {
		return time.Time{}
	}
	step := 24 * time.Hour
	if n >= 2 {
		if d := s.Timestamps[n-1].Sub(s.Timestamps[n-2]); d > 0 {
			step = d
		}
	}
	return s.Timestamps[n-1].Add(step)
}

// Mean returns the arithmetic mean, 0 for an empty series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance returns the sample (n-1) variance, 0 below two observations.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std returns the sample standard deviation.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the smallest value, NaN for an empty series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the largest value, NaN for an empty series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Median returns the middle value, averaging the two middle values of an
// even-length series. NaN for an empty series.
func (s *Series) Median() float64 {
	n := len(s.Values)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Sorted(slices.Values(s.Values))
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the lag-n difference y[t] - y[t-n] of the series.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{Values: []float64{}, Timestamps: []time.Time{}, Name: s.Name + "_diff"}
	}

	result := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		result[i-n] = s.Values[i] - s.Values[i-n]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > n {
		copy(timestamps, s.Timestamps[n:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_diff",
	}
}

// PctChange returns the simple returns v[t]/v[t-1] - 1. Steps from a zero
// value are skipped.
func (s *Series) PctChange() *Series {
	if len(s.Values) < 2 {
		return &Series{Values: []float64{}, Timestamps: []time.Time{}, Name: s.Name + "_pct"}
	}

	values := make([]float64, 0, len(s.Values)-1)
	timestamps := make([]time.Time, 0, len(s.Values)-1)
	for i := 1; i < len(s.Values); i++ {
		if s.Values[i-1] == 0 {
			continue
		}
		values = append(values, s.Values[i]/s.Values[i-1]-1)
		if len(s.Timestamps) == len(s.Values) {
			timestamps = append(timestamps, s.Timestamps[i])
		}
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name + "_pct",
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Timestamps: []time.Time{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

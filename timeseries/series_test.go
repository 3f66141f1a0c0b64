package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/errs"
)

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, values, s.Values)
	assert.True(t, s.HasDateIndex())
	assert.True(t, s.IsIncreasing())
	assert.Equal(t, 24*time.Hour, s.Timestamps[1].Sub(s.Timestamps[0]))
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, New(tt.values).Mean(), 1e-10)
		})
	}
}

func TestVarianceAndStd(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	expected := 4.571428571428571

	assert.InDelta(t, expected, s.Variance(), 1e-10)
	assert.InDelta(t, math.Sqrt(expected), s.Std(), 1e-10)
}

func TestMinMaxMedian(t *testing.T) {
	s := New([]float64{5, 2, 8, 1, 9, 3})

	assert.Equal(t, 1.0, s.Min())
	assert.Equal(t, 9.0, s.Max())
	assert.Equal(t, 4.0, s.Median())
	assert.Equal(t, 5.0, New([]float64{9, 5, 1}).Median())
	assert.True(t, math.IsNaN(New(nil).Median()))
	assert.True(t, math.IsNaN(New(nil).Min()))
	assert.True(t, math.IsNaN(New(nil).Max()))
}

func TestDiff(t *testing.T) {
	s := New([]float64{1, 3, 6, 10, 15})

	d1 := s.Diff()
	assert.Equal(t, []float64{2, 3, 4, 5}, d1.Values)
	assert.Equal(t, s.Timestamps[1:], d1.Timestamps)

	d2 := d1.Diff()
	assert.Equal(t, []float64{1, 1, 1}, d2.Values)

	empty := New([]float64{1}).Diff()
	assert.Equal(t, 0, empty.Len())
}

func TestPctChange(t *testing.T) {
	s := New([]float64{100, 110, 0, 50})

	pct := s.PctChange()
	require.Equal(t, 2, pct.Len())
	assert.InDelta(t, 0.1, pct.Values[0], 1e-12)
	assert.InDelta(t, -1.0, pct.Values[1], 1e-12)
}

func TestSlice(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})

	sub := s.Slice(1, 4)
	assert.Equal(t, []float64{2, 3, 4}, sub.Values)
	assert.Equal(t, s.Timestamps[1:4], sub.Timestamps)

	sub.Values[0] = 100
	assert.Equal(t, 2.0, s.Values[1])

	assert.Equal(t, 0, s.Slice(4, 2).Len())
}

func TestNextTimestamp(t *testing.T) {
	ts := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	s, err := NewWithTimestamps(ts, []float64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), s.NextTimestamp())

	_, err = NewWithTimestamps(ts, []float64{1})
	assert.ErrorIs(t, err, errs.ErrLengthMismatch)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, New([]float64{1, 2}).Validate())
	assert.ErrorIs(t, New([]float64{1, math.NaN()}).Validate(), errs.ErrParse)
	assert.ErrorIs(t, New([]float64{math.Inf(1)}).Validate(), errs.ErrParse)
	assert.ErrorIs(t, (&Series{Values: []float64{1}}).Validate(), errs.ErrIndexType)
}

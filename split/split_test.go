package split

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/features"
	"github.com/sartorproj/goforecast/timeseries"
)

func linearSeries(n int) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + 0.5*float64(i) + math.Sin(float64(i))
	}
	return timeseries.New(values)
}

func TestSplitEndToEndSizes(t *testing.T) {
	m, err := features.Build(linearSeries(100), 5, []int{7, 14, 30}, true)
	require.NoError(t, err)
	require.Equal(t, 70, m.Len())

	s, err := Split(m, m.Target, DefaultTestFraction)
	require.NoError(t, err)

	assert.Equal(t, 56, s.XTrain.Len())
	assert.Len(t, s.YTrain, 56)
	assert.Equal(t, 14, s.XTest.Len())
	assert.Len(t, s.YTest, 14)
}

func TestSplitPreservesOrder(t *testing.T) {
	m, err := features.Build(linearSeries(60), 3, nil, true)
	require.NoError(t, err)

	for _, fraction := range []float64{0.1, 0.25, 0.5, 0.9} {
		s, err := Split(m, m.Target, fraction)
		require.NoError(t, err)

		assert.Equal(t, m.Len(), s.XTrain.Len()+s.XTest.Len())
		assert.Equal(t, m.Target, append(append([]float64{}, s.YTrain...), s.YTest...))

		if s.XTrain.Len() > 0 && s.XTest.Len() > 0 {
			lastTrain := s.XTrain.Index[s.XTrain.Len()-1]
			for _, ts := range s.XTest.Index {
				assert.True(t, lastTrain.Before(ts))
			}
		}
	}
}

func TestSplitErrors(t *testing.T) {
	m, err := features.Build(linearSeries(20), 2, nil, false)
	require.NoError(t, err)

	for _, fraction := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := Split(m, m.Target, fraction)
		assert.ErrorIs(t, err, errs.ErrConfig, "fraction %v", fraction)
	}

	_, err = Split(m, m.Target[1:], 0.2)
	assert.ErrorIs(t, err, errs.ErrLengthMismatch)
}

func TestSplitSeries(t *testing.T) {
	series := linearSeries(10)

	train, test, err := SplitSeries(series, 0.25)
	require.NoError(t, err)

	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, test.Len())
	assert.Equal(t, series.Values[7:], test.Values)
	assert.True(t, train.Timestamps[6].Before(test.Timestamps[0]))

	_, _, err = SplitSeries(series, 0)
	assert.ErrorIs(t, err, errs.ErrConfig)
}

func TestCutIndex(t *testing.T) {
	cut, err := CutIndex(70, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 56, cut)

	cut, err = CutIndex(3, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, cut)
}

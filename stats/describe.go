package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/timeseries"
)

var nan = math.NaN()

// Summary is a descriptive overview of a price series.
type Summary struct {
	Start  time.Time
	End    time.Time
	NObs   int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    float64 // sample standard deviation
}

// Describe summarizes series. Statistics of an empty series are NaN.
func Describe(series *timeseries.Series) Summary {
	s := Summary{
		NObs: series.Len(),
		Min:  nan, Max: nan, Mean: nan, Median: nan, Std: nan,
	}
	if s.NObs == 0 {
		return s
	}
	if series.HasDateIndex() {
		s.Start = series.Timestamps[0]
		s.End = series.Timestamps[s.NObs-1]
	}

	s.Min = series.Min()
	s.Max = series.Max()
	s.Mean = series.Mean()
	s.Median = series.Median()
	if s.NObs > 1 {
		s.Std = series.Std()
	}
	return s
}

// ReturnStats describes the simple daily returns of a series.
type ReturnStats struct {
	Mean       float64
	Volatility float64 // sample standard deviation of returns
	Min        float64
	Max        float64
	Defined    bool // false when there are fewer than two returns
}

// Returns computes statistics of the simple returns of series.
func Returns(series *timeseries.Series) ReturnStats {
	r := series.PctChange().Values
	if len(r) < 2 {
		return ReturnStats{Mean: nan, Volatility: nan, Min: nan, Max: nan}
	}
	return ReturnStats{
		Mean:       stat.Mean(r, nil),
		Volatility: stat.StdDev(r, nil),
		Min:        floats.Min(r),
		Max:        floats.Max(r),
		Defined:    true,
	}
}

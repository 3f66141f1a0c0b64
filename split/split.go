// Package split partitions feature matrices and series into chronological
// train and test segments.
//
// The cut index is floor(N*(1-testFraction)); train is [0, cut) and test is
// [cut, N). Data is never shuffled.
package split

import (
	"math"
	"slices"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/features"
	"github.com/sartorproj/goforecast/timeseries"
)

// DefaultTestFraction holds out the last fifth of the data.
const DefaultTestFraction = 0.2

// Config controls the split.
type Config struct {
	TestFraction float64 `mapstructure:"test_fraction" yaml:"test_fraction" default:"0.2" validate:"gt=0,lt=1"`
}

// Result is a train/test partition of a matrix and its target.
type Result struct {
	XTrain *features.Matrix
	YTrain []float64
	XTest  *features.Matrix
	YTest  []float64
}

// Split cuts x and y at the same index.
func Split(x *features.Matrix, y []float64, testFraction float64) (*Result, error) {
	const op = "split.Split"

	if len(y) != x.Len() {
		return nil, errs.New(errs.ErrLengthMismatch, op, "%d feature rows but %d targets", x.Len(), len(y))
	}
	cut, err := CutIndex(len(y), testFraction)
	if err != nil {
		return nil, err
	}

	return &Result{
		XTrain: x.Slice(0, cut),
		YTrain: slices.Clone(y[:cut]),
		XTest:  x.Slice(cut, len(y)),
		YTest:  slices.Clone(y[cut:]),
	}, nil
}

// SplitSeries cuts a series with the same rule as Split.
func SplitSeries(series *timeseries.Series, testFraction float64) (train, test *timeseries.Series, err error) {
	cut, err := CutIndex(series.Len(), testFraction)
	if err != nil {
		return nil, nil, err
	}
	return series.Slice(0, cut), series.Slice(cut, series.Len()), nil
}

// CutIndex returns floor(n*(1-testFraction)). testFraction must lie in (0, 1).
func CutIndex(n int, testFraction float64) (int, error) {
	if !(testFraction > 0 && testFraction < 1) {
		return 0, errs.New(errs.ErrConfig, "split.CutIndex", "test fraction %v must be in (0, 1)", testFraction)
	}
	return int(math.Floor(float64(n) * (1 - testFraction))), nil
}

package gbm

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/errs"
)

// stepData has a target that depends only on the first column.
func stepData(n int) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(1, 2))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		x0 := float64(i % 10)
		x[i] = []float64{x0, rng.Float64()}
		if x0 >= 5 {
			y[i] = 10
		}
	}
	return x, y
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 500, cfg.NEstimators)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.InDelta(t, 0.05, cfg.LearningRate, 1e-12)
	assert.InDelta(t, 0.8, cfg.Subsample, 1e-12)
	assert.InDelta(t, 0.8, cfg.ColSampleByTree, 1e-12)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestFitStepFunction(t *testing.T) {
	x, y := stepData(200)

	cfg := DefaultConfig()
	cfg.NEstimators = 200
	cfg.LearningRate = 0.1
	cfg.Subsample = 1
	cfg.ColSampleByTree = 1

	r, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, r.Fit(x, y))
	assert.Equal(t, 200, r.NumTrees())

	pred, err := r.PredictBatch(x)
	require.NoError(t, err)
	for i := range pred {
		assert.InDelta(t, y[i], pred[i], 0.1, "row %d", i)
	}

	low, err := r.Predict([]float64{2, 0.5})
	require.NoError(t, err)
	high, err := r.Predict([]float64{7, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0, low, 0.1)
	assert.InDelta(t, 10, high, 0.1)

	importance := r.FeatureImportance()
	require.Len(t, importance, 2)
	assert.Greater(t, importance[0], importance[1])
	assert.InDelta(t, 1, importance[0]+importance[1], 1e-9)
}

func TestFitLinearTrendWithSubsampling(t *testing.T) {
	n := 150
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = []float64{float64(i), float64(i % 7), float64(i % 3)}
		y[i] = 100 + 0.5*float64(i)
	}

	r, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.Fit(x, y))

	pred, err := r.PredictBatch(x)
	require.NoError(t, err)

	var sse float64
	for i := range pred {
		sse += (pred[i] - y[i]) * (pred[i] - y[i])
	}
	rmse := math.Sqrt(sse / float64(n))
	t.Logf("in-sample RMSE: %f", rmse)
	assert.Less(t, rmse, 2.0)
}

func TestFitDeterministic(t *testing.T) {
	x, y := stepData(120)
	cfg := DefaultConfig()
	cfg.NEstimators = 50

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Fit(x, y))
	b, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, b.Fit(x, y))

	pa, err := a.PredictBatch(x)
	require.NoError(t, err)
	pb, err := b.PredictBatch(x)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestFitConstantTarget(t *testing.T) {
	x, _ := stepData(30)
	y := make([]float64, len(x))
	for i := range y {
		y[i] = 42
	}

	r, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.Fit(x, y))

	got, err := r.Predict([]float64{3, 0.1})
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
	assert.Equal(t, []float64{0, 0}, r.FeatureImportance())
}

func TestErrors(t *testing.T) {
	r, err := New(DefaultConfig())
	require.NoError(t, err)

	_, err = r.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, errs.ErrNotTrained)

	assert.ErrorIs(t, r.Fit([][]float64{{1}}, []float64{1, 2}), errs.ErrLengthMismatch)
	assert.ErrorIs(t, r.Fit([][]float64{{1, 2}, {3}}, []float64{1, 2}), errs.ErrLengthMismatch)
	assert.ErrorIs(t, r.Fit(nil, nil), errs.ErrInsufficientData)
	assert.ErrorIs(t, r.Fit([][]float64{{}, {}}, []float64{1, 2}), errs.ErrInsufficientData)

	require.NoError(t, r.Fit([][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{1, 2, 3}))
	_, err = r.Predict([]float64{1})
	assert.ErrorIs(t, err, errs.ErrLengthMismatch)

	bad := []func(*Config){
		func(c *Config) { c.NEstimators = 0 },
		func(c *Config) { c.MaxDepth = 0 },
		func(c *Config) { c.LearningRate = 0 },
		func(c *Config) { c.Subsample = 1.5 },
		func(c *Config) { c.ColSampleByTree = 0 },
		func(c *Config) { c.Lambda = -1 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		_, err := New(cfg)
		assert.ErrorIs(t, err, errs.ErrConfig, "case %d", i)
	}
}

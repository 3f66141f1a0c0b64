package gbm

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/goforecast/errs"
)

// Config holds the booster hyperparameters.
type Config struct {
	NEstimators     int     `mapstructure:"n_estimators" yaml:"n_estimators" default:"500" validate:"gte=1"`
	MaxDepth        int     `mapstructure:"max_depth" yaml:"max_depth" default:"5" validate:"gte=1"`
	LearningRate    float64 `mapstructure:"learning_rate" yaml:"learning_rate" default:"0.05" validate:"gt=0,lte=1"`
	Subsample       float64 `mapstructure:"subsample" yaml:"subsample" default:"0.8" validate:"gt=0,lte=1"`
	ColSampleByTree float64 `mapstructure:"colsample_bytree" yaml:"colsample_bytree" default:"0.8" validate:"gt=0,lte=1"`
	Lambda          float64 `mapstructure:"lambda" yaml:"lambda" default:"1" validate:"gte=0"`
	MinChildWeight  float64 `mapstructure:"min_child_weight" yaml:"min_child_weight" default:"1" validate:"gte=0"`
	Seed            uint64  `mapstructure:"seed" yaml:"seed" default:"42"`
}

// DefaultConfig returns 500 trees of depth 5 with learning rate 0.05 and
// 0.8 row and column subsampling.
func DefaultConfig() Config {
	return Config{
		NEstimators:     500,
		MaxDepth:        5,
		LearningRate:    0.05,
		Subsample:       0.8,
		ColSampleByTree: 0.8,
		Lambda:          1,
		MinChildWeight:  1,
		Seed:            42,
	}
}

func (c Config) validate() error {
	const op = "gbm.New"

	switch {
	case c.NEstimators < 1:
		return errs.New(errs.ErrConfig, op, "n_estimators must be at least 1, got %d", c.NEstimators)
	case c.MaxDepth < 1:
		return errs.New(errs.ErrConfig, op, "max_depth must be at least 1, got %d", c.MaxDepth)
	case !(c.LearningRate > 0 && c.LearningRate <= 1):
		return errs.New(errs.ErrConfig, op, "learning_rate must be in (0, 1], got %v", c.LearningRate)
	case !(c.Subsample > 0 && c.Subsample <= 1):
		return errs.New(errs.ErrConfig, op, "subsample must be in (0, 1], got %v", c.Subsample)
	case !(c.ColSampleByTree > 0 && c.ColSampleByTree <= 1):
		return errs.New(errs.ErrConfig, op, "colsample_bytree must be in (0, 1], got %v", c.ColSampleByTree)
	case c.Lambda < 0 || c.MinChildWeight < 0:
		return errs.New(errs.ErrConfig, op, "lambda and min_child_weight must be non-negative")
	}
	return nil
}

// node is a split when left >= 0, otherwise a leaf holding its shrunken weight.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

type tree struct {
	nodes []node
}

func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.left < 0 {
			return n.value
		}
		if x[n.feature] < n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// Regressor is a gradient-boosted ensemble of regression trees fitted to
// squared error with second-order split gain.
type Regressor struct {
	cfg       Config
	base      float64
	trees     []tree
	nFeatures int
	gain      []float64
}

// New creates an untrained regressor.
func New(cfg Config) (*Regressor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Regressor{cfg: cfg}, nil
}

// Config returns the hyperparameters.
func (r *Regressor) Config() Config {
	return r.cfg
}

// NumTrees returns the number of fitted trees.
func (r *Regressor) NumTrees() int {
	return len(r.trees)
}

// Fit trains the ensemble on the rows of x against y. Identical inputs and
// seed give identical models.
func (r *Regressor) Fit(x [][]float64, y []float64) error {
	const op = "gbm.Fit"

	n := len(x)
	if n != len(y) {
		return errs.New(errs.ErrLengthMismatch, op, "%d rows but %d targets", n, len(y))
	}
	if n == 0 {
		return errs.New(errs.ErrInsufficientData, op, "no training rows")
	}
	nf := len(x[0])
	for i, row := range x {
		if len(row) != nf {
			return errs.New(errs.ErrLengthMismatch, op, "row %d has %d features, expected %d", i, len(row), nf)
		}
	}
	if nf == 0 {
		return errs.New(errs.ErrInsufficientData, op, "rows have no features")
	}

	rng := rand.New(rand.NewPCG(r.cfg.Seed, r.cfg.Seed))
	r.base = floats.Sum(y) / float64(n)
	r.nFeatures = nf
	r.trees = make([]tree, 0, r.cfg.NEstimators)
	r.gain = make([]float64, nf)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = r.base
	}
	grad := make([]float64, n)
	hess := make([]float64, n)
	for i := range hess {
		hess[i] = 1
	}

	nRows := max(1, int(math.Round(r.cfg.Subsample*float64(n))))
	nCols := max(1, int(math.Round(r.cfg.ColSampleByTree*float64(nf))))

	for range r.cfg.NEstimators {
		for i := range grad {
			grad[i] = pred[i] - y[i]
		}

		rows := rng.Perm(n)[:nRows]
		slices.Sort(rows)
		cols := rng.Perm(nf)[:nCols]
		slices.Sort(cols)

		b := &builder{
			x:    x,
			grad: grad,
			hess: hess,
			cols: cols,
			cfg:  r.cfg,
			gain: r.gain,
		}
		b.grow(rows, 0)
		t := tree{nodes: b.nodes}
		r.trees = append(r.trees, t)

		for i, row := range x {
			pred[i] += t.predict(row)
		}
	}
	return nil
}

type builder struct {
	x          [][]float64
	grad, hess []float64
	cols       []int
	cfg        Config
	gain       []float64
	nodes      []node
}

// grow appends the subtree for rows and returns its node index.
func (b *builder) grow(rows []int, depth int) int {
	var g, h float64
	for _, i := range rows {
		g += b.grad[i]
		h += b.hess[i]
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{
		left:  -1,
		right: -1,
		value: -g / (h + b.cfg.Lambda) * b.cfg.LearningRate,
	})
	if depth >= b.cfg.MaxDepth || len(rows) < 2 {
		return idx
	}

	feature, threshold, gain, ok := b.bestSplit(rows, g, h)
	if !ok {
		return idx
	}
	b.gain[feature] += gain

	var left, right []int
	for _, i := range rows {
		if b.x[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	rgt := b.grow(right, depth+1)
	b.nodes[idx] = node{feature: feature, threshold: threshold, left: l, right: rgt}
	return idx
}

// bestSplit scans every sampled column for the threshold with the largest
// positive gain. The first best candidate in column order wins.
func (b *builder) bestSplit(rows []int, g, h float64) (feature int, threshold, gain float64, ok bool) {
	lambda := b.cfg.Lambda
	parent := g * g / (h + lambda)
	sorted := make([]int, len(rows))

	for _, f := range b.cols {
		copy(sorted, rows)
		slices.SortStableFunc(sorted, func(a, c int) int {
			return cmp.Compare(b.x[a][f], b.x[c][f])
		})

		var gl, hl float64
		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			gl += b.grad[i]
			hl += b.hess[i]

			v, next := b.x[i][f], b.x[sorted[k+1]][f]
			if v == next {
				continue
			}
			gr, hr := g-gl, h-hl
			if hl < b.cfg.MinChildWeight || hr < b.cfg.MinChildWeight {
				continue
			}

			candidate := 0.5 * (gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent)
			if candidate > gain {
				feature, threshold, gain, ok = f, v+(next-v)/2, candidate, true
			}
		}
	}
	return feature, threshold, gain, ok
}

// Predict returns the prediction for a single feature row.
func (r *Regressor) Predict(row []float64) (float64, error) {
	const op = "gbm.Predict"

	if r.trees == nil {
		return 0, errs.New(errs.ErrNotTrained, op, "regressor has not been fitted")
	}
	if len(row) != r.nFeatures {
		return 0, errs.New(errs.ErrLengthMismatch, op, "row has %d features, model expects %d", len(row), r.nFeatures)
	}

	out := r.base
	for i := range r.trees {
		out += r.trees[i].predict(row)
	}
	return out, nil
}

// PredictBatch predicts every row of x.
func (r *Regressor) PredictBatch(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := r.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// FeatureImportance returns the total split gain per feature, normalised to
// sum to one. All zeros when no tree ever split.
func (r *Regressor) FeatureImportance() []float64 {
	if r.gain == nil {
		return nil
	}
	out := slices.Clone(r.gain)
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}

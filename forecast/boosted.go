package forecast

import (
	"slices"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/features"
	"github.com/sartorproj/goforecast/gbm"
)

// Boosted forecasts with a gradient-boosted tree ensemble over lag, rolling
// and calendar features. Multi-step forecasts are produced by recursive
// rollout: only lag columns advance, rolling and calendar columns keep the
// seed's values.
type Boosted struct {
	reg     *gbm.Regressor
	train   *features.Matrix
	next    features.Row
	trained bool
}

// NewBoosted creates an untrained boosted forecaster.
func NewBoosted(cfg gbm.Config) (*Boosted, error) {
	reg, err := gbm.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Boosted{reg: reg}, nil
}

// Kind returns KindBoostedTree.
func (b *Boosted) Kind() Kind {
	return KindBoostedTree
}

// Fit trains on h.X against h.Y.
func (b *Boosted) Fit(h History) error {
	const op = "forecast.Boosted.Fit"

	if h.X == nil {
		return errs.New(errs.ErrConfig, op, "boosted forecaster needs a feature matrix")
	}
	if h.X.Len() != len(h.Y) {
		return errs.New(errs.ErrLengthMismatch, op, "%d feature rows but %d targets", h.X.Len(), len(h.Y))
	}
	if err := b.reg.Fit(h.X.Rows, h.Y); err != nil {
		return err
	}

	last := h.X.Len() - 1
	b.train = h.X
	b.next = h.X.Row(last).Advance(h.Y[last])
	b.trained = true
	return nil
}

// PredictInSample predicts every training row.
func (b *Boosted) PredictInSample() ([]float64, error) {
	if !b.trained {
		return nil, errs.New(errs.ErrNotTrained, "forecast.Boosted.PredictInSample", "forecaster has not been fitted")
	}
	return b.reg.PredictBatch(b.train.Rows)
}

// Predict predicts each row of x, which must have the training columns.
func (b *Boosted) Predict(x *features.Matrix) ([]float64, error) {
	const op = "forecast.Boosted.Predict"

	if !b.trained {
		return nil, errs.New(errs.ErrNotTrained, op, "forecaster has not been fitted")
	}
	if !slices.Equal(x.Columns, b.train.Columns) {
		return nil, errs.New(errs.ErrConfig, op, "columns %v do not match training columns %v", x.Columns, b.train.Columns)
	}
	return b.reg.PredictBatch(x.Rows)
}

// Forecast rolls out from the row following the last training row: its lags
// are shifted by the last training target.
func (b *Boosted) Forecast(periods int) (*Result, error) {
	if !b.trained {
		return nil, errs.New(errs.ErrNotTrained, "forecast.Boosted.Forecast", "forecaster has not been fitted")
	}
	return b.ForecastFrom(b.next, periods)
}

// ForecastFrom rolls out periods steps from seed. The seed is not modified.
func (b *Boosted) ForecastFrom(seed features.Row, periods int) (*Result, error) {
	values, _, err := b.rollout(seed, periods)
	if err != nil {
		return nil, err
	}
	return &Result{Values: values}, nil
}

// rollout returns the forecasts and the row fed to each step.
func (b *Boosted) rollout(seed features.Row, periods int) ([]float64, []features.Row, error) {
	const op = "forecast.Boosted.Forecast"

	if !b.trained {
		return nil, nil, errs.New(errs.ErrNotTrained, op, "forecaster has not been fitted")
	}
	if err := checkPeriods(op, periods); err != nil {
		return nil, nil, err
	}
	if !slices.Equal(seed.Columns, b.train.Columns) {
		return nil, nil, errs.New(errs.ErrConfig, op, "seed columns %v do not match training columns %v", seed.Columns, b.train.Columns)
	}

	values := make([]float64, periods)
	inputs := make([]features.Row, periods)
	row := seed
	for k := range periods {
		v, err := b.reg.Predict(row.Values)
		if err != nil {
			return nil, nil, err
		}
		values[k] = v
		inputs[k] = row
		row = row.Advance(v)
	}
	return values, inputs, nil
}

// FeatureImportance maps each training column to its share of split gain.
func (b *Boosted) FeatureImportance() map[string]float64 {
	if !b.trained {
		return nil
	}
	gain := b.reg.FeatureImportance()
	out := make(map[string]float64, len(gain))
	for j, c := range b.train.Columns {
		out[c] = gain[j]
	}
	return out
}

// Package pipeline runs the end-to-end training and forecasting workflow:
// load, standardize, describe, test stationarity, then train, evaluate and
// forecast every configured model.
//
// The pipeline is the only place that logs. Every stage emits one event
// carrying the run id.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sartorproj/goforecast/config"
	"github.com/sartorproj/goforecast/datasource"
	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/evaluation"
	"github.com/sartorproj/goforecast/features"
	"github.com/sartorproj/goforecast/forecast"
	"github.com/sartorproj/goforecast/split"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// Result is everything a run produced, as plain data.
type Result struct {
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	Summary      stats.Summary
	Returns      stats.ReturnStats
	Stationarity Stationarity
	Models       []ModelResult
	Comparison   *evaluation.Comparison
}

// Stationarity records the diagnostic stationarity stage. Failures here do
// not stop the run.
type Stationarity struct {
	Test              *stats.Result
	DifferencingOrder int
	Converged         bool
	Err               string
}

// ModelResult is the outcome for one model kind.
type ModelResult struct {
	Kind              forecast.Kind
	Description       string
	TrainSize         int
	TestSize          int
	Holdout           evaluation.Report
	InSample          evaluation.Report
	Forecast          []Point
	HasBounds         bool
	FeatureImportance map[string]float64
}

// Point is one forecast step. Lower and Upper are NaN without a band.
type Point struct {
	Time  time.Time
	Value float64
	Lower float64
	Upper float64
}

type runner struct {
	ctx context.Context
	cfg *config.Config
	log zerolog.Logger
}

// Run executes the workflow on the rows of src.
func Run(ctx context.Context, cfg *config.Config, src datasource.Source, log zerolog.Logger) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	r := &runner{
		ctx: ctx,
		cfg: cfg,
		log: log.With().Str("run_id", res.RunID).Logger(),
	}
	r.log.Info().
		Int("horizon", cfg.Forecast.Horizon).
		Interface("models", cfg.Forecast.Models).
		Msg("run started")

	series, err := r.load(src)
	if err != nil {
		return nil, err
	}

	res.Summary = stats.Describe(series)
	res.Returns = stats.Returns(series)
	r.log.Info().
		Str("stage", "describe").
		Time("start", res.Summary.Start).
		Time("end", res.Summary.End).
		Float64("mean", res.Summary.Mean).
		Float64("volatility", res.Returns.Volatility).
		Msg("series described")

	res.Stationarity, err = r.stationarity(series)
	if err != nil {
		return nil, err
	}

	for _, kind := range cfg.Forecast.Models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var m *ModelResult
		switch kind {
		case forecast.KindStatistical:
			m, err = r.statistical(series)
		case forecast.KindBoostedTree:
			m, err = r.boosted(series)
		default:
			err = errs.New(errs.ErrUnsupportedModel, "pipeline.Run", "unknown model kind %q", kind)
		}
		if err != nil {
			r.log.Error().Err(err).Str("stage", "model").Str("model", string(kind)).Msg("model failed")
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		res.Models = append(res.Models, *m)
	}

	if len(res.Models) == 2 {
		a, b := res.Models[0], res.Models[1]
		c := evaluation.Compare(a.Holdout, b.Holdout, string(a.Kind), string(b.Kind))
		res.Comparison = &c
		r.log.Info().Str("stage", "compare").Str("best", c.Best).Msg("models compared")
	}

	res.Duration = time.Since(res.StartedAt)
	r.log.Info().Dur("elapsed", res.Duration).Msg("run finished")
	return res, nil
}

func (r *runner) load(src datasource.Source) (*timeseries.Series, error) {
	started := time.Now()

	rows, err := src.Rows(r.ctx)
	if err != nil {
		r.log.Error().Err(err).Str("stage", "load").Msg("could not read rows")
		return nil, fmt.Errorf("load: %w", err)
	}

	series, err := timeseries.Standardize(rows, r.cfg.Data.DateField, r.cfg.Data.ValueField)
	if err != nil {
		r.log.Error().Err(err).Str("stage", "standardize").Msg("could not standardize rows")
		return nil, fmt.Errorf("standardize: %w", err)
	}
	if !series.IsIncreasing() {
		r.log.Warn().Str("stage", "standardize").Msg("series has duplicate timestamps")
	}

	r.log.Info().
		Str("stage", "load").
		Int("rows", len(rows)).
		Int("observations", series.Len()).
		Dur("elapsed", time.Since(started)).
		Msg("series loaded")
	return series, nil
}

func (r *runner) stationarity(series *timeseries.Series) (Stationarity, error) {
	if err := r.ctx.Err(); err != nil {
		return Stationarity{}, err
	}

	var out Stationarity
	analyzer, err := stats.NewAnalyzer(r.cfg.Stationarity)
	if err != nil {
		return out, err
	}

	test, err := analyzer.Test(series)
	if err != nil {
		out.Err = err.Error()
		r.log.Warn().Err(err).Str("stage", "stationarity").Msg("stationarity test failed")
		return out, nil
	}
	out.Test = test

	_, d, err := analyzer.MakeStationary(series)
	switch {
	case errors.Is(err, errs.ErrNonConvergence):
		out.DifferencingOrder = r.cfg.Stationarity.MaxDifferencing
		out.Err = err.Error()
	case err != nil:
		out.Err = err.Error()
	default:
		out.DifferencingOrder = d
		out.Converged = true
	}

	ev := r.log.Info()
	if !out.Converged {
		ev = r.log.Warn().Str("error", out.Err)
	}
	ev.Str("stage", "stationarity").
		Str("test", test.Test).
		Float64("p_value", test.PValue).
		Bool("stationary", test.IsStationary).
		Int("d", out.DifferencingOrder).
		Msg("stationarity checked")
	return out, nil
}

func (r *runner) statistical(series *timeseries.Series) (*ModelResult, error) {
	started := time.Now()
	kind := forecast.KindStatistical

	train, test, err := split.SplitSeries(series, r.cfg.Split.TestFraction)
	if err != nil {
		return nil, err
	}

	f, err := forecast.Train(kind, forecast.History{Series: train}, r.cfg.Models)
	if err != nil {
		return nil, err
	}
	out, err := r.evaluate(f, train.Values, test.Values, func() ([]float64, error) {
		res, err := f.Forecast(test.Len())
		if err != nil {
			return nil, err
		}
		return res.Values, nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	full, err := forecast.Train(kind, forecast.History{Series: series}, r.cfg.Models)
	if err != nil {
		return nil, err
	}
	fc, err := full.Forecast(r.cfg.Forecast.Horizon)
	if err != nil {
		return nil, err
	}

	order := full.(*forecast.Statistical).Order()
	out.Description = order.String()
	out.Forecast = points(series, fc)
	out.HasBounds = fc.HasBounds()

	r.log.Info().
		Str("stage", "model").
		Str("model", string(kind)).
		Str("order", out.Description).
		Float64("rmse", out.Holdout.Get(evaluation.RMSE)).
		Dur("elapsed", time.Since(started)).
		Msg("model trained")
	return out, nil
}

func (r *runner) boosted(series *timeseries.Series) (*ModelResult, error) {
	started := time.Now()
	kind := forecast.KindBoostedTree

	builder, err := features.NewBuilder(r.cfg.Features)
	if err != nil {
		return nil, err
	}
	m, err := builder.Build(series)
	if err != nil {
		return nil, err
	}
	parts, err := split.Split(m, m.Target, r.cfg.Split.TestFraction)
	if err != nil {
		return nil, err
	}

	f, err := forecast.Train(kind, forecast.History{X: parts.XTrain, Y: parts.YTrain}, r.cfg.Models)
	if err != nil {
		return nil, err
	}
	out, err := r.evaluate(f, parts.YTrain, parts.YTest, func() ([]float64, error) {
		return f.(*forecast.Boosted).Predict(parts.XTest)
	})
	if err != nil {
		return nil, err
	}

	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	full, err := forecast.Train(kind, forecast.History{X: m, Y: m.Target}, r.cfg.Models)
	if err != nil {
		return nil, err
	}
	seed, err := builder.Next(series, series.NextTimestamp())
	if err != nil {
		return nil, err
	}
	boosted := full.(*forecast.Boosted)
	fc, err := boosted.ForecastFrom(seed, r.cfg.Forecast.Horizon)
	if err != nil {
		return nil, err
	}

	out.Description = fmt.Sprintf("%d trees, %d features", r.cfg.Models.Boosted.NEstimators, len(m.Columns))
	out.Forecast = points(series, fc)
	out.FeatureImportance = boosted.FeatureImportance()

	r.log.Info().
		Str("stage", "model").
		Str("model", string(kind)).
		Int("feature_rows", m.Len()).
		Float64("rmse", out.Holdout.Get(evaluation.RMSE)).
		Dur("elapsed", time.Since(started)).
		Msg("model trained")
	return out, nil
}

// evaluate scores the holdout predictions and the in-sample fit of f.
func (r *runner) evaluate(f forecast.Forecaster, yTrain, yTest []float64, holdout func() ([]float64, error)) (*ModelResult, error) {
	pred, err := holdout()
	if err != nil {
		return nil, err
	}
	testReport, err := evaluation.Evaluate(yTest, pred)
	if err != nil {
		return nil, err
	}

	fitted, err := f.PredictInSample()
	if err != nil {
		return nil, err
	}
	trainReport, err := evaluation.Evaluate(yTrain, fitted)
	if err != nil {
		return nil, err
	}

	return &ModelResult{
		Kind:      f.Kind(),
		TrainSize: len(yTrain),
		TestSize:  len(yTest),
		Holdout:   testReport,
		InSample:  trainReport,
	}, nil
}

// points dates each forecast step, continuing the spacing of the series.
func points(series *timeseries.Series, fc *forecast.Result) []Point {
	next := series.NextTimestamp()
	var step time.Duration
	if n := series.Len(); n > 0 && !next.IsZero() {
		step = next.Sub(series.Timestamps[n-1])
	}

	out := make([]Point, len(fc.Values))
	for i, v := range fc.Values {
		p := Point{Value: v, Lower: math.NaN(), Upper: math.NaN()}
		if !next.IsZero() {
			p.Time = next.Add(time.Duration(i) * step)
		}
		if fc.HasBounds() {
			p.Lower, p.Upper = fc.Lower[i], fc.Upper[i]
		}
		out[i] = p
	}
	return out
}

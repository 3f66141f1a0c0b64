package pipeline

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/config"
	"github.com/sartorproj/goforecast/datasource"
	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/evaluation"
	"github.com/sartorproj/goforecast/forecast"
	"github.com/sartorproj/goforecast/timeseries"
)

func priceRows(n int) datasource.Static {
	rng := rand.New(rand.NewPCG(10, 20))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := make(datasource.Static, n)
	price := 100.0
	for i := range rows {
		price += 0.3 + rng.NormFloat64()
		rows[i] = timeseries.Row{
			"Date":  start.AddDate(0, 0, i).Format("2006-01-02"),
			"Close": strconv.FormatFloat(price, 'f', 2, 64),
		}
	}
	// Newest first, as many exports are.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Models.Statistical.MaxP = 1
	cfg.Models.Statistical.MaxQ = 1
	cfg.Models.Boosted.NEstimators = 30
	cfg.Forecast.Horizon = 5
	return cfg
}

func TestRun(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	res, err := Run(context.Background(), testConfig(t), priceRows(120), log)
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 120, res.Summary.NObs)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), res.Summary.Start)
	assert.True(t, res.Returns.Defined)
	assert.NotNil(t, res.Stationarity.Test)

	require.Len(t, res.Models, 2)

	st := res.Models[0]
	assert.Equal(t, forecast.KindStatistical, st.Kind)
	assert.Equal(t, 96, st.TrainSize)
	assert.Equal(t, 24, st.TestSize)
	assert.True(t, st.HasBounds)
	assert.Contains(t, st.Description, "ARIMA(")
	require.Len(t, st.Forecast, 5)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), st.Forecast[0].Time)
	assert.Equal(t, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), st.Forecast[4].Time)
	for _, p := range st.Forecast {
		assert.LessOrEqual(t, p.Lower, p.Value)
		assert.GreaterOrEqual(t, p.Upper, p.Value)
	}
	assert.True(t, st.Holdout.Defined(evaluation.RMSE))
	assert.True(t, st.InSample.Defined(evaluation.MAE))

	gb := res.Models[1]
	assert.Equal(t, forecast.KindBoostedTree, gb.Kind)
	assert.Equal(t, 72, gb.TrainSize)
	assert.Equal(t, 18, gb.TestSize)
	assert.False(t, gb.HasBounds)
	require.Len(t, gb.Forecast, 5)
	assert.True(t, math.IsNaN(gb.Forecast[0].Lower))
	assert.NotEmpty(t, gb.FeatureImportance)

	require.NotNil(t, res.Comparison)
	assert.Contains(t, []string{"STATISTICAL", "BOOSTED_TREE", evaluation.Tie}, res.Comparison.Best)

	out := logs.String()
	assert.Contains(t, out, res.RunID)
	for _, stage := range []string{`"stage":"load"`, `"stage":"describe"`, `"stage":"stationarity"`, `"stage":"model"`, `"stage":"compare"`} {
		assert.Contains(t, out, stage)
	}
}

func TestRunSingleModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Forecast.Models = []forecast.Kind{forecast.KindBoostedTree}

	res, err := Run(context.Background(), cfg, priceRows(80), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Models, 1)
	assert.Nil(t, res.Comparison)
}

func TestRunWarnsOnDuplicateTimestamps(t *testing.T) {
	cfg := testConfig(t)
	cfg.Forecast.Models = []forecast.Kind{forecast.KindStatistical}

	rows := priceRows(80)
	rows = append(rows, timeseries.Row{"Date": rows[10]["Date"], "Close": "101.5"})

	var logs bytes.Buffer
	res, err := Run(context.Background(), cfg, rows, zerolog.New(&logs))
	require.NoError(t, err)
	assert.Equal(t, 81, res.Summary.NObs)
	assert.Contains(t, logs.String(), "series has duplicate timestamps")

	logs.Reset()
	_, err = Run(context.Background(), cfg, priceRows(80), zerolog.New(&logs))
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "duplicate timestamps")
}

func TestRunErrors(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, cfg, priceRows(50), zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)

	rows := datasource.Static{{"Date": "2024-01-01", "Price": "1"}}
	_, err = Run(context.Background(), cfg, rows, zerolog.Nop())
	assert.ErrorIs(t, err, errs.ErrSchema)

	_, err = Run(context.Background(), cfg, priceRows(20), zerolog.Nop())
	assert.ErrorIs(t, err, errs.ErrInsufficientData)
}

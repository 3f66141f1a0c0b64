package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/forecast"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goforecast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Date", cfg.Data.DateField)
	assert.Equal(t, "Close", cfg.Data.ValueField)
	assert.Equal(t, "csv", cfg.Data.Source)

	assert.InDelta(t, 0.05, cfg.Stationarity.Significance, 1e-12)
	assert.Equal(t, 10, cfg.Stationarity.MaxDifferencing)
	assert.Equal(t, "adf", cfg.Stationarity.Test)

	assert.Equal(t, 5, cfg.Features.Lags)
	assert.Equal(t, []int{7, 14, 30}, cfg.Features.RollingWindows)
	assert.True(t, cfg.Features.Calendar)

	assert.InDelta(t, 0.2, cfg.Split.TestFraction, 1e-12)

	st := cfg.Models.Statistical
	assert.Equal(t, 6, st.MaxP)
	assert.Equal(t, 2, st.MaxD)
	assert.Equal(t, 6, st.MaxQ)
	assert.Equal(t, "aic", st.Criterion)
	assert.True(t, st.Trend)
	assert.Equal(t, "kpss", st.StationTest)
	assert.InDelta(t, 0.95, st.Confidence, 1e-12)

	assert.Equal(t, forecast.DefaultConfig().Boosted, cfg.Models.Boosted)

	assert.Equal(t, 30, cfg.Forecast.Horizon)
	assert.Equal(t, []forecast.Kind{forecast.KindStatistical, forecast.KindBoostedTree}, cfg.Forecast.Models)

	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
data:
  path: prices.xlsx
  source: xlsx
  value_field: Adj Close
features:
  lags: 3
  rolling_windows: [5, 10]
models:
  statistical:
    max_p: 3
    criterion: bic
  boosted:
    n_estimators: 100
forecast:
  horizon: 10
  models: [xgboost]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xlsx", cfg.Data.Source)
	assert.Equal(t, "prices.xlsx", cfg.Data.Path)
	assert.Equal(t, "Adj Close", cfg.Data.ValueField)
	assert.Equal(t, "Date", cfg.Data.DateField)
	assert.Equal(t, 3, cfg.Features.Lags)
	assert.Equal(t, []int{5, 10}, cfg.Features.RollingWindows)
	assert.Equal(t, 3, cfg.Models.Statistical.MaxP)
	assert.Equal(t, 6, cfg.Models.Statistical.MaxQ)
	assert.Equal(t, "bic", cfg.Models.Statistical.Criterion)
	assert.Equal(t, 100, cfg.Models.Boosted.NEstimators)
	assert.InDelta(t, 0.05, cfg.Models.Boosted.LearningRate, 1e-12)
	assert.Equal(t, 10, cfg.Forecast.Horizon)
	assert.Equal(t, []forecast.Kind{forecast.KindBoostedTree}, cfg.Forecast.Models)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "forecast:\n  horizon: 10\n")

	t.Setenv("GOFORECAST_FORECAST_HORIZON", "45")
	t.Setenv("GOFORECAST_MODELS_STATISTICAL_MAX_P", "2")
	t.Setenv("GOFORECAST_SPLIT_TEST_FRACTION", "0.25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Forecast.Horizon)
	assert.Equal(t, 2, cfg.Models.Statistical.MaxP)
	assert.InDelta(t, 0.25, cfg.Split.TestFraction, 1e-12)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	want, err := Default()
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, errs.ErrConfig)

	tests := map[string]string{
		"test fraction":   "split:\n  test_fraction: 1.5\n",
		"criterion":       "models:\n  statistical:\n    criterion: hqic\n",
		"window":          "features:\n  rolling_windows: [1]\n",
		"horizon":         "forecast:\n  horizon: 0\n",
		"model kind":      "forecast:\n  models: [prophet]\n",
		"data source":     "data:\n  source: parquet\n",
		"learning rate":   "models:\n  boosted:\n    learning_rate: 2\n",
		"stationary test": "stationarity:\n  test: zivot\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.ErrorIs(t, err, errs.ErrConfig)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Forecast.Horizon = 12
	cfg.Models.Statistical.MaxQ = 4

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	assert.Contains(t, buf.String(), "horizon: 12")

	back, err := Load(writeFile(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

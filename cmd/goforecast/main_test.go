package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/config"
	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/forecast"
	"github.com/sartorproj/goforecast/pipeline"
)

func TestOverride(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	require.NoError(t, override(cfg, "data/prices.XLSX", "", "Daily", 12, "xgboost, statistical"))
	assert.Equal(t, "data/prices.XLSX", cfg.Data.Path)
	assert.Equal(t, "xlsx", cfg.Data.Source)
	assert.Equal(t, "Daily", cfg.Data.Sheet)
	assert.Equal(t, 12, cfg.Forecast.Horizon)
	assert.Equal(t, []forecast.Kind{forecast.KindBoostedTree, forecast.KindStatistical}, cfg.Forecast.Models)

	require.NoError(t, override(cfg, "prices.txt", "CSV", "", 0, ""))
	assert.Equal(t, "csv", cfg.Data.Source)
	assert.Equal(t, 12, cfg.Forecast.Horizon)

	assert.ErrorIs(t, override(cfg, "", "", "", 0, "prophet"), errs.ErrConfig)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &pipeline.Result{
		RunID:  "run-1",
		Models: []pipeline.ModelResult{{Kind: forecast.KindStatistical, Description: "ARIMA(0,1,0)"}},
	})

	out := buf.String()
	assert.Contains(t, out, "goforecast run run-1")
	assert.Contains(t, out, "STATISTICAL  ARIMA(0,1,0)")
}

// Command goforecast trains statistical and boosted-tree models on a price
// history file, evaluates them on a holdout and forecasts forward.
//
//	goforecast -data prices.csv -horizon 30 -json report.json -xlsx report.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sartorproj/goforecast/config"
	"github.com/sartorproj/goforecast/datasource"
	"github.com/sartorproj/goforecast/evaluation"
	"github.com/sartorproj/goforecast/forecast"
	"github.com/sartorproj/goforecast/logger"
	"github.com/sartorproj/goforecast/pipeline"
	"github.com/sartorproj/goforecast/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "goforecast:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file path (default: goforecast.yaml in . or ./configs)")
	dataPath := flag.String("data", "", "price history file, overrides data.path")
	source := flag.String("source", "", "csv or xlsx, overrides data.source (default: from file extension)")
	sheet := flag.String("sheet", "", "worksheet to read from an xlsx file")
	jsonOut := flag.String("json", "", "write the JSON report to this file, - for stdout")
	xlsxOut := flag.String("xlsx", "", "write the Excel report to this file")
	horizon := flag.Int("horizon", 0, "forecast horizon, overrides forecast.horizon")
	models := flag.String("models", "", "comma separated model kinds, overrides forecast.models")
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := override(cfg, *dataPath, *source, *sheet, *horizon, *models); err != nil {
		return err
	}
	if *printConfig {
		return cfg.Write(os.Stdout)
	}
	if cfg.Data.Path == "" {
		return errors.New("no data file: pass -data or set data.path")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	src, err := datasource.New(cfg.Data.Source, cfg.Data.Path, cfg.Data.Sheet)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, cfg, src, log)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, res)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, res); err != nil {
			return fmt.Errorf("json report: %w", err)
		}
		log.Info().Str("path", *jsonOut).Msg("json report written")
	}
	if *xlsxOut != "" {
		if err := report.WriteXLSX(*xlsxOut, res); err != nil {
			return fmt.Errorf("xlsx report: %w", err)
		}
		log.Info().Str("path", *xlsxOut).Msg("xlsx report written")
	}
	return nil
}

// override applies command line flags on top of the loaded configuration.
func override(cfg *config.Config, dataPath, source, sheet string, horizon int, models string) error {
	if dataPath != "" {
		cfg.Data.Path = dataPath
		if source == "" {
			switch strings.ToLower(filepath.Ext(dataPath)) {
			case ".xlsx", ".xlsm":
				cfg.Data.Source = datasource.KindXLSX
			case ".csv", ".txt":
				cfg.Data.Source = datasource.KindCSV
			}
		}
	}
	if source != "" {
		cfg.Data.Source = strings.ToLower(source)
	}
	if sheet != "" {
		cfg.Data.Sheet = sheet
	}
	if horizon != 0 {
		cfg.Forecast.Horizon = horizon
	}
	if models != "" {
		cfg.Forecast.Models = nil
		for _, tag := range strings.Split(models, ",") {
			cfg.Forecast.Models = append(cfg.Forecast.Models, forecast.Kind(strings.TrimSpace(tag)))
		}
	}
	return cfg.Validate()
}

func writeJSON(path string, res *pipeline.Result) error {
	if path == "-" {
		return report.WriteJSON(os.Stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "goforecast run %s\n", res.RunID)
	fmt.Fprintln(w, strings.Repeat("=", 72))

	s := res.Summary
	fmt.Fprintf(w, "\nObservations: %d (%s to %s)\n", s.NObs, s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Mean: %.4f  Std: %.4f  Min: %.4f  Max: %.4f\n", s.Mean, s.Std, s.Min, s.Max)
	if res.Returns.Defined {
		fmt.Fprintf(w, "Daily return: mean %.4f%%, volatility %.4f%%\n", res.Returns.Mean*100, res.Returns.Volatility*100)
	}

	if t := res.Stationarity.Test; t != nil {
		fmt.Fprintf(w, "\nStationarity (%s): statistic %.4f, p-value %.4f, stationary=%v, d=%d\n",
			strings.ToUpper(t.Test), t.Statistic, t.PValue, t.IsStationary, res.Stationarity.DifferencingOrder)
	}
	if res.Stationarity.Err != "" {
		fmt.Fprintf(w, "Stationarity note: %s\n", res.Stationarity.Err)
	}

	for _, m := range res.Models {
		fmt.Fprintf(w, "\n%s  %s\n", m.Kind, m.Description)
		fmt.Fprintln(w, strings.Repeat("-", 72))
		fmt.Fprintf(w, "  Holdout (%d train / %d test): RMSE %.4f  MAE %.4f  MAPE %.2f%%  DA %.1f%%\n",
			m.TrainSize, m.TestSize,
			m.Holdout.Get(evaluation.RMSE), m.Holdout.Get(evaluation.MAE),
			m.Holdout.Get(evaluation.MAPE), m.Holdout.Get(evaluation.DirectionalAccuracy))
		if n := len(m.Forecast); n > 0 {
			first, last := m.Forecast[0], m.Forecast[n-1]
			fmt.Fprintf(w, "  Forecast: %s %.4f ... %s %.4f",
				first.Time.Format("2006-01-02"), first.Value, last.Time.Format("2006-01-02"), last.Value)
			if m.HasBounds {
				fmt.Fprintf(w, " [%.4f, %.4f]", last.Lower, last.Upper)
			}
			fmt.Fprintln(w)
		}
	}

	if res.Comparison != nil {
		fmt.Fprintf(w, "\nBest model by holdout RMSE: %s\n", res.Comparison.Best)
	}
}

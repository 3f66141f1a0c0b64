package report

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/goforecast/evaluation"
	"github.com/sartorproj/goforecast/pipeline"
)

// Sheet names of the exported workbook.
const (
	SheetSummary  = "Summary"
	SheetMetrics  = "Metrics"
	SheetForecast = "Forecast"
	SheetFeatures = "Features"
)

// WriteXLSX saves res as a workbook at path with Summary, Metrics and
// Forecast sheets, plus Features when a model reports importances.
func WriteXLSX(path string, res *pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	w := &workbook{f: f, header: header}
	w.summary(res)
	w.metrics(res)
	w.forecast(res)
	w.features(res)
	if w.err != nil {
		return w.err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type workbook struct {
	f      *excelize.File
	header int
	err    error
}

func (w *workbook) row(sheet string, r int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *workbook) headerRow(sheet string, values []any) {
	w.row(sheet, 1, values)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, "A1", last, w.header)
}

func (w *workbook) sheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

func (w *workbook) width(sheet, from, to string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(sheet, from, to, width)
}

// cell leaves undefined numbers empty.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return Round(v)
}

func (w *workbook) summary(res *pipeline.Result) {
	doc := Build(res)
	s := res.Summary
	rows := [][]any{
		{"Run ID", res.RunID},
		{"Started", res.StartedAt.Format("2006-01-02 15:04:05")},
		{"Observations", s.NObs},
		{"Start", doc.Summary.Start},
		{"End", doc.Summary.End},
		{"Min", cell(s.Min)},
		{"Max", cell(s.Max)},
		{"Mean", cell(s.Mean)},
		{"Median", cell(s.Median)},
		{"Std", cell(s.Std)},
		{"Return Mean", cell(res.Returns.Mean)},
		{"Volatility", cell(res.Returns.Volatility)},
	}
	if t := res.Stationarity.Test; t != nil {
		rows = append(rows,
			[]any{"Stationarity Test", t.Test},
			[]any{"Test Statistic", cell(t.Statistic)},
			[]any{"P-Value", cell(t.PValue)},
			[]any{"Stationary", t.IsStationary},
		)
	}
	rows = append(rows, []any{"Differencing Order", res.Stationarity.DifferencingOrder})
	if res.Comparison != nil {
		rows = append(rows, []any{"Best Model", res.Comparison.Best})
	}

	w.headerRow(SheetSummary, []any{"Field", "Value"})
	for i, r := range rows {
		w.row(SheetSummary, i+2, r)
	}
	w.width(SheetSummary, "A", "B", 22)
}

func (w *workbook) metrics(res *pipeline.Result) {
	w.sheet(SheetMetrics)

	header := []any{"Metric"}
	for _, m := range res.Models {
		header = append(header, string(m.Kind)+" Holdout", string(m.Kind)+" In-Sample")
	}
	w.headerRow(SheetMetrics, header)

	for i, name := range evaluation.Names() {
		r := []any{name}
		for _, m := range res.Models {
			r = append(r, cell(m.Holdout.Get(name)), cell(m.InSample.Get(name)))
		}
		w.row(SheetMetrics, i+2, r)
	}
	w.width(SheetMetrics, "A", "A", 24)
}

func (w *workbook) forecast(res *pipeline.Result) {
	w.sheet(SheetForecast)

	header := []any{"Date"}
	horizon := 0
	for _, m := range res.Models {
		header = append(header, string(m.Kind))
		if m.HasBounds {
			header = append(header, string(m.Kind)+" Lower", string(m.Kind)+" Upper")
		}
		horizon = max(horizon, len(m.Forecast))
	}
	w.headerRow(SheetForecast, header)

	for i := range horizon {
		r := []any{nil}
		for _, m := range res.Models {
			if i >= len(m.Forecast) {
				r = append(r, nil)
				if m.HasBounds {
					r = append(r, nil, nil)
				}
				continue
			}
			p := m.Forecast[i]
			if r[0] == nil && !p.Time.IsZero() {
				r[0] = p.Time.Format(dateLayout)
			}
			r = append(r, cell(p.Value))
			if m.HasBounds {
				r = append(r, cell(p.Lower), cell(p.Upper))
			}
		}
		w.row(SheetForecast, i+2, r)
	}
	w.width(SheetForecast, "A", "A", 12)
}

func (w *workbook) features(res *pipeline.Result) {
	for _, m := range res.Models {
		if len(m.FeatureImportance) == 0 {
			continue
		}
		w.sheet(SheetFeatures)
		w.headerRow(SheetFeatures, []any{"Feature", "Importance"})

		names := slices.SortedFunc(maps.Keys(m.FeatureImportance), func(a, b string) int {
			if c := cmp.Compare(m.FeatureImportance[b], m.FeatureImportance[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		for i, name := range names {
			w.row(SheetFeatures, i+2, []any{name, cell(m.FeatureImportance[name])})
		}
		w.width(SheetFeatures, "A", "A", 18)
		return
	}
}

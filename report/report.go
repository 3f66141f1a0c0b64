// Package report exports pipeline results as JSON documents and Excel
// workbooks. Numbers are rounded to Places decimals; undefined values become
// JSON null or empty cells.
package report

import (
	"encoding/json"
	"io"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sartorproj/goforecast/evaluation"
	"github.com/sartorproj/goforecast/pipeline"
)

// Places is the number of decimals kept in exported numbers.
const Places = 4

const dateLayout = "2006-01-02"

// Document is the JSON form of a pipeline result.
type Document struct {
	RunID        string       `json:"run_id"`
	StartedAt    time.Time    `json:"started_at"`
	DurationMS   int64        `json:"duration_ms"`
	Summary      Summary      `json:"summary"`
	Stationarity Stationarity `json:"stationarity"`
	Models       []Model      `json:"models"`
	BestModel    string       `json:"best_model,omitempty"`
}

// Summary describes the input series and its returns.
type Summary struct {
	Start        string   `json:"start,omitempty"`
	End          string   `json:"end,omitempty"`
	Observations int      `json:"observations"`
	Min          *float64 `json:"min"`
	Max          *float64 `json:"max"`
	Mean         *float64 `json:"mean"`
	Median       *float64 `json:"median"`
	Std          *float64 `json:"std"`
	ReturnMean   *float64 `json:"return_mean"`
	Volatility   *float64 `json:"volatility"`
	ReturnMin    *float64 `json:"return_min"`
	ReturnMax    *float64 `json:"return_max"`
}

// Stationarity is the diagnostic unit-root stage.
type Stationarity struct {
	Test              string              `json:"test,omitempty"`
	Statistic         *float64            `json:"statistic"`
	PValue            *float64            `json:"p_value"`
	CriticalValues    map[string]*float64 `json:"critical_values,omitempty"`
	IsStationary      bool                `json:"is_stationary"`
	DifferencingOrder int                 `json:"differencing_order"`
	Converged         bool                `json:"converged"`
	Error             string              `json:"error,omitempty"`
}

// Model is one trained model with its metrics and forecast.
type Model struct {
	Kind              string              `json:"kind"`
	Description       string              `json:"description"`
	TrainSize         int                 `json:"train_size"`
	TestSize          int                 `json:"test_size"`
	Holdout           evaluation.Report   `json:"holdout_metrics"`
	InSample          evaluation.Report   `json:"in_sample_metrics"`
	Forecast          []Point             `json:"forecast"`
	FeatureImportance map[string]*float64 `json:"feature_importance,omitempty"`
}

// Point is one forecast step.
type Point struct {
	Date  string   `json:"date,omitempty"`
	Value *float64 `json:"value"`
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// Build converts a pipeline result into its exported form.
func Build(res *pipeline.Result) Document {
	doc := Document{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt,
		DurationMS: res.Duration.Milliseconds(),
		Summary: Summary{
			Start:        date(res.Summary.Start),
			End:          date(res.Summary.End),
			Observations: res.Summary.NObs,
			Min:          num(res.Summary.Min),
			Max:          num(res.Summary.Max),
			Mean:         num(res.Summary.Mean),
			Median:       num(res.Summary.Median),
			Std:          num(res.Summary.Std),
			ReturnMean:   num(res.Returns.Mean),
			Volatility:   num(res.Returns.Volatility),
			ReturnMin:    num(res.Returns.Min),
			ReturnMax:    num(res.Returns.Max),
		},
		Stationarity: Stationarity{
			DifferencingOrder: res.Stationarity.DifferencingOrder,
			Converged:         res.Stationarity.Converged,
			Error:             res.Stationarity.Err,
		},
		Models: make([]Model, 0, len(res.Models)),
	}

	if t := res.Stationarity.Test; t != nil {
		doc.Stationarity.Test = t.Test
		doc.Stationarity.Statistic = num(t.Statistic)
		doc.Stationarity.PValue = num(t.PValue)
		doc.Stationarity.IsStationary = t.IsStationary
		doc.Stationarity.CriticalValues = nums(t.CriticalValues)
	}

	for _, m := range res.Models {
		out := Model{
			Kind:              string(m.Kind),
			Description:       m.Description,
			TrainSize:         m.TrainSize,
			TestSize:          m.TestSize,
			Holdout:           round(m.Holdout),
			InSample:          round(m.InSample),
			Forecast:          make([]Point, len(m.Forecast)),
			FeatureImportance: nums(m.FeatureImportance),
		}
		for i, p := range m.Forecast {
			out.Forecast[i] = Point{
				Date:  date(p.Time),
				Value: num(p.Value),
				Lower: num(p.Lower),
				Upper: num(p.Upper),
			}
		}
		doc.Models = append(doc.Models, out)
	}

	if res.Comparison != nil {
		doc.BestModel = res.Comparison.Best
	}
	return doc
}

// WriteJSON writes res as an indented JSON document.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(res))
}

// Round rounds v half away from zero to Places decimals.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(Places).Float64()
	return f
}

// num is nil for NaN and infinities.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := Round(v)
	return &r
}

func nums(m map[string]float64) map[string]*float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]*float64, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out[k] = num(m[k])
	}
	return out
}

func round(r evaluation.Report) evaluation.Report {
	out := make(evaluation.Report, len(r))
	for k, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = math.NaN()
			continue
		}
		out[k] = Round(v)
	}
	return out
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

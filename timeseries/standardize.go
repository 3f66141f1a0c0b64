package timeseries

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sartorproj/goforecast/errs"
)

// Default column names of a quote table.
const (
	DefaultDateField  = "Date"
	DefaultValueField = "Close"
)

// Row is one decoded tabular record keyed by column name.
type Row map[string]any

// DateLayouts are the layouts tried, in order, when a date arrives as text.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006-01",
	"2006",
}

type point struct {
	ts    time.Time
	value float64
}

// Standardize validates raw rows and turns them into a canonical series sorted
// by date.
//
// Every row must carry both fields. A missing or unparseable date fails the
// whole call with errs.ErrParse. A missing, non-numeric or non-finite value
// drops its row; errs.ErrInsufficientData when no row is left. Rows with equal dates keep their input order and are not
// deduplicated; callers that need unique timestamps filter beforehand.
func Standardize(rows []Row, dateField, valueField string) (*Series, error) {
	const op = "timeseries.Standardize"

	if dateField == "" {
		dateField = DefaultDateField
	}
	if valueField == "" {
		valueField = DefaultValueField
	}
	if len(rows) == 0 {
		return nil, errs.New(errs.ErrInsufficientData, op, "no rows")
	}

	for i, row := range rows {
		if _, ok := row[dateField]; !ok {
			return nil, errs.New(errs.ErrSchema, op, "row %d: column %q not found", i, dateField)
		}
		if _, ok := row[valueField]; !ok {
			return nil, errs.New(errs.ErrSchema, op, "row %d: column %q not found", i, valueField)
		}
	}

	points := make([]point, 0, len(rows))
	for i, row := range rows {
		ts, err := ParseDate(row[dateField])
		if err != nil {
			return nil, errs.Wrap(errs.ErrParse, op, err, "row %d: column %q", i, dateField)
		}
		value, ok := ParseValue(row[valueField])
		if !ok {
			continue
		}
		points = append(points, point{ts: ts, value: value})
	}
	if len(points) == 0 {
		return nil, errs.New(errs.ErrInsufficientData, op, "none of %d rows has a numeric %q", len(rows), valueField)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].ts.Before(points[j].ts)
	})

	series := &Series{
		Timestamps: make([]time.Time, len(points)),
		Values:     make([]float64, len(points)),
		Name:       valueField,
	}
	for i, p := range points {
		series.Timestamps[i] = p.ts
		series.Values[i] = p.value
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// ParseDate converts a raw cell into a timestamp. Empty cells are an error.
func ParseDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, errEmptyDate
		}
		return v, nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, errEmptyDate
		}
		return *v, nil
	case string:
		s := strings.TrimSpace(strings.Trim(v, "\""))
		if s == "" {
			return time.Time{}, errEmptyDate
		}
		var lastErr error
		for _, layout := range DateLayouts {
			ts, err := time.Parse(layout, s)
			if err == nil {
				return ts, nil
			}
			lastErr = err
		}
		return time.Time{}, lastErr
	case nil:
		return time.Time{}, errEmptyDate
	default:
		return time.Time{}, &unsupportedDateError{value: raw}
	}
}

// ParseValue converts a raw cell into a finite number. The second result is
// false when the cell is missing or not a finite number.
func ParseValue(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case decimal.Decimal:
		f = v.InexactFloat64()
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	case string:
		s := strings.TrimSpace(strings.Trim(v, "\""))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var errEmptyDate = errors.New("empty date")

type unsupportedDateError struct {
	value any
}

func (e *unsupportedDateError) Error() string {
	return fmt.Sprintf("unsupported date value %v (%T)", e.value, e.value)
}

// Package datasource reads raw quote rows from files for the standardizer.
//
// Sources only decode; they never validate dates or prices. That is the job
// of timeseries.Standardize:
//
//	src, err := datasource.New("csv", "prices.csv", "")
//	rows, err := src.Rows(ctx)
//	series, err := timeseries.Standardize(rows, "Date", "Close")
package datasource

import (
	"context"
	"strings"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/timeseries"
)

// Source yields raw (date, price, ...) rows.
type Source interface {
	Rows(ctx context.Context) ([]timeseries.Row, error)
}

// Kinds of file-backed sources.
const (
	KindCSV  = "csv"
	KindXLSX = "xlsx"
)

// New returns the file source for kind. sheet only applies to workbooks.
func New(kind, path, sheet string) (Source, error) {
	switch strings.ToLower(kind) {
	case KindCSV:
		return &CSV{Path: path, Delimiter: ','}, nil
	case KindXLSX:
		return &XLSX{Path: path, Sheet: sheet}, nil
	default:
		return nil, errs.New(errs.ErrConfig, "datasource.New", "unknown source kind %q", kind)
	}
}

// Static serves rows held in memory.
type Static []timeseries.Row

// Rows returns the held rows.
func (s Static) Rows(ctx context.Context) ([]timeseries.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// recordsToRows pairs a header with data records. Every header column is
// present on every row: cells missing from a short record are empty strings.
// Blank lines are skipped.
func recordsToRows(header []string, records [][]string) []timeseries.Row {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.Trim(h, "\"\ufeff"))
	}

	rows := make([]timeseries.Row, 0, len(records))
	for _, record := range records {
		if isBlank(record) {
			continue
		}
		row := make(timeseries.Row, len(names))
		for i, name := range names {
			if name == "" {
				continue
			}
			cell := ""
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			row[name] = cell
		}
		rows = append(rows, row)
	}
	return rows
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

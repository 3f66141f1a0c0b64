package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/goforecast/timeseries"
)

// XLSX reads one worksheet whose first row is the header.
type XLSX struct {
	Path  string
	Sheet string // defaults to the first sheet
}

// Rows implements Source.
func (x *XLSX) Rows(ctx context.Context) ([]timeseries.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	return recordsToRows(records[0], records[1:]), nil
}

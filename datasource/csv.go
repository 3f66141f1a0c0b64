package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sartorproj/goforecast/timeseries"
)

// CSV reads a delimited file with a header row.
type CSV struct {
	Path      string    // file to open when Reader is nil
	Reader    io.Reader // optional in-memory input
	Delimiter rune      // field delimiter (default: ',')
	SkipRows  int       // rows to skip before the header
}

// Rows implements Source.
func (c *CSV) Rows(ctx context.Context) ([]timeseries.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := c.Reader
	if r == nil {
		file, err := os.Open(c.Path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		defer file.Close()
		r = file
	}

	reader := csv.NewReader(r)
	reader.Comma = c.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for i := 0; i < c.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("skip csv row %d: %w", i, err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header row")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, record)
	}

	return recordsToRows(header, records), nil
}

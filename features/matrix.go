package features

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

const lagPrefix = "lag_"

// LagColumn returns the name of the k-th lag feature.
func LagColumn(k int) string {
	return lagPrefix + strconv.Itoa(k)
}

// Matrix is a supervised-learning view of a series: one feature row and one
// target value per retained timestamp.
type Matrix struct {
	Columns []string
	Index   []time.Time
	Rows    [][]float64
	Target  []float64
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.Rows)
}

// ColumnIndex returns the position of name, or -1.
func (m *Matrix) ColumnIndex(name string) int {
	return slices.Index(m.Columns, name)
}

// Column returns a copy of one feature column.
func (m *Matrix) Column(name string) ([]float64, bool) {
	j := m.ColumnIndex(name)
	if j < 0 {
		return nil, false
	}
	col := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		col[i] = row[j]
	}
	return col, true
}

// Row returns row i.
func (m *Matrix) Row(i int) Row {
	return Row{Columns: m.Columns, Values: slices.Clone(m.Rows[i])}
}

// Slice returns rows [start, end) sharing no row storage with m.
func (m *Matrix) Slice(start, end int) *Matrix {
	start = max(start, 0)
	end = min(end, m.Len())
	if start > end {
		start = end
	}

	rows := make([][]float64, end-start)
	for i := range rows {
		rows[i] = slices.Clone(m.Rows[start+i])
	}
	return &Matrix{
		Columns: slices.Clone(m.Columns),
		Index:   slices.Clone(m.Index[start:end]),
		Rows:    rows,
		Target:  slices.Clone(m.Target[start:end]),
	}
}

// Row is a single named feature vector.
type Row struct {
	Columns []string
	Values  []float64
}

// Get returns the value of a named feature.
func (r Row) Get(name string) (float64, bool) {
	j := slices.Index(r.Columns, name)
	if j < 0 {
		return 0, false
	}
	return r.Values[j], true
}

// Lags returns the number of lag_k columns.
func (r Row) Lags() int {
	n := 0
	for _, c := range r.Columns {
		if k, ok := LagOrder(c); ok {
			n = max(n, k)
		}
	}
	return n
}

// Advance returns the row for the following step when the current step
// produced prediction: lag_k takes lag_{k-1} and lag_1 takes prediction.
// Every other feature is carried over unchanged. r is not modified.
func (r Row) Advance(prediction float64) Row {
	pos := make(map[int]int)
	for j, c := range r.Columns {
		if k, ok := LagOrder(c); ok {
			pos[k] = j
		}
	}

	next := Row{Columns: r.Columns, Values: slices.Clone(r.Values)}
	for k := len(pos); k >= 2; k-- {
		dst, okDst := pos[k]
		src, okSrc := pos[k-1]
		if okDst && okSrc {
			next.Values[dst] = r.Values[src]
		}
	}
	if j, ok := pos[1]; ok {
		next.Values[j] = prediction
	}
	return next
}

// LagOrder parses a lag column name, returning k for "lag_k".
func LagOrder(column string) (int, bool) {
	rest, ok := strings.CutPrefix(column, lagPrefix)
	if !ok {
		return 0, false
	}
	k, err := strconv.Atoi(rest)
	if err != nil || k < 1 {
		return 0, false
	}
	return k, true
}

// Package table holds tabular measurement results: named float64 columns
// over a gonum matrix, stored in a container as a two-dimensional dataset.
package table

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrShape reports rows whose width differs from the column count.
var ErrShape = errors.New("row width does not match columns")

// Table is a column-named matrix of float64 values.
type Table struct {
	columns []string
	m       *mat.Dense // nil for a table without rows
}

// New builds a table from row-major values.
func New(columns []string, rows [][]float64) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table: no columns: %w", ErrShape)
	}
	if dup := duplicate(columns); dup != "" {
		return nil, fmt.Errorf("table: duplicate column %q", dup)
	}
	t := &Table{columns: slices.Clone(columns)}
	if len(rows) == 0 {
		return t, nil
	}
	data := make([]float64, 0, len(rows)*len(columns))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("table: row %d has %d values, want %d: %w", i, len(r), len(columns), ErrShape)
		}
		data = append(data, r...)
	}
	t.m = mat.NewDense(len(rows), len(columns), data)
	return t, nil
}

// FromDense wraps m; its column count must match columns.
func FromDense(columns []string, m *mat.Dense) (*Table, error) {
	if m == nil {
		return New(columns, nil)
	}
	r, c := m.Dims()
	if c != len(columns) {
		return nil, fmt.Errorf("table: matrix has %d columns, want %d: %w", c, len(columns), ErrShape)
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return New(columns, rows)
}

func duplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	return ""
}

// Columns returns the column names.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t.m == nil {
		return 0
	}
	r, _ := t.m.Dims()
	return r
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []float64 {
	return mat.Row(nil, i, t.m)
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	j := slices.Index(t.columns, name)
	if j < 0 {
		return nil, false
	}
	if t.m == nil {
		return []float64{}, true
	}
	return mat.Col(nil, j, t.m), true
}

// Mean returns the mean of the named column; NaN for an empty table.
func (t *Table) Mean(name string) (float64, bool) {
	col, ok := t.Column(name)
	if !ok {
		return 0, false
	}
	return stat.Mean(col, nil), true
}

// Dense returns the underlying matrix, nil when the table has no rows.
func (t *Table) Dense() *mat.Dense { return t.m }

// values returns the row-major cells.
func (t *Table) values() []float64 {
	if t.m == nil {
		return []float64{}
	}
	r, c := t.m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, t.m.RawRowView(i)...)
	}
	return out
}

// Equal reports equal columns and cells.
func (t *Table) Equal(u *Table) bool {
	if !slices.Equal(t.columns, u.columns) || t.Len() != u.Len() {
		return false
	}
	return t.m == nil || mat.Equal(t.m, u.m)
}

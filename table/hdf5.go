package table

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-usvol/hdf5"
)

// Kind is the value of the "kind" attribute marking a table dataset.
const Kind = "table"

// Attribute names used on table datasets.
const (
	AttrColumns = "columns"
	AttrKind    = "kind"
)

// ErrNotTable is returned by ReadHDF5 for datasets not written by WriteHDF5.
var ErrNotTable = errors.New("dataset is not a table")

// WriteHDF5 stores t in g as dataset key: a rows x columns float64 dataset
// carrying the column names and the table kind as attributes.
func (t *Table) WriteHDF5(g *hdf5.Group, key string) error {
	_, err := g.CreateDataset(key, t.values(),
		hdf5.WithDims(uint64(t.Len()), uint64(len(t.columns))),
		hdf5.WithAttribute(AttrColumns, t.Columns()),
		hdf5.WithAttribute(AttrKind, Kind),
	)
	return err
}

// ReadHDF5 reads the table stored as dataset key of g.
func ReadHDF5(g *hdf5.Group, key string) (*Table, error) {
	ds, err := g.OpenDataset(key)
	if err != nil {
		return nil, err
	}
	return FromDataset(ds)
}

// FromDataset reads a table written by WriteHDF5 from its dataset.
func FromDataset(ds *hdf5.Dataset) (*Table, error) {
	if !IsTable(ds) {
		return nil, fmt.Errorf("%s: %w", ds.Path(), ErrNotTable)
	}
	a, _ := ds.LookupAttr(AttrColumns)
	columns, err := a.ReadString()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Path(), err)
	}
	shape := ds.Shape()
	if len(shape) != 2 || int(shape[1]) != len(columns) {
		return nil, fmt.Errorf("%s: shape %v for %d columns: %w", ds.Path(), shape, len(columns), ErrShape)
	}
	values, err := ds.ReadFloat64()
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, shape[0])
	for i := range rows {
		rows[i] = values[i*len(columns) : (i+1)*len(columns)]
	}
	return New(columns, rows)
}

// IsTable reports whether ds carries the table kind and column attributes.
func IsTable(ds *hdf5.Dataset) bool {
	a, ok := ds.LookupAttr(AttrKind)
	if !ok {
		return false
	}
	kind, err := a.ReadScalarString()
	if err != nil || kind != Kind {
		return false
	}
	_, ok = ds.LookupAttr(AttrColumns)
	return ok
}

package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/go-usvol/internal/dtype"
	"github.com/robert-malhotra/go-usvol/internal/filter"
	"github.com/robert-malhotra/go-usvol/internal/layout"
	"github.com/robert-malhotra/go-usvol/internal/message"
	"github.com/robert-malhotra/go-usvol/internal/object"
)

// Dataset is an HDF5 dataset.
type Dataset struct {
	file    *File
	path    string
	header  *object.Header
	space   *message.Dataspace
	dtype   *message.Datatype
	layout  *message.DataLayout
	filters *message.FilterPipeline
}

func newDataset(f *File, p string, hdr *object.Header) (*Dataset, error) {
	d := &Dataset{
		file:    f,
		path:    p,
		header:  hdr,
		space:   hdr.Dataspace(),
		dtype:   hdr.Datatype(),
		layout:  hdr.Layout(),
		filters: hdr.Filters(),
	}
	if d.space == nil || d.dtype == nil || d.layout == nil {
		return nil, fmt.Errorf("%s: %w", p, ErrNotDataset)
	}
	return d, nil
}

// Name returns the last path component.
func (d *Dataset) Name() string { return path.Base(d.path) }

// Path returns the absolute path of the dataset.
func (d *Dataset) Path() string { return d.path }

// Shape returns the dimensions; a scalar dataset has none.
func (d *Dataset) Shape() []uint64 {
	return append([]uint64(nil), d.space.Dims...)
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int { return len(d.space.Dims) }

// NumElements returns the number of elements.
func (d *Dataset) NumElements() uint64 { return d.space.NumElements() }

// IsScalar reports a scalar dataspace.
func (d *Dataset) IsScalar() bool { return d.space.IsScalar() }

// Datatype describes the element type, e.g. "uint16" or "string(8)".
func (d *Dataset) Datatype() string { return d.dtype.String() }

// ElementSize returns the stored size of one element in bytes.
func (d *Dataset) ElementSize() int { return int(d.dtype.Size) }

// Storage names the storage layout: "compact", "contiguous" or "chunked".
func (d *Dataset) Storage() string {
	switch d.layout.Class {
	case message.LayoutCompact:
		return "compact"
	case message.LayoutContiguous:
		return "contiguous"
	case message.LayoutChunked:
		return "chunked"
	}
	return "virtual"
}

// Filters names the filters applied to stored chunks, in write order.
func (d *Dataset) Filters() []string {
	if d.filters == nil {
		return nil
	}
	out := make([]string, len(d.filters.Filters))
	for i, f := range d.filters.Filters {
		out[i] = filter.Name(f.ID)
	}
	return out
}

// DeflateLevel returns the compression level recorded for the DEFLATE filter,
// and false when the dataset is not compressed with it.
func (d *Dataset) DeflateLevel() (int, bool) {
	if d.filters == nil {
		return 0, false
	}
	for _, f := range d.filters.Filters {
		if f.ID != message.FilterDeflate {
			continue
		}
		if len(f.ClientData) == 0 {
			return filter.DefaultDeflateLevel, true
		}
		return int(f.ClientData[0]), true
	}
	return 0, false
}

// ReadRaw returns the stored bytes of every element in row-major order.
func (d *Dataset) ReadRaw() ([]byte, error) {
	if d.file.closed {
		return nil, ErrClosed
	}
	raw, err := layout.Read(d.file.r, d.file.cfg, layout.Dataset{
		Layout:      d.layout,
		Space:       d.space,
		ElementSize: int(d.dtype.Size),
		Filters:     d.filters,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.path, err)
	}
	return raw, nil
}

// ReadArray returns every element as a flat slice of the Go type matching
// the stored datatype, such as []uint16 or []string.
func (d *Dataset) ReadArray() (any, error) {
	raw, err := d.ReadRaw()
	if err != nil {
		return nil, err
	}
	v, err := dtype.Decode(d.dtype, raw, int(d.space.NumElements()), d.file.cfg, d.file.strs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.path, err)
	}
	return v, nil
}

// Read stores every element in dest, a pointer to a slice. Numeric values
// are converted when the slice type differs from the stored type.
func (d *Dataset) Read(dest any) error {
	v, err := d.ReadArray()
	if err != nil {
		return err
	}
	if err := dtype.Assign(dest, v); err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}
	return nil
}

// ReadFloat64 reads a numeric dataset as float64.
func (d *Dataset) ReadFloat64() ([]float64, error) {
	var out []float64
	if err := d.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadString reads a string dataset.
func (d *Dataset) ReadString() ([]string, error) {
	var out []string
	if err := d.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Attrs lists attribute names in storage order.
func (d *Dataset) Attrs() []string { return attrNames(d.header) }

// LookupAttr returns the named attribute, or false when it is absent.
func (d *Dataset) LookupAttr(name string) (*Attribute, bool) {
	return lookupAttr(d.file, d.header, name)
}

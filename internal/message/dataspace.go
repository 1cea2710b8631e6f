package message

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// DataspaceType distinguishes scalar, simple and null dataspaces.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0
	DataspaceSimple DataspaceType = 1
	DataspaceNull   DataspaceType = 2
)

// Dataspace describes the shape of a dataset or attribute.
type Dataspace struct {
	SpaceType DataspaceType
	Dims      []uint64
	MaxDims   []uint64
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NewScalarDataspace returns a single-element dataspace.
func NewScalarDataspace() *Dataspace {
	return &Dataspace{SpaceType: DataspaceScalar}
}

// NewDataspace returns a simple dataspace of fixed size.
func NewDataspace(dims []uint64) *Dataspace {
	if len(dims) == 0 {
		return NewScalarDataspace()
	}
	return &Dataspace{SpaceType: DataspaceSimple, Dims: append([]uint64(nil), dims...)}
}

// NumElements returns the number of elements described.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceScalar:
		return 1
	case DataspaceSimple:
		n := uint64(1)
		for _, d := range m.Dims {
			n *= d
		}
		return n
	}
	return 0
}

// IsScalar reports whether the dataspace holds exactly one element and no
// dimensions.
func (m *Dataspace) IsScalar() bool { return m.SpaceType == DataspaceScalar }

func decodeDataspace(data []byte, cfg binary.Config) (*Dataspace, error) {
	d := binary.NewDecoder(data, cfg)
	version := d.Uint8()
	rank := int(d.Uint8())
	flags := d.Uint8()

	ds := &Dataspace{}
	switch version {
	case 1:
		d.Skip(5)
		ds.SpaceType = DataspaceSimple
		if rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
	case 2:
		ds.SpaceType = DataspaceType(d.Uint8())
	default:
		return nil, fmt.Errorf("unsupported dataspace version %d", version)
	}
	if ds.SpaceType == DataspaceSimple {
		ds.Dims = make([]uint64, rank)
		for i := range ds.Dims {
			ds.Dims[i] = d.Length()
		}
		if flags&0x01 != 0 {
			ds.MaxDims = make([]uint64, rank)
			for i := range ds.MaxDims {
				ds.MaxDims[i] = d.Length()
			}
		}
	}
	return ds, checkDecoder(d)
}

// Encode implements Encodable (version 2).
func (m *Dataspace) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(cfg)
	e.Uint8(2)
	rank := 0
	if m.SpaceType == DataspaceSimple {
		rank = len(m.Dims)
	}
	e.Uint8(uint8(rank))
	var flags uint8
	if m.MaxDims != nil {
		flags |= 0x01
	}
	e.Uint8(flags)
	e.Uint8(uint8(m.SpaceType))
	for i := 0; i < rank; i++ {
		e.Length(m.Dims[i])
	}
	if m.MaxDims != nil {
		for _, v := range m.MaxDims {
			e.Length(v)
		}
	}
	return e.Bytes(), nil
}

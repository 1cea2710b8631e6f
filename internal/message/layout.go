package message

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// LayoutClass says where raw data lives.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

// ChunkIndex is the chunk index type of a version 4 layout message. Earlier
// versions always use a version 1 B-tree.
type ChunkIndex uint8

const (
	ChunkIndexBTreeV1    ChunkIndex = 0
	ChunkIndexSingle     ChunkIndex = 1
	ChunkIndexImplicit   ChunkIndex = 2
	ChunkIndexFixedArray ChunkIndex = 3
	ChunkIndexExtArray   ChunkIndex = 4
	ChunkIndexBTreeV2    ChunkIndex = 5
)

// Version 4 chunked layout flags.
const (
	ChunkDontFilterPartialEdges uint8 = 0x01
	ChunkSingleIndexWithFilter  uint8 = 0x02
)

// ErrVirtualLayout is returned for virtual dataset layouts.
var ErrVirtualLayout = errors.New("virtual dataset layout not supported")

// DataLayout is a decoded data layout message.
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	// Compact
	CompactData []byte

	// Contiguous. Size is zero for version 1/2 messages, where it follows
	// from the dataspace and datatype.
	Address uint64
	Size    uint64

	// Chunked. ChunkDims excludes the trailing element-size dimension, which
	// is stored separately in ElementSize.
	ChunkDims   []uint64
	ElementSize uint32
	Index       ChunkIndex
	IndexAddr   uint64
	Flags       uint8

	// Single chunk index with filters applied.
	FilteredSize uint64
	FilterMask   uint32
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

// NewContiguousLayout returns a version 3 contiguous layout.
func NewContiguousLayout(addr, size uint64) *DataLayout {
	return &DataLayout{Version: 3, Class: LayoutContiguous, Address: addr, Size: size}
}

// NewSingleChunkLayout returns a version 4 layout whose only chunk covers the
// whole dataset. When filtered is true the chunk's stored size and filter
// mask are recorded in the message.
func NewSingleChunkLayout(dims []uint64, elemSize uint32, addr uint64, filtered bool, storedSize uint64) *DataLayout {
	l := &DataLayout{
		Version:     4,
		Class:       LayoutChunked,
		ChunkDims:   append([]uint64(nil), dims...),
		ElementSize: elemSize,
		Index:       ChunkIndexSingle,
		IndexAddr:   addr,
	}
	if filtered {
		l.Flags |= ChunkSingleIndexWithFilter
		l.FilteredSize = storedSize
	}
	return l
}

func decodeDataLayout(data []byte, cfg binary.Config) (*DataLayout, error) {
	if len(data) < 2 {
		return nil, ErrTruncated
	}
	l := &DataLayout{Version: data[0]}
	switch l.Version {
	case 1, 2:
		return l, l.decodeLegacy(binary.NewDecoder(data[1:], cfg))
	case 3, 4:
		return l, l.decodeModern(binary.NewDecoder(data[1:], cfg))
	}
	return nil, fmt.Errorf("unsupported data layout version %d", l.Version)
}

func (l *DataLayout) decodeLegacy(d *binary.Decoder) error {
	rank := int(d.Uint8())
	l.Class = LayoutClass(d.Uint8())
	d.Skip(5)
	if l.Class != LayoutCompact {
		l.Address = d.Offset()
		l.IndexAddr = l.Address
	}
	dims := make([]uint64, rank)
	for i := range dims {
		dims[i] = uint64(d.Uint32())
	}
	switch l.Class {
	case LayoutChunked:
		l.ElementSize = d.Uint32()
		l.ChunkDims = dims
	case LayoutCompact:
		n := int(d.Uint32())
		l.CompactData = d.Bytes(n)
		l.Size = uint64(n)
	}
	return checkDecoder(d)
}

func (l *DataLayout) decodeModern(d *binary.Decoder) error {
	l.Class = LayoutClass(d.Uint8())
	switch l.Class {
	case LayoutCompact:
		n := int(d.Uint16())
		l.CompactData = d.Bytes(n)
		l.Size = uint64(n)
	case LayoutContiguous:
		l.Address = d.Offset()
		l.Size = d.Length()
	case LayoutChunked:
		if l.Version == 3 {
			rank := int(d.Uint8())
			l.IndexAddr = d.Offset()
			dims := make([]uint64, rank)
			for i := range dims {
				dims[i] = uint64(d.Uint32())
			}
			l.setChunkDims(dims)
			l.Index = ChunkIndexBTreeV1
			break
		}
		l.Flags = d.Uint8()
		rank := int(d.Uint8())
		width := int(d.Uint8())
		dims := make([]uint64, rank)
		for i := range dims {
			dims[i] = d.UintN(width)
		}
		l.setChunkDims(dims)
		l.Index = ChunkIndex(d.Uint8())
		switch l.Index {
		case ChunkIndexSingle:
			if l.Flags&ChunkSingleIndexWithFilter != 0 {
				l.FilteredSize = d.Length()
				l.FilterMask = d.Uint32()
			}
		case ChunkIndexImplicit:
		case ChunkIndexFixedArray:
			d.Skip(1)
		case ChunkIndexExtArray:
			d.Skip(5)
		case ChunkIndexBTreeV2:
			d.Skip(6)
		default:
			return fmt.Errorf("unknown chunk index type %d", l.Index)
		}
		l.IndexAddr = d.Offset()
	case LayoutVirtual:
		return ErrVirtualLayout
	default:
		return fmt.Errorf("unknown layout class %d", l.Class)
	}
	return checkDecoder(d)
}

// setChunkDims splits the trailing element-size dimension off dims.
func (l *DataLayout) setChunkDims(dims []uint64) {
	if len(dims) == 0 {
		return
	}
	l.ElementSize = uint32(dims[len(dims)-1])
	l.ChunkDims = dims[:len(dims)-1]
}

// Encode implements Encodable. Contiguous and compact layouts are written as
// version 3; chunked layouts as version 4 with a single-chunk index.
func (l *DataLayout) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(cfg)
	switch l.Class {
	case LayoutCompact:
		e.Uint8(3)
		e.Uint8(uint8(LayoutCompact))
		e.Uint16(uint16(len(l.CompactData)))
		e.Write(l.CompactData)
	case LayoutContiguous:
		e.Uint8(3)
		e.Uint8(uint8(LayoutContiguous))
		e.Offset(l.Address)
		e.Length(l.Size)
	case LayoutChunked:
		if l.Index != ChunkIndexSingle {
			return nil, fmt.Errorf("cannot encode chunk index type %d", l.Index)
		}
		dims := append(append([]uint64(nil), l.ChunkDims...), uint64(l.ElementSize))
		width := dimWidth(dims)
		e.Uint8(4)
		e.Uint8(uint8(LayoutChunked))
		e.Uint8(l.Flags)
		e.Uint8(uint8(len(dims)))
		e.Uint8(uint8(width))
		for _, v := range dims {
			e.UintN(v, width)
		}
		e.Uint8(uint8(ChunkIndexSingle))
		if l.Flags&ChunkSingleIndexWithFilter != 0 {
			e.Length(l.FilteredSize)
			e.Uint32(l.FilterMask)
		}
		e.Offset(l.IndexAddr)
	default:
		return nil, fmt.Errorf("cannot encode layout class %d", l.Class)
	}
	return e.Bytes(), nil
}

// dimWidth returns the smallest byte width able to hold every value.
func dimWidth(dims []uint64) int {
	var max uint64
	for _, v := range dims {
		if v > max {
			max = v
		}
	}
	switch {
	case max <= 0xff:
		return 1
	case max <= 0xffff:
		return 2
	case max <= 0xffffffff:
		return 4
	}
	return 8
}

// Package layout moves raw dataset bytes between storage and memory. Data
// is always produced in row-major order with the dataset's element size;
// interpreting the bytes is left to the dtype package.
package layout

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

// ErrUnsupported reports a layout or chunk index the reader cannot follow.
var ErrUnsupported = errors.New("unsupported storage layout")

// Dataset gathers the header messages that describe where a dataset's bytes
// are and how they are encoded.
type Dataset struct {
	Layout      *message.DataLayout
	Space       *message.Dataspace
	ElementSize int
	Filters     *message.FilterPipeline
}

// Size returns the number of bytes Read produces.
func (ds Dataset) Size() uint64 {
	return ds.Space.NumElements() * uint64(ds.ElementSize)
}

// Read returns every element of ds. Storage that was never allocated reads
// as zeros.
func Read(r io.ReaderAt, cfg binary.Config, ds Dataset) ([]byte, error) {
	if ds.Layout == nil || ds.Space == nil {
		return nil, fmt.Errorf("dataset without layout or dataspace")
	}
	if ds.ElementSize <= 0 {
		return nil, fmt.Errorf("invalid element size %d", ds.ElementSize)
	}
	switch ds.Layout.Class {
	case message.LayoutCompact:
		return readCompact(ds)
	case message.LayoutContiguous:
		return readContiguous(r, cfg, ds)
	case message.LayoutChunked:
		return readChunked(r, cfg, ds)
	}
	return nil, fmt.Errorf("layout class %d: %w", ds.Layout.Class, ErrUnsupported)
}

func readCompact(ds Dataset) ([]byte, error) {
	out := make([]byte, ds.Size())
	if uint64(len(ds.Layout.CompactData)) < uint64(len(out)) {
		return nil, fmt.Errorf("compact data holds %d bytes, want %d", len(ds.Layout.CompactData), len(out))
	}
	copy(out, ds.Layout.CompactData)
	return out, nil
}

func readContiguous(r io.ReaderAt, cfg binary.Config, ds Dataset) ([]byte, error) {
	size := ds.Size()
	if binary.IsUndefined(ds.Layout.Address, cfg.OffsetSize) {
		return make([]byte, size), nil
	}
	if ds.Layout.Size != 0 && ds.Layout.Size < size {
		return nil, fmt.Errorf("contiguous storage holds %d bytes, want %d", ds.Layout.Size, size)
	}
	return binary.ReadBlock(r, int64(ds.Layout.Address), int(size))
}

// Package heap reads the two HDF5 heaps the engine needs: the local heap
// that stores member names of old-style groups, and global heap collections
// that store variable-length strings.
package heap

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// LocalHeap holds the data segment of a local heap.
type LocalHeap struct {
	data []byte
}

// ReadLocal reads the local heap at addr.
func ReadLocal(r io.ReaderAt, cfg binary.Config, addr uint64) (*LocalHeap, error) {
	head, err := binary.ReadBlock(r, int64(addr), 8+2*cfg.LengthSize+cfg.OffsetSize)
	if err != nil {
		return nil, fmt.Errorf("local heap at %d: %w", addr, err)
	}
	if string(head[:4]) != "HEAP" {
		return nil, fmt.Errorf("local heap at %d: bad signature %q", addr, head[:4])
	}
	if head[4] != 0 {
		return nil, fmt.Errorf("local heap at %d: unsupported version %d", addr, head[4])
	}
	d := binary.NewDecoder(head[8:], cfg)
	size := d.Length()
	d.Length() // free list head
	dataAddr := d.Offset()

	data, err := binary.ReadBlock(r, int64(dataAddr), int(size))
	if err != nil {
		return nil, fmt.Errorf("local heap data at %d: %w", dataAddr, err)
	}
	return &LocalHeap{data: data}, nil
}

// String returns the NUL-terminated string at off.
func (h *LocalHeap) String(off uint64) (string, error) {
	if off >= uint64(len(h.data)) {
		return "", fmt.Errorf("local heap offset %d beyond data size %d", off, len(h.data))
	}
	d := binary.NewDecoder(h.data[off:], binary.DefaultConfig())
	s := d.CString()
	if d.Err() != nil {
		return "", fmt.Errorf("unterminated string at local heap offset %d", off)
	}
	return s, nil
}

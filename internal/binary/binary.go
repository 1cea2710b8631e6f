// Package binary decodes and encodes the little-endian, variable-width
// integer fields that make up HDF5 file metadata.
//
// Metadata blocks are small, so the package works on whole in-memory blocks:
// a block is read with ReadBlock and walked with a Decoder, or built with an
// Encoder and written in one WriteAt call.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSize is returned for offset or length widths other than 2, 4 or 8.
var ErrInvalidSize = errors.New("invalid offset/length size: must be 2, 4, or 8")

// ErrShortBuffer is recorded by a Decoder that runs past the end of its block.
var ErrShortBuffer = errors.New("metadata block truncated")

// Order reads and appends fixed-width integers.
type Order interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Config carries the field widths declared by the superblock.
type Config struct {
	ByteOrder  Order
	OffsetSize int
	LengthSize int
}

// DefaultConfig is used before the superblock has been decoded.
func DefaultConfig() Config {
	return Config{ByteOrder: binary.LittleEndian, OffsetSize: 8, LengthSize: 8}
}

// Validate checks the offset and length widths.
func (c Config) Validate() error {
	for _, n := range []int{c.OffsetSize, c.LengthSize} {
		if n != 2 && n != 4 && n != 8 {
			return fmt.Errorf("%w: got %d", ErrInvalidSize, n)
		}
	}
	return nil
}

// Undefined returns the all-ones address for a field of n bytes.
func Undefined(n int) uint64 {
	if n >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(8*uint(n)) - 1
}

// IsUndefined reports whether v is the undefined address for an n-byte field.
func IsUndefined(v uint64, n int) bool {
	return v == Undefined(n)
}

// ReadBlock reads exactly n bytes at off.
func ReadBlock(r io.ReaderAt, off int64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative block size %d at offset %d", n, off)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	got, err := r.ReadAt(buf, off)
	if got == n {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, off, err)
}

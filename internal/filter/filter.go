// Package filter implements the chunk filters the engine can read and
// write: deflate, shuffle and Fletcher-32.
package filter

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/message"
)

// Filter transforms one chunk in either direction.
type Filter interface {
	ID() uint16
	// Encode applies the filter on the write path.
	Encode(input []byte) ([]byte, error)
	// Decode reverses Encode on the read path.
	Decode(input []byte) ([]byte, error)
}

// ErrUnsupported reports a mandatory filter with no implementation.
var ErrUnsupported = errors.New("unsupported filter")

var constructors = map[uint16]func(cd []uint32, elemSize int) Filter{
	message.FilterDeflate:    func(cd []uint32, _ int) Filter { return NewDeflate(cd) },
	message.FilterShuffle:    func(cd []uint32, size int) Filter { return newShuffleFor(cd, size) },
	message.FilterFletcher32: func([]uint32, int) Filter { return Fletcher32{} },
}

var names = map[uint16]string{
	message.FilterDeflate:     "deflate",
	message.FilterShuffle:     "shuffle",
	message.FilterFletcher32:  "fletcher32",
	message.FilterSZIP:        "szip",
	message.FilterNBit:        "nbit",
	message.FilterScaleOffset: "scaleoffset",
}

// Name returns the conventional name of a filter id.
func Name(id uint16) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("filter-%d", id)
}

// New builds the filter described by info. Optional filters that are not
// implemented yield a nil Filter and no error. elemSize is the dataset's
// element size, used when the stored client data omits it.
func New(info message.FilterInfo, elemSize int) (Filter, error) {
	ctor, ok := constructors[info.ID]
	if !ok {
		if info.Optional() {
			return nil, nil
		}
		return nil, fmt.Errorf("%s (id %d): %w", Name(info.ID), info.ID, ErrUnsupported)
	}
	return ctor(info.ClientData, elemSize), nil
}

package filter

import "github.com/robert-malhotra/go-usvol/internal/message"

// Shuffle groups the i-th byte of every element together.
type Shuffle struct {
	ElementSize int
}

// NewShuffle reads the element size from the client data.
func NewShuffle(cd []uint32) *Shuffle {
	return newShuffleFor(cd, 1)
}

func newShuffleFor(cd []uint32, elemSize int) *Shuffle {
	if len(cd) > 0 && cd[0] > 0 {
		elemSize = int(cd[0])
	}
	if elemSize < 1 {
		elemSize = 1
	}
	return &Shuffle{ElementSize: elemSize}
}

func (f *Shuffle) ID() uint16 { return message.FilterShuffle }

func (f *Shuffle) Encode(input []byte) ([]byte, error) {
	return f.permute(input, false), nil
}

func (f *Shuffle) Decode(input []byte) ([]byte, error) {
	return f.permute(input, true), nil
}

// permute moves whole elements only; trailing bytes that do not fill an
// element are copied through.
func (f *Shuffle) permute(input []byte, inverse bool) []byte {
	size := f.ElementSize
	n := len(input) / size
	if size <= 1 || n <= 1 {
		return input
	}
	out := make([]byte, len(input))
	for i := 0; i < n; i++ {
		for j := 0; j < size; j++ {
			if inverse {
				out[i*size+j] = input[j*n+i]
			} else {
				out[j*n+i] = input[i*size+j]
			}
		}
	}
	copy(out[n*size:], input[n*size:])
	return out
}

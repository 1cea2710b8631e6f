package filter

import (
	"encoding/binary"
	"errors"

	hbin "github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

// ErrChecksum reports a chunk whose Fletcher-32 checksum does not match.
var ErrChecksum = errors.New("fletcher32 checksum mismatch")

// Fletcher32 appends a checksum to each chunk and verifies it on read.
type Fletcher32 struct{}

func (Fletcher32) ID() uint16 { return message.FilterFletcher32 }

func (Fletcher32) Encode(input []byte) ([]byte, error) {
	out := make([]byte, len(input), len(input)+4)
	copy(out, input)
	return binary.LittleEndian.AppendUint32(out, hbin.Fletcher32(input)), nil
}

func (Fletcher32) Decode(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, ErrChecksum
	}
	data := input[:len(input)-4]
	if binary.LittleEndian.Uint32(input[len(data):]) != hbin.Fletcher32(data) {
		return nil, ErrChecksum
	}
	return data, nil
}

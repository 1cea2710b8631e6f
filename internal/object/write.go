package object

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

// Encode builds a version 2 object header holding msgs in one chunk. Times
// and creation order are not stored.
func Encode(msgs []message.Encodable, cfg binary.Config) ([]byte, error) {
	body := binary.NewEncoder(cfg)
	for _, m := range msgs {
		data, err := m.Encode(cfg)
		if err != nil {
			return nil, fmt.Errorf("encoding message %#04x: %w", uint16(m.Type()), err)
		}
		if len(data) > 0xffff {
			return nil, fmt.Errorf("message %#04x is %d bytes, larger than a header message can hold",
				uint16(m.Type()), len(data))
		}
		body.Uint8(uint8(m.Type()))
		body.Uint16(uint16(len(data)))
		body.Uint8(0)
		body.Write(data)
	}

	size := uint64(body.Len())
	width := sizeWidth(size)

	e := binary.NewEncoder(cfg)
	e.Write(signatureOHDR)
	e.Uint8(2)
	e.Uint8(widthFlag(width))
	e.UintN(size, width)
	e.Write(body.Bytes())
	e.AppendChecksum()
	return e.Bytes(), nil
}

func sizeWidth(n uint64) int {
	switch {
	case n <= 0xff:
		return 1
	case n <= 0xffff:
		return 2
	case n <= 0xffffffff:
		return 4
	}
	return 8
}

func widthFlag(width int) uint8 {
	switch width {
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	}
	return 0
}

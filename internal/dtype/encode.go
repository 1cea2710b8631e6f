package dtype

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-usvol/internal/message"
)

// Encode returns the datatype, element count and little-endian bytes for a
// Go value. Accepted values are numeric and string scalars and slices, and
// bool scalars and slices, which are stored as uint8. Strings become a
// null-padded fixed-length type as wide as the longest string.
func Encode(v any) (*message.Datatype, int, []byte, error) {
	switch x := v.(type) {
	case int8:
		return Encode([]int8{x})
	case uint8:
		return Encode([]uint8{x})
	case int16:
		return Encode([]int16{x})
	case uint16:
		return Encode([]uint16{x})
	case int32:
		return Encode([]int32{x})
	case uint32:
		return Encode([]uint32{x})
	case int64:
		return Encode([]int64{x})
	case uint64:
		return Encode([]uint64{x})
	case int:
		return Encode([]int64{int64(x)})
	case float32:
		return Encode([]float32{x})
	case float64:
		return Encode([]float64{x})
	case bool:
		return Encode([]bool{x})
	case string:
		return Encode([]string{x})

	case []int8:
		return message.NewInteger(1, true), len(x), encodeSlice(x, 1, func(b []byte, v int8) { b[0] = byte(v) }), nil
	case []uint8:
		return message.NewInteger(1, false), len(x), append([]byte(nil), x...), nil
	case []bool:
		return message.NewInteger(1, false), len(x), encodeSlice(x, 1, func(b []byte, v bool) {
			if v {
				b[0] = 1
			}
		}), nil
	case []int16:
		return message.NewInteger(2, true), len(x), encodeSlice(x, 2, func(b []byte, v int16) { le.PutUint16(b, uint16(v)) }), nil
	case []uint16:
		return message.NewInteger(2, false), len(x), encodeSlice(x, 2, le.PutUint16), nil
	case []int32:
		return message.NewInteger(4, true), len(x), encodeSlice(x, 4, func(b []byte, v int32) { le.PutUint32(b, uint32(v)) }), nil
	case []uint32:
		return message.NewInteger(4, false), len(x), encodeSlice(x, 4, le.PutUint32), nil
	case []int64:
		return message.NewInteger(8, true), len(x), encodeSlice(x, 8, func(b []byte, v int64) { le.PutUint64(b, uint64(v)) }), nil
	case []int:
		return message.NewInteger(8, true), len(x), encodeSlice(x, 8, func(b []byte, v int) { le.PutUint64(b, uint64(v)) }), nil
	case []uint64:
		return message.NewInteger(8, false), len(x), encodeSlice(x, 8, le.PutUint64), nil
	case []float32:
		return message.NewFloat(4), len(x), encodeSlice(x, 4, func(b []byte, v float32) { le.PutUint32(b, math.Float32bits(v)) }), nil
	case []float64:
		return message.NewFloat(8), len(x), encodeSlice(x, 8, func(b []byte, v float64) { le.PutUint64(b, math.Float64bits(v)) }), nil
	case []string:
		dt, data := encodeStrings(x)
		return dt, len(x), data, nil
	}
	return nil, 0, nil, fmt.Errorf("cannot encode %T: %w", v, ErrUnsupported)
}

var le = binary.LittleEndian

func encodeSlice[T any](vals []T, size int, put func([]byte, T)) []byte {
	out := make([]byte, len(vals)*size)
	for i, v := range vals {
		put(out[i*size:], v)
	}
	return out
}

func encodeStrings(vals []string) (*message.Datatype, []byte) {
	width := 1
	cs := message.CharsetASCII
	for _, s := range vals {
		width = max(width, len(s))
		for i := 0; i < len(s); i++ {
			if s[i] >= 0x80 {
				cs = message.CharsetUTF8
			}
		}
	}
	out := make([]byte, len(vals)*width)
	for i, s := range vals {
		copy(out[i*width:], s)
	}
	return message.NewFixedString(uint32(width), cs), out
}

package dtype

import (
	"bytes"
	"fmt"
	"math"
	"reflect"

	hbin "github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/heap"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

// Strings resolves variable-length string references. *heap.Reader
// implements it.
type Strings interface {
	Resolve(ref heap.Ref) ([]byte, error)
}

// Decode converts n elements of dt in data to a typed slice. strs may be
// nil unless dt is a variable-length string; cfg sizes the heap references.
func Decode(dt *message.Datatype, data []byte, n int, cfg hbin.Config, strs Strings) (any, error) {
	if dt.Class == message.ClassVarLen && dt.VarLenString {
		return decodeVarLenStrings(data, n, cfg, strs)
	}
	size := int(dt.Size)
	if size <= 0 {
		return nil, fmt.Errorf("%s: zero element size", dt)
	}
	if len(data) < n*size {
		return nil, fmt.Errorf("%s: have %d bytes for %d elements", dt, len(data), n)
	}
	if dt.Class == message.ClassString {
		return decodeFixedStrings(dt, data, n), nil
	}

	t, err := GoType(dt)
	if err != nil {
		return nil, err
	}
	order := ByteOrder(dt)
	if dt.Class == message.ClassEnum {
		order = ByteOrder(dt.Base)
	}
	switch t.Kind() {
	case reflect.Int8:
		return decodeSlice(data, n, 1, func(b []byte) int8 { return int8(b[0]) }), nil
	case reflect.Uint8:
		out := make([]uint8, n)
		copy(out, data)
		return out, nil
	case reflect.Int16:
		return decodeSlice(data, n, 2, func(b []byte) int16 { return int16(order.Uint16(b)) }), nil
	case reflect.Uint16:
		return decodeSlice(data, n, 2, order.Uint16), nil
	case reflect.Int32:
		return decodeSlice(data, n, 4, func(b []byte) int32 { return int32(order.Uint32(b)) }), nil
	case reflect.Uint32:
		return decodeSlice(data, n, 4, order.Uint32), nil
	case reflect.Int64:
		return decodeSlice(data, n, 8, func(b []byte) int64 { return int64(order.Uint64(b)) }), nil
	case reflect.Uint64:
		return decodeSlice(data, n, 8, order.Uint64), nil
	case reflect.Float32:
		return decodeSlice(data, n, 4, func(b []byte) float32 { return math.Float32frombits(order.Uint32(b)) }), nil
	case reflect.Float64:
		return decodeSlice(data, n, 8, func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) }), nil
	}
	return nil, fmt.Errorf("%s: %w", dt, ErrUnsupported)
}

func decodeSlice[T any](data []byte, n, size int, get func([]byte) T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = get(data[i*size:])
	}
	return out
}

func decodeFixedStrings(dt *message.Datatype, data []byte, n int) []string {
	size := int(dt.Size)
	out := make([]string, n)
	for i := range out {
		b := data[i*size : (i+1)*size]
		if dt.Pad == message.PadSpacePad {
			b = bytes.TrimRight(b, " ")
		} else if j := bytes.IndexByte(b, 0); j >= 0 {
			b = b[:j]
		}
		out[i] = string(b)
	}
	return out
}

func decodeVarLenStrings(data []byte, n int, cfg hbin.Config, strs Strings) ([]string, error) {
	if strs == nil {
		return nil, fmt.Errorf("variable-length strings need a heap reader")
	}
	size := heap.RefSize(cfg)
	if len(data) < n*size {
		return nil, fmt.Errorf("vlen string: have %d bytes for %d elements", len(data), n)
	}
	out := make([]string, n)
	for i := range out {
		ref, err := heap.DecodeRef(data[i*size:], cfg)
		if err != nil {
			return nil, err
		}
		b, err := strs.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("vlen string %d: %w", i, err)
		}
		out[i] = string(bytes.TrimRight(b, "\x00"))
	}
	return out, nil
}

// Assign stores a decoded slice in dest, which must point to a slice.
// Numeric elements are converted when the element types differ.
func Assign(dest any, decoded any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("destination must be a pointer to a slice, got %T", dest)
	}
	sv := reflect.ValueOf(decoded)
	target := dv.Elem()
	if sv.Type() == target.Type() {
		target.Set(sv)
		return nil
	}
	et := target.Type().Elem()
	if !numericKind(et.Kind()) || !numericKind(sv.Type().Elem().Kind()) {
		return fmt.Errorf("cannot store %s in %s", sv.Type(), target.Type())
	}
	out := reflect.MakeSlice(target.Type(), sv.Len(), sv.Len())
	for i := 0; i < sv.Len(); i++ {
		out.Index(i).Set(sv.Index(i).Convert(et))
	}
	target.Set(out)
	return nil
}

func numericKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64 && k != reflect.Uintptr
}

// Float64s converts a decoded numeric slice to float64.
func Float64s(decoded any) ([]float64, error) {
	var out []float64
	if err := Assign(&out, decoded); err != nil {
		return nil, err
	}
	return out, nil
}

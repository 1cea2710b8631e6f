package dtype

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"

	hbin "github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/heap"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

var cfg = hbin.DefaultConfig()

func TestEncodeDecodeNumeric(t *testing.T) {
	tests := []any{
		[]int8{-1, 2},
		[]uint8{0, 255},
		[]int16{-300, 300},
		[]uint16{1, 65535},
		[]int32{-70000, 70000},
		[]uint32{1 << 31},
		[]int64{-1 << 40},
		[]uint64{1 << 63},
		[]float32{1.5, -2.25},
		[]float64{math.Pi, 0.3},
	}
	for _, in := range tests {
		dt, n, data, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode(%T) failed: %v", in, err)
		}
		got, err := Decode(dt, data, n, cfg, nil)
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", dt, err)
		}
		if !reflect.DeepEqual(got, in) {
			t.Errorf("%T: got %v, want %v", in, got, in)
		}
	}
}

func TestEncodeScalarsAndBools(t *testing.T) {
	dt, n, data, err := Encode(0.5)
	if err != nil || n != 1 || dt.Class != message.ClassFloatPoint || len(data) != 8 {
		t.Fatalf("float scalar: %v %d %v %v", dt, n, data, err)
	}
	dt, n, data, err = Encode([]bool{true, false})
	if err != nil || n != 2 || dt.Size != 1 || data[0] != 1 || data[1] != 0 {
		t.Fatalf("bools: %v %d %v %v", dt, n, data, err)
	}
	if _, _, _, err := Encode(struct{}{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("struct: got %v, want ErrUnsupported", err)
	}
}

func TestDecodeBigEndian(t *testing.T) {
	dt := message.NewInteger(2, false)
	dt.Order = message.OrderBE
	data := binary.BigEndian.AppendUint16(nil, 0x1234)
	got, err := Decode(dt, data, 1, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.([]uint16)[0] != 0x1234 {
		t.Errorf("got %#x", got.([]uint16)[0])
	}

	ft := message.NewFloat(8)
	ft.Order = message.OrderBE
	data = binary.BigEndian.AppendUint64(nil, math.Float64bits(2.5))
	got, err = Decode(ft, data, 1, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.([]float64)[0] != 2.5 {
		t.Errorf("got %v", got)
	}
}

func TestFixedStrings(t *testing.T) {
	dt, n, data, err := Encode([]string{"Linear", "A"})
	if err != nil {
		t.Fatal(err)
	}
	if dt.Size != 6 || dt.Charset != message.CharsetASCII {
		t.Errorf("datatype: %+v", dt)
	}
	got, err := Decode(dt, data, n, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"Linear", "A"}) {
		t.Errorf("got %q", got)
	}

	dt, _, _, _ = Encode("µs")
	if dt.Charset != message.CharsetUTF8 {
		t.Errorf("charset: got %d, want UTF-8", dt.Charset)
	}

	space := &message.Datatype{Class: message.ClassString, Size: 4, Pad: message.PadSpacePad}
	got, _ = Decode(space, []byte("ab  "), 1, cfg, nil)
	if got.([]string)[0] != "ab" {
		t.Errorf("space padded: got %q", got)
	}
}

type fakeHeap map[uint32]string

func (h fakeHeap) Resolve(ref heap.Ref) ([]byte, error) {
	s, ok := h[ref.Index]
	if !ok {
		return nil, errors.New("missing object")
	}
	return []byte(s), nil
}

func TestVarLenStrings(t *testing.T) {
	dt := &message.Datatype{Class: message.ClassVarLen, VarLenString: true, Size: 16}
	var data []byte
	for _, idx := range []uint32{1, 2} {
		data = binary.LittleEndian.AppendUint32(data, 3)
		data = binary.LittleEndian.AppendUint64(data, 4096)
		data = binary.LittleEndian.AppendUint32(data, idx)
	}
	got, err := Decode(dt, data, 2, cfg, fakeHeap{1: "abc", 2: "xyz"})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"abc", "xyz"}) {
		t.Errorf("got %q", got)
	}
	if _, err := Decode(dt, data, 2, cfg, nil); err == nil {
		t.Error("expected error without heap reader")
	}
}

func TestAssign(t *testing.T) {
	var same []int32
	if err := Assign(&same, []int32{1, 2}); err != nil || !reflect.DeepEqual(same, []int32{1, 2}) {
		t.Errorf("same type: %v %v", same, err)
	}
	var wide []float64
	if err := Assign(&wide, []uint16{3, 4}); err != nil || !reflect.DeepEqual(wide, []float64{3, 4}) {
		t.Errorf("converted: %v %v", wide, err)
	}
	var strs []string
	if err := Assign(&strs, []int8{1}); err == nil {
		t.Error("expected error storing ints in strings")
	}
	if err := Assign(wide, []int8{1}); err == nil {
		t.Error("expected error for non-pointer destination")
	}
}

func TestFloat64s(t *testing.T) {
	got, err := Float64s([]float32{0.5})
	if err != nil || got[0] != 0.5 {
		t.Errorf("got %v %v", got, err)
	}
}

func TestGoTypeUnsupported(t *testing.T) {
	_, err := GoType(&message.Datatype{Class: message.ClassCompound, Size: 8})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("compound: got %v", err)
	}
}

func TestDecodeShortData(t *testing.T) {
	if _, err := Decode(message.NewInteger(4, false), []byte{1, 2}, 1, cfg, nil); err == nil {
		t.Error("expected error for short data")
	}
}

// Package testutil builds DICOM Part 10 files for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
)

// Transfer syntaxes understood by Encode.
const (
	ImplicitLE   = "1.2.840.10008.1.2"
	ExplicitLE   = "1.2.840.10008.1.2.1"
	DeflatedLE   = "1.2.840.10008.1.2.1.99"
	ExplicitBE   = "1.2.840.10008.1.2.2"
	JPEGLossless = "1.2.840.10008.1.2.4.70"
)

// Elem is one element to encode. Value is a string (text VRs, multiple
// values joined with a backslash), []byte, []uint16, []int16, []uint32,
// []float32, []float64, Items or Fragments.
type Elem struct {
	Tag   uint32
	VR    string
	Value any

	// Undefined encodes a sequence or item with undefined length.
	Undefined bool
}

// Items is the value of a sequence element.
type Items [][]Elem

// Fragments is encapsulated pixel data; the first fragment is the offset
// table.
type Fragments [][]byte

// DS formats decimal strings the way a DS value holds them.
func DS(v ...float64) string {
	s := make([]string, len(v))
	for i, f := range v {
		s[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(s, `\`)
}

// Encode returns a Part 10 file holding elems in the transfer syntax uid.
func Encode(uid string, elems []Elem) []byte {
	var out bytes.Buffer
	out.Write(make([]byte, 128))
	out.WriteString("DICM")

	meta := []Elem{
		{Tag: 0x00020001, VR: "OB", Value: []byte{0, 1}},
		{Tag: 0x00020002, VR: "UI", Value: "1.2.840.10008.5.1.4.1.1.3.1"},
		{Tag: 0x00020010, VR: "UI", Value: uid},
	}
	var group bytes.Buffer
	e := encoder{order: binary.LittleEndian}
	for _, m := range meta {
		e.element(&group, m)
	}
	e.element(&out, Elem{Tag: 0x00020000, VR: "UL", Value: []uint32{uint32(group.Len())}})
	out.Write(group.Bytes())

	sorted := append([]Elem(nil), elems...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })

	e = encoder{order: binary.LittleEndian, implicit: uid == ImplicitLE}
	if uid == ExplicitBE {
		e.order = binary.BigEndian
	}
	var body bytes.Buffer
	for _, el := range sorted {
		e.element(&body, el)
	}
	if uid == DeflatedLE {
		w, _ := flate.NewWriter(&out, flate.BestCompression)
		w.Write(body.Bytes())
		w.Close()
	} else {
		out.Write(body.Bytes())
	}
	return out.Bytes()
}

// WriteDICOM encodes elems into dir/name and returns the path.
func WriteDICOM(t testing.TB, dir, name, uid string, elems []Elem) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Encode(uid, elems), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Volume returns the elements of a multi-frame 16-bit unsigned image with
// the given pixel spacing (x, y) and slice spacing z.
func Volume(frames, rows, cols int, pixels []uint16, x, y, z float64) []Elem {
	return []Elem{
		{Tag: 0x00080060, VR: "CS", Value: "US"},
		{Tag: 0x00180088, VR: "DS", Value: DS(z)},
		{Tag: 0x00280002, VR: "US", Value: []uint16{1}},
		{Tag: 0x00280004, VR: "CS", Value: "MONOCHROME2"},
		{Tag: 0x00280008, VR: "IS", Value: strconv.Itoa(frames)},
		{Tag: 0x00280010, VR: "US", Value: []uint16{uint16(rows)}},
		{Tag: 0x00280011, VR: "US", Value: []uint16{uint16(cols)}},
		{Tag: 0x00280030, VR: "DS", Value: DS(x, y)},
		{Tag: 0x00280100, VR: "US", Value: []uint16{16}},
		{Tag: 0x00280101, VR: "US", Value: []uint16{16}},
		{Tag: 0x00280103, VR: "US", Value: []uint16{0}},
		{Tag: 0x7FE00010, VR: "OW", Value: pixels},
	}
}

// Ramp returns n values counting up from 0, wrapping at 65536.
func Ramp(n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = uint16(i)
	}
	return out
}

type encoder struct {
	order    binary.ByteOrder
	implicit bool
}

func (e encoder) element(w *bytes.Buffer, el Elem) {
	var value bytes.Buffer
	undefined := false
	switch v := el.Value.(type) {
	case Items:
		for _, item := range v {
			var body bytes.Buffer
			for _, ie := range item {
				e.element(&body, ie)
			}
			e.tag(&value, 0xFFFEE000)
			if el.Undefined {
				e.u32(&value, 0xFFFFFFFF)
				value.Write(body.Bytes())
				e.tag(&value, 0xFFFEE00D)
				e.u32(&value, 0)
			} else {
				e.u32(&value, uint32(body.Len()))
				value.Write(body.Bytes())
			}
		}
		if el.Undefined {
			e.tag(&value, 0xFFFEE0DD)
			e.u32(&value, 0)
			undefined = true
		}
	case Fragments:
		for _, f := range v {
			e.tag(&value, 0xFFFEE000)
			e.u32(&value, uint32(len(f)))
			value.Write(f)
		}
		e.tag(&value, 0xFFFEE0DD)
		e.u32(&value, 0)
		undefined = true
	case string:
		value.WriteString(v)
		if value.Len()%2 == 1 {
			if el.VR == "UI" {
				value.WriteByte(0)
			} else {
				value.WriteByte(' ')
			}
		}
	case []byte:
		value.Write(v)
		if value.Len()%2 == 1 {
			value.WriteByte(0)
		}
	case []uint16, []int16, []uint32, []float32, []float64:
		binary.Write(&value, e.order, v)
	default:
		panic("testutil: unsupported element value")
	}

	length := uint32(value.Len())
	if undefined {
		length = 0xFFFFFFFF
	}
	e.tag(w, el.Tag)
	switch {
	case e.implicit:
		e.u32(w, length)
	case longLength(el.VR):
		w.WriteString(el.VR)
		w.Write([]byte{0, 0})
		e.u32(w, length)
	default:
		w.WriteString(el.VR)
		if length > math.MaxUint16 {
			panic("testutil: value too long for a 16-bit length")
		}
		e.u16(w, uint16(length))
	}
	w.Write(value.Bytes())
}

func (e encoder) tag(w *bytes.Buffer, t uint32) {
	e.u16(w, uint16(t>>16))
	e.u16(w, uint16(t))
}

func (e encoder) u16(w *bytes.Buffer, v uint16) {
	var b [2]byte
	e.order.PutUint16(b[:], v)
	w.Write(b[:])
}

func (e encoder) u32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	e.order.PutUint32(b[:], v)
	w.Write(b[:])
}

func longLength(vr string) bool {
	switch vr {
	case "OB", "OD", "OF", "OL", "OV", "OW", "SQ", "UC", "UR", "UT", "UN", "SV", "UV":
		return true
	}
	return false
}

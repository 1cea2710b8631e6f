package dicom

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
)

// Element is one data element. Value holds the raw value bytes for
// everything but sequences, whose items are in Items, and encapsulated pixel
// data, whose fragments are in Fragments.
type Element struct {
	Tag       Tag
	VR        VR
	Value     []byte
	Items     []*Dataset
	Fragments [][]byte
}

// Encapsulated reports whether e holds compressed pixel data fragments.
func (e *Element) Encapsulated() bool {
	return e.Fragments != nil
}

// Dataset is a parsed DICOM dataset. Elements keeps file order.
type Dataset struct {
	Elements []*Element
	Syntax   string

	byTag   map[Tag]*Element
	order   binary.ByteOrder
	charset encoding.Encoding
}

func newDataset(s syntax, cs encoding.Encoding) *Dataset {
	return &Dataset{Syntax: s.uid, byTag: make(map[Tag]*Element), order: s.order, charset: cs}
}

func (ds *Dataset) add(e *Element) {
	ds.Elements = append(ds.Elements, e)
	ds.byTag[e.Tag] = e
}

// Element returns the element with tag t.
func (ds *Dataset) Element(t Tag) (*Element, bool) {
	e, ok := ds.byTag[t]
	return e, ok
}

func (ds *Dataset) lookup(t Tag) (*Element, error) {
	e, ok := ds.byTag[t]
	if !ok {
		return nil, fmt.Errorf("%v: %w", t, ErrMissingElement)
	}
	return e, nil
}

// Strings returns the backslash-separated values of a text element,
// decoded with the dataset's character set and trimmed of padding.
func (ds *Dataset) Strings(t Tag) ([]string, error) {
	e, err := ds.lookup(t)
	if err != nil {
		return nil, err
	}
	if !e.VR.text() {
		return nil, fmt.Errorf("%v: VR %s is not text: %w", t, e.VR, ErrUnsupported)
	}
	s := decodeText(ds.charset, e.Value)
	if e.VR == UI {
		s = strings.TrimRight(s, "\x00 ")
	}
	if e.VR == LT || e.VR == ST || e.VR == UT || e.VR == UR {
		return []string{strings.TrimRight(s, " \x00")}, nil
	}
	parts := strings.Split(s, `\`)
	for i, p := range parts {
		parts[i] = strings.Trim(p, " \x00")
	}
	return parts, nil
}

// String returns the first value of a text element.
func (ds *Dataset) String(t Tag) (string, error) {
	v, err := ds.Strings(t)
	if err != nil {
		return "", err
	}
	return v[0], nil
}

// Float64s returns the numeric values of t: decimal and integer strings are
// parsed, binary numbers converted.
func (ds *Dataset) Float64s(t Tag) ([]float64, error) {
	e, err := ds.lookup(t)
	if err != nil {
		return nil, err
	}
	switch e.VR {
	case DS, IS:
		strs, err := ds.Strings(t)
		if err != nil {
			return nil, err
		}
		var out []float64
		for _, s := range strs {
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", t, err)
			}
			out = append(out, v)
		}
		return out, nil
	case US, SS, UL, SL, FL, FD:
		return binaryNumbers(e.VR, e.Value, ds.order), nil
	}
	return nil, fmt.Errorf("%v: VR %s is not numeric: %w", t, e.VR, ErrUnsupported)
}

// Float64 returns the first numeric value of t.
func (ds *Dataset) Float64(t Tag) (float64, error) {
	v, err := ds.Float64s(t)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, fmt.Errorf("%v: empty value: %w", t, ErrMissingElement)
	}
	return v[0], nil
}

// Int returns the first numeric value of t as an int.
func (ds *Dataset) Int(t Tag) (int, error) {
	v, err := ds.Float64(t)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%v: %v is not an integer: %w", t, v, ErrMalformed)
	}
	return int(v), nil
}

// intOr returns Int(t), or def when t is absent or empty.
func (ds *Dataset) intOr(t Tag, def int) (int, error) {
	e, ok := ds.byTag[t]
	if !ok || len(e.Value) == 0 {
		return def, nil
	}
	return ds.Int(t)
}

func binaryNumbers(vr VR, b []byte, order binary.ByteOrder) []float64 {
	var out []float64
	switch vr {
	case US:
		for i := 0; i+2 <= len(b); i += 2 {
			out = append(out, float64(order.Uint16(b[i:])))
		}
	case SS:
		for i := 0; i+2 <= len(b); i += 2 {
			out = append(out, float64(int16(order.Uint16(b[i:]))))
		}
	case UL:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, float64(order.Uint32(b[i:])))
		}
	case SL:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, float64(int32(order.Uint32(b[i:]))))
		}
	case FL:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, float64(math.Float32frombits(order.Uint32(b[i:]))))
		}
	case FD:
		for i := 0; i+8 <= len(b); i += 8 {
			out = append(out, math.Float64frombits(order.Uint64(b[i:])))
		}
	}
	return out
}

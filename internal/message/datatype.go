package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-usvol/internal/binary"
)

// Class is a datatype class.
type Class uint8

const (
	ClassFixedPoint Class = 0
	ClassFloatPoint Class = 1
	ClassTime       Class = 2
	ClassString     Class = 3
	ClassBitfield   Class = 4
	ClassOpaque     Class = 5
	ClassCompound   Class = 6
	ClassReference  Class = 7
	ClassEnum       Class = 8
	ClassVarLen     Class = 9
	ClassArray      Class = 10
)

var classNames = [...]string{
	"integer", "float", "time", "string", "bitfield", "opaque",
	"compound", "reference", "enum", "vlen", "array",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ByteOrder of numeric datatypes.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// StringPad is the padding of fixed-length strings.
type StringPad uint8

const (
	PadNullTerm StringPad = 0
	PadNullPad  StringPad = 1
	PadSpacePad StringPad = 2
)

// Charset of string data.
type Charset uint8

const (
	CharsetASCII Charset = 0
	CharsetUTF8  Charset = 1
)

// Datatype is a decoded datatype message.
type Datatype struct {
	Class   Class
	Version uint8
	Bits    uint32
	Size    uint32

	Order     ByteOrder
	Signed    bool
	BitOffset uint16
	Precision uint16

	Pad     StringPad
	Charset Charset

	// Base is the element type of vlen, array and enum types.
	Base *Datatype
	// VarLenString is set for variable-length strings.
	VarLenString bool
	// ArrayDims holds the dimensions of an array type.
	ArrayDims []uint32

	// Raw holds the encoded properties of classes decoded only for their size.
	Raw []byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

// IsString reports fixed and variable-length strings.
func (m *Datatype) IsString() bool {
	return m.Class == ClassString || (m.Class == ClassVarLen && m.VarLenString)
}

func (m *Datatype) String() string {
	switch m.Class {
	case ClassFixedPoint:
		if m.Signed {
			return fmt.Sprintf("int%d", m.Size*8)
		}
		return fmt.Sprintf("uint%d", m.Size*8)
	case ClassFloatPoint:
		return fmt.Sprintf("float%d", m.Size*8)
	case ClassString:
		return fmt.Sprintf("string(%d)", m.Size)
	case ClassVarLen:
		if m.VarLenString {
			return "vlen string"
		}
	}
	return m.Class.String()
}

// NewInteger returns a little-endian integer datatype of size bytes.
func NewInteger(size uint32, signed bool) *Datatype {
	dt := &Datatype{Class: ClassFixedPoint, Version: 1, Size: size, Signed: signed, Precision: uint16(size * 8)}
	if signed {
		dt.Bits = 0x08
	}
	return dt
}

// NewFloat returns a little-endian IEEE 754 datatype of 4 or 8 bytes.
func NewFloat(size uint32) *Datatype {
	return &Datatype{
		Class:     ClassFloatPoint,
		Version:   1,
		Size:      size,
		Precision: uint16(size * 8),
		Bits:      0x20 | (size*8-1)<<8,
	}
}

// NewFixedString returns a null-padded fixed-length string datatype.
func NewFixedString(size uint32, cs Charset) *Datatype {
	return &Datatype{
		Class:   ClassString,
		Version: 1,
		Size:    size,
		Pad:     PadNullPad,
		Charset: cs,
		Bits:    uint32(PadNullPad) | uint32(cs)<<4,
	}
}

// decodeDatatype returns the datatype and the number of bytes it occupies.
func decodeDatatype(data []byte) (*Datatype, int, error) {
	if len(data) < 8 {
		return nil, 0, ErrTruncated
	}
	le := binary.LittleEndian
	dt := &Datatype{
		Class:   Class(data[0] & 0x0f),
		Version: data[0] >> 4,
		Bits:    uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
		Size:    le.Uint32(data[4:8]),
	}
	props := data[8:]
	n := 0

	switch dt.Class {
	case ClassFixedPoint, ClassBitfield:
		if len(props) < 4 {
			return nil, 0, ErrTruncated
		}
		dt.Order = ByteOrder(dt.Bits & 0x01)
		dt.Signed = dt.Bits&0x08 != 0
		dt.BitOffset = le.Uint16(props[0:2])
		dt.Precision = le.Uint16(props[2:4])
		n = 4
	case ClassFloatPoint:
		if len(props) < 12 {
			return nil, 0, ErrTruncated
		}
		dt.Order = ByteOrder(dt.Bits & 0x01)
		dt.Signed = true
		dt.BitOffset = le.Uint16(props[0:2])
		dt.Precision = le.Uint16(props[2:4])
		n = 12
	case ClassTime:
		n = 2
	case ClassString:
		dt.Pad = StringPad(dt.Bits & 0x0f)
		dt.Charset = Charset((dt.Bits >> 4) & 0x0f)
	case ClassReference:
	case ClassOpaque:
		// NUL-terminated tag padded to a multiple of 8.
		n = int(dt.Bits & 0xff)
	case ClassVarLen:
		dt.VarLenString = dt.Bits&0x0f == 1
		dt.Pad = StringPad((dt.Bits >> 4) & 0x0f)
		dt.Charset = Charset((dt.Bits >> 8) & 0x0f)
		base, used, err := decodeDatatype(props)
		if err != nil {
			return nil, 0, fmt.Errorf("vlen base: %w", err)
		}
		dt.Base = base
		n = used
	case ClassArray:
		d := binpkg.NewDecoder(props, binpkg.DefaultConfig())
		rank := int(d.Uint8())
		if dt.Version < 3 {
			d.Skip(3)
		}
		dt.ArrayDims = make([]uint32, rank)
		for i := range dt.ArrayDims {
			dt.ArrayDims[i] = d.Uint32()
		}
		if dt.Version < 3 {
			d.Skip(4 * rank) // permutation indices
		}
		if err := checkDecoder(d); err != nil {
			return nil, 0, err
		}
		base, used, err := decodeDatatype(props[d.Pos():])
		if err != nil {
			return nil, 0, fmt.Errorf("array base: %w", err)
		}
		dt.Base = base
		n = d.Pos() + used
	default:
		// Compound and enum bodies are kept raw; nothing reads them.
		n = len(props)
	}
	if n > len(props) {
		return nil, 0, ErrTruncated
	}
	dt.Raw = props[:n]
	return dt, 8 + n, nil
}

// Encode implements Encodable for integer, float and fixed string types.
func (m *Datatype) Encode(cfg binpkg.Config) ([]byte, error) {
	e := binpkg.NewEncoder(binpkg.DefaultConfig())
	e.Uint8(uint8(m.Class) | 1<<4)
	e.Uint8(uint8(m.Bits))
	e.Uint8(uint8(m.Bits >> 8))
	e.Uint8(uint8(m.Bits >> 16))
	e.Uint32(m.Size)

	switch m.Class {
	case ClassFixedPoint:
		e.Uint16(m.BitOffset)
		e.Uint16(m.Precision)
	case ClassFloatPoint:
		e.Uint16(0)
		e.Uint16(m.Precision)
		switch m.Size {
		case 4:
			e.Write([]byte{23, 8, 0, 23})
			e.Uint32(127)
		case 8:
			e.Write([]byte{52, 11, 0, 52})
			e.Uint32(1023)
		default:
			return nil, fmt.Errorf("cannot encode %d-byte float", m.Size)
		}
	case ClassString:
	default:
		return nil, fmt.Errorf("cannot encode %s datatype", m.Class)
	}
	return e.Bytes(), nil
}

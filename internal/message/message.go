package message

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// Type is a header message type number.
type Type uint16

const (
	TypeNIL            Type = 0x0000
	TypeDataspace      Type = 0x0001
	TypeLinkInfo       Type = 0x0002
	TypeDatatype       Type = 0x0003
	TypeFillValueOld   Type = 0x0004
	TypeFillValue      Type = 0x0005
	TypeLink           Type = 0x0006
	TypeExternalFiles  Type = 0x0007
	TypeDataLayout     Type = 0x0008
	TypeGroupInfo      Type = 0x000A
	TypeFilterPipeline Type = 0x000B
	TypeAttribute      Type = 0x000C
	TypeContinuation   Type = 0x0010
	TypeSymbolTable    Type = 0x0011
	TypeAttributeInfo  Type = 0x0015
)

// ErrTruncated wraps every decode failure caused by a short message body.
var ErrTruncated = errors.New("header message truncated")

// Message is implemented by every decoded header message.
type Message interface {
	Type() Type
}

// Encodable messages can be written into a new object header.
type Encodable interface {
	Message
	Encode(cfg binary.Config) ([]byte, error)
}

// Decode parses the body of a header message. Types the engine does not
// interpret come back as *Unknown.
func Decode(typ Type, data []byte, cfg binary.Config) (Message, error) {
	var (
		m   Message
		err error
	)
	switch typ {
	case TypeDataspace:
		m, err = decodeDataspace(data, cfg)
	case TypeDatatype:
		m, _, err = decodeDatatype(data)
	case TypeDataLayout:
		m, err = decodeDataLayout(data, cfg)
	case TypeFilterPipeline:
		m, err = decodeFilterPipeline(data)
	case TypeFillValue:
		m, err = decodeFillValue(data)
	case TypeAttribute:
		m, err = decodeAttribute(data, cfg)
	case TypeLink:
		m, err = decodeLink(data, cfg)
	case TypeLinkInfo:
		m, err = decodeLinkInfo(data, cfg)
	case TypeSymbolTable:
		m, err = decodeSymbolTable(data, cfg)
	case TypeContinuation:
		m, err = decodeContinuation(data, cfg)
	default:
		return &Unknown{typ: typ, Data: data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("message type %#04x: %w", uint16(typ), err)
	}
	return m, nil
}

// checkDecoder converts a decoder overrun into ErrTruncated.
func checkDecoder(d *binary.Decoder) error {
	if d.Err() != nil {
		return ErrTruncated
	}
	return nil
}

// Unknown carries the raw body of an uninterpreted message.
type Unknown struct {
	typ  Type
	Data []byte
}

// NewUnknown wraps a raw message body.
func NewUnknown(typ Type, data []byte) *Unknown {
	return &Unknown{typ: typ, Data: data}
}

func (m *Unknown) Type() Type { return m.typ }

// Encode returns the raw body unchanged, so headers can be rewritten without
// understanding every message.
func (m *Unknown) Encode(binary.Config) ([]byte, error) { return m.Data, nil }

// Continuation points at the next block of header messages.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeContinuation }

func decodeContinuation(data []byte, cfg binary.Config) (*Continuation, error) {
	d := binary.NewDecoder(data, cfg)
	c := &Continuation{Offset: d.Offset(), Length: d.Length()}
	return c, checkDecoder(d)
}

// Encode implements Encodable.
func (m *Continuation) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(cfg)
	e.Offset(m.Offset)
	e.Length(m.Length)
	return e.Bytes(), nil
}

// SymbolTable marks an old-style group: members live in a v1 B-tree whose
// names are stored in a local heap.
type SymbolTable struct {
	BTreeAddress uint64
	HeapAddress  uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func decodeSymbolTable(data []byte, cfg binary.Config) (*SymbolTable, error) {
	d := binary.NewDecoder(data, cfg)
	st := &SymbolTable{BTreeAddress: d.Offset(), HeapAddress: d.Offset()}
	return st, checkDecoder(d)
}

package message

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// Attribute is a decoded attribute message. Data holds the raw element
// bytes; variable-length values are global heap references.
type Attribute struct {
	Name      string
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

func decodeAttribute(data []byte, cfg binary.Config) (*Attribute, error) {
	d := binary.NewDecoder(data, cfg)
	version := d.Uint8()
	flags := d.Uint8()
	nameLen := int(d.Uint16())
	typeLen := int(d.Uint16())
	spaceLen := int(d.Uint16())
	if version == 3 {
		d.Uint8() // name encoding
	}
	if version < 1 || version > 3 {
		return nil, fmt.Errorf("unsupported attribute version %d", version)
	}
	if flags&0x03 != 0 {
		return nil, fmt.Errorf("shared attribute datatype or dataspace not supported")
	}

	// Version 1 pads each field to a multiple of 8.
	field := func(n int) []byte {
		b := d.Bytes(n)
		if version == 1 {
			d.Align(0, 8)
		}
		return b
	}

	name := field(nameLen)
	for i, c := range name {
		if c == 0 {
			name = name[:i]
			break
		}
	}
	typeBuf := field(typeLen)
	spaceBuf := field(spaceLen)
	if err := checkDecoder(d); err != nil {
		return nil, err
	}

	dt, _, err := decodeDatatype(typeBuf)
	if err != nil {
		return nil, fmt.Errorf("attribute %q datatype: %w", name, err)
	}
	ds, err := decodeDataspace(spaceBuf, cfg)
	if err != nil {
		return nil, fmt.Errorf("attribute %q dataspace: %w", name, err)
	}
	return &Attribute{
		Name:      string(name),
		Datatype:  dt,
		Dataspace: ds,
		Data:      d.Bytes(d.Remaining()),
	}, nil
}

// Encode implements Encodable (version 3, ASCII name).
func (m *Attribute) Encode(cfg binary.Config) ([]byte, error) {
	typeBuf, err := m.Datatype.Encode(cfg)
	if err != nil {
		return nil, err
	}
	spaceBuf, err := m.Dataspace.Encode(cfg)
	if err != nil {
		return nil, err
	}
	name := append([]byte(m.Name), 0)

	e := binary.NewEncoder(cfg)
	e.Uint8(3)
	e.Uint8(0)
	e.Uint16(uint16(len(name)))
	e.Uint16(uint16(len(typeBuf)))
	e.Uint16(uint16(len(spaceBuf)))
	e.Uint8(uint8(CharsetASCII))
	e.Write(name)
	e.Write(typeBuf)
	e.Write(spaceBuf)
	e.Write(m.Data)
	return e.Bytes(), nil
}

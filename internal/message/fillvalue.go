package message

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// Space allocation times.
const (
	AllocEarly       uint8 = 1
	AllocLate        uint8 = 2
	AllocIncremental uint8 = 3
)

// FillValue is the fill value message (type 0x0005).
type FillValue struct {
	AllocTime uint8
	Value     []byte
}

func (m *FillValue) Type() Type { return TypeFillValue }

// NewFillValue returns an undefined fill value with early allocation, which
// matches datasets whose storage is written at creation.
func NewFillValue() *FillValue {
	return &FillValue{AllocTime: AllocEarly}
}

func decodeFillValue(data []byte) (*FillValue, error) {
	d := binary.NewDecoder(data, binary.DefaultConfig())
	fv := &FillValue{}
	switch version := d.Uint8(); version {
	case 1, 2:
		fv.AllocTime = d.Uint8()
		d.Uint8() // fill write time
		if d.Uint8() != 0 {
			fv.Value = d.Bytes(int(d.Uint32()))
		}
	case 3:
		flags := d.Uint8()
		fv.AllocTime = flags & 0x03
		if flags&0x20 != 0 {
			fv.Value = d.Bytes(int(d.Uint32()))
		}
	default:
		return nil, fmt.Errorf("unsupported fill value version %d", version)
	}
	return fv, checkDecoder(d)
}

// Encode implements Encodable (version 3, fill time "if set").
func (m *FillValue) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(binary.DefaultConfig())
	e.Uint8(3)
	flags := m.AllocTime&0x03 | 2<<2
	if m.Value != nil {
		flags |= 0x20
	}
	e.Uint8(flags)
	if m.Value != nil {
		e.Uint32(uint32(len(m.Value)))
		e.Write(m.Value)
	}
	return e.Bytes(), nil
}

package message

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// Filter identifiers.
const (
	FilterDeflate     uint16 = 1
	FilterShuffle     uint16 = 2
	FilterFletcher32  uint16 = 3
	FilterSZIP        uint16 = 4
	FilterNBit        uint16 = 5
	FilterScaleOffset uint16 = 6
)

// FilterInfo is one stage of a filter pipeline.
type FilterInfo struct {
	ID         uint16
	Flags      uint16
	Name       string
	ClientData []uint32
}

// Optional reports whether a failing filter may be skipped.
func (f FilterInfo) Optional() bool { return f.Flags&0x01 != 0 }

// FilterPipeline lists the filters applied to every chunk, in write order.
type FilterPipeline struct {
	Filters []FilterInfo
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

// Has reports whether the pipeline contains filter id.
func (m *FilterPipeline) Has(id uint16) bool {
	for _, f := range m.Filters {
		if f.ID == id {
			return true
		}
	}
	return false
}

func decodeFilterPipeline(data []byte) (*FilterPipeline, error) {
	d := binary.NewDecoder(data, binary.DefaultConfig())
	version := d.Uint8()
	n := int(d.Uint8())
	if version == 1 {
		d.Skip(6)
	} else if version != 2 {
		return nil, fmt.Errorf("unsupported filter pipeline version %d", version)
	}

	fp := &FilterPipeline{Filters: make([]FilterInfo, n)}
	for i := range fp.Filters {
		f := &fp.Filters[i]
		f.ID = d.Uint16()
		nameLen := 0
		if version == 1 || f.ID >= 256 {
			nameLen = int(d.Uint16())
		}
		f.Flags = d.Uint16()
		nvals := int(d.Uint16())
		if nameLen > 0 {
			name := d.Bytes(nameLen)
			for j, c := range name {
				if c == 0 {
					name = name[:j]
					break
				}
			}
			f.Name = string(name)
			if version == 1 {
				d.Align(0, 8)
			}
		}
		f.ClientData = make([]uint32, nvals)
		for j := range f.ClientData {
			f.ClientData[j] = d.Uint32()
		}
		if version == 1 && nvals%2 != 0 {
			d.Skip(4)
		}
	}
	return fp, checkDecoder(d)
}

// Encode implements Encodable (version 2).
func (m *FilterPipeline) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(binary.DefaultConfig())
	e.Uint8(2)
	e.Uint8(uint8(len(m.Filters)))
	for _, f := range m.Filters {
		e.Uint16(f.ID)
		if f.ID >= 256 {
			name := append([]byte(f.Name), 0)
			e.Uint16(uint16(len(name)))
			e.Uint16(f.Flags)
			e.Uint16(uint16(len(f.ClientData)))
			e.Write(name)
		} else {
			e.Uint16(f.Flags)
			e.Uint16(uint16(len(f.ClientData)))
		}
		for _, v := range f.ClientData {
			e.Uint32(v)
		}
	}
	return e.Bytes(), nil
}

package message

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// LinkType distinguishes hard, soft and external links.
type LinkType uint8

const (
	LinkHard     LinkType = 0
	LinkSoft     LinkType = 1
	LinkExternal LinkType = 64
)

// Link is one entry of a compact (new-style) group.
type Link struct {
	Name       string
	LinkType   LinkType
	Address    uint64
	SoftTarget string
}

func (m *Link) Type() Type { return TypeLink }

// NewHardLink returns a hard link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{Name: name, LinkType: LinkHard, Address: addr}
}

func decodeLink(data []byte, cfg binary.Config) (*Link, error) {
	d := binary.NewDecoder(data, cfg)
	if v := d.Uint8(); v != 1 {
		return nil, fmt.Errorf("unsupported link version %d", v)
	}
	flags := d.Uint8()
	l := &Link{}
	if flags&0x08 != 0 {
		l.LinkType = LinkType(d.Uint8())
	}
	if flags&0x04 != 0 {
		d.Uint64() // creation order
	}
	if flags&0x10 != 0 {
		d.Uint8() // name charset
	}
	nameLen := int(d.UintN(1 << (flags & 0x03)))
	l.Name = string(d.Bytes(nameLen))

	switch l.LinkType {
	case LinkHard:
		l.Address = d.Offset()
	case LinkSoft:
		l.SoftTarget = string(d.Bytes(int(d.Uint16())))
	default:
		// External and user-defined links carry opaque data.
		d.Skip(int(d.Uint16()))
	}
	return l, checkDecoder(d)
}

// Encode implements Encodable (version 1). Only hard and soft links are
// written.
func (m *Link) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(cfg)
	e.Uint8(1)

	var flags uint8
	width := 1
	switch n := len(m.Name); {
	case n > 0xffff:
		flags, width = 0x02, 4
	case n > 0xff:
		flags, width = 0x01, 2
	}
	if m.LinkType != LinkHard {
		flags |= 0x08
	}
	e.Uint8(flags)
	if m.LinkType != LinkHard {
		e.Uint8(uint8(m.LinkType))
	}
	e.UintN(uint64(len(m.Name)), width)
	e.Write([]byte(m.Name))

	switch m.LinkType {
	case LinkHard:
		e.Offset(m.Address)
	case LinkSoft:
		e.Uint16(uint16(len(m.SoftTarget)))
		e.Write([]byte(m.SoftTarget))
	default:
		return nil, fmt.Errorf("cannot encode link type %d", m.LinkType)
	}
	return e.Bytes(), nil
}

// LinkInfo marks a new-style group. A defined FractalHeapAddr means the links
// are stored densely rather than as link messages.
type LinkInfo struct {
	Flags           uint8
	FractalHeapAddr uint64
	NameIndexAddr   uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns link info for a group with compact link storage in a
// file with offsetSize-byte addresses.
func NewLinkInfo(offsetSize int) *LinkInfo {
	u := binary.Undefined(offsetSize)
	return &LinkInfo{FractalHeapAddr: u, NameIndexAddr: u}
}

func decodeLinkInfo(data []byte, cfg binary.Config) (*LinkInfo, error) {
	d := binary.NewDecoder(data, cfg)
	d.Uint8() // version
	li := &LinkInfo{Flags: d.Uint8()}
	if li.Flags&0x01 != 0 {
		d.Uint64() // max creation index
	}
	li.FractalHeapAddr = d.Offset()
	li.NameIndexAddr = d.Offset()
	return li, checkDecoder(d)
}

// Dense reports whether the group's links live in a fractal heap.
func (m *LinkInfo) Dense(offsetSize int) bool {
	return !binary.IsUndefined(m.FractalHeapAddr, offsetSize)
}

// Encode implements Encodable (version 0, no creation order tracking).
func (m *LinkInfo) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(cfg)
	e.Uint8(0)
	e.Uint8(0)
	e.UndefinedOffset()
	e.UndefinedOffset()
	return e.Bytes(), nil
}

// GroupInfo is written alongside LinkInfo in new-style groups. Its defaults
// (8 compact links, 6 dense) are implied by an empty flags byte.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

// Encode implements Encodable (version 0).
func (m *GroupInfo) Encode(cfg binary.Config) ([]byte, error) {
	return []byte{0, 0}, nil
}

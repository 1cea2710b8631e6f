package object

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

// readV1 decodes a version 1 header: a 16-byte prefix followed by 8-byte
// aligned messages, continued in unsigned blocks.
func (hr *headerReader) readV1(addr uint64) error {
	prefix, err := binpkg.ReadBlock(hr.r, int64(addr), 16)
	if err != nil {
		return err
	}
	size := binary.LittleEndian.Uint32(prefix[8:12])
	block, err := binpkg.ReadBlock(hr.r, int64(addr)+16, int(size))
	if err != nil {
		return err
	}
	if err := hr.v1Messages(block); err != nil {
		return err
	}
	for i := 0; i < len(hr.conts); i++ {
		c := hr.conts[i]
		block, err := binpkg.ReadBlock(hr.r, int64(c.Offset), int(c.Length))
		if err != nil {
			return fmt.Errorf("continuation block: %w", err)
		}
		if err := hr.v1Messages(block); err != nil {
			return err
		}
	}
	return nil
}

func (hr *headerReader) v1Messages(block []byte) error {
	d := binpkg.NewDecoder(block, hr.cfg)
	for d.Remaining() >= 8 {
		typ := message.Type(d.Uint16())
		n := int(d.Uint16())
		d.Skip(4) // flags + reserved
		body := d.Bytes(n)
		if d.Err() != nil {
			return fmt.Errorf("%w: message overruns block", ErrInvalidHeader)
		}
		d.Align(0, 8)
		if err := hr.add(typ, body); err != nil {
			return err
		}
	}
	return nil
}

// readV2 decodes a version 2 header and its OCHK continuation blocks. Every
// block carries a lookup3 checksum over its contents.
func (hr *headerReader) readV2(addr uint64) error {
	fixed, err := binpkg.ReadBlock(hr.r, int64(addr), 6)
	if err != nil {
		return err
	}
	if fixed[4] != 2 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, fixed[4])
	}
	flags := fixed[5]

	prefixLen := 6
	if flags&0x20 != 0 {
		prefixLen += 16 // access, modification, change, birth times
	}
	if flags&0x10 != 0 {
		prefixLen += 4 // attribute phase change values
	}
	width := 1 << (flags & 0x03)

	sizeBuf, err := binpkg.ReadBlock(hr.r, int64(addr)+int64(prefixLen), width)
	if err != nil {
		return err
	}
	size := binpkg.NewDecoder(sizeBuf, hr.cfg).UintN(width)
	total := prefixLen + width + int(size) + 4
	block, err := binpkg.ReadBlock(hr.r, int64(addr), total)
	if err != nil {
		return err
	}
	if err := verify(block); err != nil {
		return err
	}

	order := flags&0x04 != 0
	if err := hr.v2Messages(block[prefixLen+width:total-4], order); err != nil {
		return err
	}
	for i := 0; i < len(hr.conts); i++ {
		c := hr.conts[i]
		block, err := binpkg.ReadBlock(hr.r, int64(c.Offset), int(c.Length))
		if err != nil {
			return fmt.Errorf("continuation block: %w", err)
		}
		if len(block) < 8 || !bytes.Equal(block[:4], signatureOCHK) {
			return fmt.Errorf("%w: bad continuation signature at %d", ErrInvalidHeader, c.Offset)
		}
		if err := verify(block); err != nil {
			return err
		}
		if err := hr.v2Messages(block[4:len(block)-4], order); err != nil {
			return err
		}
	}
	return nil
}

func verify(block []byte) error {
	n := len(block) - 4
	if binpkg.Lookup3(block[:n]) != binary.LittleEndian.Uint32(block[n:]) {
		return ErrChecksumMismatch
	}
	return nil
}

func (hr *headerReader) v2Messages(block []byte, creationOrder bool) error {
	head := 4
	if creationOrder {
		head = 6
	}
	d := binpkg.NewDecoder(block, hr.cfg)
	// A tail shorter than a message header is a gap.
	for d.Remaining() >= head {
		typ := message.Type(d.Uint8())
		n := int(d.Uint16())
		d.Skip(head - 3)
		body := d.Bytes(n)
		if d.Err() != nil {
			return fmt.Errorf("%w: message overruns block", ErrInvalidHeader)
		}
		if err := hr.add(typ, body); err != nil {
			return err
		}
	}
	return nil
}

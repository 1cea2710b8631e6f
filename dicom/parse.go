package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"golang.org/x/text/encoding"
)

const (
	preambleSize    = 128
	undefinedLength = 0xFFFFFFFF
)

var magic = []byte("DICM")

// ParseFile reads and parses the DICOM file name.
func ParseFile(name string) (*Dataset, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ds, nil
}

// Parse reads a Part 10 stream: preamble, file meta group and the main
// dataset. The returned dataset holds the meta elements followed by the
// main ones.
func Parse(r io.Reader) (*Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b) < preambleSize+len(magic) || !bytes.Equal(b[preambleSize:preambleSize+len(magic)], magic) {
		return nil, ErrNotDICOM
	}
	c := &cursor{b: b, off: preambleSize + len(magic), order: binary.LittleEndian}

	meta := newDataset(metaSyntax, nil)
	p := &parser{c: c, s: metaSyntax}
	if err := p.readMeta(meta); err != nil {
		return nil, fmt.Errorf("file meta: %w", err)
	}
	uid, err := meta.String(TagTransferSyntax)
	if err != nil {
		return nil, fmt.Errorf("file meta: %w", err)
	}
	s := lookupSyntax(uid)
	diagf("transfer syntax %s", uid)

	rest := c.b[c.off:]
	if s.deflated {
		rest, err = io.ReadAll(flate.NewReader(bytes.NewReader(rest)))
		if err != nil {
			return nil, fmt.Errorf("inflating dataset: %w", err)
		}
	}

	ds := newDataset(s, nil)
	for _, e := range meta.Elements {
		ds.add(e)
	}
	p = &parser{c: &cursor{b: rest, order: s.order}, s: s}
	if err := p.readDataset(ds, len(rest), false); err != nil {
		return nil, err
	}
	return ds, nil
}

type parser struct {
	c *cursor
	s syntax
}

// readMeta reads the group 0002 elements. The group length element, when
// present first, bounds the group; otherwise elements are read while their
// group is 0002.
func (p *parser) readMeta(ds *Dataset) error {
	end := len(p.c.b)
	first := true
	for p.c.off < end {
		t, err := p.c.peekTag()
		if err != nil {
			return err
		}
		if t.Group() != 0x0002 {
			break
		}
		e, err := p.readElement(ds.charset)
		if err != nil {
			return err
		}
		ds.add(e)
		if first && e.Tag == TagFileMetaGroupLength && len(e.Value) == 4 {
			end = p.c.off + int(binary.LittleEndian.Uint32(e.Value))
			if end > len(p.c.b) {
				return fmt.Errorf("group length past end of file: %w", ErrMalformed)
			}
		}
		first = false
	}
	return nil
}

// readDataset adds elements to ds until end, or until an item delimiter
// when delimited is set.
func (p *parser) readDataset(ds *Dataset, end int, delimited bool) error {
	for p.c.off < end {
		t, err := p.c.peekTag()
		if err != nil {
			return err
		}
		if t == TagItemDelimitation {
			if !delimited {
				return fmt.Errorf("item delimiter outside an item at %d: %w", p.c.off, ErrMalformed)
			}
			p.c.off += 8
			return nil
		}
		e, err := p.readElement(ds.charset)
		if err != nil {
			return err
		}
		if e.Tag == TagSpecificCharacterSet {
			ds.charset = lookupCharset(string(e.Value))
		}
		ds.add(e)
	}
	if delimited {
		return fmt.Errorf("item without delimiter: %w", ErrMalformed)
	}
	return nil
}

func (p *parser) readElement(cs encoding.Encoding) (*Element, error) {
	start := p.c.off
	t, err := p.c.tag()
	if err != nil {
		return nil, err
	}
	var vr VR
	var length uint32
	if p.s.implicit {
		vr = dictionaryVR(t)
		if length, err = p.c.u32(); err != nil {
			return nil, err
		}
	} else {
		code, err := p.c.bytes(2)
		if err != nil {
			return nil, err
		}
		vr = VR(code)
		if !vr.valid() {
			return nil, fmt.Errorf("%v: unknown VR %q at %d: %w", t, code, start, ErrMalformed)
		}
		if vr.longLength() {
			if _, err := p.c.bytes(2); err != nil {
				return nil, err
			}
			length, err = p.c.u32()
		} else {
			var l uint16
			l, err = p.c.u16()
			length = uint32(l)
		}
		if err != nil {
			return nil, err
		}
	}

	e := &Element{Tag: t, VR: vr}
	switch {
	case vr == SQ || (length == undefinedLength && vr == UN):
		items, err := p.readSequence(length, cs)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", t, err)
		}
		e.VR = SQ
		e.Items = items
	case length == undefinedLength && t == TagPixelData:
		frags, err := p.readFragments()
		if err != nil {
			return nil, fmt.Errorf("%v: %w", t, err)
		}
		e.Fragments = frags
	case length == undefinedLength:
		return nil, fmt.Errorf("%v: undefined length for VR %s: %w", t, vr, ErrMalformed)
	default:
		if e.Value, err = p.c.bytes(int(length)); err != nil {
			return nil, fmt.Errorf("%v: %w", t, err)
		}
	}
	return e, nil
}

func (p *parser) readSequence(length uint32, cs encoding.Encoding) ([]*Dataset, error) {
	end := len(p.c.b)
	if length != undefinedLength {
		end = p.c.off + int(length)
		if end > len(p.c.b) {
			return nil, io.ErrUnexpectedEOF
		}
	}
	var items []*Dataset
	for p.c.off < end {
		t, err := p.c.tag()
		if err != nil {
			return nil, err
		}
		l, err := p.c.u32()
		if err != nil {
			return nil, err
		}
		if t == TagSequenceDelimitation {
			if length != undefinedLength {
				return nil, fmt.Errorf("sequence delimiter in defined length sequence: %w", ErrMalformed)
			}
			return items, nil
		}
		if t != TagItem {
			return nil, fmt.Errorf("want item, got %v: %w", t, ErrMalformed)
		}
		item := newDataset(p.s, cs)
		if l == undefinedLength {
			err = p.readDataset(item, len(p.c.b), true)
		} else {
			itemEnd := p.c.off + int(l)
			if itemEnd > len(p.c.b) {
				return nil, io.ErrUnexpectedEOF
			}
			err = p.readDataset(item, itemEnd, false)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if length == undefinedLength {
		return nil, fmt.Errorf("sequence without delimiter: %w", ErrMalformed)
	}
	return items, nil
}

// readFragments reads the items of encapsulated pixel data. The first item
// is the basic offset table.
func (p *parser) readFragments() ([][]byte, error) {
	frags := [][]byte{}
	for {
		t, err := p.c.tag()
		if err != nil {
			return nil, err
		}
		l, err := p.c.u32()
		if err != nil {
			return nil, err
		}
		if t == TagSequenceDelimitation {
			return frags, nil
		}
		if t != TagItem || l == undefinedLength {
			return nil, fmt.Errorf("bad fragment item %v: %w", t, ErrMalformed)
		}
		b, err := p.c.bytes(int(l))
		if err != nil {
			return nil, err
		}
		frags = append(frags, b)
	}
}

// cursor reads fixed-size fields from an in-memory buffer.
type cursor struct {
	b     []byte
	off   int
	order binary.ByteOrder
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.b) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.b[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

func (c *cursor) tag() (Tag, error) {
	g, err := c.u16()
	if err != nil {
		return 0, err
	}
	e, err := c.u16()
	if err != nil {
		return 0, err
	}
	return NewTag(g, e), nil
}

func (c *cursor) peekTag() (Tag, error) {
	off := c.off
	t, err := c.tag()
	c.off = off
	return t, err
}

package binary

import "encoding/binary"

// Decoder walks a metadata block. The first out-of-range read records
// ErrShortBuffer; later reads return zero values, so callers check Err once
// after a run of fields.
type Decoder struct {
	buf []byte
	pos int
	cfg Config
	err error
}

// NewDecoder returns a Decoder positioned at the start of buf.
func NewDecoder(buf []byte, cfg Config) *Decoder {
	return &Decoder{buf: buf, cfg: cfg}
}

// Config returns the field widths used by the decoder.
func (d *Decoder) Config() Config { return d.cfg }

// Err returns the first error encountered.
func (d *Decoder) Err() error { return d.err }

// Pos returns the offset of the next read within the block.
func (d *Decoder) Pos() int { return d.pos }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	if d.pos >= len(d.buf) {
		return 0
	}
	return len(d.buf) - d.pos
}

// Seek moves to an absolute offset within the block.
func (d *Decoder) Seek(pos int) {
	if pos < 0 || pos > len(d.buf) {
		d.fail()
		return
	}
	d.pos = pos
}

// Skip advances n bytes.
func (d *Decoder) Skip(n int) { d.take(n) }

// Align advances to the next multiple of n relative to base.
func (d *Decoder) Align(base, n int) {
	if n <= 1 {
		return
	}
	if r := (d.pos - base) % n; r != 0 {
		d.Skip(n - r)
	}
}

func (d *Decoder) fail() {
	if d.err == nil {
		d.err = ErrShortBuffer
	}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.pos+n > len(d.buf) {
		d.fail()
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// Bytes returns the next n bytes. The slice aliases the block.
func (d *Decoder) Bytes(n int) []byte {
	b := d.take(n)
	if b == nil && n > 0 {
		return make([]byte, n)
	}
	return b
}

// Peek returns the next n bytes without consuming them.
func (d *Decoder) Peek(n int) []byte {
	if d.err != nil || d.pos+n > len(d.buf) {
		return nil
	}
	return d.buf[d.pos : d.pos+n]
}

func (d *Decoder) Uint8() uint8 {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *Decoder) Uint16() uint16 {
	if b := d.take(2); b != nil {
		return d.cfg.ByteOrder.Uint16(b)
	}
	return 0
}

func (d *Decoder) Uint32() uint32 {
	if b := d.take(4); b != nil {
		return d.cfg.ByteOrder.Uint32(b)
	}
	return 0
}

func (d *Decoder) Uint64() uint64 {
	if b := d.take(8); b != nil {
		return d.cfg.ByteOrder.Uint64(b)
	}
	return 0
}

// UintN reads an n-byte little-endian unsigned integer, 1 <= n <= 8.
func (d *Decoder) UintN(n int) uint64 {
	b := d.take(n)
	if b == nil {
		return 0
	}
	return decodeUint(d.cfg.ByteOrder, b)
}

// Offset reads a file address.
func (d *Decoder) Offset() uint64 { return d.UintN(d.cfg.OffsetSize) }

// Length reads a length field.
func (d *Decoder) Length() uint64 { return d.UintN(d.cfg.LengthSize) }

// CString reads a NUL-terminated string and consumes the terminator.
func (d *Decoder) CString() string {
	if d.err != nil {
		return ""
	}
	for i := d.pos; i < len(d.buf); i++ {
		if d.buf[i] == 0 {
			s := string(d.buf[d.pos:i])
			d.pos = i + 1
			return s
		}
	}
	d.fail()
	return ""
}

func decodeUint(order binary.ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

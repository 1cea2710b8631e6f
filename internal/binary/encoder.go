package binary

import (
	"encoding/binary"
	"io"
)

// Encoder builds a metadata block in memory.
type Encoder struct {
	buf []byte
	cfg Config
}

// NewEncoder returns an empty Encoder.
func NewEncoder(cfg Config) *Encoder {
	return &Encoder{cfg: cfg}
}

// Config returns the field widths used by the encoder.
func (e *Encoder) Config() Config { return e.cfg }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

// Bytes returns the encoded block.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) Uint8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) Uint16(v uint16) { e.buf = e.cfg.ByteOrder.AppendUint16(e.buf, v) }

func (e *Encoder) Uint32(v uint32) { e.buf = e.cfg.ByteOrder.AppendUint32(e.buf, v) }

func (e *Encoder) Uint64(v uint64) { e.buf = e.cfg.ByteOrder.AppendUint64(e.buf, v) }

// UintN writes the low n bytes of v.
func (e *Encoder) UintN(v uint64, n int) {
	switch n {
	case 1:
		e.Uint8(uint8(v))
	case 2:
		e.Uint16(uint16(v))
	case 4:
		e.Uint32(uint32(v))
	case 8:
		e.Uint64(v)
	default:
		for i := 0; i < n; i++ {
			e.buf = append(e.buf, byte(v>>(8*uint(i))))
		}
	}
}

// Offset writes a file address.
func (e *Encoder) Offset(v uint64) { e.UintN(v, e.cfg.OffsetSize) }

// UndefinedOffset writes the all-ones address.
func (e *Encoder) UndefinedOffset() { e.Offset(Undefined(e.cfg.OffsetSize)) }

// Length writes a length field.
func (e *Encoder) Length(v uint64) { e.UintN(v, e.cfg.LengthSize) }

// Write appends raw bytes.
func (e *Encoder) Write(p []byte) { e.buf = append(e.buf, p...) }

// Zeros appends n zero bytes.
func (e *Encoder) Zeros(n int) {
	for ; n > 0; n-- {
		e.buf = append(e.buf, 0)
	}
}

// PadTo appends zeros until the block length is a multiple of n.
func (e *Encoder) PadTo(n int) {
	if r := len(e.buf) % n; r != 0 {
		e.Zeros(n - r)
	}
}

// PutUint32At overwrites four bytes at pos, used to patch sizes after the fact.
func (e *Encoder) PutUint32At(pos int, v uint32) {
	e.cfg.ByteOrder.PutUint32(e.buf[pos:], v)
}

// AppendChecksum appends the lookup3 checksum of everything written so far.
func (e *Encoder) AppendChecksum() {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, Lookup3(e.buf))
}

// WriteAt writes the block at off.
func (e *Encoder) WriteAt(w io.WriterAt, off int64) error {
	_, err := w.WriteAt(e.buf, off)
	return err
}

package heap

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// Collection is one global heap collection, indexed by object number.
type Collection struct {
	objects map[uint16][]byte
}

// ReadCollection reads the global heap collection at addr.
func ReadCollection(r io.ReaderAt, cfg binary.Config, addr uint64) (*Collection, error) {
	head, err := binary.ReadBlock(r, int64(addr), 8+cfg.LengthSize)
	if err != nil {
		return nil, fmt.Errorf("global heap at %d: %w", addr, err)
	}
	if string(head[:4]) != "GCOL" {
		return nil, fmt.Errorf("global heap at %d: bad signature %q", addr, head[:4])
	}
	if head[4] != 1 {
		return nil, fmt.Errorf("global heap at %d: unsupported version %d", addr, head[4])
	}
	size := binary.NewDecoder(head[8:], cfg).Length()
	block, err := binary.ReadBlock(r, int64(addr), int(size))
	if err != nil {
		return nil, fmt.Errorf("global heap at %d: %w", addr, err)
	}

	c := &Collection{objects: make(map[uint16][]byte)}
	d := binary.NewDecoder(block, cfg)
	d.Skip(len(head))
	for d.Remaining() >= 8+cfg.LengthSize {
		index := d.Uint16()
		d.Skip(6) // reference count, reserved
		n := int(d.Length())
		if index == 0 {
			// Object 0 is the free space at the end of the collection.
			break
		}
		c.objects[index] = d.Bytes(n)
		d.Align(0, 8)
	}
	if d.Err() != nil {
		return nil, fmt.Errorf("global heap at %d: %w", addr, d.Err())
	}
	return c, nil
}

// Object returns the bytes of object index.
func (c *Collection) Object(index uint32) ([]byte, error) {
	data, ok := c.objects[uint16(index)]
	if !ok || index > 0xffff {
		return nil, fmt.Errorf("global heap object %d not found", index)
	}
	return data, nil
}

// Ref is a variable-length element as stored in a dataset or attribute:
// the sequence length followed by a global heap object id.
type Ref struct {
	Length     uint32
	Collection uint64
	Index      uint32
}

// RefSize returns the encoded size of a Ref.
func RefSize(cfg binary.Config) int {
	return 4 + cfg.OffsetSize + 4
}

// DecodeRef decodes a Ref from the start of b.
func DecodeRef(b []byte, cfg binary.Config) (Ref, error) {
	d := binary.NewDecoder(b, cfg)
	ref := Ref{Length: d.Uint32(), Collection: d.Offset(), Index: d.Uint32()}
	return ref, d.Err()
}

// Reader resolves variable-length references, caching collections.
type Reader struct {
	r     io.ReaderAt
	cfg   binary.Config
	cache map[uint64]*Collection
}

// NewReader returns a Reader over r.
func NewReader(r io.ReaderAt, cfg binary.Config) *Reader {
	return &Reader{r: r, cfg: cfg, cache: make(map[uint64]*Collection)}
}

// Resolve returns the bytes a reference points at. A zero-length reference
// resolves to nil without touching the file.
func (hr *Reader) Resolve(ref Ref) ([]byte, error) {
	if ref.Length == 0 || ref.Collection == 0 {
		return nil, nil
	}
	c, ok := hr.cache[ref.Collection]
	if !ok {
		var err error
		if c, err = ReadCollection(hr.r, hr.cfg, ref.Collection); err != nil {
			return nil, err
		}
		hr.cache[ref.Collection] = c
	}
	return c.Object(ref.Index)
}

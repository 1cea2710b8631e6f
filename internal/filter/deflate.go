package filter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/robert-malhotra/go-usvol/internal/message"
)

// DefaultDeflateLevel is used when the client data carries no level.
const DefaultDeflateLevel = 6

// Deflate is the zlib filter.
type Deflate struct {
	Level int
}

// NewDeflate reads the compression level from the client data.
func NewDeflate(cd []uint32) *Deflate {
	level := DefaultDeflateLevel
	if len(cd) > 0 {
		level = int(cd[0])
	}
	return &Deflate{Level: level}
}

func (f *Deflate) ID() uint16 { return message.FilterDeflate }

func (f *Deflate) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(input); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Deflate) Decode(input []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

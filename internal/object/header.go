package object

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

var (
	signatureOHDR = []byte("OHDR")
	signatureOCHK = []byte("OCHK")
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
)

// maxContinuations bounds the continuation chain of one header.
const maxContinuations = 1024

// Header is a decoded object header with its continuation blocks flattened
// into one message list.
type Header struct {
	Version  uint8
	Address  uint64
	Messages []message.Message
	// Size is the encoded length of a header built by Encode, zero when the
	// header was read from a file.
	Size int
}

// Read decodes the object header at addr.
func Read(r io.ReaderAt, cfg binary.Config, addr uint64) (*Header, error) {
	prefix, err := binary.ReadBlock(r, int64(addr), 4)
	if err != nil {
		return nil, fmt.Errorf("object header at %d: %w", addr, err)
	}
	hr := &headerReader{r: r, cfg: cfg, hdr: &Header{Address: addr}}
	switch {
	case string(prefix) == string(signatureOHDR):
		hr.hdr.Version = 2
		err = hr.readV2(addr)
	case prefix[0] == 1:
		hr.hdr.Version = 1
		err = hr.readV1(addr)
	default:
		return nil, fmt.Errorf("%w at address %d", ErrInvalidHeader, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("object header at %d: %w", addr, err)
	}
	return hr.hdr, nil
}

// headerReader accumulates messages while following continuation blocks.
type headerReader struct {
	r     io.ReaderAt
	cfg   binary.Config
	hdr   *Header
	conts []*message.Continuation
}

// add decodes one message body. Continuations are queued. Attributes and
// fill values that fail to decode are kept raw so that an exotic attribute
// does not make its object unreadable.
func (hr *headerReader) add(typ message.Type, body []byte) error {
	if typ == message.TypeNIL {
		return nil
	}
	m, err := message.Decode(typ, body, hr.cfg)
	if err != nil {
		switch typ {
		case message.TypeAttribute, message.TypeFillValue:
			m = message.NewUnknown(typ, body)
		default:
			return err
		}
	}
	if c, ok := m.(*message.Continuation); ok {
		if len(hr.conts) >= maxContinuations {
			return fmt.Errorf("%w: too many continuation blocks", ErrInvalidHeader)
		}
		hr.conts = append(hr.conts, c)
		return nil
	}
	hr.hdr.Messages = append(hr.hdr.Messages, m)
	return nil
}

// First returns the first message of type typ, or nil.
func (h *Header) First(typ message.Type) message.Message {
	for _, m := range h.Messages {
		if m.Type() == typ {
			return m
		}
	}
	return nil
}

// Dataspace returns the dataspace message, or nil.
func (h *Header) Dataspace() *message.Dataspace {
	m, _ := h.First(message.TypeDataspace).(*message.Dataspace)
	return m
}

// Datatype returns the datatype message, or nil.
func (h *Header) Datatype() *message.Datatype {
	m, _ := h.First(message.TypeDatatype).(*message.Datatype)
	return m
}

// Layout returns the data layout message, or nil.
func (h *Header) Layout() *message.DataLayout {
	m, _ := h.First(message.TypeDataLayout).(*message.DataLayout)
	return m
}

// Filters returns the filter pipeline message, or nil.
func (h *Header) Filters() *message.FilterPipeline {
	m, _ := h.First(message.TypeFilterPipeline).(*message.FilterPipeline)
	return m
}

// SymbolTable returns the symbol table message of an old-style group, or nil.
func (h *Header) SymbolTable() *message.SymbolTable {
	m, _ := h.First(message.TypeSymbolTable).(*message.SymbolTable)
	return m
}

// LinkInfo returns the link info message of a new-style group, or nil.
func (h *Header) LinkInfo() *message.LinkInfo {
	m, _ := h.First(message.TypeLinkInfo).(*message.LinkInfo)
	return m
}

// Links returns the link messages in header order.
func (h *Header) Links() []*message.Link {
	var out []*message.Link
	for _, m := range h.Messages {
		if l, ok := m.(*message.Link); ok {
			out = append(out, l)
		}
	}
	return out
}

// Attributes returns the decodable attribute messages in header order.
func (h *Header) Attributes() []*message.Attribute {
	var out []*message.Attribute
	for _, m := range h.Messages {
		if a, ok := m.(*message.Attribute); ok {
			out = append(out, a)
		}
	}
	return out
}

// IsGroup reports whether the header describes a group.
func (h *Header) IsGroup() bool {
	return h.SymbolTable() != nil || h.LinkInfo() != nil
}

// IsDataset reports whether the header describes a dataset.
func (h *Header) IsDataset() bool {
	return h.Layout() != nil && h.Dataspace() != nil
}

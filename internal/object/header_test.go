package object

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	binpkg "github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

var cfg = binpkg.DefaultConfig()

func TestEncodeReadV2(t *testing.T) {
	msgs := []message.Encodable{
		message.NewDataspace([]uint64{4, 5, 6}),
		message.NewInteger(2, false),
		message.NewFillValue(),
		message.NewContiguousLayout(4096, 240),
		&message.Attribute{
			Name:      "kind",
			Datatype:  message.NewFixedString(5, message.CharsetASCII),
			Dataspace: message.NewScalarDataspace(),
			Data:      []byte("table"),
		},
	}
	buf, err := Encode(msgs, cfg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Place the header at a non-zero address.
	file := append(make([]byte, 64), buf...)
	h, err := Read(bytes.NewReader(file), cfg, 64)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if h.Version != 2 || h.Address != 64 {
		t.Errorf("got version %d address %d", h.Version, h.Address)
	}
	if !h.IsDataset() || h.IsGroup() {
		t.Error("header should describe a dataset")
	}
	if ds := h.Dataspace(); ds.NumElements() != 120 {
		t.Errorf("NumElements: got %d", ds.NumElements())
	}
	if l := h.Layout(); l.Address != 4096 || l.Size != 240 {
		t.Errorf("layout: got %+v", l)
	}
	attrs := h.Attributes()
	if len(attrs) != 1 || attrs[0].Name != "kind" || string(attrs[0].Data) != "table" {
		t.Errorf("attributes: got %+v", attrs)
	}
}

func TestEncodeLargeHeaderWidth(t *testing.T) {
	var msgs []message.Encodable
	msgs = append(msgs, message.NewLinkInfo(cfg.OffsetSize), &message.GroupInfo{})
	for i := 0; i < 40; i++ {
		msgs = append(msgs, message.NewHardLink(string(rune('a'+i%26))+"_member_name", uint64(1000+i)))
	}
	buf, err := Encode(msgs, cfg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if buf[5]&0x03 != 1 {
		t.Errorf("expected 2-byte chunk size field, flags %#x", buf[5])
	}
	h, err := Read(bytes.NewReader(buf), cfg, 0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := len(h.Links()); got != 40 {
		t.Errorf("Links: got %d, want 40", got)
	}
	if !h.IsGroup() {
		t.Error("header should describe a group")
	}
}

func TestReadV2ChecksumMismatch(t *testing.T) {
	buf, err := Encode([]message.Encodable{message.NewScalarDataspace()}, cfg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	buf[8] ^= 0x01
	_, err = Read(bytes.NewReader(buf), cfg, 0)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

// v1Message encodes one version 1 message padded to 8 bytes.
func v1Message(typ message.Type, body []byte) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	padded := (len(body) + 7) &^ 7
	binary.Write(&buf, le, uint16(typ))
	binary.Write(&buf, le, uint16(padded))
	buf.Write(make([]byte, 4))
	buf.Write(body)
	buf.Write(make([]byte, padded-len(body)))
	return buf.Bytes()
}

func TestReadV1WithContinuation(t *testing.T) {
	le := binary.LittleEndian
	space, _ := message.NewDataspace([]uint64{10}).Encode(cfg)
	dtype, _ := message.NewFloat(4).Encode(cfg)

	// Continuation block placed at 256, holding the datatype message.
	cont := v1Message(message.TypeDatatype, dtype)
	contBody := make([]byte, 16)
	le.PutUint64(contBody[0:], 256)
	le.PutUint64(contBody[8:], uint64(len(cont)))

	msgs := append(v1Message(message.TypeDataspace, space), v1Message(message.TypeContinuation, contBody)...)
	prefix := make([]byte, 16)
	prefix[0] = 1
	le.PutUint16(prefix[2:], 3)
	le.PutUint32(prefix[4:], 1)
	le.PutUint32(prefix[8:], uint32(len(msgs)))

	file := make([]byte, 256+len(cont))
	copy(file, prefix)
	copy(file[16:], msgs)
	copy(file[256:], cont)

	h, err := Read(bytes.NewReader(file), cfg, 0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if h.Version != 1 {
		t.Errorf("Version: got %d", h.Version)
	}
	if h.Dataspace() == nil || h.Datatype() == nil {
		t.Fatalf("missing messages: %+v", h.Messages)
	}
	if h.Datatype().Class != message.ClassFloatPoint {
		t.Errorf("datatype class: got %v", h.Datatype().Class)
	}
	if h.First(message.TypeContinuation) != nil {
		t.Error("continuation messages should not be kept")
	}
}

func TestReadInvalid(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, 32)), cfg, 0)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got %v", err)
	}
}

func TestUndecodableAttributeKept(t *testing.T) {
	bad := []byte{9, 0, 0, 0, 0, 0, 0, 0}
	e := binpkg.NewEncoder(cfg)
	e.Write([]byte("OHDR"))
	e.Uint8(2)
	e.Uint8(0)
	e.Uint8(uint8(4 + len(bad)))
	e.Uint8(uint8(message.TypeAttribute))
	e.Uint16(uint16(len(bad)))
	e.Uint8(0)
	e.Write(bad)
	e.AppendChecksum()

	h, err := Read(bytes.NewReader(e.Bytes()), cfg, 0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(h.Attributes()) != 0 {
		t.Error("undecodable attribute should not be returned")
	}
	if u, ok := h.First(message.TypeAttribute).(*message.Unknown); !ok || len(u.Data) != len(bad) {
		t.Errorf("expected raw attribute, got %#v", h.First(message.TypeAttribute))
	}
}

package heap

import (
	"bytes"
	"encoding/binary"
	"testing"

	binpkg "github.com/robert-malhotra/go-usvol/internal/binary"
)

var cfg = binpkg.DefaultConfig()

func localHeapFile() []byte {
	le := binary.LittleEndian
	names := []byte("\x00left\x00right\x00\x00\x00\x00")
	file := make([]byte, 64+len(names))
	copy(file, "HEAP")
	le.PutUint64(file[8:], uint64(len(names)))
	le.PutUint64(file[16:], binpkg.Undefined(8))
	le.PutUint64(file[24:], 64)
	copy(file[64:], names)
	return file
}

func TestLocalHeap(t *testing.T) {
	h, err := ReadLocal(bytes.NewReader(localHeapFile()), cfg, 0)
	if err != nil {
		t.Fatalf("ReadLocal failed: %v", err)
	}
	tests := []struct {
		off  uint64
		want string
	}{
		{0, ""},
		{1, "left"},
		{6, "right"},
	}
	for _, tt := range tests {
		got, err := h.String(tt.off)
		if err != nil {
			t.Errorf("String(%d) failed: %v", tt.off, err)
		}
		if got != tt.want {
			t.Errorf("String(%d): got %q, want %q", tt.off, got, tt.want)
		}
	}
	if _, err := h.String(100); err == nil {
		t.Error("expected error for offset beyond heap")
	}
}

func TestLocalHeapBadSignature(t *testing.T) {
	file := localHeapFile()
	copy(file, "HEAQ")
	if _, err := ReadLocal(bytes.NewReader(file), cfg, 0); err == nil {
		t.Error("expected error for bad signature")
	}
}

func collectionFile(addr int) []byte {
	le := binary.LittleEndian
	var objs bytes.Buffer
	for i, s := range []string{"inferno", "left.cropped_raw"} {
		hdr := make([]byte, 16)
		le.PutUint16(hdr, uint16(i+1))
		le.PutUint64(hdr[8:], uint64(len(s)))
		objs.Write(hdr)
		objs.WriteString(s)
		objs.Write(make([]byte, (8-len(s)%8)%8))
	}
	free := make([]byte, 16)
	objs.Write(free)

	size := 16 + objs.Len()
	file := make([]byte, addr+size)
	copy(file[addr:], "GCOL")
	file[addr+4] = 1
	le.PutUint64(file[addr+8:], uint64(size))
	copy(file[addr+16:], objs.Bytes())
	return file
}

func TestGlobalHeapResolve(t *testing.T) {
	file := collectionFile(128)
	hr := NewReader(bytes.NewReader(file), cfg)

	ref := make([]byte, RefSize(cfg))
	binary.LittleEndian.PutUint32(ref, 16)
	binary.LittleEndian.PutUint64(ref[4:], 128)
	binary.LittleEndian.PutUint32(ref[12:], 2)

	r, err := DecodeRef(ref, cfg)
	if err != nil {
		t.Fatalf("DecodeRef failed: %v", err)
	}
	got, err := hr.Resolve(r)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if string(got) != "left.cropped_raw" {
		t.Errorf("got %q", got)
	}

	r.Index = 1
	got, err = hr.Resolve(r)
	if err != nil || string(got) != "inferno" {
		t.Errorf("object 1: got %q, %v", got, err)
	}

	r.Index = 7
	if _, err := hr.Resolve(r); err == nil {
		t.Error("expected error for missing object")
	}
}

func TestResolveEmpty(t *testing.T) {
	hr := NewReader(bytes.NewReader(nil), cfg)
	got, err := hr.Resolve(Ref{})
	if err != nil || got != nil {
		t.Errorf("got %v, %v", got, err)
	}
}

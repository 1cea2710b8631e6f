package hdf5

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

var legacyCfg = binary.DefaultConfig()

func put(file []byte, addr int, b []byte) []byte {
	if need := addr + len(b); need > len(file) {
		file = append(file, make([]byte, need-len(file))...)
	}
	copy(file[addr:], b)
	return file
}

// v1Header encodes a version 1 object header holding msgs.
func v1Header(t *testing.T, msgs ...message.Encodable) []byte {
	t.Helper()
	body := binary.NewEncoder(legacyCfg)
	for _, m := range msgs {
		data, err := m.Encode(legacyCfg)
		if err != nil {
			t.Fatal(err)
		}
		body.Uint16(uint16(m.Type()))
		body.Uint16(uint16((len(data) + 7) &^ 7))
		body.Zeros(4)
		body.Write(data)
		body.PadTo(8)
	}
	e := binary.NewEncoder(legacyCfg)
	e.Uint8(1)
	e.Uint8(0)
	e.Uint16(uint16(len(msgs)))
	e.Uint32(1)
	e.Uint32(uint32(body.Len()))
	e.Zeros(4)
	e.Write(body.Bytes())
	return e.Bytes()
}

// writeLegacyFile builds a version 0 file whose root symbol table group
// holds a 2x2 uint16 dataset named raw.
func writeLegacyFile(t *testing.T) string {
	t.Helper()
	const (
		rootAddr  = 96
		heapAddr  = 256
		treeAddr  = 384
		snodAddr  = 512
		dsAddr    = 640
		dataAddr  = 800
		eofAddr   = 808
		nameOff   = 1
		heapBytes = 16
	)
	var file []byte

	sb := binary.NewEncoder(legacyCfg)
	sb.Write([]byte("\x89HDF\r\n\x1a\n"))
	sb.Write([]byte{0, 0, 0, 0, 0, 8, 8, 0})
	sb.Uint16(4)
	sb.Uint16(16)
	sb.Zeros(4)
	sb.Offset(0)
	sb.UndefinedOffset()
	sb.Offset(eofAddr)
	sb.UndefinedOffset()
	sb.Offset(0)
	sb.Offset(rootAddr)
	sb.Uint32(1)
	sb.Zeros(4)
	sb.Offset(treeAddr)
	sb.Offset(heapAddr)
	file = put(file, 0, sb.Bytes())

	file = put(file, rootAddr, v1Header(t, &symbolTableMsg{btree: treeAddr, heap: heapAddr}))

	h := binary.NewEncoder(legacyCfg)
	h.Write([]byte("HEAP"))
	h.Zeros(4)
	h.Length(heapBytes)
	h.Length(binary.Undefined(8))
	h.Offset(heapAddr + 32)
	h.Write([]byte("\x00raw\x00"))
	file = put(file, heapAddr, h.Bytes())

	tree := binary.NewEncoder(legacyCfg)
	tree.Write([]byte("TREE"))
	tree.Uint8(0)
	tree.Uint8(0)
	tree.Uint16(1)
	tree.UndefinedOffset()
	tree.UndefinedOffset()
	tree.Length(0)
	tree.Offset(snodAddr)
	tree.Length(nameOff)
	file = put(file, treeAddr, tree.Bytes())

	snod := binary.NewEncoder(legacyCfg)
	snod.Write([]byte("SNOD"))
	snod.Uint8(1)
	snod.Uint8(0)
	snod.Uint16(1)
	snod.Offset(nameOff)
	snod.Offset(dsAddr)
	snod.Zeros(24)
	file = put(file, snodAddr, snod.Bytes())

	file = put(file, dsAddr, v1Header(t,
		message.NewDataspace([]uint64{2, 2}),
		message.NewInteger(2, false),
		message.NewContiguousLayout(dataAddr, 8),
	))
	file = put(file, dataAddr, []byte{1, 0, 2, 0, 3, 0, 4, 0})

	path := filepath.Join(t.TempDir(), "legacy.h5")
	if err := os.WriteFile(path, file, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// symbolTableMsg encodes a symbol table message, which the writer never
// produces.
type symbolTableMsg struct{ btree, heap uint64 }

func (m *symbolTableMsg) Type() message.Type { return message.TypeSymbolTable }

func (m *symbolTableMsg) Encode(cfg binary.Config) ([]byte, error) {
	e := binary.NewEncoder(cfg)
	e.Offset(m.btree)
	e.Offset(m.heap)
	return e.Bytes(), nil
}

func TestReadSymbolTableFile(t *testing.T) {
	path := writeLegacyFile(t)
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	if f.Version() != 0 {
		t.Errorf("version: got %d", f.Version())
	}
	members, err := f.Root().Members()
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if !reflect.DeepEqual(members, []string{"raw"}) {
		t.Errorf("members: got %v", members)
	}
	ds, err := f.OpenDataset("raw")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	got, err := ds.ReadArray()
	if err != nil {
		t.Fatalf("ReadArray failed: %v", err)
	}
	if !reflect.DeepEqual(got, []uint16{1, 2, 3, 4}) || !reflect.DeepEqual(ds.Shape(), []uint64{2, 2}) {
		t.Errorf("got %v shape %v", got, ds.Shape())
	}
}

func TestAppendSymbolTableFileUnsupported(t *testing.T) {
	path := writeLegacyFile(t)
	if _, err := OpenReadWrite(path); !errors.Is(err, ErrUnsupported) {
		t.Errorf("OpenReadWrite: got %v, want ErrUnsupported", err)
	}
	if _, err := OpenAppend(path); !errors.Is(err, ErrUnsupported) {
		t.Errorf("OpenAppend: got %v, want ErrUnsupported", err)
	}
}

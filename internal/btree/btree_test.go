package btree

import (
	"bytes"
	"testing"

	binpkg "github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/heap"
)

var cfg = binpkg.DefaultConfig()

// image is a sparse file assembled from encoded blocks.
type image []byte

func (im *image) put(addr int, b []byte) {
	if need := addr + len(b); need > len(*im) {
		*im = append(*im, make([]byte, need-len(*im))...)
	}
	copy((*im)[addr:], b)
}

func treeNode(typ, level uint8, keys [][]byte, children []uint64) []byte {
	e := binpkg.NewEncoder(cfg)
	e.Write([]byte("TREE"))
	e.Uint8(typ)
	e.Uint8(level)
	e.Uint16(uint16(len(children)))
	e.UndefinedOffset()
	e.UndefinedOffset()
	for i, c := range children {
		e.Write(keys[i])
		e.Offset(c)
	}
	e.Write(keys[len(children)])
	return e.Bytes()
}

func groupKey(off uint64) []byte {
	e := binpkg.NewEncoder(cfg)
	e.Length(off)
	return e.Bytes()
}

func TestReadGroup(t *testing.T) {
	var im image

	// Local heap at 0 with names at data address 64.
	names := []byte("\x00left\x00right\x00link\x00/left\x00")
	h := binpkg.NewEncoder(cfg)
	h.Write([]byte("HEAP"))
	h.Zeros(4)
	h.Length(uint64(len(names)))
	h.Length(binpkg.Undefined(8))
	h.Offset(64)
	im.put(0, h.Bytes())
	im.put(64, names)

	// Symbol node at 512: two hard links and a soft link.
	s := binpkg.NewEncoder(cfg)
	s.Write([]byte("SNOD"))
	s.Uint8(1)
	s.Uint8(0)
	s.Uint16(3)
	entry := func(nameOff, addr uint64, cache uint32, scratch uint32) {
		s.Offset(nameOff)
		s.Offset(addr)
		s.Uint32(cache)
		s.Zeros(4)
		s.Uint32(scratch)
		s.Zeros(12)
	}
	entry(1, 1000, 0, 0)
	entry(6, 2000, 1, 0)
	entry(12, binpkg.Undefined(8), 2, 17)
	im.put(512, s.Bytes())

	// Root node at 256 (leaf) pointing at the symbol node.
	im.put(256, treeNode(nodeGroup, 0, [][]byte{groupKey(0), groupKey(12)}, []uint64{512}))

	r := bytes.NewReader(im)
	lh, err := heap.ReadLocal(r, cfg, 0)
	if err != nil {
		t.Fatalf("ReadLocal failed: %v", err)
	}
	syms, err := ReadGroup(r, cfg, 256, lh)
	if err != nil {
		t.Fatalf("ReadGroup failed: %v", err)
	}
	if len(syms) != 3 {
		t.Fatalf("got %d symbols", len(syms))
	}
	if syms[0].Name != "left" || syms[0].Address != 1000 {
		t.Errorf("symbol 0: got %+v", syms[0])
	}
	if syms[1].Name != "right" || syms[1].Address != 2000 {
		t.Errorf("symbol 1: got %+v", syms[1])
	}
	if syms[2].Name != "link" || syms[2].SoftTarget != "/left" {
		t.Errorf("symbol 2: got %+v", syms[2])
	}
}

func chunkKey(size, mask uint32, offsets ...uint64) []byte {
	e := binpkg.NewEncoder(cfg)
	e.Uint32(size)
	e.Uint32(mask)
	for _, o := range offsets {
		e.Uint64(o)
	}
	return e.Bytes()
}

func TestReadChunksTwoLevels(t *testing.T) {
	var im image
	// Two leaves under one internal node; rank 2 so keys carry 3 offsets.
	im.put(1000, treeNode(nodeChunk, 0,
		[][]byte{chunkKey(40, 0, 0, 0, 0), chunkKey(40, 0, 0, 10, 0)},
		[]uint64{5000}))
	im.put(2000, treeNode(nodeChunk, 0,
		[][]byte{chunkKey(36, 1, 0, 10, 0), chunkKey(0, 0, 10, 0, 0)},
		[]uint64{6000}))
	im.put(0, treeNode(nodeChunk, 1,
		[][]byte{chunkKey(0, 0, 0, 0, 0), chunkKey(0, 0, 0, 10, 0), chunkKey(0, 0, 10, 0, 0)},
		[]uint64{1000, 2000}))

	chunks, err := ReadChunks(bytes.NewReader(im), cfg, 0, 2)
	if err != nil {
		t.Fatalf("ReadChunks failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if chunks[0].Address != 5000 || chunks[0].Size != 40 || chunks[0].Offset[1] != 0 {
		t.Errorf("chunk 0: got %+v", chunks[0])
	}
	if chunks[1].Address != 6000 || chunks[1].FilterMask != 1 || chunks[1].Offset[1] != 10 {
		t.Errorf("chunk 1: got %+v", chunks[1])
	}
}

func TestReadNodeWrongType(t *testing.T) {
	var im image
	im.put(0, treeNode(nodeGroup, 0, [][]byte{groupKey(0)}, nil))
	if _, err := ReadChunks(bytes.NewReader(im), cfg, 0, 1); err == nil {
		t.Error("expected error reading a group node as a chunk node")
	}
}

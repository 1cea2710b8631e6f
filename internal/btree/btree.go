// Package btree walks version 1 B-trees: group nodes (type 0), whose leaves
// point at symbol table nodes, and raw data chunk nodes (type 1), whose
// leaves point at chunks.
package btree

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

const (
	nodeGroup = 0
	nodeChunk = 1
)

// maxDepth bounds recursion on corrupt trees.
const maxDepth = 64

type node struct {
	level    uint8
	keys     [][]byte
	children []uint64
}

// readNode reads a node with fixed-size keys. A node with n entries carries
// n+1 keys around its n children.
func readNode(r io.ReaderAt, cfg binary.Config, addr uint64, wantType uint8, keySize int) (*node, error) {
	head := 8 + 2*cfg.OffsetSize
	prefix, err := binary.ReadBlock(r, int64(addr), head)
	if err != nil {
		return nil, fmt.Errorf("B-tree node at %d: %w", addr, err)
	}
	if string(prefix[:4]) != "TREE" {
		return nil, fmt.Errorf("B-tree node at %d: bad signature %q", addr, prefix[:4])
	}
	if prefix[4] != wantType {
		return nil, fmt.Errorf("B-tree node at %d: type %d, want %d", addr, prefix[4], wantType)
	}
	d := binary.NewDecoder(prefix[5:], cfg)
	n := &node{level: d.Uint8()}
	entries := int(d.Uint16())

	body, err := binary.ReadBlock(r, int64(addr)+int64(head), entries*(keySize+cfg.OffsetSize)+keySize)
	if err != nil {
		return nil, fmt.Errorf("B-tree node at %d: %w", addr, err)
	}
	d = binary.NewDecoder(body, cfg)
	for i := 0; i < entries; i++ {
		n.keys = append(n.keys, d.Bytes(keySize))
		n.children = append(n.children, d.Offset())
	}
	n.keys = append(n.keys, d.Bytes(keySize))
	return n, d.Err()
}

package btree

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/heap"
)

// Symbol is one member of an old-style group.
type Symbol struct {
	Name    string
	Address uint64
	// SoftTarget is set for soft links cached in the entry's scratch pad.
	SoftTarget string
}

// ReadGroup lists the members of the group whose B-tree is at addr, in
// B-tree (name) order.
func ReadGroup(r io.ReaderAt, cfg binary.Config, addr uint64, names *heap.LocalHeap) ([]Symbol, error) {
	var out []Symbol
	err := walkGroup(r, cfg, addr, names, 0, &out)
	return out, err
}

func walkGroup(r io.ReaderAt, cfg binary.Config, addr uint64, names *heap.LocalHeap, depth int, out *[]Symbol) error {
	if depth > maxDepth {
		return fmt.Errorf("group B-tree deeper than %d levels", maxDepth)
	}
	n, err := readNode(r, cfg, addr, nodeGroup, cfg.LengthSize)
	if err != nil {
		return err
	}
	for _, child := range n.children {
		if n.level > 0 {
			err = walkGroup(r, cfg, child, names, depth+1, out)
		} else {
			err = readSymbolNode(r, cfg, child, names, out)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readSymbolNode reads an SNOD block.
func readSymbolNode(r io.ReaderAt, cfg binary.Config, addr uint64, names *heap.LocalHeap, out *[]Symbol) error {
	prefix, err := binary.ReadBlock(r, int64(addr), 8)
	if err != nil {
		return fmt.Errorf("symbol node at %d: %w", addr, err)
	}
	if string(prefix[:4]) != "SNOD" || prefix[4] != 1 {
		return fmt.Errorf("symbol node at %d: bad header %q v%d", addr, prefix[:4], prefix[4])
	}
	count := int(prefix[6]) | int(prefix[7])<<8
	entrySize := 2*cfg.OffsetSize + 8 + 16
	body, err := binary.ReadBlock(r, int64(addr)+8, count*entrySize)
	if err != nil {
		return fmt.Errorf("symbol node at %d: %w", addr, err)
	}

	d := binary.NewDecoder(body, cfg)
	for i := 0; i < count; i++ {
		nameOff := d.Offset()
		sym := Symbol{Address: d.Offset()}
		cache := d.Uint32()
		d.Skip(4)
		scratch := binary.NewDecoder(d.Bytes(16), cfg)
		if d.Err() != nil {
			return fmt.Errorf("symbol node at %d: %w", addr, d.Err())
		}

		if sym.Name, err = names.String(nameOff); err != nil {
			return err
		}
		if cache == 2 {
			if sym.SoftTarget, err = names.String(uint64(scratch.Uint32())); err != nil {
				return err
			}
		}
		*out = append(*out, sym)
	}
	return nil
}

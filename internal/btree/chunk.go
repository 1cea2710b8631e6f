package btree

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
)

// Chunk locates one stored chunk of a dataset.
type Chunk struct {
	Address uint64
	Size    uint32
	// FilterMask has bit i set when filter i was skipped for this chunk.
	FilterMask uint32
	// Offset is the chunk's position in dataset elements, one per dimension.
	Offset []uint64
}

// ReadChunks lists every chunk indexed by the chunk B-tree at addr for a
// dataset of rank dimensions.
func ReadChunks(r io.ReaderAt, cfg binary.Config, addr uint64, rank int) ([]Chunk, error) {
	var out []Chunk
	err := walkChunks(r, cfg, addr, rank, 0, &out)
	return out, err
}

func walkChunks(r io.ReaderAt, cfg binary.Config, addr uint64, rank, depth int, out *[]Chunk) error {
	if depth > maxDepth {
		return fmt.Errorf("chunk B-tree deeper than %d levels", maxDepth)
	}
	// The key ends with an extra offset for the element-size dimension.
	keySize := 8 + 8*(rank+1)
	n, err := readNode(r, cfg, addr, nodeChunk, keySize)
	if err != nil {
		return err
	}
	for i, child := range n.children {
		if n.level > 0 {
			if err := walkChunks(r, cfg, child, rank, depth+1, out); err != nil {
				return err
			}
			continue
		}
		d := binary.NewDecoder(n.keys[i], cfg)
		c := Chunk{Address: child, Size: d.Uint32(), FilterMask: d.Uint32(), Offset: make([]uint64, rank)}
		for j := range c.Offset {
			c.Offset[j] = d.Uint64()
		}
		*out = append(*out, c)
	}
	return nil
}

package layout

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/btree"
	"github.com/robert-malhotra/go-usvol/internal/filter"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

func readChunked(r io.ReaderAt, cfg binary.Config, ds Dataset) ([]byte, error) {
	l := ds.Layout
	dims := ds.Space.Dims
	chunkDims := l.ChunkDims
	// Version 1 and 2 messages count the element dimension in the rank.
	if len(chunkDims) == len(dims)+1 {
		chunkDims = chunkDims[:len(dims)]
	}
	if len(chunkDims) != len(dims) || len(dims) == 0 {
		return nil, fmt.Errorf("chunk rank %d does not match dataset rank %d", len(chunkDims), len(dims))
	}

	elem := uint64(ds.ElementSize)
	chunkBytes := elem
	for _, d := range chunkDims {
		if d == 0 {
			return nil, fmt.Errorf("zero chunk dimension")
		}
		chunkBytes *= d
	}

	out := make([]byte, ds.Size())
	if binary.IsUndefined(l.IndexAddr, cfg.OffsetSize) {
		return out, nil
	}

	var chunks []btree.Chunk
	switch l.Index {
	case message.ChunkIndexBTreeV1:
		var err error
		if chunks, err = btree.ReadChunks(r, cfg, l.IndexAddr, len(dims)); err != nil {
			return nil, err
		}
	case message.ChunkIndexSingle:
		size := chunkBytes
		if l.Flags&message.ChunkSingleIndexWithFilter != 0 {
			size = l.FilteredSize
		}
		chunks = []btree.Chunk{{
			Address:    l.IndexAddr,
			Size:       uint32(size),
			FilterMask: l.FilterMask,
			Offset:     make([]uint64, len(dims)),
		}}
	default:
		return nil, fmt.Errorf("chunk index type %d: %w", l.Index, ErrUnsupported)
	}

	pipeline, err := filter.NewPipeline(ds.Filters, ds.ElementSize)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		raw, err := binary.ReadBlock(r, int64(c.Address), int(c.Size))
		if err != nil {
			return nil, fmt.Errorf("chunk at %v: %w", c.Offset, err)
		}
		data, err := pipeline.Decode(raw, c.FilterMask)
		if err != nil {
			return nil, fmt.Errorf("chunk at %v: %w", c.Offset, err)
		}
		if uint64(len(data)) < chunkBytes {
			return nil, fmt.Errorf("chunk at %v: %d bytes, want %d", c.Offset, len(data), chunkBytes)
		}
		copyChunk(out, data, dims, chunkDims, c.Offset, elem)
	}
	return out, nil
}

// copyChunk places one chunk into the dataset buffer, clipping the parts of
// edge chunks that fall outside the dataset.
func copyChunk(dst, src []byte, dims, chunk, offset []uint64, elem uint64) {
	last := len(dims) - 1
	if offset[last] >= dims[last] {
		return
	}
	row := min(chunk[last], dims[last]-offset[last]) * elem
	dstStride := strides(dims, elem)
	srcStride := strides(chunk, elem)

	idx := make([]uint64, last)
	for {
		inside := true
		var s, d uint64
		for i := range idx {
			if offset[i]+idx[i] >= dims[i] {
				inside = false
				break
			}
			s += idx[i] * srcStride[i]
			d += (offset[i] + idx[i]) * dstStride[i]
		}
		if inside {
			d += offset[last] * elem
			copy(dst[d:d+row], src[s:s+row])
		}

		i := last - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < chunk[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// strides returns the row-major byte stride of each dimension.
func strides(dims []uint64, elem uint64) []uint64 {
	s := make([]uint64, len(dims))
	step := elem
	for i := len(dims) - 1; i >= 0; i-- {
		s[i] = step
		step *= dims[i]
	}
	return s
}

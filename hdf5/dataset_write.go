package hdf5

import (
	"fmt"
	"path"
	"reflect"
	"slices"

	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/dtype"
	"github.com/robert-malhotra/go-usvol/internal/layout"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

// CreateDataset writes data as a new dataset named name in g. data is a
// numeric, bool or string scalar or flat slice; WithDims gives a slice its
// shape. Without filter or chunk options the data is stored contiguously,
// otherwise as a single chunk.
func (g *Group) CreateDataset(name string, data any, opts ...DatasetOption) (*Dataset, error) {
	if err := g.checkNewMember(name); err != nil {
		return nil, err
	}
	o := &datasetOptions{}
	for _, opt := range opts {
		opt(o)
	}
	full := path.Join(g.path, name)

	dt, n, raw, err := dtype.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", full, err)
	}
	dims := o.dims
	if dims == nil && reflect.ValueOf(data).Kind() == reflect.Slice {
		dims = []uint64{uint64(n)}
	}
	if count := product(dims); count != uint64(n) {
		return nil, fmt.Errorf("%s: shape %v holds %d elements, data has %d", full, dims, count, n)
	}

	lay, fp, err := g.file.writeData(raw, dims, dt, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", full, err)
	}
	msgs := []message.Message{message.NewDataspace(dims), dt, message.NewFillValue(), lay}
	if fp != nil {
		msgs = append(msgs, fp)
	}
	seen := make(map[string]bool)
	for _, a := range o.attributes {
		if seen[a.name] {
			return nil, fmt.Errorf("%s: attribute %q: %w", full, a.name, ErrExists)
		}
		seen[a.name] = true
		msg, err := newAttributeMessage(a.name, a.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		msgs = append(msgs, msg)
	}

	hdr, err := g.file.writeHeader(msgs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", full, err)
	}
	if err := g.addLink(message.NewHardLink(name, hdr.Address)); err != nil {
		return nil, err
	}
	return newDataset(g.file, full, hdr)
}

func product(dims []uint64) uint64 {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

// writeData stores raw and returns the layout message and, for filtered
// chunks, the filter pipeline message.
func (f *File) writeData(raw []byte, dims []uint64, dt *message.Datatype, o *datasetOptions) (*message.DataLayout, *message.FilterPipeline, error) {
	if !o.chunked() {
		if len(raw) == 0 {
			return message.NewContiguousLayout(binary.Undefined(f.cfg.OffsetSize), 0), nil, nil
		}
		addr, err := f.writeBlock(raw, "data")
		if err != nil {
			return nil, nil, err
		}
		return message.NewContiguousLayout(addr, uint64(len(raw))), nil, nil
	}

	if len(dims) == 0 || product(dims) == 0 {
		return nil, nil, fmt.Errorf("chunked storage of shape %v: %w", dims, ErrUnsupported)
	}
	if o.chunks != nil && !slices.Equal(o.chunks, dims) {
		return nil, nil, fmt.Errorf("chunk shape %v differs from dataset shape %v: %w", o.chunks, dims, ErrUnsupported)
	}

	fp := &message.FilterPipeline{}
	if o.shuffle {
		fp.Filters = append(fp.Filters, message.FilterInfo{ID: message.FilterShuffle, Flags: 1, ClientData: []uint32{dt.Size}})
	}
	if o.compression > 0 {
		fp.Filters = append(fp.Filters, message.FilterInfo{ID: message.FilterDeflate, Flags: 1, ClientData: []uint32{uint32(o.compression)}})
	}
	if o.fletcher32 {
		fp.Filters = append(fp.Filters, message.FilterInfo{ID: message.FilterFletcher32})
	}
	stored, err := layout.EncodeChunk(raw, fp, int(dt.Size))
	if err != nil {
		return nil, nil, err
	}
	addr, err := f.writeBlock(stored, "chunk")
	if err != nil {
		return nil, nil, err
	}
	filtered := len(fp.Filters) > 0
	lay := message.NewSingleChunkLayout(dims, dt.Size, addr, filtered, uint64(len(stored)))
	if !filtered {
		fp = nil
	}
	return lay, fp, nil
}

package dicom

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-usvol/volume"
)

// PixelArray decodes the native pixel data into an array shaped
// (frames, rows, cols) for multi-frame data and (rows, cols) for a single
// frame, with a trailing samples axis when SamplesPerPixel > 1.
func (ds *Dataset) PixelArray() (*volume.Array, error) {
	rows, err := ds.Int(TagRows)
	if err != nil {
		return nil, err
	}
	cols, err := ds.Int(TagColumns)
	if err != nil {
		return nil, err
	}
	frames, err := ds.intOr(TagNumberOfFrames, 1)
	if err != nil {
		return nil, err
	}
	spp, err := ds.intOr(TagSamplesPerPixel, 1)
	if err != nil {
		return nil, err
	}
	planar, err := ds.intOr(TagPlanarConfiguration, 0)
	if err != nil {
		return nil, err
	}

	n, err := pixelCount([]dimension{
		{TagNumberOfFrames, frames},
		{TagRows, rows},
		{TagColumns, cols},
		{TagSamplesPerPixel, spp},
	})
	if err != nil {
		return nil, err
	}

	shape := []int{rows, cols}
	if frames > 1 {
		shape = append([]int{frames}, shape...)
	}
	if spp > 1 {
		shape = append(shape, spp)
	}

	var data any
	switch e, ok := ds.Element(TagPixelData); {
	case ok && e.Encapsulated():
		return nil, fmt.Errorf("transfer syntax %s: %w", ds.Syntax, ErrCompressedPixelData)
	case ok:
		data, err = ds.integerPixels(e.Value, n)
	default:
		data, err = ds.floatPixels(n)
	}
	if err != nil {
		return nil, err
	}
	if spp > 1 && planar == 1 {
		data = interleave(data, frames, rows*cols, spp)
	}
	return volume.New(shape, data)
}

type dimension struct {
	tag  Tag
	size int
}

// pixelCount multiplies the image dimensions. Every dimension must be
// positive, and the product must leave room for 8-byte samples in an int.
func pixelCount(dims []dimension) (int, error) {
	n := 1
	for _, d := range dims {
		if d.size < 1 {
			return 0, fmt.Errorf("%v is %d: %w", d.tag, d.size, ErrMalformed)
		}
		if n > math.MaxInt/8/d.size {
			return 0, fmt.Errorf("%v of %d overflows the pixel count: %w", d.tag, d.size, ErrMalformed)
		}
		n *= d.size
	}
	return n, nil
}

func (ds *Dataset) integerPixels(b []byte, n int) (any, error) {
	bits, err := ds.Int(TagBitsAllocated)
	if err != nil {
		return nil, err
	}
	signed, err := ds.intOr(TagPixelRepresentation, 0)
	if err != nil {
		return nil, err
	}
	if bits%8 != 0 || bits == 0 || bits > 32 {
		return nil, fmt.Errorf("%d bits allocated: %w", bits, ErrUnsupported)
	}
	size := bits / 8
	if len(b) < n*size {
		return nil, fmt.Errorf("pixel data holds %d bytes, need %d: %w", len(b), n*size, ErrMalformed)
	}
	o := ds.order
	switch {
	case size == 1 && signed == 0:
		return append([]uint8(nil), b[:n]...), nil
	case size == 1:
		return convert(n, func(i int) int8 { return int8(b[i]) }), nil
	case size == 2 && signed == 0:
		return convert(n, func(i int) uint16 { return o.Uint16(b[2*i:]) }), nil
	case size == 2:
		return convert(n, func(i int) int16 { return int16(o.Uint16(b[2*i:])) }), nil
	case size == 4 && signed == 0:
		return convert(n, func(i int) uint32 { return o.Uint32(b[4*i:]) }), nil
	case size == 4:
		return convert(n, func(i int) int32 { return int32(o.Uint32(b[4*i:])) }), nil
	}
	return nil, fmt.Errorf("%d bits allocated: %w", bits, ErrUnsupported)
}

func (ds *Dataset) floatPixels(n int) (any, error) {
	o := ds.order
	if e, ok := ds.Element(TagFloatPixelData); ok {
		if err := checkLen(e, n*4); err != nil {
			return nil, err
		}
		return convert(n, func(i int) float32 { return math.Float32frombits(o.Uint32(e.Value[4*i:])) }), nil
	}
	if e, ok := ds.Element(TagDoubleFloatPixelData); ok {
		if err := checkLen(e, n*8); err != nil {
			return nil, err
		}
		return convert(n, func(i int) float64 { return math.Float64frombits(o.Uint64(e.Value[8*i:])) }), nil
	}
	return nil, fmt.Errorf("%v: %w", TagPixelData, ErrMissingElement)
}

func checkLen(e *Element, want int) error {
	if len(e.Value) < want {
		return fmt.Errorf("%v holds %d bytes, need %d: %w", e.Tag, len(e.Value), want, ErrMalformed)
	}
	return nil
}

func convert[T any](n int, at func(int) T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

// interleave turns planar samples (all of sample 0, then sample 1, ...) of
// each frame into pixel-interleaved order.
func interleave(data any, frames, pixels, spp int) any {
	switch v := data.(type) {
	case []uint8:
		return interleaveSlice(v, frames, pixels, spp)
	case []int8:
		return interleaveSlice(v, frames, pixels, spp)
	case []uint16:
		return interleaveSlice(v, frames, pixels, spp)
	case []int16:
		return interleaveSlice(v, frames, pixels, spp)
	case []uint32:
		return interleaveSlice(v, frames, pixels, spp)
	case []int32:
		return interleaveSlice(v, frames, pixels, spp)
	case []float32:
		return interleaveSlice(v, frames, pixels, spp)
	case []float64:
		return interleaveSlice(v, frames, pixels, spp)
	}
	return data
}

func interleaveSlice[T any](in []T, frames, pixels, spp int) []T {
	out := make([]T, len(in))
	frame := pixels * spp
	for f := 0; f < frames; f++ {
		base := f * frame
		for s := 0; s < spp; s++ {
			for p := 0; p < pixels; p++ {
				out[base+p*spp+s] = in[base+s*pixels+p]
			}
		}
	}
	return out
}

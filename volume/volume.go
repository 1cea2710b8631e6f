// Package volume holds the n-dimensional arrays passed between the loaders,
// the container and the viewer, and the optional voxel spacing that travels
// with them.
package volume

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrShape reports data whose length does not match its shape.
	ErrShape = errors.New("shape does not match data length")
	// ErrElementType reports data that is not a supported numeric slice.
	ErrElementType = errors.New("unsupported element type")
)

// Array is a row-major n-dimensional array. Data is a flat slice of one of
// the numeric element types, e.g. []uint16.
type Array struct {
	Shape []int
	Data  any
}

// New validates data against shape and returns the array.
func New(shape []int, data any) (*Array, error) {
	n, err := length(data)
	if err != nil {
		return nil, err
	}
	want := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension in %v: %w", shape, ErrShape)
		}
		want *= d
	}
	if n != want {
		return nil, fmt.Errorf("shape %v needs %d elements, have %d: %w", shape, want, n, ErrShape)
	}
	return &Array{Shape: append([]int(nil), shape...), Data: data}, nil
}

// FromDims is New for the unsigned dimensions used by the container engine.
func FromDims(dims []uint64, data any) (*Array, error) {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	return New(shape, data)
}

func length(data any) (int, error) {
	switch v := data.(type) {
	case []uint8:
		return len(v), nil
	case []int8:
		return len(v), nil
	case []uint16:
		return len(v), nil
	case []int16:
		return len(v), nil
	case []uint32:
		return len(v), nil
	case []int32:
		return len(v), nil
	case []uint64:
		return len(v), nil
	case []int64:
		return len(v), nil
	case []float32:
		return len(v), nil
	case []float64:
		return len(v), nil
	}
	return 0, fmt.Errorf("%T: %w", data, ErrElementType)
}

// Flat returns the flat element slice.
func (a *Array) Flat() any { return a.Data }

// Len returns the number of elements.
func (a *Array) Len() int {
	n, _ := length(a.Data)
	return n
}

// DType names the element type, e.g. "uint16".
func (a *Array) DType() string {
	return reflect.TypeOf(a.Data).Elem().Kind().String()
}

// Dims returns the shape as unsigned dimensions.
func (a *Array) Dims() []uint64 {
	dims := make([]uint64, len(a.Shape))
	for i, d := range a.Shape {
		dims[i] = uint64(d)
	}
	return dims
}

// Float64s copies the elements into a float64 slice.
func (a *Array) Float64s() []float64 {
	v := reflect.ValueOf(a.Data)
	out := make([]float64, v.Len())
	for i := range out {
		e := v.Index(i)
		switch {
		case e.CanInt():
			out[i] = float64(e.Int())
		case e.CanUint():
			out[i] = float64(e.Uint())
		default:
			out[i] = e.Float()
		}
	}
	return out
}

// Range returns the smallest and largest element. An empty array returns
// NaN for both.
func (a *Array) Range() (lo, hi float64) {
	v := a.Float64s()
	if len(v) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(v), floats.Max(v)
}

// Equal reports whether a and b have the same shape, element type and
// bit-identical elements.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !reflect.DeepEqual(a.Shape, b.Shape) || reflect.TypeOf(a.Data) != reflect.TypeOf(b.Data) {
		return false
	}
	switch x := a.Data.(type) {
	case []float32:
		y := b.Data.([]float32)
		for i := range x {
			if math.Float32bits(x[i]) != math.Float32bits(y[i]) {
				return false
			}
		}
		return len(x) == len(y)
	case []float64:
		y := b.Data.([]float64)
		for i := range x {
			if math.Float64bits(x[i]) != math.Float64bits(y[i]) {
				return false
			}
		}
		return len(x) == len(y)
	}
	return reflect.DeepEqual(a.Data, b.Data)
}

func (a *Array) String() string {
	return fmt.Sprintf("%s%v", a.DType(), a.Shape)
}

package hdf5

import (
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-usvol/internal/dtype"
	"github.com/robert-malhotra/go-usvol/internal/message"
	"github.com/robert-malhotra/go-usvol/internal/object"
)

// Attribute is a small named value attached to a group or dataset.
type Attribute struct {
	file *File
	msg  *message.Attribute
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.msg.Name }

// Shape returns the dimensions; a scalar attribute has none.
func (a *Attribute) Shape() []uint64 {
	if a.msg.Dataspace == nil {
		return nil
	}
	return append([]uint64(nil), a.msg.Dataspace.Dims...)
}

// IsScalar reports a scalar attribute.
func (a *Attribute) IsScalar() bool {
	return a.msg.Dataspace == nil || a.msg.Dataspace.IsScalar()
}

// Datatype describes the element type.
func (a *Attribute) Datatype() string { return a.msg.Datatype.String() }

// ReadArray returns every element as a typed slice.
func (a *Attribute) ReadArray() (any, error) {
	n := 1
	if a.msg.Dataspace != nil {
		n = int(a.msg.Dataspace.NumElements())
	}
	v, err := dtype.Decode(a.msg.Datatype, a.msg.Data, n, a.file.cfg, a.file.strs)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", a.msg.Name, err)
	}
	return v, nil
}

// Value returns the element of a scalar attribute, or the slice of a
// non-scalar one.
func (a *Attribute) Value() (any, error) {
	v, err := a.ReadArray()
	if err != nil || !a.IsScalar() {
		return v, err
	}
	rv := reflect.ValueOf(v)
	if rv.Len() != 1 {
		return v, nil
	}
	return rv.Index(0).Interface(), nil
}

// Read stores every element in dest, a pointer to a slice.
func (a *Attribute) Read(dest any) error {
	v, err := a.ReadArray()
	if err != nil {
		return err
	}
	return dtype.Assign(dest, v)
}

// ReadFloat64 reads a numeric attribute as float64.
func (a *Attribute) ReadFloat64() ([]float64, error) {
	var out []float64
	if err := a.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadString reads a string attribute.
func (a *Attribute) ReadString() ([]string, error) {
	var out []string
	if err := a.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadScalarFloat64 reads a one-element numeric attribute.
func (a *Attribute) ReadScalarFloat64() (float64, error) {
	v, err := a.ReadFloat64()
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("attribute %q has %d elements, want 1", a.msg.Name, len(v))
	}
	return v[0], nil
}

// ReadScalarString reads a one-element string attribute.
func (a *Attribute) ReadScalarString() (string, error) {
	v, err := a.ReadString()
	if err != nil {
		return "", err
	}
	if len(v) != 1 {
		return "", fmt.Errorf("attribute %q has %d elements, want 1", a.msg.Name, len(v))
	}
	return v[0], nil
}

func attrNames(hdr *object.Header) []string {
	var out []string
	for _, a := range hdr.Attributes() {
		out = append(out, a.Name)
	}
	return out
}

func lookupAttr(f *File, hdr *object.Header, name string) (*Attribute, bool) {
	for _, a := range hdr.Attributes() {
		if a.Name == name {
			return &Attribute{file: f, msg: a}, true
		}
	}
	return nil, false
}

// newAttributeMessage encodes value as a scalar attribute, or as a
// one-dimensional one when value is a slice.
func newAttributeMessage(name string, value any) (*message.Attribute, error) {
	if name == "" {
		return nil, fmt.Errorf("empty attribute name: %w", ErrInvalidPath)
	}
	dt, n, data, err := dtype.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", name, err)
	}
	space := message.NewScalarDataspace()
	if reflect.ValueOf(value).Kind() == reflect.Slice {
		space = message.NewDataspace([]uint64{uint64(n)})
	}
	return &message.Attribute{Name: name, Datatype: dt, Dataspace: space, Data: data}, nil
}

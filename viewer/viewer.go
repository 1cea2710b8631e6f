// Package viewer describes the host image viewer the loaders feed: the
// layers it holds and the (data, metadata, kind) tuples readers hand back.
package viewer

import "github.com/robert-malhotra/go-usvol/volume"

// KindImage is the only layer kind the loaders produce.
const KindImage = "image"

// Side is the hemisphere a dataset belongs to.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Sides lists the sides in storage order.
var Sides = []Side{Left, Right}

// Valid reports whether s is left or right.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// Layer is one layer held by the viewer.
type Layer struct {
	Name string
	Data *volume.Array
	Kind string
}

// Viewer is the part of the host viewer the composite save reads.
type Viewer interface {
	Layers() []Layer
}

// Meta is the presentation metadata of a layer. Colormap empty means the
// host default.
type Meta struct {
	Name     string  `yaml:"name"`
	Opacity  float64 `yaml:"opacity"`
	Visible  bool    `yaml:"visible"`
	Colormap string  `yaml:"colormap,omitempty"`
}

// DefaultMeta returns the metadata the host applies when a reader sets only
// the name.
func DefaultMeta(name string) Meta {
	return Meta{Name: name, Opacity: 1, Visible: true}
}

// LayerData is what a reader returns for one layer.
type LayerData struct {
	Data *volume.Array
	Meta Meta
	Kind string
}

// NewImage returns an image layer tuple with default presentation.
func NewImage(name string, data *volume.Array) LayerData {
	return LayerData{Data: data, Meta: DefaultMeta(name), Kind: KindImage}
}

// Stack is an in-memory Viewer.
type Stack struct {
	layers []Layer
}

// Add appends an image layer and returns it.
func (s *Stack) Add(name string, data *volume.Array) Layer {
	l := Layer{Name: name, Data: data, Kind: KindImage}
	s.layers = append(s.layers, l)
	return l
}

// AddLayers appends the tuples a reader returned.
func (s *Stack) AddLayers(layers []LayerData) {
	for _, l := range layers {
		s.layers = append(s.layers, Layer{Name: l.Meta.Name, Data: l.Data, Kind: l.Kind})
	}
}

// Layers implements Viewer.
func (s *Stack) Layers() []Layer {
	return append([]Layer(nil), s.layers...)
}

// Find returns the first layer named name.
func (s *Stack) Find(name string) (Layer, bool) {
	for _, l := range s.layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

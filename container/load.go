package container

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/robert-malhotra/go-usvol/hdf5"
	"github.com/robert-malhotra/go-usvol/viewer"
	"github.com/robert-malhotra/go-usvol/volume"
)

// AttrPixelSpacing is the optional metadata entry holding the voxel size.
const AttrPixelSpacing = "pixel_spacing"

// Attributes are the metadata of a dataset: scalar attributes hold the
// element itself, others the slice.
type Attributes map[string]any

// Float64 returns a numeric scalar attribute as float64. It reports false
// when the key is absent or not a numeric scalar.
func (a Attributes) Float64(key string) (float64, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}

// String returns a string scalar attribute.
func (a Attributes) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// Spacing returns the pixel_spacing attribute, reporting false when it is
// absent.
func (a Attributes) Spacing() (volume.Spacing, bool) {
	v, ok := a.Float64(AttrPixelSpacing)
	if !ok {
		return volume.NoSpacing, false
	}
	return volume.Isotropic(v), true
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReadDataset reads dataset name of the container path, with all its
// attributes. The array keeps the stored element type.
func ReadDataset(path, name string) (*volume.Array, Attributes, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	ds, err := f.OpenDataset(name)
	if err != nil {
		return nil, nil, err
	}
	arr, err := readArray(ds)
	if err != nil {
		return nil, nil, err
	}
	attrs, err := readAttributes(ds)
	if err != nil {
		return nil, nil, err
	}
	diagf("Loaded %s from %s: %s", name, path, arr)
	return arr, attrs, nil
}

func readArray(ds *hdf5.Dataset) (*volume.Array, error) {
	data, err := ds.ReadArray()
	if err != nil {
		return nil, err
	}
	arr, err := volume.FromDims(ds.Shape(), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Path(), err)
	}
	return arr, nil
}

func readAttributes(ds *hdf5.Dataset) (Attributes, error) {
	attrs := make(Attributes)
	for _, name := range ds.Attrs() {
		a, _ := ds.LookupAttr(name)
		v, err := a.Value()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Path(), err)
		}
		attrs[name] = v
	}
	return attrs, nil
}

// ReadLayers returns one image layer per dataset of the left group, then
// the right group, named "{side}.{dataset}". Missing groups are skipped.
func ReadLayers(path string) ([]viewer.LayerData, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var layers []viewer.LayerData
	for _, side := range viewer.Sides {
		ok, err := f.Root().Has(string(side))
		if err != nil {
			return nil, err
		}
		if !ok {
			diagf("%s has no %s group", path, side)
			continue
		}
		g, err := f.Root().OpenGroup(string(side))
		if err != nil {
			return nil, err
		}
		names, err := g.Members()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			ds, err := g.OpenDataset(name)
			if err != nil {
				return nil, err
			}
			arr, err := readArray(ds)
			if err != nil {
				return nil, err
			}
			label := Label{Side: side, Role: name}
			layers = append(layers, viewer.NewImage(label.String(), arr))
		}
	}
	return layers, nil
}

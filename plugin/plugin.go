// Package plugin exposes the loaders to a host viewer: a reader probe that
// picks a reader for a path and a registry of sample datasets.
package plugin

import (
	"path/filepath"
	"strings"

	"github.com/robert-malhotra/go-usvol/container"
	"github.com/robert-malhotra/go-usvol/dicom"
	"github.com/robert-malhotra/go-usvol/display"
	"github.com/robert-malhotra/go-usvol/viewer"
)

// ReaderFunc reads a path into layer tuples.
type ReaderFunc func(path string) ([]viewer.LayerData, error)

// GetReader returns the reader able to read path, or nil. path is a string
// or a list of strings; lists are never accepted because stacking several
// files into one volume is not supported.
func GetReader(path any) ReaderFunc {
	p, ok := path.(string)
	if !ok {
		return nil
	}
	switch {
	case strings.HasSuffix(p, ".dcm"):
		return ReadDICOMImage
	case strings.HasSuffix(p, ".h5"), strings.HasSuffix(p, ".hdf5"):
		return ReadContainerLayers
	}
	return nil
}

// ReadDICOMImage returns the pixel array of a DICOM file as one image layer
// named after the file stem.
func ReadDICOMImage(path string) ([]viewer.LayerData, error) {
	ds, err := dicom.ParseFile(path)
	if err != nil {
		return nil, err
	}
	arr, err := ds.PixelArray()
	if err != nil {
		return nil, err
	}
	return []viewer.LayerData{viewer.NewImage(stem(path), arr)}, nil
}

// ReadContainerLayers returns the segmentation stages of a saved container
// presented with the built-in display policy.
func ReadContainerLayers(path string) ([]viewer.LayerData, error) {
	return readWithPolicy(path, display.Builtin())
}

func readWithPolicy(path string, p *display.Policy) ([]viewer.LayerData, error) {
	layers, err := container.ReadLayers(path)
	if err != nil {
		return nil, err
	}
	return p.Apply(layers), nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

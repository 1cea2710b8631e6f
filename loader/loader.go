// Package loader turns an input path into a volume and its voxel spacing,
// whatever the file format.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/robert-malhotra/go-usvol/container"
	"github.com/robert-malhotra/go-usvol/dicom"
	"github.com/robert-malhotra/go-usvol/hdf5"
	"github.com/robert-malhotra/go-usvol/volume"
)

var (
	// ErrUnrecognizedFormat is returned for paths whose extension is not
	// .dcm, .h5 or .hdf5.
	ErrUnrecognizedFormat = errors.New("unknown image format, must be .dcm or .h5/.hdf5")

	// ErrMissingDataset is returned for containers holding neither of the
	// raw image keys.
	ErrMissingDataset = errors.New("no 'raw' or 'raw_rescaled' dataset found")
)

// Dataset keys tried in order in HDF5 inputs.
const (
	KeyRaw         = "raw"
	KeyRawRescaled = "raw_rescaled"
)

// Format is the resolved kind of an input.
type Format int

const (
	FormatUnsupported Format = iota
	FormatDICOM
	FormatHDF5Raw
	FormatHDF5RawRescaled
)

func (f Format) String() string {
	switch f {
	case FormatDICOM:
		return "dicom"
	case FormatHDF5Raw:
		return "hdf5:" + KeyRaw
	case FormatHDF5RawRescaled:
		return "hdf5:" + KeyRawRescaled
	}
	return "unsupported"
}

// Source is a resolved input: the file, its format and, for containers, the
// dataset holding the image.
type Source struct {
	Path    string
	Format  Format
	Dataset string
}

// Resolve decides how path is read. Extensions match exactly, so ".DCM" is
// not a DICOM input. Containers are opened to find the image dataset.
func Resolve(path string) (Source, error) {
	switch filepath.Ext(path) {
	case ".dcm":
		return Source{Path: path, Format: FormatDICOM}, nil
	case ".h5", ".hdf5":
		return resolveContainer(path)
	}
	return Source{Path: path}, fmt.Errorf("%s: %w", path, ErrUnrecognizedFormat)
}

func resolveContainer(path string) (Source, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return Source{}, err
	}
	defer f.Close()
	keys, err := f.Root().Members()
	if err != nil {
		return Source{}, err
	}
	switch {
	case slices.Contains(keys, KeyRaw):
		return Source{Path: path, Format: FormatHDF5Raw, Dataset: KeyRaw}, nil
	case slices.Contains(keys, KeyRawRescaled):
		return Source{Path: path, Format: FormatHDF5RawRescaled, Dataset: KeyRawRescaled}, nil
	}
	return Source{}, fmt.Errorf("%s: %w", path, ErrMissingDataset)
}

// Load reads the volume described by src. The returned array always
// satisfies the volume shape contract; an input that does not panics.
func (src Source) Load() (*volume.Array, volume.Spacing, error) {
	var (
		arr     *volume.Array
		spacing volume.Spacing
	)
	switch src.Format {
	case FormatDICOM:
		a, x, err := dicom.LoadDataset(src.Path)
		if err != nil {
			return nil, volume.NoSpacing, err
		}
		arr, spacing = a, volume.Isotropic(x)
	case FormatHDF5Raw, FormatHDF5RawRescaled:
		a, attrs, err := container.ReadDataset(src.Path, src.Dataset)
		if err != nil {
			return nil, volume.NoSpacing, err
		}
		s, ok := attrs.Spacing()
		if !ok {
			opsf("no pixel spacing value saved, assuming the image was already rescaled (%s)", src.Path)
		}
		arr, spacing = a, s
	default:
		return nil, volume.NoSpacing, fmt.Errorf("%s: %w", src.Path, ErrUnrecognizedFormat)
	}
	diagf("loaded %s as %s: %s, spacing %s", src.Path, src.Format, arr, spacing)
	volume.MustBeVolume(arr)
	return arr, spacing, nil
}

// LoadInputImage reads the image at path: a DICOM file, or the "raw" (else
// "raw_rescaled") dataset of an HDF5 container. The spacing comes from the
// DICOM header or the dataset's pixel_spacing attribute and is absent when
// the container does not record one.
func LoadInputImage(path string) (*volume.Array, volume.Spacing, error) {
	src, err := Resolve(path)
	if err != nil {
		return nil, volume.NoSpacing, err
	}
	return src.Load()
}

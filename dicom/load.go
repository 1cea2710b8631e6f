package dicom

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/volume"
)

// LoadDataset reads the pixel array of the DICOM file path and its voxel
// spacing. PixelSpacing gives x and y, SpacingBetweenSlices gives z; x is
// returned. Unequal spacings are logged and otherwise ignored.
func LoadDataset(path string) (*volume.Array, float64, error) {
	ds, err := ParseFile(path)
	if err != nil {
		return nil, 0, err
	}
	arr, err := ds.PixelArray()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	xy, err := ds.Float64s(TagPixelSpacing)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	if len(xy) < 2 {
		return nil, 0, fmt.Errorf("%s: %v has %d values, want 2: %w", path, TagPixelSpacing, len(xy), ErrMissingElement)
	}
	z, err := ds.Float64(TagSpacingBetweenSlices)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	x, y := xy[0], xy[1]
	if x != y || x != z {
		opsf("pixel spacing of %s is not equal: %v, %v, %v", path, x, y, z)
	}
	diagf("loaded %s: %s, spacing %v", path, arr, x)
	return arr, x, nil
}

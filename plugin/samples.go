package plugin

import (
	"path/filepath"

	"github.com/robert-malhotra/go-usvol/config"
	"github.com/robert-malhotra/go-usvol/dicom"
	"github.com/robert-malhotra/go-usvol/display"
	"github.com/robert-malhotra/go-usvol/viewer"
)

// Sample is one entry of the sample-data menu. Exactly one of Path and Load
// is set: a file the host opens with its readers, or a function producing
// the layers.
type Sample struct {
	Name string
	Path string
	Load func() ([]viewer.LayerData, error)
}

// Sample file names inside the sample data directory.
const (
	RawSampleFile       = "A01_130417_raw.hdf5"
	SegmentedSampleFile = "xxx_segmented.hdf5"
)

// Samples lists the sample datasets found through cfg.
func Samples(cfg config.Config) []Sample {
	dir := config.ExpandHome(cfg.SampleDataDir)
	return []Sample{
		{
			Name: "Sample Dicom Image",
			Load: func() ([]viewer.LayerData, error) { return loadSampleDICOM(config.ExpandHome(cfg.SampleDICOM)) },
		},
		{
			Name: "Follicle_Ultrasounds_Raw",
			Path: filepath.Join(dir, RawSampleFile),
		},
		{
			Name: "Follicle_Ultrasounds_All",
			Load: func() ([]viewer.LayerData, error) {
				p, err := display.Load(cfg.DisplayPolicy)
				if err != nil {
					return nil, err
				}
				return readWithPolicy(filepath.Join(dir, SegmentedSampleFile), p)
			},
		},
	}
}

// loadSampleDICOM shows one image twice, as the left and the right side.
func loadSampleDICOM(path string) ([]viewer.LayerData, error) {
	ds, err := dicom.ParseFile(path)
	if err != nil {
		return nil, err
	}
	arr, err := ds.PixelArray()
	if err != nil {
		return nil, err
	}
	return []viewer.LayerData{
		viewer.NewImage(string(viewer.Left), arr),
		viewer.NewImage(string(viewer.Right), arr),
	}, nil
}

// Package container saves ultrasound volumes, segmentation stages and
// measurement tables into HDF5 containers and reads them back, either as
// arrays with their metadata or as viewer layers.
//
// A container produced by SaveViewer holds the groups "left" and "right",
// one DEFLATE-compressed dataset per segmentation stage in each, and a
// "measurements" table at the top level.
package container

import "errors"

var (
	// ErrDestinationExists is returned by SaveViewer when the destination
	// file is already present. The file is left untouched.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrUnsupportedDataset is returned by SaveDataset for values that are
	// neither arrays nor tables.
	ErrUnsupportedDataset = errors.New("unsupported dataset type")
)

// Package hdf5 reads and writes the subset of HDF5 needed to store
// ultrasound volumes: groups, numeric and string datasets, and attributes.
//
// Files are read with Open. Create, OpenReadWrite and OpenAppend return a
// writable file whose new objects are committed by Close.
package hdf5

import (
	"errors"

	"github.com/robert-malhotra/go-usvol/internal/superblock"
)

var (
	ErrNotHDF5     = superblock.ErrNotHDF5
	ErrNotFound    = errors.New("object not found")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrNotGroup    = errors.New("object is not a group")
	ErrExists      = errors.New("object already exists")
	ErrUnsupported = errors.New("unsupported feature")
	ErrInvalidPath = errors.New("invalid path")
	ErrClosed      = errors.New("file is closed")
	ErrReadOnly    = errors.New("file is not writable")
	ErrLinkDepth   = errors.New("maximum link depth exceeded")
)

// MaxLinkDepth bounds the soft links followed while resolving one path.
const MaxLinkDepth = 100

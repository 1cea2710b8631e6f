// Package dicom reads the subset of DICOM Part 10 files the ultrasound
// loaders need: the file meta group, the uncompressed transfer syntaxes and
// the native pixel data, plus the handful of attributes describing it.
package dicom

import "errors"

var (
	// ErrNotDICOM is returned when the preamble is not followed by "DICM".
	ErrNotDICOM = errors.New("not a DICOM file")

	// ErrMissingElement is returned when a required element is absent.
	ErrMissingElement = errors.New("missing element")

	// ErrCompressedPixelData is returned for encapsulated pixel data.
	ErrCompressedPixelData = errors.New("compressed pixel data is not supported")

	// ErrMalformed is returned for truncated or inconsistent element encodings.
	ErrMalformed = errors.New("malformed data element")

	// ErrUnsupported is returned for valid encodings this package cannot decode.
	ErrUnsupported = errors.New("unsupported encoding")
)

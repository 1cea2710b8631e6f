// Package object reads HDF5 object headers (versions 1 and 2, including
// continuation blocks) and encodes the single-chunk version 2 headers used
// for every object this module writes.
package object

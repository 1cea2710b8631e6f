// Package superblock locates and decodes the HDF5 superblock, and encodes
// the version 2/3 superblock used for files this module writes.
//
// The signature is searched at offsets 0, 512, 1024 and 2048. Versions 0 and
// 1 point at the root group through a symbol table entry whose scratch pad
// carries the root B-tree and local heap addresses; versions 2 and 3 point
// directly at the root object header and are protected by a lookup3
// checksum.
package superblock

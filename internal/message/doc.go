// Package message decodes and encodes the header messages stored in HDF5
// object headers.
//
// Decoding covers the messages needed to navigate groups and read numeric
// and string datasets and attributes. Encoding covers the subset this module
// writes: dataspace v2, datatype v1 (fixed, float, fixed string), fill value
// v3, link v1, link info v0, group info v0, filter pipeline v2, attribute v3
// and data layout v3 (contiguous) or v4 (single chunk).
package message

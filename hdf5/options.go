package hdf5

// FileOption configures Create.
type FileOption func(*fileOptions)

type fileOptions struct {
	offsetSize int
	lengthSize int
	exclusive  bool
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{offsetSize: 8, lengthSize: 8}
}

// WithOffsetSize sets the width of file addresses (2, 4 or 8 bytes).
func WithOffsetSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.offsetSize = size
		}
	}
}

// WithLengthSize sets the width of lengths (2, 4 or 8 bytes).
func WithLengthSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.lengthSize = size
		}
	}
}

// WithExclusive makes Create fail when the file already exists.
func WithExclusive() FileOption {
	return func(o *fileOptions) { o.exclusive = true }
}

// DatasetOption configures CreateDataset.
type DatasetOption func(*datasetOptions)

type attrDef struct {
	name  string
	value any
}

type datasetOptions struct {
	dims        []uint64
	chunks      []uint64
	compression int
	shuffle     bool
	fletcher32  bool
	attributes  []attrDef
}

// chunked reports whether the dataset needs chunked storage.
func (o *datasetOptions) chunked() bool {
	return o.chunks != nil || o.compression > 0 || o.shuffle || o.fletcher32
}

// WithDims gives the shape of a flat slice. Without it a slice is stored as
// one dimension and a scalar as a scalar dataset.
func WithDims(dims ...uint64) DatasetOption {
	return func(o *datasetOptions) { o.dims = dims }
}

// WithChunks requests chunked storage. The writer stores the whole dataset as
// one chunk, so dims must equal the dataset shape.
func WithChunks(dims ...uint64) DatasetOption {
	return func(o *datasetOptions) { o.chunks = dims }
}

// WithCompression enables DEFLATE at level 1-9; 0 disables it.
func WithCompression(level int) DatasetOption {
	return func(o *datasetOptions) {
		if level >= 0 && level <= 9 {
			o.compression = level
		}
	}
}

// WithShuffle enables the byte shuffle filter ahead of compression.
func WithShuffle() DatasetOption {
	return func(o *datasetOptions) { o.shuffle = true }
}

// WithFletcher32 appends a checksum to the stored chunk.
func WithFletcher32() DatasetOption {
	return func(o *datasetOptions) { o.fletcher32 = true }
}

// WithAttribute attaches an attribute. Values may be numeric or string
// scalars or slices.
func WithAttribute(name string, value any) DatasetOption {
	return func(o *datasetOptions) {
		o.attributes = append(o.attributes, attrDef{name: name, value: value})
	}
}

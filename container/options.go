package container

import "time"

// DefaultCompression is the DEFLATE level of saved arrays.
const DefaultCompression = 9

// SaveOption configures the save functions.
type SaveOption func(*saveOptions)

type saveOptions struct {
	compression int
	resultsDir  string
	now         func() time.Time
}

func newSaveOptions(opts []SaveOption) *saveOptions {
	o := &saveOptions{compression: DefaultCompression, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCompression sets the DEFLATE level, 0 to 9; 0 stores arrays
// uncompressed.
func WithCompression(level int) SaveOption {
	return func(o *saveOptions) {
		if level >= 0 && level <= 9 {
			o.compression = level
		}
	}
}

// WithResultsDir names the results directory. SaveViewer creates it when
// the destination lives directly inside it.
func WithResultsDir(dir string) SaveOption {
	return func(o *saveOptions) { o.resultsDir = dir }
}

// WithClock replaces the clock stamping the "created" attribute.
func WithClock(now func() time.Time) SaveOption {
	return func(o *saveOptions) { o.now = now }
}

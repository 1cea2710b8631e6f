package loader

import (
	"io"
	"log"
	"os"
)

var (
	opsLogger  *log.Logger
	diagLogger *log.Logger
)

func init() {
	SetLogWriters(os.Stderr, nil)
}

// SetLogWriters configures the logging streams of the loader package.
// Pass nil for either writer to disable that stream.
func SetLogWriters(ops, diag io.Writer) {
	opsLogger = newLogger("[loader] ", ops)
	diagLogger = newLogger("[loader] ", diag)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// opsf logs to the ops stream (warnings about the input being loaded).
func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

// diagf logs to the diag stream (format resolution).
func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

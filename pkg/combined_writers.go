package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter tees every write to all underlying writers, collecting
// the individual write errors with multierr instead of stopping at the
// first. The logger uses it to write to stdout and the log file at once.
type CombinedWriter struct {
	Writers []io.Writer
	Err     error
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

func (cw CombinedWriter) Write(p []byte) (n int, err error) {
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Combine(err, werr)
			continue
		}
		n += written
	}
	return n, err
}

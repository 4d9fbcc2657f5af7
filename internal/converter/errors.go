package converter

import (
	"errors"
	"fmt"
)

// ErrRowMismatch indicates a workbook whose rows differ from its source file.
var ErrRowMismatch = errors.New("workbook does not match input")

// FileAccessError reports an input that cannot be read or an output that
// cannot be written.
type FileAccessError struct {
	Op   string // "open input", "read input", "create output", "write output"
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

func newFileAccessError(op, path string, err error) *FileAccessError {
	return &FileAccessError{Op: op, Path: path, Err: err}
}

// IsFileAccess reports whether err is, or wraps, a FileAccessError.
func IsFileAccess(err error) bool {
	var fae *FileAccessError
	return errors.As(err, &fae)
}

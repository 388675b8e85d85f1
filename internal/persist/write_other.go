//go:build !unix

package persist

import (
	"fmt"
	"os"
)

// WriteFile falls back to os.File on platforms without raw descriptor calls.
func WriteFile(path string, data []byte, perm uint32) (err error) {
	if path == "" {
		return &Error{Op: "open", Path: path, Err: fmt.Errorf("path cannot be empty")}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(perm))
	if err != nil {
		return &Error{Op: "open", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &Error{Op: "close", Path: path, Err: cerr}
		}
	}()

	n, err := f.Write(data)
	if err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	if n != len(data) {
		return &Error{Op: "write", Path: path, Err: fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(data))}
	}

	if err := f.Sync(); err != nil {
		return &Error{Op: "fsync", Path: path, Err: err}
	}

	return nil
}

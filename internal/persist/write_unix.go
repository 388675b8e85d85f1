//go:build unix

package persist

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// WriteFile creates or truncates path, writes data with a single write(2),
// fsyncs the descriptor and closes it. perm only applies when the file is
// created; an existing file keeps its owner and mode.
//
// Descriptors that cannot be synced (character devices, pipes) report
// EINVAL or ENOTSUP from fsync; the write is still considered complete.
func WriteFile(path string, data []byte, perm uint32) (err error) {
	if path == "" {
		return &Error{Op: "open", Path: path, Err: fmt.Errorf("path cannot be empty")}
	}

	fd, err := openFile(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, perm)
	if err != nil {
		return &Error{Op: "open", Path: path, Err: err}
	}
	defer func() {
		if cerr := unix.Close(fd); cerr != nil && err == nil {
			err = &Error{Op: "close", Path: path, Err: cerr}
		}
	}()

	n, err := writeFD(fd, data)
	if err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	if n != len(data) {
		return &Error{Op: "write", Path: path, Err: fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(data))}
	}

	if err := syncFD(fd); err != nil && !unsyncable(err) {
		return &Error{Op: "fsync", Path: path, Err: err}
	}

	return nil
}

// unsyncable reports whether err means the descriptor has no stable storage
// behind it.
func unsyncable(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP)
}

// Seams for tests.
var (
	openFile = unix.Open
	writeFD  = unix.Write
	syncFD   = unix.Fsync
)

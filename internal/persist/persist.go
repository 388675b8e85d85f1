// Package persist implements the io exercise: write a buffer to a file with
// raw descriptor calls and force it to stable storage before closing.
package persist

import (
	"errors"
	"fmt"
)

// Greeting is the payload written by the io command.
const Greeting = "hello world\n"

// DefaultMode grants read and write to the owner only.
const DefaultMode uint32 = 0o600

// ErrShortWrite reports that the kernel accepted fewer bytes than requested.
var ErrShortWrite = errors.New("short write")

// Error records the failed step and the path it failed on.
type Error struct {
	Op   string // "open", "write", "fsync", "close"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WriteGreeting writes Greeting to path with DefaultMode.
func WriteGreeting(path string) error {
	return WriteFile(path, []byte(Greeting), DefaultMode)
}

// Package rlimit caps the resources the current process may consume.
package rlimit

import "errors"

// ErrUnsupported is returned on platforms without setrlimit(2).
var ErrUnsupported = errors.New("resource limits not supported on this platform")

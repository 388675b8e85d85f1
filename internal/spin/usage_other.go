//go:build !unix

package spin

import "errors"

// Usage is not available on this platform.
func Usage() (CPUTime, error) {
	return CPUTime{}, errors.New("resource usage not supported on this platform")
}

//go:build unix

package spin

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Usage reports the user and system CPU time consumed by this process.
func Usage() (CPUTime, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return CPUTime{}, fmt.Errorf("failed to read resource usage: %w", err)
	}
	return CPUTime{
		User:   time.Duration(ru.Utime.Nano()),
		System: time.Duration(ru.Stime.Nano()),
	}, nil
}

//go:build linux || darwin

package rlimit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LimitCPU lowers the soft RLIMIT_CPU of the calling process to seconds.
// Once the process has used that much CPU time the kernel sends SIGXCPU.
// The hard limit is left alone so the soft limit can be raised again.
// Zero is a no-op.
func LimitCPU(seconds uint64) error {
	if seconds == 0 {
		return nil
	}

	var cur unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CPU, &cur); err != nil {
		return fmt.Errorf("failed to read RLIMIT_CPU: %w", err)
	}
	if cur.Max != unix.RLIM_INFINITY && seconds > cur.Max {
		return fmt.Errorf("cpu limit %ds exceeds hard limit %ds", seconds, cur.Max)
	}

	rlim := unix.Rlimit{Cur: seconds, Max: cur.Max}
	if err := unix.Setrlimit(unix.RLIMIT_CPU, &rlim); err != nil {
		return fmt.Errorf("failed to set RLIMIT_CPU: %w", err)
	}
	return nil
}

// CPU returns the current soft and hard RLIMIT_CPU in seconds.
func CPU() (soft, hard uint64, err error) {
	var cur unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CPU, &cur); err != nil {
		return 0, 0, fmt.Errorf("failed to read RLIMIT_CPU: %w", err)
	}
	return cur.Cur, cur.Max, nil
}

//go:build !linux && !darwin

package rlimit

// LimitCPU is a no-op for zero and unsupported otherwise.
func LimitCPU(seconds uint64) error {
	if seconds == 0 {
		return nil
	}
	return ErrUnsupported
}

// CPU is unsupported on this platform.
func CPU() (soft, hard uint64, err error) {
	return 0, 0, ErrUnsupported
}

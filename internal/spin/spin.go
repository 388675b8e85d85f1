// Package spin provides the delay primitive used by the cpu exercise.
//
// The default implementation busy-waits on the wall clock so the calling
// process stays runnable for the whole interval, which is what makes the
// cpu program a useful workload for watching the scheduler.
package spin

import (
	"context"
	"fmt"
	"time"
)

// Spinner suspends the caller for approximately d.
type Spinner interface {
	Spin(ctx context.Context, d time.Duration) error
}

// Mode selects a Spinner implementation.
type Mode string

const (
	ModeBusy  Mode = "busy"
	ModeSleep Mode = "sleep"
)

// New returns the Spinner for mode.
func New(mode Mode) (Spinner, error) {
	switch mode {
	case ModeBusy, "":
		return Busy{}, nil
	case ModeSleep:
		return Sleep{}, nil
	default:
		return nil, fmt.Errorf("unknown spin mode: %s", mode)
	}
}

// Busy spins on the CPU until the deadline passes.
type Busy struct{}

// Spin loops on time.Since until d has elapsed or ctx is done.
func (Busy) Spin(ctx context.Context, d time.Duration) error {
	start := time.Now()
	done := ctx.Done()
	for time.Since(start) < d {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
	}
	return nil
}

// Sleep parks the goroutine on a timer.
type Sleep struct{}

func (Sleep) Spin(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Spin busy-waits for d using the default spinner.
func Spin(ctx context.Context, d time.Duration) error {
	return Busy{}.Spin(ctx, d)
}

// Seconds busy-waits for n whole seconds.
func Seconds(ctx context.Context, n int) error {
	return Spin(ctx, time.Duration(n)*time.Second)
}

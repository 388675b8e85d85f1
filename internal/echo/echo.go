// Package echo implements the cpu exercise: print the arguments, spin, repeat.
package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/MathNerdGamer/OSTEP/internal/spin"
)

// DefaultInterval is the pause between two printed lines.
const DefaultInterval = time.Second

// ErrNoArgs is returned when there is nothing to echo.
var ErrNoArgs = errors.New("no arguments to echo")

// Line joins args with single spaces and terminates the result with a newline.
func Line(args []string) string {
	return strings.Join(args, " ") + "\n"
}

// Stats summarizes a finished run.
type Stats struct {
	Iterations int
	Elapsed    time.Duration
}

// Loop prints the same line forever, spinning for Interval between lines.
type Loop struct {
	Out      io.Writer
	Spinner  spin.Spinner
	Interval time.Duration
	// MaxIterations stops the loop after that many lines. Zero means never.
	MaxIterations int
	Logger        *slog.Logger
}

// Run writes Line(args) once per iteration until ctx is cancelled, a write
// fails, or MaxIterations is reached. A cancelled context is not an error.
func (l *Loop) Run(ctx context.Context, args []string) (Stats, error) {
	if len(args) == 0 {
		return Stats{}, ErrNoArgs
	}
	if l.Out == nil {
		return Stats{}, fmt.Errorf("echo output writer cannot be nil")
	}

	spinner := l.Spinner
	if spinner == nil {
		spinner = spin.Busy{}
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	line := []byte(Line(args))
	start := time.Now()
	stats := Stats{}

	logger.Debug("echo loop starting",
		slog.Int("tokens", len(args)),
		slog.Duration("interval", l.Interval),
	)

	for {
		if ctx.Err() != nil {
			break
		}

		if _, err := l.Out.Write(line); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, fmt.Errorf("failed to write line: %w", err)
		}
		stats.Iterations++

		if l.MaxIterations > 0 && stats.Iterations >= l.MaxIterations {
			break
		}

		if err := spinner.Spin(ctx, l.Interval); err != nil {
			if ctx.Err() != nil {
				break
			}
			stats.Elapsed = time.Since(start)
			return stats, fmt.Errorf("spin failed: %w", err)
		}
	}

	stats.Elapsed = time.Since(start)
	logger.Debug("echo loop stopped",
		slog.Int("iterations", stats.Iterations),
		slog.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}

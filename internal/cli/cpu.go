package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/MathNerdGamer/OSTEP/internal/echo"
	"github.com/MathNerdGamer/OSTEP/internal/rlimit"
	"github.com/MathNerdGamer/OSTEP/internal/spin"
	"github.com/spf13/cobra"
)

// CPUUsage is printed to stderr when cpu is run without arguments
const CPUUsage = "usage: cpu <string>\n"

// ExitInterrupted is reported when the loop is stopped without a known signal
const ExitInterrupted = 130

// signalError is the cancellation cause recorded when a signal stops the loop
type signalError struct {
	sig os.Signal
}

func (e *signalError) Error() string {
	return "interrupted by " + e.sig.String()
}

// NewCPUCommand builds the cpu command. Flag parsing is disabled so every
// token, including ones that start with a dash, is echoed as given.
func NewCPUCommand(ctx context.Context, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "cpu <string>...",
		Short: "Print the arguments once a second, forever",
		Long: `cpu joins its arguments with single spaces and prints the line to
standard output, then spins on the CPU for about a second, and repeats until
it is interrupted. Run several copies at once to watch the scheduler share
the processor between them.`,
		DisableFlagParsing: true,
		Args:               minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCPU(ctx, args, stdout, stderr)
		},
	}
}

// ExecuteCPU runs cpu with argv (argv[0] is the program name) until SIGINT or
// SIGTERM and returns the process exit status.
func ExecuteCPU(argv []string, stdout, stderr io.Writer) int {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			cancel(&signalError{sig: sig})
		case <-ctx.Done():
		}
	}()

	return ExecuteCPUContext(ctx, argv, stdout, stderr)
}

// ExecuteCPUContext is ExecuteCPU with the interrupt supplied by ctx.
func ExecuteCPUContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cmd := NewCPUCommand(ctx, stdout, stderr)
	return execute(cmd, tail(argv), stderr, func() {
		fmt.Fprint(stderr, CPUUsage)
	})
}

func runCPU(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	s, err := newSession("cpu", stdout, stderr)
	if err != nil {
		return err
	}
	defer s.close()

	if err := rlimit.LimitCPU(s.cfg.CPULimitSeconds); err != nil {
		s.logger.Warn("failed to apply cpu limit",
			slog.Uint64("seconds", s.cfg.CPULimitSeconds),
			slog.String("error", err.Error()),
		)
	}

	spinner, err := spin.New(spin.Mode(s.cfg.SpinMode))
	if err != nil {
		return err
	}

	loop := &echo.Loop{
		Out:           stdout,
		Spinner:       spinner,
		Interval:      s.cfg.Interval,
		MaxIterations: s.cfg.MaxIterations,
		Logger:        s.logger,
	}

	s.auditStart(args)
	stats, runErr := loop.Run(ctx, args)

	code := ExitOK
	outcome := "success"
	switch {
	case runErr != nil:
		code = ExitFailure
		outcome = "error"
		s.logger.Error("echo loop failed", slog.String("error", runErr.Error()))
		s.auditError(runErr)
	case ctx.Err() != nil:
		code = interruptCode(ctx)
		outcome = "interrupted"
	}

	attrs := []any{
		slog.Int("iterations", stats.Iterations),
		slog.Duration("elapsed", stats.Elapsed),
		slog.String("outcome", outcome),
	}
	if usage, err := spin.Usage(); err == nil {
		attrs = append(attrs,
			slog.Duration("cpu_user", usage.User),
			slog.Duration("cpu_system", usage.System),
		)
	}
	s.logger.Info("cpu stopped", attrs...)

	s.auditEnd(code, runStats{
		outcome: outcome,
		elapsed: stats.Elapsed,
		metadata: map[string]string{
			"iterations": strconv.Itoa(stats.Iterations),
		},
	})

	if code == ExitOK {
		return nil
	}
	return &exitError{code: code, err: runErr}
}

// interruptCode follows the shell convention of 128 plus the signal number
func interruptCode(ctx context.Context) int {
	var se *signalError
	if errors.As(context.Cause(ctx), &se) {
		if sig, ok := se.sig.(syscall.Signal); ok {
			return 128 + int(sig)
		}
	}
	return ExitInterrupted
}

// tail drops the program name from argv
func tail(argv []string) []string {
	if len(argv) <= 1 {
		return []string{}
	}
	return argv[1:]
}

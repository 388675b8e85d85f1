package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/MathNerdGamer/OSTEP/internal/persist"
	"github.com/spf13/cobra"
)

// NewIOCommand builds the io command. Only the first argument is used.
func NewIOCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "io <filename>",
		Short: "Write hello world to a file and fsync it",
		Long: `io creates (or truncates) the named file with owner-only read/write
permissions, writes "hello world\n" to it with a single write call, and forces
the data to stable storage with fsync before closing the descriptor.`,
		DisableFlagParsing: true,
		Args:               minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIO(args[0], stdout, stderr)
		},
	}
}

// ExecuteIO runs io with argv (argv[0] is the program name) and returns the
// process exit status. A missing filename prints "<argv[0]> [filename]" to
// stdout. Any I/O failure exits with ExitAbnormal.
func ExecuteIO(argv []string, stdout, stderr io.Writer) int {
	program := "io"
	if len(argv) > 0 {
		program = argv[0]
	}

	cmd := NewIOCommand(stdout, stderr)
	return execute(cmd, tail(argv), stderr, func() {
		fmt.Fprintf(stdout, "%s [filename]\n", program)
	})
}

func runIO(path string, stdout, stderr io.Writer) error {
	s, err := newSession("io", stdout, stderr)
	if err != nil {
		return err
	}
	defer s.close()

	mode, err := s.cfg.Mode()
	if err != nil {
		return err
	}

	s.auditStart([]string{path})
	start := time.Now()

	if err := persist.WriteFile(path, []byte(persist.Greeting), mode); err != nil {
		attrs := []any{
			slog.String("path", path),
			slog.String("error", err.Error()),
		}
		var perr *persist.Error
		if errors.As(err, &perr) {
			attrs = append(attrs, slog.String("op", perr.Op))
		}
		s.logger.Error("write failed", attrs...)
		s.auditError(err)
		s.auditEnd(ExitAbnormal, runStats{outcome: "error", elapsed: time.Since(start)})
		return &exitError{code: ExitAbnormal, err: err}
	}

	s.logger.Debug("file written and synced",
		slog.String("path", path),
		slog.Int("bytes", len(persist.Greeting)),
		slog.String("mode", "0"+strconv.FormatUint(uint64(mode), 8)),
	)
	s.auditEnd(ExitOK, runStats{
		outcome: "success",
		elapsed: time.Since(start),
		metadata: map[string]string{
			"path":  path,
			"bytes": strconv.Itoa(len(persist.Greeting)),
		},
	})

	return nil
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MathNerdGamer/OSTEP/internal/audit"
	"github.com/MathNerdGamer/OSTEP/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes shared by both programs
const (
	ExitOK       = 0
	ExitUsage    = 1
	ExitFailure  = 1
	ExitAbnormal = 2
)

// errUsage marks a missing required argument
var errUsage = errors.New("usage")

// exitError carries the process exit status out of a cobra RunE
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// minArgs rejects invocations with fewer than n positional arguments
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errUsage
		}
		return nil
	}
}

// session holds what a single command invocation needs
type session struct {
	program string
	stdout  io.Writer
	stderr  io.Writer
	cfg     *config.Config
	logger  *slog.Logger
	audit   *audit.Logger
}

// newSession loads config and sets up logging and the optional audit trail
func newSession(program string, stdout, stderr io.Writer) (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	s := &session{
		program: program,
		stdout:  stdout,
		stderr:  stderr,
		cfg:     cfg,
		logger:  createLogger(cfg.LogLevel, stderr).With(slog.String("program", program)),
	}

	s.logger.Debug("config loaded",
		slog.String("version", Version),
		slog.String("commit", GitCommit),
		slog.String("built", BuildDate),
		slog.String("log_level", cfg.LogLevel),
	)

	if cfg.AuditEnabled {
		auditLogger, err := audit.NewLogger(cfg.AuditLogFile, s.logger)
		if err != nil {
			s.logger.Warn("failed to initialize audit logger", slog.String("error", err.Error()))
		} else {
			s.audit = auditLogger
		}
	}

	return s, nil
}

func (s *session) close() {
	if s.audit != nil {
		_ = s.audit.Close() //nolint:errcheck // cleanup
	}
}

func (s *session) auditStart(args []string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogStart(s.program, args); err != nil {
		s.logger.Warn("failed to write audit event", slog.String("error", err.Error()))
	}
}

func (s *session) auditEnd(code int, stats runStats) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogEnd(s.program, code, stats.elapsed, stats.outcome, stats.metadata); err != nil {
		s.logger.Warn("failed to write audit event", slog.String("error", err.Error()))
	}
}

func (s *session) auditError(err error) {
	if s.audit == nil {
		return
	}
	if aerr := s.audit.LogError(s.program, err.Error()); aerr != nil {
		s.logger.Warn("failed to write audit event", slog.String("error", aerr.Error()))
	}
}

// runStats is what a command reports to the audit trail when it ends
type runStats struct {
	outcome  string
	elapsed  time.Duration
	metadata map[string]string
}

// execute runs cmd with args and maps the result to an exit code.
// Usage errors are reported by onUsage, everything else goes to stderr.
func execute(cmd *cobra.Command, args []string, stderr io.Writer, onUsage func()) int {
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.CompletionOptions.DisableDefaultCmd = true

	var err error
	if isCompletionRequest(args) {
		// cobra always routes these to its hidden completion command
		err = runDirect(cmd, args)
	} else {
		err = cmd.Execute()
	}
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, errUsage) {
		onUsage()
		return ExitUsage
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	fmt.Fprintf(stderr, "%s: %v\n", cmd.Name(), err)
	return ExitFailure
}

// isCompletionRequest reports whether cobra would treat args as a shell
// completion request instead of positional arguments
func isCompletionRequest(args []string) bool {
	if len(args) == 0 {
		return false
	}
	return args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd
}

// runDirect validates args and invokes RunE without cobra's command lookup
func runDirect(cmd *cobra.Command, args []string) error {
	if err := cmd.ValidateArgs(args); err != nil {
		return err
	}
	return cmd.RunE(cmd, args)
}

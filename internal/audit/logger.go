package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event represents one line of the run log
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"` // "start", "end", "error"
	Program   string            `json:"program"`
	PID       int               `json:"pid,omitempty"`
	Args      []string          `json:"args,omitempty"`
	ExitCode  int               `json:"exit_code,omitempty"`
	Duration  string            `json:"duration,omitempty"` // ISO 8601 duration format
	Error     string            `json:"error,omitempty"`
	Outcome   string            `json:"outcome,omitempty"` // "success", "interrupted", "usage", "error"
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Logger appends events to a file as JSON lines and fsyncs after each one
type Logger struct {
	logFile string
	file    *os.File
	lock    sync.Mutex
	logger  *slog.Logger
}

// NewLogger creates a new audit logger. Sync warnings go to logger, or to
// slog.Default() when logger is nil.
func NewLogger(logFile string, logger *slog.Logger) (*Logger, error) {
	if logFile == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}

	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Logger{
		logFile: logFile,
		file:    file,
		logger:  logger,
	}, nil
}

// Log writes an event to the log file
func (l *Logger) Log(event Event) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.file == nil {
		return fmt.Errorf("logger file not initialized")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.PID == 0 {
		event.PID = os.Getpid()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}

	if err := l.file.Sync(); err != nil {
		l.logger.Warn("failed to sync audit log file", slog.String("error", err.Error()))
	}

	return nil
}

// LogStart records that program started with args
func (l *Logger) LogStart(program string, args []string) error {
	return l.Log(Event{
		Timestamp: time.Now().UTC(),
		Type:      "start",
		Program:   program,
		Args:      args,
	})
}

// LogEnd records how program finished
func (l *Logger) LogEnd(program string, exitCode int, duration time.Duration, outcome string, metadata map[string]string) error {
	return l.Log(Event{
		Timestamp: time.Now().UTC(),
		Type:      "end",
		Program:   program,
		ExitCode:  exitCode,
		Duration:  FormatDuration(duration),
		Outcome:   outcome,
		Metadata:  metadata,
	})
}

// LogError records a failure
func (l *Logger) LogError(program, errMsg string) error {
	return l.Log(Event{
		Timestamp: time.Now().UTC(),
		Type:      "error",
		Program:   program,
		Error:     errMsg,
		Outcome:   "error",
	})
}

// FormatDuration renders d as an ISO 8601 duration, e.g. PT1.500000000S
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("PT%d.%09dS", int64(d/time.Second), int64(d%time.Second))
}

// Close closes the audit logger file
func (l *Logger) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

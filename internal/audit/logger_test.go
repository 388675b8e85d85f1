package audit

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	assert.NotNil(t, logger)
	assert.NotNil(t, logger.file)
}

func TestNewLogger_UsesGivenLogger(t *testing.T) {
	tmpDir := t.TempDir()
	custom := slog.New(slog.NewJSONHandler(io.Discard, nil))

	logger, err := NewLogger(filepath.Join(tmpDir, "audit.log"), custom)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	assert.Same(t, custom, logger.logger)
}

func TestNewLogger_DefaultsToSlogDefault(t *testing.T) {
	logger, err := NewLogger(filepath.Join(t.TempDir(), "audit.log"), nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	assert.Same(t, slog.Default(), logger.logger)
}

func TestNewLogger_EmptyPath(t *testing.T) {
	_, err := NewLogger("", nil)
	assert.Error(t, err)
}

func TestNewLogger_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	logDir := filepath.Join(tmpDir, "subdir", "audit")
	logFile := filepath.Join(logDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	// Check directory was created
	assert.DirExists(t, logDir)
}

func TestLog_WritesJSON(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	event := Event{
		Type:    "start",
		Program: "cpu",
		Args:    []string{"A"},
	}

	err = logger.Log(event)
	require.NoError(t, err)

	// Read the file
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	// Parse JSON
	var readEvent Event
	err = json.Unmarshal(data, &readEvent)
	require.NoError(t, err)

	assert.Equal(t, "start", readEvent.Type)
	assert.Equal(t, "cpu", readEvent.Program)
	assert.Equal(t, []string{"A"}, readEvent.Args)
	assert.Equal(t, os.Getpid(), readEvent.PID)
}

func TestLog_MultipleEvents(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	event1 := Event{Type: "start", Program: "io"}
	event2 := Event{Type: "end", Program: "io", ExitCode: 0}

	err = logger.Log(event1)
	require.NoError(t, err)

	err = logger.Log(event2)
	require.NoError(t, err)

	// Read the file
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"start"`)
	assert.Contains(t, lines[1], `"end"`)
}

func TestLogStart(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	err = logger.LogStart("cpu", []string{"hello", "world"})
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var event Event
	err = json.Unmarshal(data, &event)
	require.NoError(t, err)

	assert.Equal(t, "start", event.Type)
	assert.Equal(t, "cpu", event.Program)
	assert.Equal(t, []string{"hello", "world"}, event.Args)
}

func TestLogEnd(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	duration := 2 * time.Second
	err = logger.LogEnd("cpu", 130, duration, "interrupted", map[string]string{"iterations": "2"})
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var event Event
	err = json.Unmarshal(data, &event)
	require.NoError(t, err)

	assert.Equal(t, "end", event.Type)
	assert.Equal(t, "cpu", event.Program)
	assert.Equal(t, 130, event.ExitCode)
	assert.Equal(t, "interrupted", event.Outcome)
	assert.Equal(t, "PT2.000000000S", event.Duration)
	assert.Equal(t, "2", event.Metadata["iterations"])
}

func TestLogError(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	err = logger.LogError("io", "open /nope/file: no such file or directory")
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var event Event
	err = json.Unmarshal(data, &event)
	require.NoError(t, err)

	assert.Equal(t, "error", event.Type)
	assert.Equal(t, "io", event.Program)
	assert.Equal(t, "open /nope/file: no such file or directory", event.Error)
	assert.Equal(t, "error", event.Outcome)
}

func TestClose(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)

	err = logger.Close()
	assert.NoError(t, err)

	// Closing again should succeed
	err = logger.Close()
	assert.NoError(t, err)

	err = logger.Log(Event{Type: "start"})
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "PT0.000000000S", FormatDuration(0))
	assert.Equal(t, "PT1.500000000S", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "PT61.000000001S", FormatDuration(61*time.Second+time.Nanosecond))
}

func TestLog_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	event := Event{Type: "test"}
	err = logger.Log(event)
	require.NoError(t, err)

	// Check file permissions (should be 0o600)
	info, err := os.Stat(logFile)
	require.NoError(t, err)
	// Check that only owner can read/write (skip on Windows, NTFS uses ACLs)
	if runtime.GOOS != "windows" {
		mode := info.Mode()
		assert.Equal(t, os.FileMode(0o600), mode&os.FileMode(0o777))
	}
}

func TestLog_Timestamp(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "audit.log")

	logger, err := NewLogger(logFile, nil)
	require.NoError(t, err)
	defer logger.Close() //nolint:errcheck // test cleanup

	before := time.Now().UTC()
	event := Event{Type: "test"}
	err = logger.Log(event)
	require.NoError(t, err)
	after := time.Now().UTC()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var readEvent Event
	err = json.Unmarshal(data, &readEvent)
	require.NoError(t, err)

	assert.False(t, readEvent.Timestamp.IsZero())
	assert.True(t, readEvent.Timestamp.After(before.Add(-1*time.Second)))
	assert.True(t, readEvent.Timestamp.Before(after.Add(1*time.Second)))
}

package elog

import (
	"io"
	"os"
)

// std is the global logger instance used by package-level functions.
var std = NewLogger()

// Configure sets up the global logger.
// If logPath is empty, file logging is disabled.
// If background is true, stderr output is disabled.
func Configure(logPath string, level Level, background bool) error {
	std.SetLevel(level)
	std.SetBackground(background)

	if logPath == "" {
		return nil
	}
	f, err := OpenLogFile(logPath)
	if err != nil {
		return err
	}
	std.SetFileOutput(f)
	return nil
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.SetLevel(level)
}

// SetBackground enables or disables background mode for the global logger.
func SetBackground(background bool) {
	std.SetBackground(background)
}

// Debug logs a debug message using the global logger.
func Debug(format string, args ...any) {
	std.Debug(format, args...)
}

// Info logs an informational message using the global logger.
func Info(format string, args ...any) {
	std.Info(format, args...)
}

// Warn logs a warning message using the global logger.
func Warn(format string, args ...any) {
	std.Warn(format, args...)
}

// Error logs an error message using the global logger.
func Error(format string, args ...any) {
	std.Error(format, args...)
}

// Close closes the file writer if it implements io.Closer and stops file
// logging.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()
	closer, ok := std.fileWriter.(io.Closer)
	std.fileWriter = nil
	if ok {
		return closer.Close()
	}
	return nil
}

// Reset resets the global logger to default state.
// This is primarily useful for testing.
func Reset() {
	std = NewLogger()
}

// Discard configures the global logger to discard all output.
func Discard() {
	std.SetFileOutput(io.Discard)
	std.SetErrOutput(io.Discard)
}

// TestLogger returns a debug-level logger that writes everything to w.
func TestLogger(w io.Writer) *Logger {
	l := NewLogger()
	l.SetFileOutput(w)
	l.SetErrOutput(nil)
	l.SetLevel(LevelDebug)
	return l
}

// ReplaceGlobal replaces the global logger and returns the previous one.
// Caller should restore the original logger after the test.
func ReplaceGlobal(l *Logger) *Logger {
	old := std
	std = l
	return old
}

func init() {
	std.SetErrOutput(os.Stderr)
}

// Package output provides console and file logging for the CLI.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Splog writes user-facing messages to the console and, when configured,
// mirrors everything to a rotating log file.
type Splog struct {
	console    *charmlog.Logger
	fileLogger *slog.Logger
	writer     *os.File
	logWriter  io.WriteCloser
	quiet      bool
}

// NewSplog creates a console-only logger. Debug messages are enabled when the
// DEBUG environment variable is set.
func NewSplog() *Splog {
	splog, _ := NewSplogWithFile("")
	return splog
}

// NewSplogWithFile creates a logger that also appends to a rotating log file
// when logFilePath is non-empty.
func NewSplogWithFile(logFilePath string) (*Splog, error) {
	console := charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: false,
	})
	if os.Getenv("DEBUG") != "" {
		console.SetLevel(charmlog.DebugLevel)
	}

	splog := &Splog{
		console: console,
		writer:  os.Stdout,
	}

	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		splog.logWriter = newRotatingWriter(logFilePath)
		splog.fileLogger = slog.New(slog.NewTextHandler(splog.logWriter, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return splog, nil
}

// newRotatingWriter builds the lumberjack sink, with rotation limits
// overridable from the environment.
func newRotatingWriter(logFilePath string) *lumberjack.Logger {
	logger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    1,  // megabytes
		MaxBackups: 2,
		MaxAge:     30, // days
	}

	if v := os.Getenv("GITLITE_LOG_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			logger.MaxSize = n
		}
	}
	if v := os.Getenv("GITLITE_LOG_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			logger.MaxBackups = n
		}
	}
	if v := os.Getenv("GITLITE_LOG_MAX_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			logger.MaxAge = n
		}
	}
	return logger
}

// SetQuiet suppresses console output; file logging continues.
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// Info writes an info message.
func (s *Splog) Info(format string, args ...interface{}) {
	msg := sprintf(format, args...)
	if !s.quiet {
		s.console.Info(msg)
	}
	if s.fileLogger != nil {
		s.fileLogger.Info(msg)
	}
}

// Warn writes a warning message.
func (s *Splog) Warn(format string, args ...interface{}) {
	msg := sprintf(format, args...)
	if !s.quiet {
		s.console.Warn(msg)
	}
	if s.fileLogger != nil {
		s.fileLogger.Warn(msg)
	}
}

// Error writes an error message.
func (s *Splog) Error(format string, args ...interface{}) {
	msg := sprintf(format, args...)
	if !s.quiet {
		s.console.Error(msg)
	}
	if s.fileLogger != nil {
		s.fileLogger.Error(msg)
	}
}

// Debug writes a debug message; console output requires DEBUG to be set.
func (s *Splog) Debug(format string, args ...interface{}) {
	msg := sprintf(format, args...)
	if !s.quiet {
		s.console.Debug(msg)
	}
	if s.fileLogger != nil {
		s.fileLogger.Debug(msg)
	}
}

// Page writes raw output straight to the console, bypassing log styling.
func (s *Splog) Page(content string) {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprint(s.writer, content)
}

// Newline writes a blank line to the console.
func (s *Splog) Newline() {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprintln(s.writer)
}

// Close closes the log file if one was opened.
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

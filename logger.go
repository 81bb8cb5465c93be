// Package sharedprefs provides default logging implementations.
package sharedprefs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel mirrors the slog levels.
type LogLevel int

// Log level constants, mirroring slog levels for internal mapping.
const (
	LogLevelDebug LogLevel = LogLevel(slog.LevelDebug)
	LogLevelInfo  LogLevel = LogLevel(slog.LevelInfo)
	LogLevelWarn  LogLevel = LogLevel(slog.LevelWarn)
	LogLevelError LogLevel = LogLevel(slog.LevelError)
)

// ParseLogLevel maps "debug", "info", "warn" or "error" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger defines the logging operations used throughout the preference store.
// The args are alternating key-value pairs, as with slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level LogLevel)
}

// defaultSlogLogger is an implementation of the Logger interface using the slog package.
type defaultSlogLogger struct {
	slogger  *slog.Logger
	levelVar *slog.LevelVar
}

// NewDefaultLogger returns a Logger writing JSON to os.Stderr at info level.
func NewDefaultLogger() Logger {
	return NewLogger(os.Stderr, LogLevelInfo)
}

// NewLogger returns a Logger writing JSON records at or above level to w.
func NewLogger(w io.Writer, level LogLevel) Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.Level(level))
	return &defaultSlogLogger{
		slogger:  slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar})),
		levelVar: levelVar,
	}
}

func (l *defaultSlogLogger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

func (l *defaultSlogLogger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

func (l *defaultSlogLogger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

func (l *defaultSlogLogger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// SetLevel changes the minimum level dynamically.
func (l *defaultSlogLogger) SetLevel(level LogLevel) {
	if l.levelVar != nil {
		l.levelVar.Set(slog.Level(level))
	}
}

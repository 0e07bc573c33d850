// Package logging is the leveled key/value logger used by the pipeline,
// the queue worker and the CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level orders log severities
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// ParseLevel accepts debug, info, warn or error in any case
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger provides structured logging for one component
type Logger struct {
	prefix string
	logger *log.Logger
	level  *atomic.Int32
}

// NewLogger creates a logger writing to stderr
func NewLogger(prefix string) *Logger {
	return New(prefix, os.Stderr)
}

// New creates a logger writing to w at LevelInfo
func New(prefix string, w io.Writer) *Logger {
	level := new(atomic.Int32)
	level.Store(int32(LevelInfo))
	return &Logger{
		prefix: prefix,
		logger: log.New(w, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
		level:  level,
	}
}

// Discard returns a logger that writes nothing
func Discard() *Logger {
	return New("discard", io.Discard)
}

// With returns a logger for a sub-component sharing the output and level
func (l *Logger) With(prefix string) *Logger {
	name := l.prefix + "/" + prefix
	return &Logger{
		prefix: name,
		logger: log.New(l.logger.Writer(), fmt.Sprintf("[%s] ", name), l.logger.Flags()),
		level:  l.level,
	}
}

// SetLevel changes the minimum level for this logger and the loggers derived
// from it
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelInfo, msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelWarn, msg, keysAndValues...)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelError, msg, keysAndValues...)
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelDebug, msg, keysAndValues...)
}

func (l *Logger) logWithKV(level Level, msg string, keysAndValues ...interface{}) {
	if level < Level(l.level.Load()) {
		return
	}
	var kv strings.Builder
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&kv, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	if len(keysAndValues)%2 == 1 {
		fmt.Fprintf(&kv, " %v=(missing)", keysAndValues[len(keysAndValues)-1])
	}
	l.logger.Printf("[%s] %s%s", level, msg, kv.String())
}

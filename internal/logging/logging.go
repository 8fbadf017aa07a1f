// Package logging provides the leveled logger used across tagtext. A
// logger writes one line per message; component loggers derived from it
// share its output and tag their lines with the component name.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug reports individual edits and purges.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo reports progress of long-running commands.
	LogLevelInfo
	// LogLevelWarn reports rejected writes and recoverable failures.
	LogLevelWarn
	// LogLevelError reports failures that end an operation.
	LogLevelError
)

var levelNames = map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLogLevel parses a level name, ignoring case. Unknown names yield
// LogLevelInfo.
func ParseLogLevel(s string) LogLevel {
	level, _ := LookupLogLevel(s)
	return level
}

// LookupLogLevel parses a level name, ignoring case, and reports whether
// the name was known.
func LookupLogLevel(s string) (LogLevel, bool) {
	level, ok := levelNames[strings.ToLower(s)]
	if !ok {
		return LogLevelInfo, false
	}
	return level, true
}

// Config configures a logger.
type Config struct {
	// Level is the minimum level written.
	Level LogLevel
	// Output receives the lines. Defaults to os.Stderr.
	Output io.Writer
	// Prefix starts every line, usually the program name.
	Prefix string
}

// DefaultConfig returns the configuration of the process-wide logger.
func DefaultConfig() Config {
	return Config{
		Level:  LogLevelWarn,
		Output: os.Stderr,
		Prefix: "tagtext",
	}
}

// Logger writes leveled lines. It is safe for concurrent use; a logger and
// the component loggers derived from it serialize their writes.
type Logger struct {
	mu        *sync.Mutex
	level     LogLevel
	output    io.Writer
	prefix    string
	component string
	disabled  bool
}

// New creates a logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{
		mu:     &sync.Mutex{},
		level:  cfg.Level,
		output: cfg.Output,
		prefix: cfg.Prefix,
	}
}

// WithComponent returns a logger whose lines carry component=name. Nested
// components are joined with a dot.
func (l *Logger) WithComponent(name string) *Logger {
	c := *l
	if c.component != "" {
		name = c.component + "." + name
	}
	c.component = name
	return &c
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LogLevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LogLevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LogLevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LogLevelError, msg, args...)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if l.disabled || level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02T15:04:05.000"))
	fmt.Fprintf(&sb, " [%s] ", level)
	if l.prefix != "" {
		sb.WriteString(l.prefix)
		sb.WriteString(": ")
	}
	sb.WriteString(msg)
	if l.component != "" {
		sb.WriteString(" component=")
		sb.WriteString(l.component)
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.output, sb.String())
}

// NullLogger discards everything, as do the component loggers derived
// from it.
var NullLogger = &Logger{disabled: true}

var (
	defaultLogger   *Logger
	defaultLoggerMu sync.Mutex
)

// Get returns the process-wide logger, creating one from DefaultConfig on
// first use.
func Get() *Logger {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(DefaultConfig())
	}
	return defaultLogger
}

// Set replaces the process-wide logger. Documents created without
// WithLogger use it.
func Set(l *Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = l
}

package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

type Logger struct {
	*log.Logger
	level     LogLevel
	isVerbose bool
	component string
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.Logger = log.New(w, l.Logger.Prefix(), l.Logger.Flags())
	}
}

func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.Logger = log.New(l.Logger.Writer(), prefix, l.Logger.Flags())
	}
}

func WithFlags(flags int) Option {
	return func(l *Logger) {
		l.Logger = log.New(l.Logger.Writer(), l.Logger.Prefix(), flags)
	}
}

func WithLevel(level LogLevel) Option {
	return func(l *Logger) {
		l.level = level
	}
}

func New(options ...Option) *Logger {
	l := &Logger{
		Logger:    log.New(os.Stderr, "", log.LstdFlags),
		level:     LevelInfo,
		isVerbose: false,
	}

	for _, opt := range options {
		opt(l)
	}

	return l
}

// Discard returns a logger that drops everything. Handy for library callers
// that pass a nil logger.
func Discard() *Logger {
	return New(WithOutput(io.Discard))
}

// Named returns a copy sharing the output and level that tags each line
// with the given component name.
func (l *Logger) Named(component string) *Logger {
	cp := *l
	if cp.component != "" {
		component = cp.component + "." + component
	}
	cp.component = component
	return &cp
}

func (l *Logger) SetVerbose(verbose bool) {
	l.isVerbose = verbose
	if verbose && l.level < LevelDebug {
		l.level = LevelDebug
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// ParseLevel maps a config string onto a level; unknown values mean info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	case "trace":
		return LevelTrace
	default:
		return LevelInfo
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LevelWarn {
		l.printf(LevelWarn, format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LevelInfo {
		l.printf(LevelInfo, format, args...)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.isVerbose || l.level >= LevelDebug {
		l.printf(LevelDebug, format, args...)
	}
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LevelTrace {
		l.printf(LevelTrace, format, args...)
	}
}

func (l *Logger) printf(level LogLevel, format string, args ...interface{}) {
	var prefix string
	switch level {
	case LevelError:
		prefix = "ERROR: "
	case LevelWarn:
		prefix = "WARN: "
	case LevelInfo:
		prefix = "INFO: "
	case LevelDebug:
		prefix = "DEBUG: "
	case LevelTrace:
		prefix = "TRACE: "
	}
	if l.component != "" {
		prefix += "[" + l.component + "] "
	}
	l.Logger.Printf(prefix+format, args...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.Logger.Fatalf("FATAL: "+format, args...)
}

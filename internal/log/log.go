package log

import (
	"fmt"
	"io"
	"log"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
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
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel is the strict form of LevelFromString used when validating
// configuration.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "NONE", "OFF":
		return LevelNone, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelFromString falls back to INFO for anything it does not recognise.
func LevelFromString(s string) Level {
	l, err := ParseLevel(s)
	if err != nil {
		return LevelInfo
	}
	return l
}

type Logger struct {
	logger *log.Logger
	level  Level
}

func New(out io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(out, "", log.Ltime|log.Lmicroseconds),
		level:  level,
	}
}

// Discard returns a logger that drops everything. Handy for components
// constructed without a logger.
func Discard() *Logger { return New(io.Discard, LevelNone) }

func (l *Logger) Debugf(format string, v ...interface{}) { l.emit(LevelDebug, format, v...) }

func (l *Logger) Infof(format string, v ...interface{}) { l.emit(LevelInfo, format, v...) }

func (l *Logger) Warnf(format string, v ...interface{}) { l.emit(LevelWarn, format, v...) }

func (l *Logger) Errorf(format string, v ...interface{}) { l.emit(LevelError, format, v...) }

func (l *Logger) emit(level Level, format string, v ...interface{}) {
	if l == nil || level < l.level || l.level == LevelNone {
		return
	}
	l.logger.Printf(level.String()+": "+format, v...)
}

// Enabled reports whether messages at level would be written. Callers use it
// to skip building expensive debug arguments on hot paths.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && l.level != LevelNone && level >= l.level
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) Level() Level {
	return l.level
}

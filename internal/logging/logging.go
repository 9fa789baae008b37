// Package logging provides the levelled logger used across bytesweep
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fenilsonani/bytesweep/internal/ui/styles"
)

// Level is a log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level tag
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
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel parses debug, info, warn or error
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
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger provides levelled logging
type Logger struct {
	logger *log.Logger
	level  Level
	file   *os.File
	color  bool
}

// NewLogger creates a logger writing to logFile when set, otherwise to out.
// Level tags are coloured only when out is a terminal.
func NewLogger(out io.Writer, logFile, logLevel string) (*Logger, error) {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	var file *os.File
	if logFile != "" {
		file, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
	}

	var logger *log.Logger
	color := false
	if file != nil {
		logger = log.New(file, "", log.LstdFlags)
	} else {
		if out == nil {
			out = os.Stderr
		}
		logger = log.New(out, "", log.LstdFlags)
		color = isTerminal(out)
	}

	return &Logger{
		logger: logger,
		level:  level,
		file:   file,
		color:  color,
	}, nil
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{logger: log.New(io.Discard, "", 0), level: LevelError + 1}
}

// SetLevel changes the minimum level
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Level returns the minimum level
func (l *Logger) Level() Level {
	return l.level
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}
	l.logger.Printf(l.tag(level)+" "+format, args...)
}

func (l *Logger) tag(level Level) string {
	tag := "[" + level.String() + "]"
	if !l.color {
		return tag
	}
	switch level {
	case LevelDebug:
		return styles.DimStyle.Render(tag)
	case LevelInfo:
		return styles.InfoStyle.Render(tag)
	case LevelWarn:
		return styles.WarningStyle.Render(tag)
	default:
		return styles.ErrorStyle.Render(tag)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level represents logging verbosity
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps ERROR/WARN/INFO/DEBUG (any case) to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "INFO":
		return LevelInfo, true
	case "DEBUG":
		return LevelDebug, true
	}
	return LevelInfo, false
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// Logger provides leveled logging
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a logger writing to w at the given level
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDefault creates a stderr logger with the level taken from CRACKLE_LOG_LEVEL
func NewDefault() *Logger {
	level, _ := ParseLevel(os.Getenv("CRACKLE_LOG_LEVEL"))
	return New(os.Stderr, level)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelError)
}

func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if l == nil || l.level < level {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

func (l *Logger) Warn(format string, args ...interface{}) { l.logf(LevelWarn, format, args...) }

func (l *Logger) Info(format string, args ...interface{}) { l.logf(LevelInfo, format, args...) }

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }

// Default is the process wide logger
var Default = NewDefault()

// SessionLog appends one line per session event to a file.
type SessionLog struct {
	f *os.File
}

// OpenSessionLog opens (creating if needed) an append-only session log.
func OpenSessionLog(path string) (*SessionLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	return &SessionLog{f: f}, nil
}

// Record writes a timestamped line for the given session.
func (s *SessionLog) Record(sessionID, state string) error {
	if s == nil {
		return nil
	}
	line := fmt.Sprintf("%s %s %s\n", time.Now().UTC().Format(time.RFC3339), sessionID, state)
	if _, err := s.f.WriteString(line); err != nil {
		return fmt.Errorf("write session log: %w", err)
	}
	return nil
}

func (s *SessionLog) Close() error {
	if s == nil {
		return nil
	}
	return s.f.Close()
}

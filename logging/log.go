package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
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

func LevelFromString(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "NONE":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Logger is safe for concurrent use; actors on different goroutines share the default one.
type Logger struct {
	mu     sync.RWMutex
	logger *log.Logger
	level  Level
}

func New(out io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(out, "", log.LstdFlags|log.Lmicroseconds),
		level:  level,
	}
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level <= level && level != LevelNone {
		l.logger.Printf(level.String()+": "+format, v...)
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.logf(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.logf(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.logf(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.logf(LevelError, format, v...) }

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	l.logger.SetOutput(out)
	l.mu.Unlock()
}

var std = New(os.Stderr, LevelInfo)

// Default returns the process-wide logger.
func Default() *Logger { return std }

func SetLevel(level Level)                   { std.SetLevel(level) }
func SetOutput(out io.Writer)                { std.SetOutput(out) }
func Debugf(format string, v ...interface{}) { std.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { std.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { std.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { std.Errorf(format, v...) }

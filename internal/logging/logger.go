package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger writes leveled lines with key-value pairs for one component
type Logger struct {
	prefix string
	logger *log.Logger
}

// NewLogger creates a logger writing to stdout with a component prefix
func NewLogger(prefix string) *Logger {
	return NewLoggerWithWriter(prefix, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to w. Tests pass a buffer here.
func NewLoggerWithWriter(prefix string, w io.Writer) *Logger {
	return &Logger{
		prefix: prefix,
		logger: log.New(w, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
	}
}

// With returns a logger whose prefix is extended with sub, e.g. "Analyzer/9f1c".
func (l *Logger) With(sub string) *Logger {
	return &Logger{
		prefix: l.prefix + "/" + sub,
		logger: log.New(l.logger.Writer(), fmt.Sprintf("[%s/%s] ", l.prefix, sub), l.logger.Flags()),
	}
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logWithKV("INFO", msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logWithKV("WARN", msg, keysAndValues...)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logWithKV("ERROR", msg, keysAndValues...)
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.logWithKV("DEBUG", msg, keysAndValues...)
}

func (l *Logger) logWithKV(level, msg string, keysAndValues ...interface{}) {
	var kv strings.Builder
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&kv, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	l.logger.Printf("[%s] %s%s", level, msg, kv.String())
}

// Package logger provides leveled logging for the Corpora CLI.
// A Logger is an explicit dependency: it is constructed once at startup
// and passed into every service and adapter that reports anything, so no
// component mutates process-wide logging state.
package logger

import (
	"fmt"
	"io"
	"sync"
)

// Logger writes leveled messages to a single sink. Warn and Error always
// print; Debug and Info only print in verbose mode. Safe for concurrent
// use.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// New creates a logger writing to out. A nil out discards everything.
func New(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{out: out, verbose: verbose}
}

// Discard returns a logger that drops every message. Useful in tests.
func Discard() *Logger {
	return New(io.Discard, false)
}

// Verbose reports whether debug output is enabled.
func (l *Logger) Verbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// Debug prints a message in verbose mode only.
func (l *Logger) Debug(format string, args ...any) {
	l.printf(true, "[DEBUG] ", format, args...)
}

// Info prints an informational message in verbose mode only.
func (l *Logger) Info(format string, args ...any) {
	l.printf(true, "[INFO] ", format, args...)
}

// Warn prints a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.printf(false, "[WARN] ", format, args...)
}

// Error prints an error message.
func (l *Logger) Error(format string, args ...any) {
	l.printf(false, "[ERROR] ", format, args...)
}

// Section prints a section header in verbose mode only.
func (l *Logger) Section(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.out, "\n=== %s ===\n", name)
	}
}

func (l *Logger) printf(verboseOnly bool, prefix, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if verboseOnly && !l.verbose {
		return
	}
	fmt.Fprintf(l.out, prefix+format+"\n", args...)
}

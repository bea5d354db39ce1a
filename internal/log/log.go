// Package log exports the logging types used by gocelery's broker and
// backend implementations.
package log

import (
	"io"
	stdlog "log"
)

// NewLogger returns a Logger that writes to out.
func NewLogger(out io.Writer) *Logger {
	return &Logger{stdlog.New(out, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds|stdlog.LUTC)}
}

// Logger is a thin wrapper around the standard library logger that adds
// level prefixes, mirroring the teacher's internal/log package.
type Logger struct {
	*stdlog.Logger
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.Printf("DEBUG: "+format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Printf("INFO: "+format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.Printf("WARN: "+format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Printf("ERROR: "+format, args...)
}

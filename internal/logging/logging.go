// Package logging provides the logger interface used across promdump and a
// logrus-backed implementation configured from the logging config section.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// New builds a logrus-backed logger writing to stderr. Level is one of
// logrus's level names ("debug", "info", ...); format is "text" or "json".
// Unknown values fall back to info/text rather than failing, since logging
// setup must never prevent a dump from being taken.
func New(level, format string) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	if lv, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lv)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}

	return &logrusLogger{l: l}
}

// NewWithOutput is New with an explicit sink, used by tests.
func NewWithOutput(level, format string, w io.Writer) Logger {
	lg := New(level, format).(*logrusLogger)
	lg.l.SetOutput(w)
	return lg
}

type logrusLogger struct {
	l *logrus.Logger
}

func (x *logrusLogger) Debug(msg string, args ...any) { x.l.Debugf(msg, args...) }
func (x *logrusLogger) Info(msg string, args ...any)  { x.l.Infof(msg, args...) }
func (x *logrusLogger) Error(msg string, args ...any) { x.l.Errorf(msg, args...) }

// Nop discards everything. Useful as a default and in tests.
type Nop struct{}

func (Nop) Debug(msg string, args ...any) {}
func (Nop) Info(msg string, args ...any)  {}
func (Nop) Error(msg string, args ...any) {}

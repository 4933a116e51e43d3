// Package logging provides the three-channel logging collaborator the
// core emits through (info/warning/error) without depending on any
// particular backend at the API boundary. The default implementation is
// backed by logrus, matching the plain logrus.Infof/Warnf/Errorf style
// used throughout the nydus contrib tooling.
package logging

import "github.com/sirupsen/logrus"

// Logger is the external logging collaborator: three severity channels
// accepting pre-formatted strings. The core only emits, never consumes.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// logrusLogger adapts a *logrus.Logger to the Logger interface.
type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger wraps an existing *logrus.Logger. Pass nil to get
// logrus's package-level default logger.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusLogger{l: l}
}

func (g *logrusLogger) Info(msg string)  { g.l.Info(msg) }
func (g *logrusLogger) Warn(msg string)  { g.l.Warn(msg) }
func (g *logrusLogger) Error(msg string) { g.l.Error(msg) }

// Nop is a Logger that discards everything; used as the zero-value
// default so callers never need a nil check.
type Nop struct{}

func (Nop) Info(string)  {}
func (Nop) Warn(string)  {}
func (Nop) Error(string) {}

package console

import (
	"fmt"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// Logger filters a waLog.Logger, the logging interface whatsmeow expects.
// Every formatted line is classified before it reaches the inner logger.
//
// Channel-specific rule: when Errorf suppresses a line whose pattern marks a
// recoverable session renegotiation (e.g. "Bad MAC"), one reassurance line is
// emitted through the info path instead, so the operator sees a benign status
// update rather than a raw encryption error.
//
// Filtering runs on every log line the client produces, so it must never be
// the reason the process dies: classification has no failure mode and
// formatting falls back to fmt's own error placeholders.
type Logger struct {
	inner  waLog.Logger
	filter *Filter
}

var _ waLog.Logger = (*Logger)(nil)

// WrapLogger returns a filtering logger in front of inner. The inner logger
// is taken as a parameter rather than being patched in place, so tests can
// pass a recording logger.
func WrapLogger(inner waLog.Logger, filter *Filter) *Logger {
	if filter == nil {
		filter = NewFilter()
	}
	return &Logger{inner: inner, filter: filter}
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	switch decision, repl, _ := l.filter.Classify(line); decision {
	case Pass:
		l.inner.Debugf("%s", line)
	case Rewrite:
		l.inner.Debugf("%s", repl)
	}
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	switch decision, repl, _ := l.filter.Classify(line); decision {
	case Pass:
		l.inner.Infof("%s", line)
	case Rewrite:
		l.inner.Infof("%s", repl)
	}
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	switch decision, repl, _ := l.filter.Classify(line); decision {
	case Pass:
		l.inner.Warnf("%s", line)
	case Rewrite:
		l.inner.Warnf("%s", repl)
	}
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	switch decision, repl, pattern := l.filter.Classify(line); decision {
	case Pass:
		l.inner.Errorf("%s", line)
	case Rewrite:
		l.inner.Errorf("%s", repl)
	case Suppress:
		if l.filter.Reassures(pattern) {
			l.inner.Infof("%s", ReassureNotice)
		}
	}
}

func (l *Logger) Sub(module string) waLog.Logger {
	return &Logger{inner: l.inner.Sub(module), filter: l.filter}
}

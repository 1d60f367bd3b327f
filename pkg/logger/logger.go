// Package logger provides the injectable logging capability used by
// pkg/relay and pkg/relaypool. Nothing in this library reaches
// for a global logger (spec §9's "no global state" design note); a
// Logger is always passed in explicitly, defaulting to Nop() when the
// caller doesn't provide one.
package logger

import (
	"github.com/sirupsen/logrus"

	"cosanostra/pkg/cerr"
)

// Logger is the capability relay sessions and pools log through. It
// mirrors logrus.FieldLogger's method names, but WithField/WithError
// return Logger, so logrus types do not satisfy it directly; New adapts a
// *logrus.Logger. This keeps the library's public surface independent of
// logrus's full API.
type Logger interface {
	WithField(key string, value interface{}) Logger
	WithError(err error) Logger
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type entryLogger struct {
	entry *logrus.Entry
}

// New wraps a *logrus.Logger as a Logger, applying the redaction filter
// from pkg/cerr to every formatted message before it reaches logrus.
func New(base *logrus.Logger) Logger {
	if base == nil {
		base = logrus.New()
	}
	base.SetFormatter(&redactingFormatter{inner: &logrus.TextFormatter{FullTimestamp: true}})
	return &entryLogger{entry: logrus.NewEntry(base)}
}

func (l *entryLogger) WithField(key string, value interface{}) Logger {
	return &entryLogger{entry: l.entry.WithField(key, cerr.Redact(toString(value)))}
}

func (l *entryLogger) WithError(err error) Logger {
	return &entryLogger{entry: l.entry.WithError(err)}
}

func (l *entryLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *entryLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *entryLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *entryLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// redactingFormatter wraps another logrus.Formatter and scrubs the
// rendered line for hex-key/signature/nsec patterns before it's written.
type redactingFormatter struct {
	inner logrus.Formatter
}

func (f *redactingFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Message = cerr.Redact(e.Message)
	b, err := f.inner.Format(e)
	if err != nil {
		return nil, err
	}
	return []byte(cerr.Redact(string(b))), nil
}

type nopLogger struct{}

func (nopLogger) WithField(string, interface{}) Logger        { return nopLogger{} }
func (nopLogger) WithError(error) Logger                      { return nopLogger{} }
func (nopLogger) Debugf(string, ...interface{})               {}
func (nopLogger) Infof(string, ...interface{})                {}
func (nopLogger) Warnf(string, ...interface{})                {}
func (nopLogger) Errorf(string, ...interface{})               {}

// Nop returns a Logger that discards everything, for library consumers
// who don't want output.
func Nop() Logger { return nopLogger{} }

// Package logger wraps logrus for searchbridge components.
package logger

import (
	"github.com/sirupsen/logrus"
)

var std = logrus.New()

// Init configures the standard logger level. Unknown levels fall back
// to info.
func Init(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)
}

// StdLogger returns the shared logger instance.
func StdLogger() *logrus.Logger {
	return std
}

// WithAdapter returns an entry tagged with the adapter name.
func WithAdapter(name string) *logrus.Entry {
	return std.WithField("adapter", name)
}

// WithFields returns an entry with the given fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return std.WithFields(fields)
}

/*
Package logging
File: internal/logging/logging.go
Description:
    Structured logging, grounded on the {level, ts, category, msg, context}
    shape spec.md §4.10 asks for, and on the logger.WithComponent pattern
    seen in JoshuaAFerguson-terminal-velocity — backed by logrus, the one
    structured logger carried as a direct dependency in the example pack
    (orbas1-Synnergy).
*/
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	root     *logrus.Logger
	rootOnce sync.Once
)

// base lazily builds the process-wide logrus logger.
func base() *logrus.Logger {
	rootOnce.Do(func() {
		root = logrus.New()
		root.SetOutput(os.Stdout)
		root.SetFormatter(&logrus.JSONFormatter{})
		root.SetLevel(logrus.InfoLevel)
	})
	return root
}

// SetLevel filters log output process-wide; spec.md §4.10 asks for
// filterable levels.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base().SetLevel(lvl)
}

// Logger is a category-scoped logger; category appears in every entry.
type Logger struct {
	entry *logrus.Entry
}

// For returns a Logger scoped to the given category (e.g. "sim", "auth",
// "market"). Category maps to spec.md §4.10's "category" field.
func For(category string) *Logger {
	return &Logger{entry: base().WithField("category", category)}
}

// With attaches extra structured context (spec.md's "context" field).
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

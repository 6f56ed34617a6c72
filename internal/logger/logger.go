package logger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	l *logrus.Logger
}

// NewWithLevel builds a JSON logger writing to out. Unknown levels fall back to info.
func NewWithLevel(out io.Writer, level string) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	l.SetLevel(lvl)

	return &Logger{l: l}
}

// Discard is a logger for tests.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return &Logger{l: l}
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.l.Error(fmt.Sprintf(format, v...))
}

func (l *Logger) LogWarnf(format string, v ...any) {
	l.l.Warn(fmt.Sprintf(format, v...))
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.l.Info(fmt.Sprintf(format, v...))
}

func (l *Logger) LogDebugf(format string, v ...any) {
	l.l.Debug(fmt.Sprintf(format, v...))
}

// WithFields returns a logger that attaches fields to every entry.
func (l *Logger) WithFields(fields map[string]any) *Entry {
	return &Entry{e: l.l.WithFields(logrus.Fields(fields))}
}

type Entry struct {
	e *logrus.Entry
}

func (e *Entry) LogInfo(format string, v ...any) {
	e.e.Info(fmt.Sprintf(format, v...))
}

// Writer exposes the logger as an io.Writer for the http.Server error log.
func (l *Logger) Writer() *io.PipeWriter {
	return l.l.WriterLevel(logrus.ErrorLevel)
}

// Package audit implements the Audit Logger (spec §4.9/§6.3): an
// append-only sink recording one line per file operation and per error,
// plus a security-event record type. Grounded on
// original_source/src/utils/audit_logger.py for the record shape. It uses
// sirupsen/logrus, the same library internal/logging formats with, but
// each Logger has its own logrus instance and writes its own file.
package audit

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger appends structured JSON records to a configured file, or
// discards them if no file was configured. It satisfies
// fileops.AuditSink.
type Logger struct {
	mu   sync.Mutex
	base *logrus.Logger
	file *os.File
}

// New returns a ready-to-use Logger. If path is empty, records are
// discarded (a "null sink", per spec §4.5's "audit sink may be null").
func New(path string) (*Logger, error) {
	l := &Logger{base: logrus.New()}
	l.base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	if path == "" {
		l.base.SetOutput(logrusDiscard{})
		return l, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	l.file = f
	l.base.SetOutput(f)
	return l, nil
}

// logrusDiscard is an io.Writer that drops everything written to it,
// used instead of io.Discard directly so the zero value of Logger still
// has a valid, non-nil output.
type logrusDiscard struct{}

func (logrusDiscard) Write(p []byte) (int, error) { return len(p), nil }

// LogOperation records a successful file transfer: {operation, source,
// target, ts}, matching spec §6.3's event shape (user is left blank —
// the core runs as a single local caller with no multi-user concept).
func (l *Logger) LogOperation(operation, source, target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.base.WithFields(logrus.Fields{
		"event":     "operation",
		"operation": operation,
		"source":    source,
		"target":    target,
	}).Info("file operation")
}

// LogError records a failed file transfer: {operation, source, target,
// error}, where error is err's message.
func (l *Logger) LogError(operation string, err error, source, target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.base.WithFields(logrus.Fields{
		"event":     "error",
		"operation": operation,
		"source":    source,
		"target":    target,
		"error":     err.Error(),
	}).Warn("file operation failed")
}

// LogSecurityEvent records a rejected path or pattern: {reason, path}.
// The sanitizer and validator do not call it; security rejections reach
// the caller only as returned errors.
func (l *Logger) LogSecurityEvent(reason, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.base.WithFields(logrus.Fields{
		"event":  "security",
		"reason": reason,
		"path":   path,
	}).Warn("security event")
}

// Close releases the underlying file handle, if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

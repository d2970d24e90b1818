// Package testutil provides shared test helpers: a recording logger for
// asserting on log output without a real zap backend.
package testutil

import (
	"sync"

	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// RecordingLogger implements logging.Logger and captures every entry for
// later inspection.  Safe for concurrent use; With/Named children share the
// parent's entry store.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
	fields  []logging.Field
	name    string
}

// NewRecordingLogger returns an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, msg string, fields []logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := make([]logging.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: all})
}

func (l *RecordingLogger) Debug(msg string, fields ...logging.Field) { l.record("debug", msg, fields) }
func (l *RecordingLogger) Info(msg string, fields ...logging.Field)  { l.record("info", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...logging.Field)  { l.record("warn", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...logging.Field) { l.record("error", msg, fields) }

// With returns a child sharing this logger's entry store with the extra
// fields attached to every subsequent entry.
func (l *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	return &sharedLogger{
		root:   l,
		fields: append(append([]logging.Field{}, l.fields...), fields...),
		name:   l.name,
	}
}

// Named returns a child with a dotted name, sharing the entry store.
func (l *RecordingLogger) Named(name string) logging.Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	return &sharedLogger{root: l, fields: l.fields, name: full}
}

// Entries returns a copy of everything logged so far.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasMessage reports whether any entry carries the given message.
func (l *RecordingLogger) HasMessage(msg string) bool {
	for _, e := range l.Entries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// sharedLogger is a With/Named child that forwards into the root store.
type sharedLogger struct {
	root   *RecordingLogger
	fields []logging.Field
	name   string
}

func (s *sharedLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(s.fields)+len(fields))
	all = append(all, s.fields...)
	all = append(all, fields...)
	s.root.record(level, msg, all)
}

func (s *sharedLogger) Debug(msg string, fields ...logging.Field) { s.log("debug", msg, fields) }
func (s *sharedLogger) Info(msg string, fields ...logging.Field)  { s.log("info", msg, fields) }
func (s *sharedLogger) Warn(msg string, fields ...logging.Field)  { s.log("warn", msg, fields) }
func (s *sharedLogger) Error(msg string, fields ...logging.Field) { s.log("error", msg, fields) }

func (s *sharedLogger) With(fields ...logging.Field) logging.Logger {
	return &sharedLogger{
		root:   s.root,
		fields: append(append([]logging.Field{}, s.fields...), fields...),
		name:   s.name,
	}
}

func (s *sharedLogger) Named(name string) logging.Logger {
	full := name
	if s.name != "" {
		full = s.name + "." + name
	}
	return &sharedLogger{root: s.root, fields: s.fields, name: full}
}

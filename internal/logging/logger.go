package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Logger is the diagnostics sink handed to every engine component.
// Messages use printf-style formatting, like the package-level functions.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// stdLogger routes through the package-level leveled functions.
type stdLogger struct {
	prefix string
}

// Std returns a Logger backed by the process log output and LOG_LEVEL filtering.
func Std() Logger {
	return stdLogger{}
}

// Named returns a Logger that prefixes every message with "[name] ".
func Named(name string) Logger {
	return stdLogger{prefix: "[" + name + "] "}
}

func (l stdLogger) Debug(format string, args ...interface{}) { Debug(l.prefix+format, args...) }
func (l stdLogger) Info(format string, args ...interface{})  { Info(l.prefix+format, args...) }
func (l stdLogger) Warn(format string, args ...interface{})  { Warn(l.prefix+format, args...) }
func (l stdLogger) Error(format string, args ...interface{}) { Error(l.prefix+format, args...) }

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}

// Entry is a single message captured by a Recorder.
type Entry struct {
	Level   LogLevel
	Message string
}

// Recorder is a Logger that keeps every message in memory. It is safe for
// concurrent use and is intended for tests that assert on diagnostics.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level LogLevel, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (r *Recorder) Debug(format string, args ...interface{}) { r.record(LevelDebug, format, args...) }
func (r *Recorder) Info(format string, args ...interface{})  { r.record(LevelInfo, format, args...) }
func (r *Recorder) Warn(format string, args ...interface{})  { r.record(LevelWarn, format, args...) }
func (r *Recorder) Error(format string, args ...interface{}) { r.record(LevelError, format, args...) }

// Entries returns a copy of all recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many messages at level contain substr.
func (r *Recorder) Count(level LogLevel, substr string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

// AtLevel returns the messages recorded at level.
func (r *Recorder) AtLevel(level LogLevel) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

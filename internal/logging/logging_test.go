package logging

import (
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected LogLevel
	}{
		{name: "debug", input: "debug", expected: LevelDebug},
		{name: "info", input: "info", expected: LevelInfo},
		{name: "warn", input: "warn", expected: LevelWarn},
		{name: "warning alias", input: "warning", expected: LevelWarn},
		{name: "error", input: "error", expected: LevelError},
		{name: "case insensitive", input: "DEBUG", expected: LevelDebug},
		{name: "surrounding space", input: "  error ", expected: LevelError},
		{name: "empty defaults to info", input: "", expected: LevelInfo},
		{name: "unknown defaults to info", input: "verbose", expected: LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

// TestLoggingFunctions tests that logging functions don't panic
func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{name: "Debug", fn: func() { Debug("test message") }},
		{name: "Info", fn: func() { Info("test %s %d", "message", 123) }},
		{name: "Warn", fn: func() { Warn("test message") }},
		{name: "Error", fn: func() { Error("test message") }},
		{name: "Std logger", fn: func() { Std().Info("test %d", 1) }},
		{name: "Named logger", fn: func() { Named("restore").Warn("test %d", 1) }},
		{name: "Discard", fn: func() { Discard.Error("dropped") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Function panicked: %v", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.Debug("debug %d", 1)
	rec.Info("info")
	rec.Warn("warn about %s", "uri")
	rec.Warn("warn again")
	rec.Error("boom")

	if got := len(rec.Entries()); got != 5 {
		t.Fatalf("Entries() length = %d, want 5", got)
	}
	if got := rec.Count(LevelWarn, "warn"); got != 2 {
		t.Errorf("Count(warn) = %d, want 2", got)
	}
	if got := rec.Count(LevelWarn, "uri"); got != 1 {
		t.Errorf("Count(warn, uri) = %d, want 1", got)
	}
	if got := rec.AtLevel(LevelError); len(got) != 1 || got[0] != "boom" {
		t.Errorf("AtLevel(error) = %v, want [boom]", got)
	}
	if got := rec.AtLevel(LevelDebug); len(got) != 1 || got[0] != "debug 1" {
		t.Errorf("AtLevel(debug) = %v, want [debug 1]", got)
	}
}

func TestRecorderConcurrent(t *testing.T) {
	rec := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec.Info("message %d", n)
		}(i)
	}
	wg.Wait()

	if got := len(rec.AtLevel(LevelInfo)); got != 20 {
		t.Errorf("recorded %d info messages, want 20", got)
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

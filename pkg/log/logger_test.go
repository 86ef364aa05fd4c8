package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	SetLevel(Notice)
	defer SetLevel(Notice)

	logger := New("test")
	logger.Debugf("hidden %d", 1)
	logger.Noticef("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "[test]") {
		t.Errorf("Expected notice message with module name, got %q", out)
	}

	SetLevel(Debug)
	if !Enabled(Debug) {
		t.Error("Expected debug level to be enabled after SetLevel(Debug)")
	}
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("Expected debug message after raising verbosity, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected Level
		ok       bool
	}{
		{"debug", Debug, true},
		{"info", Info, true},
		{"warn", Warning, true},
		{"error", Error, true},
		{"loud", Notice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.name)
			if level != tt.expected || ok != tt.ok {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.expected, tt.ok, level, ok)
			}
		})
	}
}

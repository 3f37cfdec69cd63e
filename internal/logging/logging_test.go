package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"bogus", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("warn") {
		t.Error("warn should be valid")
	}
	if ValidLevel("verbose") {
		t.Error("verbose should not be valid")
	}
}

func TestComponentAddsKey(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(Options{Prefix: "test", Level: log.DebugLevel, Output: &buf})

	Component(l, "chain").Info("started")

	out := buf.String()
	if !strings.Contains(out, "component=chain") {
		t.Errorf("output %q missing component key", out)
	}
	if !strings.Contains(out, "started") {
		t.Errorf("output %q missing message", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(Options{Level: log.WarnLevel, Output: &buf})

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record should be written")
	}
}

func TestNilComponentParent(t *testing.T) {
	l := Component(nil, "x")
	if l == nil {
		t.Fatal("Component(nil) returned nil")
	}
	l.Error("dropped")
}

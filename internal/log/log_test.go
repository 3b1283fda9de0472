package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLevelsAndErrorKey(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	Debug("hidden line")
	Info("shown line", "month", 6)
	Error("render failed", errors.New("boom"), "kind", "calendar")

	out := buf.String()
	if strings.Contains(out, "hidden line") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "shown line") || !strings.Contains(out, "month=6") {
		t.Errorf("info line missing: %q", out)
	}
	if !strings.Contains(out, "err=boom") || !strings.Contains(out, "kind=calendar") {
		t.Errorf("error line missing fields: %q", out)
	}

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug line missing at debug level: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"ERROR", LevelError},
		{"info", LevelInfo},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("filtered messages leaked: %q", out)
	}
	if !strings.Contains(out, "WARN: shown 3") || !strings.Contains(out, "ERROR: shown 4") {
		t.Fatalf("missing messages: %q", out)
	}
}

func TestLevelNoneSilencesErrors(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelNone)
	l.Errorf("boom")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	if l.Enabled(LevelError) {
		t.Fatalf("LevelNone must disable everything")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"Error":   LevelError,
		"off":     LevelNone,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if LevelFromString("loud") != LevelInfo {
		t.Fatalf("LevelFromString should fall back to INFO")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Infof("nothing happens")
	if l.Enabled(LevelDebug) {
		t.Fatalf("nil logger reported enabled")
	}
}

package commands

import (
	"bytes"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIdentify(t *testing.T) {
	out, err := execute(t, "identify", "G", "C", "E")
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	want := "C Major\nshape [[0,0],[0,1],[1,0]]\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestIdentifyNonChord(t *testing.T) {
	out, err := execute(t, "identify", "C", "D")
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if !strings.HasPrefix(out, "no library chord\n") {
		t.Fatalf("output = %q", out)
	}
}

func TestLocate(t *testing.T) {
	out, err := execute(t, "locate", "E", "G")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if out != "E (0,1)\nG (1,0)\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestLocateHonoursIntervalFlags(t *testing.T) {
	out, err := execute(t, "locate", "--q-interval", "2", "D", "C#")
	if err == nil || !strings.Contains(err.Error(), "C#") {
		t.Fatalf("expected C# to be unreachable, got %v", err)
	}
	if !strings.HasPrefix(out, "D (1,0)\n") {
		t.Fatalf("output = %q", out)
	}
}

func TestBadRootRejected(t *testing.T) {
	if _, err := execute(t, "locate", "--root", "H", "C"); err == nil {
		t.Fatalf("invalid root accepted")
	}
}

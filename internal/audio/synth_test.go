package audio

import (
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/ingyamilmolinar/tonnetz/core/engine"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

var testLogger *game_log.Logger

func init() {
	testLogger = game_log.New(io.Discard, game_log.LevelError)
}

func firstNonZero(buf []byte) int {
	for i := 0; i < len(buf)/2; i++ {
		if int16(buf[2*i])|int16(buf[2*i+1])<<8 != 0 {
			return i
		}
	}
	return -1
}

func TestSilentWithoutNotes(t *testing.T) {
	s := NewSynth(0.3, testLogger)
	buf := make([]byte, SampleRate/10*2)
	if n, err := s.Read(buf); err != nil || n != len(buf) {
		t.Fatalf("read = %d, %v", n, err)
	}
	if firstNonZero(buf) != -1 {
		t.Fatalf("silence expected")
	}
}

func TestNoteStartsWithin50ms(t *testing.T) {
	s := NewSynth(0.3, testLogger)
	s.SetNotes([]string{"A"})
	buf := make([]byte, SampleRate/10*2) // 0.1s of 16-bit mono
	s.Read(buf)
	first := firstNonZero(buf)
	if first == -1 {
		t.Fatalf("no audio produced")
	}
	delay := time.Duration(first) * time.Second / SampleRate
	if delay > 50*time.Millisecond {
		t.Fatalf("start delay %v exceeds 50ms", delay)
	}
}

func TestReleaseRemovesVoice(t *testing.T) {
	s := NewSynth(0.3, testLogger)
	s.SetNotes([]string{"C", "E", "G"})
	s.Read(make([]byte, SampleRate/50*2))
	s.SetNotes([]string{"C"})
	if got := s.Sounding(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("sounding = %v", got)
	}
	if s.Voices() != 3 {
		t.Fatalf("released voices dropped before their tail: %d", s.Voices())
	}
	s.Read(make([]byte, SampleRate/10*2))
	if s.Voices() != 1 {
		t.Fatalf("voices after release = %d", s.Voices())
	}
}

func TestReturningNoteCancelsRelease(t *testing.T) {
	s := NewSynth(0.3, testLogger)
	s.SetNotes([]string{"C5"})
	s.Read(make([]byte, SampleRate/50*2))
	s.SetNotes(nil)
	s.Read(make([]byte, SampleRate/100*2))
	s.Update(engine.Update{Notes: []string{"C5"}})
	s.Read(make([]byte, SampleRate/10*2))
	if got := s.Sounding(); !reflect.DeepEqual(got, []string{"C5"}) || s.Voices() != 1 {
		t.Fatalf("sounding = %v voices = %d", got, s.Voices())
	}
}

func TestUnknownNoteSkipped(t *testing.T) {
	s := NewSynth(0.3, testLogger)
	s.SetNotes([]string{"H", "D"})
	if got := s.Sounding(); !reflect.DeepEqual(got, []string{"D"}) {
		t.Fatalf("sounding = %v", got)
	}
}

func TestOutputClipped(t *testing.T) {
	s := NewSynth(10, testLogger)
	s.SetNotes([]string{"C", "D", "E", "F", "G", "A", "B"})
	buf := make([]byte, SampleRate/10*2)
	s.Read(buf)
	clipped := false
	for i := 0; i < len(buf)/2; i++ {
		v := int16(buf[2*i]) | int16(buf[2*i+1])<<8
		if v == 32767 || v == -32767 {
			clipped = true
		}
		if v == -32768 {
			t.Fatalf("sample %d wrapped", i)
		}
	}
	if !clipped {
		t.Fatalf("loud chord never reached full scale")
	}
}

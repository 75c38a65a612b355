// Package audio renders the sounding note set as a bank of sine voices and
// streams it to the output device.
package audio

import (
	"math"
	"sort"
	"sync"

	"github.com/ingyamilmolinar/tonnetz/core/engine"
	"github.com/ingyamilmolinar/tonnetz/core/pitch"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

const (
	SampleRate          = 44100
	bufferSizeBytes10ms = SampleRate / 100 * 2 // 10ms of 16-bit mono audio

	attackSamples  = SampleRate * 5 / 1000
	releaseSamples = SampleRate * 60 / 1000
)

// voice is one sustained sine. Its envelope ramps up on attack, holds while
// the note sounds and ramps down once released.
type voice struct {
	step      float64 // radians per sample
	phase     float64
	env       float64
	releasing bool
}

func newVoice(freq float64) *voice {
	return &voice{step: 2 * math.Pi * freq / SampleRate}
}

// Sample returns the next sample and whether the voice has finished.
func (v *voice) Sample() (float64, bool) {
	if v.releasing {
		v.env -= 1.0 / releaseSamples
		if v.env <= 0 {
			return 0, true
		}
	} else if v.env < 1 {
		v.env += 1.0 / attackSamples
		if v.env > 1 {
			v.env = 1
		}
	}
	s := math.Sin(v.phase) * v.env
	v.phase += v.step
	if v.phase > 2*math.Pi {
		v.phase -= 2 * math.Pi
	}
	return s, false
}

// Synth mixes one voice per sounding note into signed 16-bit mono PCM. It
// is an io.Reader for the output player.
type Synth struct {
	mu     sync.Mutex
	voices map[string]*voice
	gain   float64
	logger *game_log.Logger
}

func NewSynth(gain float64, logger *game_log.Logger) *Synth {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Synth{voices: map[string]*voice{}, gain: gain, logger: logger}
}

// SetNotes starts voices for new notes and releases the ones no longer
// listed. A note that comes back during its release keeps its phase.
func (s *Synth) SetNotes(notes []string) {
	want := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		want[n] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for n := range want {
		if v, ok := s.voices[n]; ok {
			v.releasing = false
			continue
		}
		p, err := pitch.PitchOf(n)
		if err != nil {
			s.logger.Warnf("[AUDIO] skipping %q: %v", n, err)
			continue
		}
		s.voices[n] = newVoice(pitch.Frequency(p))
		s.logger.Debugf("[AUDIO] note on %s", n)
	}
	for n, v := range s.voices {
		if _, ok := want[n]; !ok && !v.releasing {
			v.releasing = true
			s.logger.Debugf("[AUDIO] note off %s", n)
		}
	}
}

// Update adapts SetNotes to the engine's subscriber signature.
func (s *Synth) Update(u engine.Update) { s.SetNotes(u.Notes) }

// Sounding lists the held notes, excluding voices in their release.
func (s *Synth) Sounding() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for n, v := range s.voices {
		if !v.releasing {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Voices counts every live voice, releasing ones included.
func (s *Synth) Voices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

func (s *Synth) SetGain(g float64) {
	s.mu.Lock()
	s.gain = g
	s.mu.Unlock()
}

// Read implements io.Reader for oto.Player.
func (s *Synth) Read(p []byte) (int, error) {
	samples := len(p) / 2
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < samples; i++ {
		var sum float64
		for n, v := range s.voices {
			val, done := v.Sample()
			if done {
				delete(s.voices, n)
				continue
			}
			sum += val
		}
		sum *= s.gain
		if sum > 1 {
			sum = 1
		} else if sum < -1 {
			sum = -1
		}
		v := int16(sum * 32767)
		p[2*i] = byte(v)
		p[2*i+1] = byte(v >> 8)
	}
	return samples * 2, nil
}

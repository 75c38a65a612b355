// Package midi mirrors the sounding note set onto a MIDI output port.
package midi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/ingyamilmolinar/tonnetz/core/engine"
	"github.com/ingyamilmolinar/tonnetz/core/pitch"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

var ErrPortNotFound = errors.New("midi output port not found")

const defaultVelocity = 100

// Sink turns note set changes into NoteOn/NoteOff messages.
type Sink struct {
	mu       sync.Mutex
	send     func(gomidi.Message) error
	channel  uint8
	velocity uint8
	held     map[string]uint8 // note name -> key
	logger   *game_log.Logger
}

func NewSink(send func(gomidi.Message) error, channel uint8, logger *game_log.Logger) *Sink {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Sink{
		send:     send,
		channel:  channel & 0x0f,
		velocity: defaultVelocity,
		held:     map[string]uint8{},
		logger:   logger,
	}
}

// Ports lists the output port names the loaded driver exposes.
func Ports() []string {
	var names []string
	for _, p := range gomidi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

// Open connects to the first output whose name contains port, or to the
// first output at all when port is empty. A driver must be registered by
// importing it.
func Open(port string, channel uint8, logger *game_log.Logger) (*Sink, error) {
	for _, p := range gomidi.GetOutPorts() {
		if port != "" && !strings.Contains(p.String(), port) {
			continue
		}
		send, err := gomidi.SendTo(p)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", p.String(), err)
		}
		if logger != nil {
			logger.Infof("[MIDI] sending to %s on channel %d", p.String(), channel)
		}
		return NewSink(send, channel, logger), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, port)
}

// SetNotes releases keys no longer listed and strikes the new ones. Notes
// outside the MIDI key range are ignored.
func (s *Sink) SetNotes(notes []string) {
	want := map[string]uint8{}
	for _, n := range notes {
		p, err := pitch.PitchOf(n)
		if err != nil {
			s.logger.Warnf("[MIDI] skipping %q: %v", n, err)
			continue
		}
		k := pitch.MIDINumber(p)
		if k < 0 || k > 127 {
			continue
		}
		want[n] = uint8(k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range sortedNames(s.held) {
		if _, ok := want[n]; !ok {
			s.emit(gomidi.NoteOff(s.channel, s.held[n]))
			delete(s.held, n)
		}
	}
	for _, n := range sortedNames(want) {
		if _, ok := s.held[n]; !ok {
			s.emit(gomidi.NoteOn(s.channel, want[n], s.velocity))
			s.held[n] = want[n]
		}
	}
}

// Update adapts SetNotes to the engine's subscriber signature.
func (s *Sink) Update(u engine.Update) { s.SetNotes(u.Notes) }

// Held lists the keys currently down, ascending.
func (s *Sink) Held() []uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint8, 0, len(s.held))
	for _, k := range s.held {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close releases every held key.
func (s *Sink) Close() error {
	s.SetNotes(nil)
	return nil
}

func (s *Sink) emit(msg gomidi.Message) {
	if err := s.send(msg); err != nil {
		s.logger.Errorf("[MIDI] send %v: %v", msg, err)
	}
}

func sortedNames(m map[string]uint8) []string {
	out := make([]string, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

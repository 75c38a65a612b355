// Package pitch maps lattice coordinates to pitches and names.
//
// A pitch is an unreduced semitone count where 0 is C4. Callers reduce with
// Mod12 when they only care about the pitch class.
package pitch

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ingyamilmolinar/tonnetz/internal/utils"
)

var ErrUnknownNote = errors.New("unknown note name")

// Names uses sharps only; flats are accepted by ParseNote and normalised.
var Names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flats = map[string]string{
	"DB": "C#", "EB": "D#", "GB": "F#", "AB": "G#", "BB": "A#",
	"CB": "B", "FB": "E", "E#": "F", "B#": "C",
}

// PitchClass is deliberately not reduced.
func PitchClass(q, r, root, qInterval, rInterval int) int {
	return root + qInterval*q + rInterval*r
}

func Mod12(n int) int {
	return ((n % 12) + 12) % 12
}

// Octave of a pitch, with pitch 0 in octave 4.
func Octave(p int) int {
	return utils.FloorDiv(p, 12) + 4
}

// NoteName returns "E" in single-octave mode and "E4" otherwise.
func NoteName(p int, singleOctave bool) string {
	name := Names[Mod12(p)]
	if singleOctave {
		return name
	}
	return name + strconv.Itoa(Octave(p))
}

// ParseNote splits a name like "Bb3" into its semitone (0-11) and octave.
// hasOctave is false for bare pitch-class names.
func ParseNote(name string) (semitone, octave int, hasOctave bool, err error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, 0, false, fmt.Errorf("%w: empty", ErrUnknownNote)
	}
	i := 1
	if len(s) > 1 && (s[1] == '#' || s[1] == 'b') {
		i = 2
	}
	head := strings.ToUpper(s[:i])
	if fixed, ok := flats[head]; ok {
		head = fixed
	}
	semitone = -1
	for idx, n := range Names {
		if n == head {
			semitone = idx
			break
		}
	}
	if semitone < 0 {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	// Cb4 and B#3 cross the octave boundary.
	octaveShift := 0
	switch strings.ToUpper(s[:i]) {
	case "CB":
		octaveShift = -1
	case "B#":
		octaveShift = 1
	}
	rest := s[i:]
	if rest == "" {
		return semitone, 4, false, nil
	}
	octave, convErr := strconv.Atoi(rest)
	if convErr != nil {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	return semitone, octave + octaveShift, true, nil
}

// PitchOf converts a name to a pitch; bare names land in octave 4.
func PitchOf(name string) (int, error) {
	st, oct, _, err := ParseNote(name)
	if err != nil {
		return 0, err
	}
	return (oct-4)*12 + st, nil
}

// PitchClassOf returns the 0-11 class of a name, ignoring any octave.
func PitchClassOf(name string) (int, error) {
	st, _, _, err := ParseNote(name)
	return st, err
}

// MIDINumber maps pitch 0 (C4) to MIDI key 60.
func MIDINumber(p int) int { return p + 60 }

// Frequency in Hz, equal temperament with A4 = 440.
func Frequency(p int) float64 {
	return 440 * math.Pow(2, float64(p-9)/12)
}

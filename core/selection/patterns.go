package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
	"github.com/ingyamilmolinar/tonnetz/core/pitch"
	"github.com/ingyamilmolinar/tonnetz/internal/utils"
)

var (
	ErrNoteNotFound   = errors.New("note not reachable on the lattice")
	ErrUnknownPattern = errors.New("unknown pattern")
)

// Chords and Scales are semitone sets above the root.
var Chords = map[string][]int{
	"Major":           {0, 4, 7},
	"Minor":           {0, 3, 7},
	"Diminished":      {0, 3, 6},
	"Augmented":       {0, 4, 8},
	"Sus2":            {0, 2, 7},
	"Sus4":            {0, 5, 7},
	"Major 7th":       {0, 4, 7, 11},
	"Minor 7th":       {0, 3, 7, 10},
	"Dominant 7th":    {0, 4, 7, 10},
	"Half-diminished": {0, 3, 6, 10},
}

var Scales = map[string][]int{
	"Major Scale":      {0, 2, 4, 5, 7, 9, 11},
	"Natural Minor":    {0, 2, 3, 5, 7, 8, 10},
	"Major Pentatonic": {0, 2, 4, 7, 9},
	"Minor Pentatonic": {0, 3, 5, 7, 10},
	"Whole Tone":       {0, 2, 4, 6, 8, 10},
	"Blues":            {0, 3, 5, 6, 7, 10},
}

type Mode int

const (
	Ionian Mode = iota
	Dorian
	Phrygian
	Lydian
	Mixolydian
	Aeolian
	Locrian
)

var modeNames = [...]string{"Ionian", "Dorian", "Phrygian", "Lydian", "Mixolydian", "Aeolian", "Locrian"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Shift is how many fifths the mode's root sits above the root of the
// major scale it rotates.
func (m Mode) Shift() int {
	switch m {
	case Lydian:
		return -1
	case Mixolydian:
		return 1
	case Dorian:
		return 2
	case Aeolian:
		return 3
	case Phrygian:
		return 4
	case Locrian:
		return 5
	}
	return 0
}

func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Mode(i), nil
		}
	}
	return Ionian, fmt.Errorf("%w: mode %q", ErrUnknownPattern, s)
}

const offsetSearch = 12

// OffsetsFor places each semitone of a pattern at the lattice offset closest
// to the origin that produces it under the current intervals. Semitones the
// intervals cannot reach are returned in missing.
func (e *Engine) OffsetsFor(semitones []int) (offsets []geom.Axial, missing []int) {
	for _, st := range semitones {
		best, found := geom.Axial{}, false
		for q := -offsetSearch; q <= offsetSearch; q++ {
			for r := -offsetSearch; r <= offsetSearch; r++ {
				if pitch.Mod12(e.opts.QInterval*q+e.opts.RInterval*r) != pitch.Mod12(st) {
					continue
				}
				c := geom.Axial{Q: q, R: r}
				if !found || closer(c, best) {
					best, found = c, true
				}
			}
		}
		if !found {
			missing = append(missing, st)
			continue
		}
		offsets = append(offsets, best)
	}
	return offsets, missing
}

func closer(a, b geom.Axial) bool {
	ma, mb := utils.Abs(a.Q)+utils.Abs(a.R), utils.Abs(b.Q)+utils.Abs(b.R)
	if ma != mb {
		return ma < mb
	}
	var o geom.Axial
	if da, db := a.Dist(o), b.Dist(o); da != db {
		return da < db
	}
	return a.Less(b)
}

// ApplyPattern adds the note at every offset from root to the pattern
// overlay and hints the matching points. Nothing changes when the root
// cannot be located.
func (e *Engine) ApplyPattern(offsets []geom.Axial, root string, now time.Time) error {
	at, err := e.Locate(root)
	if err != nil {
		e.logger.Warnf("[SELECT] pattern at %q skipped: %v", root, err)
		return err
	}
	added := make([]string, 0, len(offsets))
	for _, off := range offsets {
		name := e.Name(at.Add(off))
		e.pattern[name] = struct{}{}
		added = append(added, name)
	}
	e.hintMaterialised()
	e.logger.Debugf("[SELECT] pattern at %s: %v", root, added)
	e.touch(now)
	return nil
}

// ApplyChord replaces the overlay with a named chord.
func (e *Engine) ApplyChord(name, root string, now time.Time) error {
	return e.applyNamed(Chords, "chord", name, root, now)
}

// ApplyScale replaces the overlay with a named scale.
func (e *Engine) ApplyScale(name, root string, now time.Time) error {
	return e.applyNamed(Scales, "scale", name, root, now)
}

func (e *Engine) applyNamed(lib map[string][]int, kind, name, root string, now time.Time) error {
	sts, ok := lib[name]
	if !ok {
		e.logger.Warnf("[SELECT] unknown %s %q", kind, name)
		return fmt.Errorf("%w: %s %q", ErrUnknownPattern, kind, name)
	}
	if _, err := e.Locate(root); err != nil {
		e.logger.Warnf("[SELECT] %s %q at %q skipped: %v", kind, name, root, err)
		return err
	}
	offsets, missing := e.OffsetsFor(sts)
	if len(missing) > 0 {
		e.logger.Warnf("[SELECT] %s %q: semitones %v unreachable with intervals %d/%d",
			kind, name, missing, e.opts.QInterval, e.opts.RInterval)
	}
	e.clearHints()
	e.pattern = map[string]struct{}{}
	return e.ApplyPattern(offsets, root, now)
}

// ApplyMode shows a diatonic mode as the major scale it is a rotation of:
// the scale is anchored Shift fifths below the mode's root.
func (e *Engine) ApplyMode(m Mode, root string, now time.Time) error {
	st, oct, hasOct, err := pitch.ParseNote(root)
	if err != nil {
		return err
	}
	p := (oct-4)*12 + st
	parent := p - pitch.Mod12(7*m.Shift())
	name := pitch.NoteName(parent, !hasOct)
	e.logger.Debugf("[SELECT] %s %s uses the major scale of %s", root, m, name)
	return e.ApplyScale("Major Scale", name, now)
}

// ClearPattern removes the overlay and returns hinted points to their
// previous tags.
func (e *Engine) ClearPattern(now time.Time) {
	if len(e.pattern) == 0 {
		return
	}
	e.clearHints()
	e.pattern = map[string]struct{}{}
	e.prune()
	e.touch(now)
}

func (e *Engine) clearHints() {
	for a := range e.tags {
		e.unhint(a)
	}
}

// hintMaterialised applies the hint to points that carry explicit state.
// Every other point picks it up through entryFor.
func (e *Engine) hintMaterialised() {
	for a := range e.tags {
		if _, ok := e.pattern[e.Name(a)]; ok {
			e.toHinted(a)
		}
	}
	e.prune()
}

var searchRadii = []int{5, 10, 20}

// Locate finds the lattice coordinate of a note nearest the origin, by hex
// distance. A bare name matches any octave. The search widens over hex
// rings and is bounded; ErrNoteNotFound means the intervals cannot reach
// the note within it.
func (e *Engine) Locate(note string) (geom.Axial, error) {
	st, oct, hasOct, err := pitch.ParseNote(note)
	if err != nil {
		return geom.Axial{}, err
	}
	want := (oct-4)*12 + st
	key := pitch.Names[st]
	if hasOct {
		key = pitch.NoteName(want, false)
	}
	if a, ok := e.coordCache[key]; ok {
		return a, nil
	}
	match := func(a geom.Axial) bool {
		p := e.Pitch(a)
		if hasOct {
			return p == want
		}
		return pitch.Mod12(p) == st
	}
	var origin geom.Axial
	inner := -1
	for _, radius := range searchRadii {
		best, found := geom.Axial{}, false
		for q := -radius; q <= radius; q++ {
			for r := -radius; r <= radius; r++ {
				a := geom.Axial{Q: q, R: r}
				if d := a.Dist(origin); d > radius || d <= inner {
					continue
				}
				if !match(a) {
					continue
				}
				if !found || a.Dist(origin) < best.Dist(origin) ||
					(a.Dist(origin) == best.Dist(origin) && closer(a, best)) {
					best, found = a, true
				}
			}
		}
		if found {
			e.coordCache[key] = best
			return best, nil
		}
		inner = radius
	}
	return geom.Axial{}, fmt.Errorf("%w: %s within %d cells", ErrNoteNotFound, note, searchRadii[len(searchRadii)-1])
}

// PatternKey normalises a note set for caching.
func PatternKey(notes []string) string {
	s := append([]string(nil), notes...)
	sort.Strings(s)
	return strings.Join(s, ",")
}

// RelativePattern encodes a note set as JSON offsets from its first note in
// sorted order, e.g. [[0,0],[0,1],[1,0]] for C E G in the default lattice.
// Results are cached until the pitch configuration changes.
func (e *Engine) RelativePattern(notes []string) (string, error) {
	if len(notes) == 0 {
		return "[]", nil
	}
	key := PatternKey(notes)
	if p, ok := e.patternCache[key]; ok {
		return p, nil
	}
	sorted := strings.Split(key, ",")
	anchor, err := e.Locate(sorted[0])
	if err != nil {
		return "", err
	}
	offs := make([][2]int, 0, len(sorted))
	for _, n := range sorted {
		a, err := e.Locate(n)
		if err != nil {
			return "", err
		}
		d := a.Sub(anchor)
		offs = append(offs, [2]int{d.Q, d.R})
	}
	b, err := json.Marshal(offs)
	if err != nil {
		return "", fmt.Errorf("encode pattern: %w", err)
	}
	e.patternCache[key] = string(b)
	return string(b), nil
}

// IdentifyChord names a note set when it is a library chord over one of its
// notes, e.g. "A Minor".
func IdentifyChord(notes []string) (string, bool) {
	pcs := map[int]struct{}{}
	for _, n := range notes {
		pc, err := pitch.PitchClassOf(n)
		if err != nil {
			return "", false
		}
		pcs[pc] = struct{}{}
	}
	if len(pcs) < 3 {
		return "", false
	}
	names := make([]string, 0, len(Chords))
	for n := range Chords {
		names = append(names, n)
	}
	sort.Strings(names)
	roots := make([]int, 0, len(pcs))
	for pc := range pcs {
		roots = append(roots, pc)
	}
	sort.Ints(roots)
	for _, root := range roots {
		for _, name := range names {
			sts := Chords[name]
			if len(sts) != len(pcs) {
				continue
			}
			ok := true
			for _, st := range sts {
				if _, in := pcs[pitch.Mod12(root+st)]; !in {
					ok = false
					break
				}
			}
			if ok {
				return pitch.Names[root] + " " + name, true
			}
		}
	}
	return "", false
}

package selection

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
	"github.com/ingyamilmolinar/tonnetz/core/pitch"
)

func TestDorianIsRotatedMajor(t *testing.T) {
	dorian := newTestEngine(t, nil)
	if err := dorian.ApplyMode(Dorian, "D", t0); err != nil {
		t.Fatalf("apply mode: %v", err)
	}
	major := newTestEngine(t, nil)
	if err := major.ApplyScale("Major Scale", "C", t0); err != nil {
		t.Fatalf("apply scale: %v", err)
	}
	got, want := dorian.State().PatternNotes, major.State().PatternNotes
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("D dorian = %v, C major = %v", got, want)
	}
	if !reflect.DeepEqual(want, []string{"A", "B", "C", "D", "E", "F", "G"}) {
		t.Fatalf("C major = %v", want)
	}
}

func TestModesShareParentScale(t *testing.T) {
	roots := map[Mode]string{
		Ionian: "C", Dorian: "D", Phrygian: "E", Lydian: "F",
		Mixolydian: "G", Aeolian: "A", Locrian: "B",
	}
	ref := newTestEngine(t, nil)
	if err := ref.ApplyScale("Major Scale", "C", t0); err != nil {
		t.Fatalf("apply scale: %v", err)
	}
	for m, root := range roots {
		e := newTestEngine(t, nil)
		if err := e.ApplyMode(m, root, t0); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if got := e.State().PatternNotes; !reflect.DeepEqual(got, ref.State().PatternNotes) {
			t.Fatalf("%s %s = %v", root, m, got)
		}
	}
	if m, err := ParseMode("mixolydian"); err != nil || m != Mixolydian {
		t.Fatalf("parse mode = %v %v", m, err)
	}
	if _, err := ParseMode("Hypodorian"); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("unknown mode err = %v", err)
	}
}

func TestModeKeepsOctave(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.SingleOctave = false })
	if err := e.ApplyMode(Dorian, "D4", t0); err != nil {
		t.Fatalf("apply mode: %v", err)
	}
	notes := e.State().PatternNotes
	found := false
	for _, n := range notes {
		if n == "C4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("D4 dorian should be anchored on C4: %v", notes)
	}
}

func TestUnknownPatternIsNoop(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.ApplyChord("Major", "A", t0); err != nil {
		t.Fatalf("apply chord: %v", err)
	}
	before := e.State().PatternNotes
	if err := e.ApplyChord("Mystery", "C", ms(1)); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("err = %v", err)
	}
	if err := e.ApplyScale("Mystery", "C", ms(2)); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("err = %v", err)
	}
	if err := e.ApplyChord("Major", "Q", ms(3)); !errors.Is(err, pitch.ErrUnknownNote) {
		t.Fatalf("err = %v", err)
	}
	if got := e.State().PatternNotes; !reflect.DeepEqual(got, before) {
		t.Fatalf("pattern changed to %v", got)
	}
	if !reflect.DeepEqual(before, []string{"A", "C#", "E"}) {
		t.Fatalf("A major = %v", before)
	}
}

func TestUnreachableNote(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.QInterval, o.RInterval = 2, 4 })
	if _, err := e.Locate("C#"); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("locate C# = %v", err)
	}
	if err := e.ApplyChord("Major", "C#", t0); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("apply at unreachable root = %v", err)
	}
	if len(e.State().PatternNotes) != 0 {
		t.Fatalf("unreachable root changed the overlay")
	}
	// G is odd semitones away and gets skipped
	if err := e.ApplyChord("Major", "C", ms(1)); err != nil {
		t.Fatalf("apply chord: %v", err)
	}
	if got := e.State().PatternNotes; !reflect.DeepEqual(got, []string{"C", "E"}) {
		t.Fatalf("partial chord = %v", got)
	}
}

func TestLocate(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.SingleOctave = false })
	cases := []struct {
		note string
		want geom.Axial
	}{
		{"C", geom.Axial{}},
		{"E4", geom.Axial{Q: 0, R: 1}},
		{"G4", geom.Axial{Q: 1, R: 0}},
		{"C5", geom.Axial{Q: 0, R: 3}},
		{"Bb", geom.Axial{Q: -2, R: 0}},
	}
	for _, c := range cases {
		got, err := e.Locate(c.note)
		if err != nil {
			t.Fatalf("locate %s: %v", c.note, err)
		}
		if got != c.want {
			t.Fatalf("locate %s = %v want %v", c.note, got, c.want)
		}
		if p := e.Pitch(got); pitch.Mod12(p) != pitch.Mod12(e.Pitch(c.want)) {
			t.Fatalf("pitch mismatch for %s", c.note)
		}
	}
	if _, ok := e.coordCache["E4"]; !ok {
		t.Fatalf("coordinate cache not populated")
	}
	e.SetRoot("D", t0)
	if len(e.coordCache) != 0 {
		t.Fatalf("coordinate cache survived a root change")
	}
}

func TestOffsetsFor(t *testing.T) {
	e := newTestEngine(t, nil)
	offs, missing := e.OffsetsFor([]int{0, 4, 7, 9})
	want := []geom.Axial{{Q: 0, R: 0}, {Q: 0, R: 1}, {Q: 1, R: 0}, {Q: -1, R: 1}}
	if len(missing) != 0 || !reflect.DeepEqual(offs, want) {
		t.Fatalf("offsets = %v missing %v", offs, missing)
	}
}

func TestRelativePattern(t *testing.T) {
	e := newTestEngine(t, nil)
	got, err := e.RelativePattern([]string{"G", "C", "E"})
	if err != nil {
		t.Fatalf("relative pattern: %v", err)
	}
	if got != "[[0,0],[0,1],[1,0]]" {
		t.Fatalf("pattern = %s", got)
	}
	if _, ok := e.patternCache[PatternKey([]string{"E", "G", "C"})]; !ok {
		t.Fatalf("pattern not cached under its normalised key")
	}
	if got, _ := e.RelativePattern(nil); got != "[]" {
		t.Fatalf("empty pattern = %s", got)
	}
}

func TestIdentifyChord(t *testing.T) {
	cases := []struct {
		notes []string
		want  string
		ok    bool
	}{
		{[]string{"C", "E", "G"}, "C Major", true},
		{[]string{"A", "C", "E"}, "A Minor", true},
		{[]string{"G", "B", "D", "F"}, "G Dominant 7th", true},
		{[]string{"C4", "E4", "G#4"}, "C Augmented", true},
		{[]string{"C", "D"}, "", false},
		{[]string{"C", "D", "E"}, "", false},
	}
	for _, c := range cases {
		got, ok := IdentifyChord(c.notes)
		if ok != c.ok || got != c.want {
			t.Fatalf("identify %v = %q %v", c.notes, got, ok)
		}
	}
}

func TestLocatePrefersHexDistance(t *testing.T) {
	// F#6 sits at (5,5), ten steps out, and at (6,0), six steps out
	e := newTestEngine(t, func(o *Options) {
		o.QInterval, o.RInterval = 5, 1
		o.SingleOctave = false
	})
	got, err := e.Locate("F#6")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if want := (geom.Axial{Q: 6, R: 0}); got != want {
		t.Fatalf("locate F#6 = %v want %v", got, want)
	}
}

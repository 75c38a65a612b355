package selection

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ingyamilmolinar/tonnetz/core/model"
	"github.com/ingyamilmolinar/tonnetz/core/pitch"
)

type chordCache struct {
	valid  bool
	hash   string
	labels map[string]struct{}
	tris   map[model.TriKey]pitch.Chord
}

// noteSetHash normalises a sorted note set. The triangle count is part of the
// hash so faces materialised since the last run are considered.
func noteSetHash(notes []string, triangles int) string {
	return strings.Join(notes, ",") + "#" + strconv.Itoa(triangles)
}

// deriveChords finds every lattice triangle whose three notes are all in the
// active set. Enumerating 3-combinations is cubic in the set size, which is
// why it only runs from Tick behind the debouncer.
func (e *Engine) deriveChords() {
	notes := e.ActiveNotes()
	hash := noteSetHash(notes, e.store.TriangleCount())
	if e.chords.valid && e.chords.hash == hash {
		return
	}
	e.derivations++

	cache := chordCache{
		valid:  true,
		hash:   hash,
		labels: map[string]struct{}{},
		tris:   map[model.TriKey]pitch.Chord{},
	}
	if len(notes) >= 3 {
		index := e.triangleIndex()
		for i := 0; i < len(notes); i++ {
			for j := i + 1; j < len(notes); j++ {
				for k := j + 1; k < len(notes); k++ {
					for _, key := range index[notes[i]+"|"+notes[j]+"|"+notes[k]] {
						c := e.classify(key)
						cache.tris[key] = c
						cache.labels[c.Label] = struct{}{}
					}
				}
			}
		}
	}
	e.chords = cache
	e.logger.Debugf("[SELECT] derived %d chords over %d triangles from %v", len(cache.labels), len(cache.tris), notes)
}

// triangleIndex groups triangles by their sorted vertex names.
func (e *Engine) triangleIndex() map[string][]model.TriKey {
	index := make(map[string][]model.TriKey, e.store.TriangleCount())
	e.store.EachTriangle(func(t model.Triangle) {
		names := []string{e.Name(t.Key[0]), e.Name(t.Key[1]), e.Name(t.Key[2])}
		sort.Strings(names)
		k := strings.Join(names, "|")
		index[k] = append(index[k], t.Key)
	})
	return index
}

func (e *Engine) classify(k model.TriKey) pitch.Chord {
	return pitch.ClassifyTriad(
		[3]int{e.Pitch(k[0]), e.Pitch(k[1]), e.Pitch(k[2])},
		[3]string{e.Name(k[0]), e.Name(k[1]), e.Name(k[2])},
	)
}

// Derivations counts how many times the chord set was actually recomputed.
func (e *Engine) Derivations() int { return e.derivations }

// ChordLabels lists the labels of the highlighted chords, sorted.
func (e *Engine) ChordLabels() []string {
	return sortedKeys(e.chords.labels)
}

func (e *Engine) ChordTriangles() []model.TriKey {
	out := make([]model.TriKey, 0, len(e.chords.tris))
	for k := range e.chords.tris {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		for n := 0; n < 3; n++ {
			if out[i][n] != out[j][n] {
				return out[i][n].Less(out[j][n])
			}
		}
		return false
	})
	return out
}

// ChordAt reports the classification of a highlighted triangle.
func (e *Engine) ChordAt(k model.TriKey) (pitch.Chord, bool) {
	c, ok := e.chords.tris[k]
	return c, ok
}

func (e *Engine) IsChordTriangle(k model.TriKey) bool {
	_, ok := e.chords.tris[k]
	return ok
}

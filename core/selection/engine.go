// Package selection tracks what the user is touching on the lattice and
// derives the notes and chords that follow from it.
//
// Every mutation happens on the caller's goroutine. Timers are pumped by
// Tick; nothing here blocks or spawns goroutines.
package selection

import (
	"fmt"
	"sort"
	"time"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
	"github.com/ingyamilmolinar/tonnetz/core/model"
	"github.com/ingyamilmolinar/tonnetz/core/pitch"
	"github.com/ingyamilmolinar/tonnetz/core/timing"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

const (
	DefaultDragThrottle   = 16 * time.Millisecond
	DefaultDeriveDebounce = 16 * time.Millisecond
)

type Options struct {
	RootNote     string
	QInterval    int
	RInterval    int
	SingleOctave bool

	DragThrottle   time.Duration
	DeriveDebounce time.Duration
	DeriveMaxWait  time.Duration
}

// DefaultOptions is the Neo-Riemannian tonnetz: fifths along q, major thirds
// along r.
func DefaultOptions() Options {
	return Options{
		RootNote:       "C",
		QInterval:      7,
		RInterval:      4,
		SingleOctave:   true,
		DragThrottle:   DefaultDragThrottle,
		DeriveDebounce: DefaultDeriveDebounce,
		DeriveMaxWait:  2 * DefaultDeriveDebounce,
	}
}

// State is a read-only snapshot for status displays and tests.
type State struct {
	Options         Options
	Shift           bool
	Dragging        bool
	DragSet         []geom.Axial
	HighlightedNote string
	SelectedNotes   []string
	PatternNotes    []string
}

type Engine struct {
	opts  Options
	root  int
	store *model.Store

	tags     map[geom.Axial]entry
	shift    bool
	dragging bool
	dragSet  map[geom.Axial]struct{}
	trail    map[geom.Axial]struct{}
	selected map[geom.Axial]struct{}
	hovered  string
	pattern  map[string]struct{}

	throttle   *timing.Throttle
	pending    model.Target
	hasPending bool

	derive      *timing.Debouncer
	chords      chordCache
	derivations int

	coordCache   map[string]geom.Axial
	patternCache map[string]string

	logger *game_log.Logger
}

func New(opts Options, store *model.Store, logger *game_log.Logger) (*Engine, error) {
	if logger == nil {
		logger = game_log.Discard()
	}
	def := DefaultOptions()
	if opts.DragThrottle <= 0 {
		opts.DragThrottle = def.DragThrottle
	}
	if opts.DeriveDebounce <= 0 {
		opts.DeriveDebounce = def.DeriveDebounce
	}
	root, err := pitch.PitchOf(opts.RootNote)
	if err != nil {
		return nil, fmt.Errorf("root note: %w", err)
	}
	e := &Engine{
		opts:         opts,
		root:         root,
		store:        store,
		tags:         map[geom.Axial]entry{},
		dragSet:      map[geom.Axial]struct{}{},
		trail:        map[geom.Axial]struct{}{},
		selected:     map[geom.Axial]struct{}{},
		pattern:      map[string]struct{}{},
		throttle:     timing.NewThrottle(opts.DragThrottle),
		derive:       timing.NewDebouncer(opts.DeriveDebounce, opts.DeriveMaxWait),
		coordCache:   map[string]geom.Axial{},
		patternCache: map[string]string{},
		logger:       logger,
	}
	logger.Infof("[SELECT] root=%s q=%d r=%d singleOctave=%v", opts.RootNote, opts.QInterval, opts.RInterval, opts.SingleOctave)
	return e, nil
}

func (e *Engine) Options() Options { return e.opts }

// Pitch is the unreduced pitch of a coordinate.
func (e *Engine) Pitch(a geom.Axial) int {
	return pitch.PitchClass(a.Q, a.R, e.root, e.opts.QInterval, e.opts.RInterval)
}

// Name implements model.Namer.
func (e *Engine) Name(a geom.Axial) string {
	return pitch.NoteName(e.Pitch(a), e.opts.SingleOctave)
}

func (e *Engine) Tag(a geom.Axial) Tag { return e.entryFor(a).tag }

// TriangleTag is the tag all three corners share, Ready when they disagree.
func (e *Engine) TriangleTag(k model.TriKey) Tag {
	t := e.Tag(k[0])
	if e.Tag(k[1]) != t || e.Tag(k[2]) != t {
		return Ready
	}
	return t
}

func (e *Engine) Dragging() bool { return e.dragging }

func (e *Engine) Shift() bool { return e.shift }

func (e *Engine) SetShift(down bool) { e.shift = down }

// Press starts a drag seeded with the target's points, or toggles them when
// shift is held.
func (e *Engine) Press(t model.Target, now time.Time) {
	if t.Kind == model.TargetNone {
		return
	}
	if e.shift {
		e.Toggle(t, now)
		return
	}
	if e.dragging {
		e.Release(now)
	}
	e.dragging = true
	e.dragSet = map[geom.Axial]struct{}{}
	e.trail = map[geom.Axial]struct{}{}
	e.throttle.Reset()
	e.throttle.Allow(now)
	for _, a := range t.Points() {
		e.toActive(a)
		e.dragSet[a] = struct{}{}
	}
	e.logger.Debugf("[SELECT] press %s", t)
	e.touch(now)
}

// DragEnter moves the drag onto a new target. Calls inside the throttle
// window are parked and replayed by Tick, so the last target always lands.
func (e *Engine) DragEnter(t model.Target, now time.Time) {
	if !e.dragging || e.shift {
		return
	}
	if !e.throttle.Allow(now) {
		e.pending, e.hasPending = t, true
		return
	}
	e.applyDrag(t, now)
}

func (e *Engine) applyDrag(t model.Target, now time.Time) {
	e.hasPending = false
	next := map[geom.Axial]struct{}{}
	for _, a := range t.Points() {
		next[a] = struct{}{}
	}
	changed := false
	for a := range e.dragSet {
		if _, keep := next[a]; keep {
			continue
		}
		changed = true
		if _, sel := e.selected[a]; sel {
			continue
		}
		e.toDragPrev(a)
		e.trail[a] = struct{}{}
	}
	for a := range next {
		if _, had := e.dragSet[a]; had {
			continue
		}
		changed = true
		e.toActive(a)
		delete(e.trail, a)
	}
	e.dragSet = next
	if changed {
		e.logger.Debugf("[SELECT] drag over %s", t)
		e.touch(now)
	}
}

// Release ends the drag. Held points and the trail resolve to Inactive, or
// back to Hinted for points that were hinted.
func (e *Engine) Release(now time.Time) {
	if !e.dragging {
		return
	}
	if e.hasPending {
		e.applyDrag(e.pending, now)
	}
	for a := range e.dragSet {
		if _, sel := e.selected[a]; !sel {
			e.toInactive(a, Inactive)
		}
	}
	for a := range e.trail {
		if _, sel := e.selected[a]; !sel {
			e.toInactive(a, Inactive)
		}
	}
	e.dragging = false
	e.dragSet = map[geom.Axial]struct{}{}
	e.trail = map[geom.Axial]struct{}{}
	e.hasPending = false
	e.throttle.Reset()
	e.logger.Debugf("[SELECT] release")
	e.touch(now)
}

// Toggle flips selection membership of the target's points. A target that is
// fully selected is deselected; otherwise its missing points are added.
func (e *Engine) Toggle(t model.Target, now time.Time) {
	pts := t.Points()
	if len(pts) == 0 {
		return
	}
	all := true
	for _, a := range pts {
		if _, ok := e.selected[a]; !ok {
			all = false
			break
		}
	}
	for _, a := range pts {
		if all {
			delete(e.selected, a)
			e.toInactive(a, Inactive)
			continue
		}
		if _, ok := e.selected[a]; !ok {
			e.selected[a] = struct{}{}
			e.toActive(a)
		}
	}
	e.logger.Debugf("[SELECT] toggle %s selected=%v", t, !all)
	e.touch(now)
}

// Escape resets everything that is not hinted. The pattern overlay stays.
func (e *Engine) Escape(now time.Time) {
	for a, en := range e.tags {
		if en.tag != Hinted {
			e.toInactive(a, Ready)
		}
	}
	e.selected = map[geom.Axial]struct{}{}
	e.dragSet = map[geom.Axial]struct{}{}
	e.trail = map[geom.Axial]struct{}{}
	e.dragging = false
	e.hasPending = false
	e.hovered = ""
	e.prune()
	e.logger.Debugf("[SELECT] escape")
	e.touch(now)
}

// Hover highlights the note under the pointer while no drag is running.
func (e *Engine) Hover(t model.Target, now time.Time) {
	if e.dragging {
		return
	}
	name := ""
	if t.Kind == model.TargetPoint {
		name = e.Name(t.Point)
	}
	if name != e.hovered {
		e.hovered = name
		e.touch(now)
	}
}

func (e *Engine) Leave(now time.Time) { e.Hover(model.NoTarget, now) }

// LatticeGrew re-arms chord derivation so faces added by the store are
// checked against the active notes.
func (e *Engine) LatticeGrew(now time.Time) {
	e.touch(now)
}

// Tick replays a parked drag target and runs a due chord derivation.
func (e *Engine) Tick(now time.Time) {
	if e.hasPending && e.dragging && e.throttle.Allow(now) {
		e.applyDrag(e.pending, now)
	}
	if e.derive.Due(now) {
		e.deriveChords()
	}
}

// ActiveNotes is the sorted union of the hovered note, the dragged notes,
// the selected notes and the pattern notes.
func (e *Engine) ActiveNotes() []string {
	set := map[string]struct{}{}
	if e.hovered != "" {
		set[e.hovered] = struct{}{}
	}
	for a := range e.dragSet {
		set[e.Name(a)] = struct{}{}
	}
	for a := range e.selected {
		set[e.Name(a)] = struct{}{}
	}
	for n := range e.pattern {
		set[n] = struct{}{}
	}
	return sortedKeys(set)
}

func (e *Engine) State() State {
	sel := map[string]struct{}{}
	for a := range e.selected {
		sel[e.Name(a)] = struct{}{}
	}
	drag := make([]geom.Axial, 0, len(e.dragSet))
	for a := range e.dragSet {
		drag = append(drag, a)
	}
	sort.Slice(drag, func(i, j int) bool { return drag[i].Less(drag[j]) })
	return State{
		Options:         e.opts,
		Shift:           e.shift,
		Dragging:        e.dragging,
		DragSet:         drag,
		HighlightedNote: e.hovered,
		SelectedNotes:   sortedKeys(sel),
		PatternNotes:    sortedKeys(e.pattern),
	}
}

// SetRoot changes the pitch at the origin. Names, caches and hints follow.
func (e *Engine) SetRoot(note string, now time.Time) error {
	root, err := pitch.PitchOf(note)
	if err != nil {
		return fmt.Errorf("root note: %w", err)
	}
	e.reconfigure(now, func() {
		e.opts.RootNote = note
		e.root = root
	})
	return nil
}

func (e *Engine) SetIntervals(q, r int, now time.Time) {
	e.reconfigure(now, func() {
		e.opts.QInterval, e.opts.RInterval = q, r
	})
}

func (e *Engine) SetSingleOctave(on bool, now time.Time) {
	e.reconfigure(now, func() { e.opts.SingleOctave = on })
}

// reconfigure keeps the pattern notes but re-anchors the hints on the new
// names, and drops every cache keyed by names or coordinates.
func (e *Engine) reconfigure(now time.Time, apply func()) {
	e.clearHints()
	apply()
	e.coordCache = map[string]geom.Axial{}
	e.patternCache = map[string]string{}
	e.chords.valid = false
	e.hintMaterialised()
	e.logger.Infof("[SELECT] reconfigured root=%s q=%d r=%d singleOctave=%v",
		e.opts.RootNote, e.opts.QInterval, e.opts.RInterval, e.opts.SingleOctave)
	e.touch(now)
}

// touch marks the note set as possibly changed.
func (e *Engine) touch(now time.Time) {
	e.derive.Schedule(now)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

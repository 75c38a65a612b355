// Package engine is the lattice session: it owns the store, the selection,
// the viewport and the input controller, pumps their timers once per frame
// and publishes the resulting notes.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
	"github.com/ingyamilmolinar/tonnetz/core/input"
	"github.com/ingyamilmolinar/tonnetz/core/model"
	"github.com/ingyamilmolinar/tonnetz/core/selection"
	"github.com/ingyamilmolinar/tonnetz/core/timing"
	"github.com/ingyamilmolinar/tonnetz/core/viewport"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

const (
	DefaultPointRadius      = 10.0 // screen px
	DefaultVisibilityBuffer = 60.0 // world units
)

type Options struct {
	CellSize         float64
	PointRadius      float64
	VisibilityBuffer float64

	Selection selection.Options
	Viewport  viewport.Options
	Input     input.Options
}

// PointView is a visible lattice point, in screen space.
type PointView struct {
	Coord  geom.Axial
	Screen geom.Vec
	Label  string
	Tag    selection.Tag
}

// TriangleView is a visible face, in screen space. Chord is set when the
// face is one of the derived chord triangles.
type TriangleView struct {
	Key      model.TriKey
	Up       bool
	Vertices [3]geom.Vec
	Centroid geom.Vec
	Tag      selection.Tag
	Chord    string
}

type Frame struct {
	Points    []PointView
	Triangles []TriangleView
}

type Engine struct {
	opts Options

	store *model.Store
	sel   *selection.Engine
	view  *viewport.Viewport
	in    *input.Controller

	events *Dispatcher
	redraw timing.Flag
	now    func() time.Time

	pointerX  float64
	pointerY  float64
	published string

	logger *game_log.Logger
}

// New builds a session and materialises the lattice under the initial view.
func New(opts Options, logger *game_log.Logger) (*Engine, error) {
	if logger == nil {
		logger = game_log.Discard()
	}
	if opts.CellSize <= 0 {
		opts.CellSize = model.DefaultCellSize
	}
	if opts.PointRadius <= 0 {
		opts.PointRadius = DefaultPointRadius
	}
	if opts.VisibilityBuffer <= 0 {
		opts.VisibilityBuffer = DefaultVisibilityBuffer
	}
	opts.Viewport.CellSize = opts.CellSize

	store := model.NewStore(model.Options{CellSize: opts.CellSize}, logger)
	sel, err := selection.New(opts.Selection, store, logger)
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}
	view := viewport.New(opts.Viewport, store, logger)
	e := &Engine{
		opts:   opts,
		store:  store,
		sel:    sel,
		view:   view,
		in:     input.New(opts.Input, sel, view, sel, logger),
		events: NewDispatcher(logger),
		now:    time.Now,
		logger: logger,
	}
	e.published = "|" // nothing sounds yet
	view.Flush()
	e.redraw.Request()
	logger.Infof("[ENGINE] session ready: %d points, %d triangles", store.PointCount(), store.TriangleCount())
	return e, nil
}

// SetNowFunc replaces the clock, for tests.
func (e *Engine) SetNowFunc(f func() time.Time) { e.now = f }

func (e *Engine) Store() *model.Store { return e.store }
func (e *Engine) Selection() *selection.Engine { return e.sel }
func (e *Engine) Viewport() *viewport.Viewport { return e.view }
func (e *Engine) Input() *input.Controller { return e.in }
func (e *Engine) Dispatcher() *Dispatcher { return e.events }
func (e *Engine) Subscribe(fn func(Update)) func() { return e.events.Subscribe(fn) }

// HitTest resolves the entity under a screen position.
func (e *Engine) HitTest(sx, sy float64) model.Target {
	w := e.view.ScreenToWorld(sx, sy)
	return e.store.HitTest(w, e.opts.PointRadius/e.view.State().K)
}

// Handle forwards a raw event, resolving what is under the pointer first.
func (e *Engine) Handle(ev input.Event) {
	switch ev := ev.(type) {
	case input.PointerDown:
		e.pointerX, e.pointerY = ev.X, ev.Y
	case input.PointerMove:
		e.pointerX, e.pointerY = ev.X, ev.Y
	case input.PointerUp:
		e.pointerX, e.pointerY = ev.X, ev.Y
	}
	e.in.Handle(ev, e.HitTest(e.pointerX, e.pointerY), e.now())
	e.redraw.Request()
}

// Tick pumps every deferred action once and publishes the note set if it
// changed. Call it once per frame before drawing.
func (e *Engine) Tick() {
	now := e.now()
	tris := e.store.TriangleCount()
	if e.view.Tick(now) {
		e.redraw.Request()
		if e.store.TriangleCount() != tris {
			e.sel.LatticeGrew(now)
		}
	}
	e.sel.Tick(now)
	u := Update{Notes: e.sel.ActiveNotes(), Chords: e.sel.ChordLabels()}
	key := strings.Join(u.Notes, ",") + "|" + strings.Join(u.Chords, ",")
	if key != e.published {
		e.published = key
		e.logger.Debugf("[ENGINE] notes=%v chords=%v", u.Notes, u.Chords)
		e.events.Publish(u)
		e.redraw.Request()
	}
}

// RequestRedraw reports whether it raised the flag; a pending redraw makes
// it a no-op.
func (e *Engine) RequestRedraw() bool { return e.redraw.Request() }

// TakeRedraw consumes the pending redraw, at most once per frame.
func (e *Engine) TakeRedraw() bool { return e.redraw.Take() }

// Visible lists what the renderer should draw for the current transform.
func (e *Engine) Visible() Frame {
	t := e.view.Transform()
	w, h := e.view.Screen()
	buf := e.opts.VisibilityBuffer
	region := e.view.VisibleWorldRect().Inset(-buf)

	var f Frame
	for _, p := range e.store.PointsInRegion(region) {
		if !geom.IsVisible(p.Pos, t, w, h, buf) {
			continue
		}
		f.Points = append(f.Points, PointView{
			Coord:  p.Coord,
			Screen: t.Apply(p.Pos),
			Label:  e.sel.Name(p.Coord),
			Tag:    e.sel.Tag(p.Coord),
		})
	}
	for _, tri := range e.store.TrianglesInRegion(region) {
		if !geom.IsVisible(tri.Centroid, t, w, h, buf) {
			continue
		}
		vs := e.store.Vertices(tri)
		tv := TriangleView{
			Key:      tri.Key,
			Up:       tri.Up,
			Centroid: t.Apply(tri.Centroid),
			Tag:      e.sel.TriangleTag(tri.Key),
		}
		for i, v := range vs {
			tv.Vertices[i] = t.Apply(v)
		}
		if c, ok := e.sel.ChordAt(tri.Key); ok {
			tv.Chord = c.Label
		}
		f.Triangles = append(f.Triangles, tv)
	}
	return f
}

// StatusLine is the pointer status plus the highlighted chords.
func (e *Engine) StatusLine() string {
	s := e.in.Status().Text
	if name, ok := selection.IdentifyChord(e.sel.ActiveNotes()); ok {
		s += " | " + name
	}
	if labels := e.sel.ChordLabels(); len(labels) > 0 {
		s += " | chords " + strings.Join(labels, " ")
	}
	return s
}

func (e *Engine) SetRoot(note string) error {
	if err := e.sel.SetRoot(note, e.now()); err != nil {
		return err
	}
	e.redraw.Request()
	return nil
}

func (e *Engine) SetIntervals(q, r int) {
	e.sel.SetIntervals(q, r, e.now())
	e.redraw.Request()
}

func (e *Engine) SetSingleOctave(on bool) {
	e.sel.SetSingleOctave(on, e.now())
	e.redraw.Request()
}

func (e *Engine) ApplyChord(name, root string) error {
	defer e.redraw.Request()
	return e.sel.ApplyChord(name, root, e.now())
}

func (e *Engine) ApplyScale(name, root string) error {
	defer e.redraw.Request()
	return e.sel.ApplyScale(name, root, e.now())
}

func (e *Engine) ApplyMode(m selection.Mode, root string) error {
	defer e.redraw.Request()
	return e.sel.ApplyMode(m, root, e.now())
}

func (e *Engine) ClearPattern() {
	e.sel.ClearPattern(e.now())
	e.redraw.Request()
}

// ResetView recentres the origin at scale 1.
func (e *Engine) ResetView() {
	e.view.Reset(e.now())
	e.redraw.Request()
}

// Resize follows the window size.
func (e *Engine) Resize(w, h float64) {
	e.view.SetScreen(w, h, e.now())
	e.redraw.Request()
}

// Package input turns raw pointer and keyboard events into lattice gestures
// and viewport navigation.
package input

import (
	"math"
	"strings"
	"time"

	"github.com/ingyamilmolinar/tonnetz/core/model"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

const (
	DefaultDragThreshold = 4.0 // px between press and drag
	DefaultWheelStep     = 1.1
	DoubleClickZoom      = 2.0
)

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	}
	return "none"
}

type Key int

const (
	KeyShift Key = iota
	KeyCtrl
	KeyAlt
	KeyEscape
)

type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Event is one of the raw event structs below.
type Event interface{ event() }

type PointerDown struct {
	Button Button
	X, Y   float64
}

type PointerMove struct{ X, Y float64 }

type PointerUp struct {
	Button Button
	X, Y   float64
}

// Wheel DY is positive when scrolling up (zoom in).
type Wheel struct{ DX, DY, X, Y float64 }

type DoubleClick struct{ X, Y float64 }

type KeyEvent struct {
	Code Key
	Down bool
}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Wheel) event()       {}
func (DoubleClick) event() {}
func (KeyEvent) event()    {}

// Gestures receives the selection vocabulary. Only the left button reaches it.
type Gestures interface {
	Press(t model.Target, now time.Time)
	DragEnter(t model.Target, now time.Time)
	Release(now time.Time)
	Escape(now time.Time)
	SetShift(down bool)
	Hover(t model.Target, now time.Time)
}

// Navigator receives everything reserved for pan and zoom.
type Navigator interface {
	Pan(dx, dy float64, now time.Time)
	ZoomAt(factor, sx, sy float64, now time.Time)
}

type Options struct {
	DragThreshold float64
	WheelStep     float64
}

// Status describes what the pointer is doing, for on-screen text.
type Status struct {
	Button    Button
	Dragging  bool
	Hovered   model.Target
	Modifiers Modifiers
	Text      string
}

type Controller struct {
	opts  Options
	sel   Gestures
	nav   Navigator
	namer model.Namer

	button   Button
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragging bool
	mods     Modifiers
	hovered  model.Target
	sent     model.Target // last target passed to Hover

	logger *game_log.Logger
}

// New wires a controller. namer is only used for status text and may be nil.
func New(opts Options, sel Gestures, nav Navigator, namer model.Namer, logger *game_log.Logger) *Controller {
	if opts.DragThreshold <= 0 {
		opts.DragThreshold = DefaultDragThreshold
	}
	if opts.WheelStep <= 1 {
		opts.WheelStep = DefaultWheelStep
	}
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Controller{opts: opts, sel: sel, nav: nav, namer: namer, logger: logger}
}

// Handle applies one raw event. hit is the entity under the pointer at the
// event's position, resolved by the caller.
func (c *Controller) Handle(ev Event, hit model.Target, now time.Time) {
	switch ev := ev.(type) {
	case PointerDown:
		c.pointerDown(ev, hit, now)
	case PointerMove:
		c.pointerMove(ev, hit, now)
	case PointerUp:
		c.pointerUp(ev, hit, now)
	case Wheel:
		if ev.DY != 0 {
			c.nav.ZoomAt(math.Pow(c.opts.WheelStep, ev.DY), ev.X, ev.Y, now)
		}
	case DoubleClick:
		c.nav.ZoomAt(DoubleClickZoom, ev.X, ev.Y, now)
	case KeyEvent:
		c.key(ev, now)
	}
}

func (c *Controller) pointerDown(ev PointerDown, hit model.Target, now time.Time) {
	if c.button != ButtonNone {
		return
	}
	c.button = ev.Button
	c.startX, c.startY = ev.X, ev.Y
	c.lastX, c.lastY = ev.X, ev.Y
	c.dragging = false
	c.hovered = hit
	if ev.Button == ButtonLeft {
		c.logger.Debugf("[INPUT] press %s at (%.0f,%.0f)", hit, ev.X, ev.Y)
		c.sel.Press(hit, now)
	}
}

func (c *Controller) pointerMove(ev PointerMove, hit model.Target, now time.Time) {
	dx, dy := ev.X-c.lastX, ev.Y-c.lastY
	c.lastX, c.lastY = ev.X, ev.Y
	switch c.button {
	case ButtonNone:
		c.hovered = hit
		c.hover(hit, now)
	case ButtonLeft:
		if !c.dragging && math.Hypot(ev.X-c.startX, ev.Y-c.startY) > c.opts.DragThreshold {
			c.dragging = true
			c.logger.Debugf("[INPUT] drag start")
		}
		if c.dragging && hit != c.hovered {
			c.hovered = hit
			c.sel.DragEnter(hit, now)
		}
	default:
		if !c.dragging && math.Hypot(ev.X-c.startX, ev.Y-c.startY) > c.opts.DragThreshold {
			c.dragging = true
		}
		if dx != 0 || dy != 0 {
			c.nav.Pan(dx, dy, now)
		}
	}
}

// pointerUp ends the gesture and re-hovers whatever the pointer now rests
// on; hover is not tracked while a button is held.
func (c *Controller) pointerUp(ev PointerUp, hit model.Target, now time.Time) {
	if ev.Button != c.button {
		return
	}
	if c.button == ButtonLeft {
		if c.dragging {
			c.logger.Debugf("[INPUT] drag end")
		} else {
			c.logger.Debugf("[INPUT] click")
		}
		c.sel.Release(now)
	}
	c.button = ButtonNone
	c.dragging = false
	c.hovered = hit
	c.hover(hit, now)
}

func (c *Controller) hover(hit model.Target, now time.Time) {
	if hit == c.sent {
		return
	}
	c.sent = hit
	c.sel.Hover(hit, now)
}

func (c *Controller) key(ev KeyEvent, now time.Time) {
	switch ev.Code {
	case KeyShift:
		if c.mods.Shift != ev.Down {
			c.mods.Shift = ev.Down
			c.sel.SetShift(ev.Down)
		}
	case KeyCtrl:
		c.mods.Ctrl = ev.Down
	case KeyAlt:
		c.mods.Alt = ev.Down
	case KeyEscape:
		if ev.Down {
			c.logger.Debugf("[INPUT] escape")
			c.sel.Escape(now)
			c.sent = model.NoTarget
		}
	}
}

func (c *Controller) Modifiers() Modifiers { return c.mods }

func (c *Controller) Status() Status {
	s := Status{Button: c.button, Dragging: c.dragging, Hovered: c.hovered, Modifiers: c.mods}
	s.Text = c.describe()
	return s
}

func (c *Controller) describe() string {
	var b strings.Builder
	switch {
	case c.button == ButtonLeft && c.dragging:
		b.WriteString("dragging over ")
		b.WriteString(c.names(c.hovered))
	case c.button == ButtonLeft:
		b.WriteString("pressing ")
		b.WriteString(c.names(c.hovered))
	case c.button != ButtonNone:
		b.WriteString("panning")
	case c.hovered.Kind != model.TargetNone:
		b.WriteString("hover ")
		b.WriteString(c.names(c.hovered))
	default:
		b.WriteString("idle")
	}
	if c.mods.Shift {
		b.WriteString(" [shift]")
	}
	return b.String()
}

func (c *Controller) names(t model.Target) string {
	pts := t.Points()
	if len(pts) == 0 {
		return "nothing"
	}
	if c.namer == nil {
		return t.String()
	}
	out := make([]string, len(pts))
	for i, a := range pts {
		out[i] = c.namer.Name(a)
	}
	return strings.Join(out, " ")
}

// Package viewport owns the pan/zoom transform and grows the lattice behind
// it as the visible region moves.
package viewport

import (
	"math"
	"time"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
	"github.com/ingyamilmolinar/tonnetz/core/model"
	"github.com/ingyamilmolinar/tonnetz/core/timing"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
	"github.com/ingyamilmolinar/tonnetz/internal/utils"
)

const (
	DefaultZoomRange   = 4.0
	DefaultGridExtent  = 200 // cells from the origin the view may reach
	DefaultBufferCells = 2
	DefaultDebounce    = 100 * time.Millisecond
	DefaultMaxWait     = 250 * time.Millisecond

	offsetLimit = 1e6 // keep translations in a sane range for numeric stability
)

// Expander is satisfied by *model.Store.
type Expander interface {
	ExpandToCover(world geom.Rect, bufferCells int) model.ExpandResult
}

type Options struct {
	ZoomRange   float64
	GridExtent  int
	CellSize    float64
	BufferCells int
	Debounce    time.Duration
	MaxWait     time.Duration
	ScreenW     float64
	ScreenH     float64
}

// State is the transform: screen = world*K + (TX, TY).
type State struct {
	K, TX, TY float64
}

type Viewport struct {
	opts  Options
	state State

	expander Expander
	expand   *timing.Debouncer
	expanded int

	logger *game_log.Logger
}

func New(opts Options, expander Expander, logger *game_log.Logger) *Viewport {
	if opts.ZoomRange < 1 {
		opts.ZoomRange = DefaultZoomRange
	}
	if opts.GridExtent <= 0 {
		opts.GridExtent = DefaultGridExtent
	}
	if opts.CellSize <= 0 {
		opts.CellSize = model.DefaultCellSize
	}
	if opts.BufferCells < 0 {
		opts.BufferCells = DefaultBufferCells
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if logger == nil {
		logger = game_log.Discard()
	}
	v := &Viewport{
		opts:     opts,
		expander: expander,
		expand:   timing.NewDebouncer(opts.Debounce, opts.MaxWait),
		logger:   logger,
	}
	v.center()
	return v
}

func (v *Viewport) State() State { return v.state }

func (v *Viewport) Transform() geom.Transform {
	return geom.Transform{K: v.state.K, TX: v.state.TX, TY: v.state.TY}
}

func (v *Viewport) Screen() (w, h float64) { return v.opts.ScreenW, v.opts.ScreenH }

// Expansions counts how many times the store was asked to grow.
func (v *Viewport) Expansions() int { return v.expanded }

// ScreenPos converts world coordinates to screen space.
func (v *Viewport) ScreenPos(x, y float64) (sx, sy float64) {
	s := v.Transform().Apply(geom.Vec{X: x, Y: y})
	return s.X, s.Y
}

func (v *Viewport) ScreenToWorld(sx, sy float64) geom.Vec {
	return v.Transform().Invert(geom.Vec{X: sx, Y: sy})
}

func (v *Viewport) VisibleWorldRect() geom.Rect {
	return geom.ScreenRect(v.Transform(), v.opts.ScreenW, v.opts.ScreenH)
}

func (v *Viewport) Pan(dx, dy float64, now time.Time) {
	if dx == 0 && dy == 0 {
		return
	}
	v.state.TX += dx
	v.state.TY += dy
	v.changed(now)
}

// ZoomAt scales by factor keeping the world point under (sx, sy) fixed.
func (v *Viewport) ZoomAt(factor, sx, sy float64, now time.Time) {
	if factor <= 0 {
		return
	}
	w := v.ScreenToWorld(sx, sy)
	k := utils.Clamp(v.state.K*factor, 1/v.opts.ZoomRange, v.opts.ZoomRange)
	if k == v.state.K {
		return
	}
	v.state.K = k
	v.state.TX = sx - w.X*k
	v.state.TY = sy - w.Y*k
	v.changed(now)
}

func (v *Viewport) SetScreen(w, h float64, now time.Time) {
	if w == v.opts.ScreenW && h == v.opts.ScreenH {
		return
	}
	// keep the world point at the old center in the center
	c := v.ScreenToWorld(v.opts.ScreenW/2, v.opts.ScreenH/2)
	v.opts.ScreenW, v.opts.ScreenH = w, h
	v.state.TX = w/2 - c.X*v.state.K
	v.state.TY = h/2 - c.Y*v.state.K
	v.changed(now)
}

// Reset returns to scale 1 with the origin centered.
func (v *Viewport) Reset(now time.Time) {
	v.center()
	v.changed(now)
}

func (v *Viewport) center() {
	v.state = State{K: 1, TX: v.opts.ScreenW / 2, TY: v.opts.ScreenH / 2}
	v.clamp()
}

// Snap limits the translation magnitude so panning across huge distances
// doesn't accumulate floating-point error.
func (v *Viewport) Snap() {
	v.state.TX = utils.Clamp(v.state.TX, -offsetLimit, offsetLimit)
	v.state.TY = utils.Clamp(v.state.TY, -offsetLimit, offsetLimit)
}

// clamp keeps the scale inside the zoom range and the visible rectangle
// inside the grid extent. When the view is wider than the extent it is
// centered on it instead.
func (v *Viewport) clamp() {
	v.state.K = utils.Clamp(v.state.K, 1/v.opts.ZoomRange, v.opts.ZoomRange)
	ext := float64(v.opts.GridExtent) * v.opts.CellSize
	r := v.VisibleWorldRect()
	v.state.TX += v.state.K * constrain(r.MinX+ext, r.MaxX-ext)
	v.state.TY += v.state.K * constrain(r.MinY+ext, r.MaxY-ext)
	v.Snap()
}

func constrain(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if d0 < 0 {
		return d0
	}
	return math.Max(0, d1)
}

func (v *Viewport) changed(now time.Time) {
	v.clamp()
	v.expand.Schedule(now)
	v.logger.Debugf("[VIEW] k=%.3f t=(%.1f,%.1f)", v.state.K, v.state.TX, v.state.TY)
}

// Tick grows the store once the transform has been still for the debounce
// delay. It reports whether an expansion ran.
func (v *Viewport) Tick(now time.Time) bool {
	if !v.expand.Due(now) {
		return false
	}
	v.expandNow()
	return true
}

// Flush expands for the current view immediately, e.g. at startup.
func (v *Viewport) Flush() {
	v.expand.Cancel()
	v.expandNow()
}

func (v *Viewport) expandNow() {
	if v.expander == nil {
		return
	}
	r := v.VisibleWorldRect()
	res := v.expander.ExpandToCover(r, v.opts.BufferCells)
	v.expanded++
	if res.NewPoints > 0 {
		v.logger.Debugf("[VIEW] expanded for (%.0f,%.0f)-(%.0f,%.0f): +%d points",
			r.MinX, r.MinY, r.MaxX, r.MaxY, res.NewPoints)
	}
}

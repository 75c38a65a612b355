package geom

import "math"

// Transform maps world to screen: screen = world*K + (TX, TY).
type Transform struct {
	K, TX, TY float64
}

var Identity = Transform{K: 1}

func (t Transform) Apply(v Vec) Vec {
	return Vec{v.X*t.K + t.TX, v.Y*t.K + t.TY}
}

func (t Transform) Invert(s Vec) Vec {
	return Vec{(s.X - t.TX) / t.K, (s.Y - t.TY) / t.K}
}

// Rect is an axis-aligned world rectangle with inclusive bounds.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Empty() bool { return r.MaxX < r.MinX || r.MaxY < r.MinY }

func (r Rect) Contains(v Vec) bool {
	return v.X >= r.MinX && v.X <= r.MaxX && v.Y >= r.MinY && v.Y <= r.MaxY
}

// ContainsRect reports whether o lies fully inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

func (r Rect) Inset(d float64) Rect {
	return Rect{r.MinX + d, r.MinY + d, r.MaxX - d, r.MaxY - d}
}

func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		math.Min(r.MinX, o.MinX), math.Min(r.MinY, o.MinY),
		math.Max(r.MaxX, o.MaxX), math.Max(r.MaxY, o.MaxY),
	}
}

// ScreenRect returns the world rectangle seen through t on a w x h screen.
func ScreenRect(t Transform, w, h float64) Rect {
	a := t.Invert(Vec{0, 0})
	b := t.Invert(Vec{w, h})
	return Rect{a.X, a.Y, b.X, b.Y}
}

// IsVisible reports whether world lands on screen once transformed, with a
// margin of buffer world units (so the margin grows with zoom).
func IsVisible(world Vec, t Transform, screenW, screenH, buffer float64) bool {
	s := t.Apply(world)
	pad := buffer * t.K
	return s.X >= -pad && s.X <= screenW+pad && s.Y >= -pad && s.Y <= screenH+pad
}

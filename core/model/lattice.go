package model

import (
	"sort"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
	"github.com/ingyamilmolinar/tonnetz/internal/utils"
)

const DefaultCellSize = 60 // world-space px between lattice points

// Point is a materialised lattice vertex. Its pitch name is not stored: ask a
// Namer, so root or interval changes never leave stale labels behind.
type Point struct {
	Coord geom.Axial
	Pos   geom.Vec
}

// TriKey is the canonical identity of a face: its corners sorted by Axial.Less.
type TriKey [3]geom.Axial

func NewTriKey(a, b, c geom.Axial) TriKey {
	k := TriKey{a, b, c}
	sort.Slice(k[:], func(i, j int) bool { return k[i].Less(k[j]) })
	return k
}

// Triangle is a lattice face. Up marks the (q,r),(q,r+1),(q+1,r) kind; the
// other kind is (q,r),(q,r-1),(q-1,r).
type Triangle struct {
	Key      TriKey
	Origin   geom.Axial
	Up       bool
	Centroid geom.Vec
}

// Namer resolves the note name of a coordinate under the current pitch
// configuration.
type Namer interface {
	Name(a geom.Axial) string
}

type Options struct {
	CellSize float64
}

// Store owns the visited part of the infinite lattice. It only grows.
type Store struct {
	cell      float64
	points    map[geom.Axial]Point
	triangles map[TriKey]Triangle
	byCorner  map[geom.Axial][]TriKey

	covered bool
	minQ    int
	maxQ    int
	minR    int
	maxR    int

	logger *game_log.Logger
}

func NewStore(opts Options, logger *game_log.Logger) *Store {
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultCellSize
	}
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Store{
		cell:      opts.CellSize,
		points:    map[geom.Axial]Point{},
		triangles: map[TriKey]Triangle{},
		byCorner:  map[geom.Axial][]TriKey{},
		logger:    logger,
	}
}

func (s *Store) CellSize() float64 { return s.cell }

func (s *Store) Point(a geom.Axial) (Point, bool) {
	p, ok := s.points[a]
	return p, ok
}

func (s *Store) Triangle(k TriKey) (Triangle, bool) {
	t, ok := s.triangles[k]
	return t, ok
}

func (s *Store) PointCount() int    { return len(s.points) }
func (s *Store) TriangleCount() int { return len(s.triangles) }

// Bounds returns the covered axial box. ok is false before the first expansion.
func (s *Store) Bounds() (minQ, maxQ, minR, maxR int, ok bool) {
	return s.minQ, s.maxQ, s.minR, s.maxR, s.covered
}

func (s *Store) TrianglesContaining(a geom.Axial) []Triangle {
	keys := s.byCorner[a]
	out := make([]Triangle, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.triangles[k])
	}
	return out
}

// EachTriangle visits every face in no particular order.
func (s *Store) EachTriangle(fn func(Triangle)) {
	for _, t := range s.triangles {
		fn(t)
	}
}

// Vertices returns the world positions of a face's corners, laid out with
// geom.TriangleVertices so they line up with the renderer's orientation.
func (s *Store) Vertices(t Triangle) [3]geom.Vec {
	h := geom.TriHeight(s.cell)
	half := s.cell / 2
	if t.Up {
		// two corners on the origin row, apex one row below
		o := geom.AxialToCartesian(t.Origin, s.cell)
		return geom.TriangleVertices(geom.Vec{X: o.X + half, Y: o.Y}, false, half, h)
	}
	apex := geom.AxialToCartesian(geom.Axial{Q: t.Origin.Q, R: t.Origin.R - 1}, s.cell)
	return geom.TriangleVertices(apex, true, half, h)
}

// Label is a convenience for renderers.
func (s *Store) Label(a geom.Axial, n Namer) string {
	if _, ok := s.points[a]; !ok || n == nil {
		return ""
	}
	return n.Name(a)
}

// axialBox converts a world rectangle into the axial box covering it.
func (s *Store) axialBox(r geom.Rect, buffer int) (minQ, maxQ, minR, maxR int) {
	h := geom.TriHeight(s.cell)
	minR = utils.FloorInt(r.MinY/h) - buffer
	maxR = utils.CeilInt(r.MaxY/h) + buffer
	minQ = utils.FloorInt(r.MinX/s.cell-float64(maxR)/2) - buffer
	maxQ = utils.CeilInt(r.MaxX/s.cell-float64(minR)/2) + buffer
	return
}

// PointsInRegion lists materialised points inside r, ordered by row then column.
func (s *Store) PointsInRegion(r geom.Rect) []Point {
	if !s.covered || r.Empty() {
		return nil
	}
	minQ, maxQ, minR, maxR := s.axialBox(r, 0)
	minQ, maxQ = utils.MaxInt(minQ, s.minQ), utils.MinInt(maxQ, s.maxQ)
	minR, maxR = utils.MaxInt(minR, s.minR), utils.MinInt(maxR, s.maxR)
	var out []Point
	for q := minQ; q <= maxQ; q++ {
		for rr := minR; rr <= maxR; rr++ {
			if p, ok := s.points[geom.Axial{Q: q, R: rr}]; ok && r.Contains(p.Pos) {
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coord.Less(out[j].Coord) })
	return out
}

// TrianglesInRegion lists faces whose centroid lies inside r, ordered by key.
func (s *Store) TrianglesInRegion(r geom.Rect) []Triangle {
	if !s.covered || r.Empty() {
		return nil
	}
	// every face has exactly one smallest corner; pad so faces poking in from
	// the region's edge are still reached through it
	var out []Triangle
	for _, p := range s.PointsInRegion(r.Inset(-s.cell)) {
		for _, k := range s.byCorner[p.Coord] {
			if k[0] != p.Coord {
				continue
			}
			if t := s.triangles[k]; r.Contains(t.Centroid) {
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key) })
	return out
}

func keyLess(a, b TriKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i].Less(b[i])
		}
	}
	return false
}

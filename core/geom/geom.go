// Package geom converts between axial lattice coordinates and world space.
//
// Only one addressing is used internally: axial (q, r) on a triangular
// lattice with rows of constant r. Row r sits at y = r*TriHeight and every
// other row is shifted right by half a cell, which is the row/col layout
// expressed in axial form (see RowCol).
package geom

import (
	"math"

	"github.com/ingyamilmolinar/tonnetz/internal/utils"
)

type Axial struct{ Q, R int }

func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

func (a Axial) Sub(b Axial) Axial { return Axial{a.Q - b.Q, a.R - b.R} }

// Less orders by row then column. Triangle keys rely on it.
func (a Axial) Less(b Axial) bool {
	if a.R != b.R {
		return a.R < b.R
	}
	return a.Q < b.Q
}

// Dist is the lattice distance (number of edges) between two points.
func (a Axial) Dist(b Axial) int {
	dq, dr := a.Q-b.Q, a.R-b.R
	return (utils.Abs(dq) + utils.Abs(dr) + utils.Abs(dq+dr)) / 2
}

type Vec struct{ X, Y float64 }

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// TriHeight is the row spacing for a lattice with the given edge length.
func TriHeight(cellSize float64) float64 { return cellSize * math.Sqrt(3) / 2 }

func AxialToCartesian(a Axial, cellSize float64) Vec {
	return Vec{
		X: cellSize * (float64(a.Q) + float64(a.R)/2),
		Y: float64(a.R) * TriHeight(cellSize),
	}
}

// CartesianToAxial is the exact left inverse of AxialToCartesian on lattice
// points. Off-lattice positions round to a nearby point, not always the
// nearest; use Nearest for hit testing.
func CartesianToAxial(v Vec, cellSize float64) Axial {
	r := math.Round(v.Y / TriHeight(cellSize))
	q := math.Round(v.X/cellSize - r/2)
	return Axial{Q: int(q), R: int(r)}
}

// fractional axial position of v, used by the hit tests.
func fractional(v Vec, cellSize float64) (q, r float64) {
	r = v.Y / TriHeight(cellSize)
	q = v.X/cellSize - r/2
	return
}

// RowCol exposes the rendering row/col addressing: col counts half cells.
func RowCol(a Axial) (row, col int) { return a.R, 2*a.Q + a.R }

// FromRowCol is the inverse of RowCol. col and row must share parity.
func FromRowCol(row, col int) Axial { return Axial{Q: utils.FloorDiv(col-row, 2), R: row} }

// TriangleVertices lays out a triangle from its origin the way the renderer
// draws it: up triangles hang below their origin, down triangles span the
// origin row.
func TriangleVertices(origin Vec, up bool, half, triHeight float64) [3]Vec {
	if up {
		return [3]Vec{
			origin,
			{origin.X - half, origin.Y + triHeight},
			{origin.X + half, origin.Y + triHeight},
		}
	}
	return [3]Vec{
		{origin.X - half, origin.Y},
		{origin.X + half, origin.Y},
		{origin.X, origin.Y + triHeight},
	}
}

func Centroid(vs [3]Vec) Vec {
	return Vec{(vs[0].X + vs[1].X + vs[2].X) / 3, (vs[0].Y + vs[1].Y + vs[2].Y) / 3}
}

// Nearest returns the lattice point closest to v.
func Nearest(v Vec, cellSize float64) Axial {
	corners, _ := FaceAt(v, cellSize)
	best := corners[0]
	bestD := math.Inf(1)
	for _, c := range corners {
		if d := AxialToCartesian(c, cellSize).Sub(v).Len(); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

// FaceAt returns the corners of the lattice face containing v. up reports
// whether the face is the (q,r),(q,r+1),(q+1,r) kind.
func FaceAt(v Vec, cellSize float64) (corners [3]Axial, up bool) {
	qf, rf := fractional(v, cellSize)
	q0, r0 := math.Floor(qf), math.Floor(rf)
	q, r := int(q0), int(r0)
	if (qf-q0)+(rf-r0) < 1 {
		return [3]Axial{{q, r}, {q, r + 1}, {q + 1, r}}, true
	}
	return [3]Axial{{q + 1, r + 1}, {q + 1, r}, {q, r + 1}}, false
}

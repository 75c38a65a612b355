package model

import (
	"github.com/ingyamilmolinar/tonnetz/core/geom"
	"github.com/ingyamilmolinar/tonnetz/internal/utils"
)

// ExpandResult reports what one ExpandToCover call materialised.
type ExpandResult struct {
	NewPoints    int
	NewTriangles int
}

// faces that contain a point, as (origin offset, up) pairs. The first two are
// the faces the point itself originates; the rest complete faces whose origin
// was materialised by an earlier call.
var incidentFaces = []struct {
	off geom.Axial
	up  bool
}{
	{geom.Axial{Q: 0, R: 0}, true},
	{geom.Axial{Q: 0, R: 0}, false},
	{geom.Axial{Q: 0, R: -1}, true},
	{geom.Axial{Q: -1, R: 0}, true},
	{geom.Axial{Q: 0, R: 1}, false},
	{geom.Axial{Q: 1, R: 0}, false},
}

func faceCorners(o geom.Axial, up bool) [3]geom.Axial {
	if up {
		return [3]geom.Axial{o, {Q: o.Q, R: o.R + 1}, {Q: o.Q + 1, R: o.R}}
	}
	return [3]geom.Axial{o, {Q: o.Q, R: o.R - 1}, {Q: o.Q - 1, R: o.R}}
}

// ExpandToCover grows the store so it covers world plus bufferCells of
// margin. The covered box is the union with everything covered before, so a
// smaller rectangle never removes or regenerates anything.
func (s *Store) ExpandToCover(world geom.Rect, bufferCells int) ExpandResult {
	var res ExpandResult
	if world.Empty() {
		return res
	}
	minQ, maxQ, minR, maxR := s.axialBox(world, bufferCells)
	if s.covered {
		if minQ >= s.minQ && maxQ <= s.maxQ && minR >= s.minR && maxR <= s.maxR {
			return res
		}
		minQ, maxQ = utils.MinInt(minQ, s.minQ), utils.MaxInt(maxQ, s.maxQ)
		minR, maxR = utils.MinInt(minR, s.minR), utils.MaxInt(maxR, s.maxR)
	}

	var fresh []geom.Axial
	for q := minQ; q <= maxQ; q++ {
		for r := minR; r <= maxR; r++ {
			a := geom.Axial{Q: q, R: r}
			if s.covered && q >= s.minQ && q <= s.maxQ && r >= s.minR && r <= s.maxR {
				continue
			}
			if _, ok := s.points[a]; ok {
				continue
			}
			s.points[a] = Point{Coord: a, Pos: geom.AxialToCartesian(a, s.cell)}
			fresh = append(fresh, a)
		}
	}
	res.NewPoints = len(fresh)

	for _, a := range fresh {
		for _, f := range incidentFaces {
			if s.addFace(a.Add(f.off), f.up) {
				res.NewTriangles++
			}
		}
	}

	s.minQ, s.maxQ, s.minR, s.maxR = minQ, maxQ, minR, maxR
	s.covered = true
	s.logger.Debugf("[LATTICE] expand to q=[%d,%d] r=[%d,%d]: +%d points +%d triangles (total %d/%d)",
		minQ, maxQ, minR, maxR, res.NewPoints, res.NewTriangles, len(s.points), len(s.triangles))
	return res
}

// addFace inserts a face if all its corners exist and its key is new.
func (s *Store) addFace(origin geom.Axial, up bool) bool {
	c := faceCorners(origin, up)
	for _, a := range c {
		if _, ok := s.points[a]; !ok {
			return false
		}
	}
	key := NewTriKey(c[0], c[1], c[2])
	if _, dup := s.triangles[key]; dup {
		return false
	}
	var vs [3]geom.Vec
	for i, a := range c {
		vs[i] = s.points[a].Pos
	}
	s.triangles[key] = Triangle{Key: key, Origin: origin, Up: up, Centroid: geom.Centroid(vs)}
	for _, a := range c {
		s.byCorner[a] = append(s.byCorner[a], key)
	}
	return true
}

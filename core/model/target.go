package model

import (
	"fmt"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
)

type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPoint
	TargetTriangle
)

// Target refers to a lattice entity by key, never by pointer.
type Target struct {
	Kind  TargetKind
	Point geom.Axial
	Tri   TriKey
}

var NoTarget = Target{}

func PointTarget(a geom.Axial) Target { return Target{Kind: TargetPoint, Point: a} }

func TriangleTarget(k TriKey) Target { return Target{Kind: TargetTriangle, Tri: k} }

// Points expands a target to the lattice points it covers.
func (t Target) Points() []geom.Axial {
	switch t.Kind {
	case TargetPoint:
		return []geom.Axial{t.Point}
	case TargetTriangle:
		return []geom.Axial{t.Tri[0], t.Tri[1], t.Tri[2]}
	}
	return nil
}

func (t Target) String() string {
	switch t.Kind {
	case TargetPoint:
		return fmt.Sprintf("point(%d,%d)", t.Point.Q, t.Point.R)
	case TargetTriangle:
		return fmt.Sprintf("tri(%d,%d|%d,%d|%d,%d)", t.Tri[0].Q, t.Tri[0].R, t.Tri[1].Q, t.Tri[1].R, t.Tri[2].Q, t.Tri[2].R)
	}
	return "none"
}

// HitTest resolves the entity under a world position. Points win inside
// pointRadius, otherwise the face containing the position is returned if
// it has been materialised.
func (s *Store) HitTest(world geom.Vec, pointRadius float64) Target {
	corners, _ := geom.FaceAt(world, s.cell)
	n := geom.Nearest(world, s.cell)
	if p, ok := s.points[n]; ok && p.Pos.Sub(world).Len() <= pointRadius {
		return PointTarget(n)
	}
	key := NewTriKey(corners[0], corners[1], corners[2])
	if _, ok := s.triangles[key]; ok {
		return TriangleTarget(key)
	}
	return NoTarget
}

package model

import (
	"io"
	"math"
	"testing"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

var testLogger *game_log.Logger

func init() {
	testLogger = game_log.New(io.Discard, game_log.LevelError)
}

func newTestStore() *Store {
	return NewStore(Options{CellSize: 60}, testLogger)
}

func checkInvariants(t *testing.T, s *Store) {
	t.Helper()
	seen := map[TriKey]bool{}
	for k, tri := range s.triangles {
		if tri.Key != k {
			t.Fatalf("triangle stored under %v has key %v", k, tri.Key)
		}
		if seen[k] {
			t.Fatalf("duplicate triangle %v", k)
		}
		seen[k] = true
		canon := NewTriKey(k[2], k[0], k[1])
		if canon != k {
			t.Fatalf("key %v not canonical (%v)", k, canon)
		}
		for _, c := range k {
			if _, ok := s.points[c]; !ok {
				t.Fatalf("triangle %v has missing corner %v", k, c)
			}
		}
	}
	// every face with all corners present must exist
	for a := range s.points {
		for _, up := range []bool{true, false} {
			c := faceCorners(a, up)
			complete := true
			for _, x := range c {
				if _, ok := s.points[x]; !ok {
					complete = false
				}
			}
			if _, ok := s.triangles[NewTriKey(c[0], c[1], c[2])]; complete != ok {
				t.Fatalf("face %v complete=%v present=%v", c, complete, ok)
			}
		}
	}
}

func TestExpandCreatesPointsAndTriangles(t *testing.T) {
	s := newTestStore()
	res := s.ExpandToCover(geom.Rect{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}, 1)
	if res.NewPoints == 0 || res.NewTriangles == 0 {
		t.Fatalf("nothing materialised: %+v", res)
	}
	if res.NewPoints != s.PointCount() || res.NewTriangles != s.TriangleCount() {
		t.Fatalf("result %+v disagrees with counts %d/%d", res, s.PointCount(), s.TriangleCount())
	}
	if _, ok := s.Point(geom.Axial{}); !ok {
		t.Fatalf("origin missing")
	}
	checkInvariants(t, s)
}

func TestExpandNeverDuplicatesAcrossCalls(t *testing.T) {
	s := newTestStore()
	rects := []geom.Rect{
		{MinX: 0, MinY: 0, MaxX: 200, MaxY: 200},
		{MinX: 150, MinY: -50, MaxX: 500, MaxY: 120},
		{MinX: -400, MinY: 300, MaxX: -100, MaxY: 600},
		{MinX: -50, MinY: -50, MaxX: 50, MaxY: 50},
		{MinX: -800, MinY: -800, MaxX: 800, MaxY: 800},
	}
	for _, r := range rects {
		s.ExpandToCover(r, 2)
		checkInvariants(t, s)
	}
}

func TestExpandIsMonotonic(t *testing.T) {
	s := newTestStore()
	big := geom.Rect{MinX: -300, MinY: -300, MaxX: 300, MaxY: 300}
	s.ExpandToCover(big, 1)
	points, tris := s.PointCount(), s.TriangleCount()
	before, _ := s.Triangle(NewTriKey(geom.Axial{}, geom.Axial{Q: 0, R: 1}, geom.Axial{Q: 1, R: 0}))

	res := s.ExpandToCover(geom.Rect{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10}, 1)
	if res.NewPoints != 0 || res.NewTriangles != 0 {
		t.Fatalf("contained viewport regenerated entities: %+v", res)
	}
	if s.PointCount() != points || s.TriangleCount() != tris {
		t.Fatalf("store shrank or grew: %d/%d -> %d/%d", points, tris, s.PointCount(), s.TriangleCount())
	}
	after, _ := s.Triangle(before.Key)
	if after != before {
		t.Fatalf("triangle identity changed: %+v -> %+v", before, after)
	}
	minQ, maxQ, minR, maxR, _ := s.Bounds()
	s.ExpandToCover(geom.Rect{MinX: 1000, MinY: 1000, MaxX: 1100, MaxY: 1100}, 0)
	nq, xq, nr, xr, _ := s.Bounds()
	if nq > minQ || xq < maxQ || nr > minR || xr < maxR {
		t.Fatalf("bounds shrank")
	}
}

func TestTriangleOrientationAndVertices(t *testing.T) {
	s := newTestStore()
	s.ExpandToCover(geom.Rect{MinX: -200, MinY: -200, MaxX: 200, MaxY: 200}, 1)
	for _, tri := range s.TrianglesContaining(geom.Axial{Q: 1, R: 1}) {
		vs := s.Vertices(tri)
		for _, c := range tri.Key {
			p, _ := s.Point(c)
			found := false
			for _, v := range vs {
				if math.Abs(v.X-p.Pos.X) < 1e-9 && math.Abs(v.Y-p.Pos.Y) < 1e-9 {
					found = true
				}
			}
			if !found {
				t.Fatalf("vertex of %v (up=%v) missing corner %v: %v", tri.Key, tri.Up, c, vs)
			}
		}
	}
	if n := len(s.TrianglesContaining(geom.Axial{Q: 1, R: 1})); n != 6 {
		t.Fatalf("interior point touches %d faces, want 6", n)
	}
}

func TestRegionQueries(t *testing.T) {
	s := newTestStore()
	s.ExpandToCover(geom.Rect{MinX: -300, MinY: -300, MaxX: 300, MaxY: 300}, 0)
	r := geom.Rect{MinX: -1, MinY: -1, MaxX: 61, MaxY: 53}
	pts := s.PointsInRegion(r)
	want := []geom.Axial{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 0, R: 1}}
	if len(pts) != len(want) {
		t.Fatalf("points in region = %v", pts)
	}
	for i, p := range pts {
		if p.Coord != want[i] {
			t.Fatalf("point %d = %v want %v", i, p.Coord, want[i])
		}
	}
	tris := s.TrianglesInRegion(geom.Rect{MinX: 10, MinY: 5, MaxX: 50, MaxY: 30})
	if len(tris) != 1 || tris[0].Key != NewTriKey(want[0], want[1], want[2]) || !tris[0].Up {
		t.Fatalf("triangles in region = %+v", tris)
	}
	if got := s.PointsInRegion(geom.Rect{MinX: 5000, MinY: 5000, MaxX: 5100, MaxY: 5100}); len(got) != 0 {
		t.Fatalf("uncovered region returned %v", got)
	}
}

func TestHitTest(t *testing.T) {
	s := newTestStore()
	s.ExpandToCover(geom.Rect{MinX: -200, MinY: -200, MaxX: 200, MaxY: 200}, 1)
	if got := s.HitTest(geom.Vec{X: 2, Y: 1}, 10); got != PointTarget(geom.Axial{}) {
		t.Fatalf("hit near origin = %v", got)
	}
	c := geom.Centroid([3]geom.Vec{
		geom.AxialToCartesian(geom.Axial{}, 60),
		geom.AxialToCartesian(geom.Axial{Q: 0, R: 1}, 60),
		geom.AxialToCartesian(geom.Axial{Q: 1, R: 0}, 60),
	})
	want := TriangleTarget(NewTriKey(geom.Axial{}, geom.Axial{Q: 0, R: 1}, geom.Axial{Q: 1, R: 0}))
	if got := s.HitTest(c, 10); got != want {
		t.Fatalf("hit at centroid = %v want %v", got, want)
	}
	if got := s.HitTest(geom.Vec{X: 9000, Y: 9000}, 10); got.Kind != TargetNone {
		t.Fatalf("hit outside coverage = %v", got)
	}
	if n := len(want.Points()); n != 3 {
		t.Fatalf("triangle target expands to %d points", n)
	}
}

package ui

import (
	"io"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ingyamilmolinar/tonnetz/core/engine"
	"github.com/ingyamilmolinar/tonnetz/core/geom"
	"github.com/ingyamilmolinar/tonnetz/core/selection"
	"github.com/ingyamilmolinar/tonnetz/core/viewport"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

var testLogger *game_log.Logger

func init() {
	testLogger = game_log.New(io.Discard, game_log.LevelError)
}

// fakeInput is the mouse and keyboard as seen by the polling functions.
type fakeInput struct {
	x, y  int
	mouse map[ebiten.MouseButton]bool
	keys  map[ebiten.Key]bool
	dy    float64
}

func install(t *testing.T) *fakeInput {
	t.Helper()
	in := &fakeInput{mouse: map[ebiten.MouseButton]bool{}, keys: map[ebiten.Key]bool{}}
	restore := SetInputForTest(
		func() (int, int) { return in.x, in.y },
		func(b ebiten.MouseButton) bool { return in.mouse[b] },
		func(k ebiten.Key) bool { return in.keys[k] },
		func() (float64, float64) { return 0, in.dy },
	)
	t.Cleanup(restore)
	return in
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	e, err := engine.New(engine.Options{
		CellSize:  60,
		Selection: selection.DefaultOptions(),
		Viewport:  viewport.Options{ScreenW: 800, ScreenH: 600},
	}, testLogger)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.SetNowFunc(func() time.Time { return clock })
	g := New(e, testLogger)
	g.Layout(800, 600)
	return g
}

func update(t *testing.T, g *Game) {
	t.Helper()
	if err := g.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestLeftPressSelectsPoint(t *testing.T) {
	in := install(t)
	g := newTestGame(t)
	gPoint := geom.Axial{Q: 1, R: 0}
	in.x, in.y = 460, 300
	update(t, g)
	in.mouse[ebiten.MouseButtonLeft] = true
	update(t, g)
	if tag := g.eng.Selection().Tag(gPoint); tag != selection.Active {
		t.Fatalf("G tag = %s", tag)
	}
	in.mouse[ebiten.MouseButtonLeft] = false
	update(t, g)
	if tag := g.eng.Selection().Tag(gPoint); tag == selection.Active {
		t.Fatalf("G still active after release")
	}
}

func TestRightDragPans(t *testing.T) {
	in := install(t)
	g := newTestGame(t)
	in.x, in.y = 400, 300
	update(t, g)
	in.mouse[ebiten.MouseButtonRight] = true
	update(t, g)
	in.x = 450
	update(t, g)
	in.mouse[ebiten.MouseButtonRight] = false
	update(t, g)
	if st := g.eng.Viewport().State(); st.TX != 450 || st.TY != 300 {
		t.Fatalf("state after pan = %+v", st)
	}
	if len(g.eng.Selection().State().SelectedNotes) != 0 {
		t.Fatalf("right drag selected points")
	}
}

func TestWheelZooms(t *testing.T) {
	in := install(t)
	g := newTestGame(t)
	in.x, in.y = 400, 300
	in.dy = 1
	update(t, g)
	in.dy = 0
	update(t, g)
	if k := g.eng.Viewport().State().K; k != 1.1 {
		t.Fatalf("scale = %v", k)
	}
}

func TestDoubleClickZooms(t *testing.T) {
	in := install(t)
	g := newTestGame(t)
	in.x, in.y = 10, 10
	for _, down := range []bool{true, false, true, false} {
		in.mouse[ebiten.MouseButtonLeft] = down
		update(t, g)
	}
	if k := g.eng.Viewport().State().K; k != 2 {
		t.Fatalf("scale = %v", k)
	}
}

func TestSlowClicksDoNotZoom(t *testing.T) {
	in := install(t)
	g := newTestGame(t)
	in.x, in.y = 10, 10
	in.mouse[ebiten.MouseButtonLeft] = true
	update(t, g)
	in.mouse[ebiten.MouseButtonLeft] = false
	for i := 0; i < doubleClickFrames+2; i++ {
		update(t, g)
	}
	in.mouse[ebiten.MouseButtonLeft] = true
	update(t, g)
	if k := g.eng.Viewport().State().K; k != 1 {
		t.Fatalf("scale = %v", k)
	}
}

func TestModeHotkeys(t *testing.T) {
	in := install(t)
	g := newTestGame(t)
	in.keys[ebiten.Key2] = true // Dorian: C sits in the Bb major collection
	update(t, g)
	if tag := g.eng.Selection().Tag(geom.Axial{}); tag != selection.Hinted {
		t.Fatalf("origin tag = %s", tag)
	}
	if tag := g.eng.Selection().Tag(geom.Axial{Q: 0, R: 1}); tag == selection.Hinted {
		t.Fatalf("E hinted in C Dorian")
	}
	in.keys[ebiten.Key2] = false
	in.keys[ebiten.Key0] = true
	update(t, g)
	if tag := g.eng.Selection().Tag(geom.Axial{}); tag != selection.Ready {
		t.Fatalf("origin tag after clear = %s", tag)
	}
}

func TestModifierEdges(t *testing.T) {
	in := install(t)
	g := newTestGame(t)
	in.keys[ebiten.KeyShiftRight] = true
	update(t, g)
	if !g.eng.Selection().Shift() || !g.eng.Input().Modifiers().Shift {
		t.Fatalf("shift not forwarded")
	}
	in.keys[ebiten.KeyShiftRight] = false
	update(t, g)
	if g.eng.Selection().Shift() {
		t.Fatalf("shift release not forwarded")
	}
}

func TestLayoutResizesViewport(t *testing.T) {
	g := newTestGame(t)
	g.Layout(1000, 500)
	if w, h := g.eng.Viewport().Screen(); w != 1000 || h != 500 {
		t.Fatalf("screen = %vx%v", w, h)
	}
}

// Package ui is the ebiten front end: it polls the mouse and keyboard, feeds
// the lattice engine and draws whatever the engine reports visible.
package ui

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ingyamilmolinar/tonnetz/core/engine"
	"github.com/ingyamilmolinar/tonnetz/core/input"
	"github.com/ingyamilmolinar/tonnetz/core/selection"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

const (
	ebitenTPS         = 60
	doubleClickFrames = ebitenTPS * 3 / 10 // 300ms
	doubleClickSlop   = 4.0                // px
	pointRadius       = 10
	statusHeight      = 20
)

var buttons = []struct {
	eb ebiten.MouseButton
	in input.Button
}{
	{ebiten.MouseButtonLeft, input.ButtonLeft},
	{ebiten.MouseButtonRight, input.ButtonRight},
	{ebiten.MouseButtonMiddle, input.ButtonMiddle},
}

var modifierKeys = []struct {
	keys []ebiten.Key
	in   input.Key
}{
	{[]ebiten.Key{ebiten.KeyShiftLeft, ebiten.KeyShiftRight}, input.KeyShift},
	{[]ebiten.Key{ebiten.KeyControlLeft, ebiten.KeyControlRight}, input.KeyCtrl},
	{[]ebiten.Key{ebiten.KeyAltLeft, ebiten.KeyAltRight}, input.KeyAlt},
	{[]ebiten.Key{ebiten.KeyEscape}, input.KeyEscape},
}

// modeKeys maps the digit row onto the seven modes; 0 clears the pattern.
var modeKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6, ebiten.Key7,
}

var modeOrder = []selection.Mode{
	selection.Ionian, selection.Dorian, selection.Phrygian, selection.Lydian,
	selection.Mixolydian, selection.Aeolian, selection.Locrian,
}

type Game struct {
	eng    *engine.Engine
	logger *game_log.Logger

	frame      int64
	winW, winH int

	/* edge detection */
	lastX, lastY float64
	buttonPrev   map[input.Button]bool
	keyPrev      map[ebiten.Key]bool

	/* double click */
	lastClickFrame int64
	lastClickX     float64
	lastClickY     float64
}

func New(eng *engine.Engine, logger *game_log.Logger) *Game {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Game{
		eng:            eng,
		logger:         logger,
		lastX:          math.NaN(),
		buttonPrev:     map[input.Button]bool{},
		keyPrev:        map[ebiten.Key]bool{},
		lastClickFrame: -doubleClickFrames - 1,
	}
}

func (g *Game) Engine() *engine.Engine { return g.eng }

func (g *Game) Layout(w, h int) (int, int) {
	if w != g.winW || h != g.winH {
		g.winW, g.winH = w, h
		g.eng.Resize(float64(w), float64(h))
		g.logger.Infof("[GAME] Layout: winW: %d, winH: %d", w, h)
	}
	return w, h
}

func (g *Game) Update() error {
	mx, my := cursorPosition()
	x, y := float64(mx), float64(my)
	if x != g.lastX || y != g.lastY {
		g.lastX, g.lastY = x, y
		g.eng.Handle(input.PointerMove{X: x, Y: y})
	}

	for _, b := range buttons {
		down := isMouseButtonPressed(b.eb)
		if down == g.buttonPrev[b.in] {
			continue
		}
		g.buttonPrev[b.in] = down
		if !down {
			g.eng.Handle(input.PointerUp{Button: b.in, X: x, Y: y})
			continue
		}
		g.eng.Handle(input.PointerDown{Button: b.in, X: x, Y: y})
		if b.in == input.ButtonLeft {
			g.detectDoubleClick(x, y)
		}
	}

	if _, dy := wheel(); dy != 0 {
		g.eng.Handle(input.Wheel{DY: dy, X: x, Y: y})
	}

	for _, m := range modifierKeys {
		down := false
		for _, k := range m.keys {
			down = down || isKeyPressed(k)
		}
		if g.edge(m.keys[0], down) {
			g.eng.Handle(input.KeyEvent{Code: m.in, Down: down})
		}
	}
	g.handleHotkeys()

	g.eng.Tick()
	g.frame++
	return nil
}

// edge records the state of k and reports whether it changed.
func (g *Game) edge(k ebiten.Key, down bool) bool {
	if g.keyPrev[k] == down {
		return false
	}
	g.keyPrev[k] = down
	return true
}

func (g *Game) pressed(k ebiten.Key) bool {
	down := isKeyPressed(k)
	return g.edge(k, down) && down
}

func (g *Game) handleHotkeys() {
	root := g.eng.Selection().Options().RootNote
	for i, k := range modeKeys {
		if g.pressed(k) {
			if err := g.eng.ApplyMode(modeOrder[i], root); err != nil {
				g.logger.Warnf("[GAME] mode %s: %v", modeOrder[i], err)
			} else {
				g.logger.Infof("[GAME] showing %s %s", root, modeOrder[i])
			}
		}
	}
	if g.pressed(ebiten.Key0) {
		g.eng.ClearPattern()
	}
	if g.pressed(ebiten.KeyHome) {
		g.eng.ResetView()
	}
}

func (g *Game) detectDoubleClick(x, y float64) {
	near := math.Hypot(x-g.lastClickX, y-g.lastClickY) <= doubleClickSlop
	if near && g.frame-g.lastClickFrame <= doubleClickFrames {
		g.eng.Handle(input.DoubleClick{X: x, Y: y})
		g.lastClickFrame = -doubleClickFrames - 1
		return
	}
	g.lastClickFrame = g.frame
	g.lastClickX, g.lastClickY = x, y
}

/* ─────────────── Draw ─────────────────────────────────────────────────── */

// Draw repaints only when the engine asks for it; the screen is not cleared
// between frames.
func (g *Game) Draw(screen *ebiten.Image) {
	if !g.eng.TakeRedraw() {
		return
	}
	screen.Fill(colBG)
	f := g.eng.Visible()

	for _, t := range f.Triangles {
		if c, ok := faceColors[t.Tag]; ok {
			drawFace(screen, t.Vertices, c)
		}
		if t.Chord != "" {
			drawFace(screen, t.Vertices, colChord)
		}
	}
	for _, t := range f.Triangles {
		if !t.Up {
			continue // up faces share no edges
		}
		drawLine(screen, t.Vertices[0], t.Vertices[1], colEdge, 1)
		drawLine(screen, t.Vertices[1], t.Vertices[2], colEdge, 1)
		drawLine(screen, t.Vertices[2], t.Vertices[0], colEdge, 1)
	}
	for _, t := range f.Triangles {
		if t.Chord != "" {
			centeredText(screen, t.Chord, t.Centroid)
		}
	}
	for _, p := range f.Points {
		drawPoint(screen, p.Screen, pointRadius, pointColors[p.Tag])
		centeredText(screen, p.Label, p.Screen)
	}
	g.drawStatus(screen)
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	o := g.eng.Selection().Options()
	head := fmt.Sprintf("root %s  q+%d r+%d  1-7 modes  0 clear  home reset", o.RootNote, o.QInterval, o.RInterval)
	drawText(screen, head, 8, 4)
	drawText(screen, g.eng.StatusLine(), 8, g.winH-statusHeight)
}

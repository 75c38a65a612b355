package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ingyamilmolinar/tonnetz/core/geom"
)

var whiteImage *ebiten.Image

// fillSource is a 1x1 white sub-image; DrawTriangles tints it per vertex.
func fillSource() *ebiten.Image {
	if whiteImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
	}
	return whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// drawLine draws a line in screen space. It is defined as a variable so
// tests can override it to capture draw calls.
var drawLine = func(dst *ebiten.Image, a, b geom.Vec, c color.Color, width float32) {
	vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, c, true)
}

var drawPoint = func(dst *ebiten.Image, at geom.Vec, r float32, c color.Color) {
	vector.DrawFilledCircle(dst, float32(at.X), float32(at.Y), r, c, true)
}

var drawFace = func(dst *ebiten.Image, vs [3]geom.Vec, c color.RGBA) {
	cr := float32(c.R) / 255
	cg := float32(c.G) / 255
	cb := float32(c.B) / 255
	ca := float32(c.A) / 255
	verts := make([]ebiten.Vertex, 3)
	for i, v := range vs {
		verts[i] = ebiten.Vertex{
			DstX: float32(v.X), DstY: float32(v.Y),
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		}
	}
	dst.DrawTriangles(verts, []uint16{0, 1, 2}, fillSource(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// drawText prints with the debug font, 6x16 px per glyph.
var drawText = func(dst *ebiten.Image, s string, x, y int) {
	ebitenutil.DebugPrintAt(dst, s, x, y)
}

// centeredText positions s so it is centred on at.
func centeredText(dst *ebiten.Image, s string, at geom.Vec) {
	drawText(dst, s, int(at.X)-len(s)*3, int(at.Y)-8)
}

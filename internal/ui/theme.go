package ui

import (
	"image/color"

	"github.com/ingyamilmolinar/tonnetz/core/selection"
)

var (
	colBG    = color.RGBA{20, 20, 30, 255}
	colEdge  = color.RGBA{60, 60, 70, 255}
	colChord = color.RGBA{255, 200, 0, 110}
)

// pointColors and faceColors are indexed by selection tag.
var pointColors = map[selection.Tag]color.RGBA{
	selection.Ready:    {90, 90, 110, 255},
	selection.Hinted:   {40, 160, 200, 255},
	selection.Active:   {255, 255, 0, 255},
	selection.Inactive: {120, 120, 90, 255},
	selection.DragPrev: {200, 120, 40, 255},
}

var faceColors = map[selection.Tag]color.RGBA{
	selection.Hinted:   {40, 160, 200, 60},
	selection.Active:   {255, 255, 0, 90},
	selection.Inactive: {120, 120, 90, 40},
	selection.DragPrev: {200, 120, 40, 70},
}

package render

import "image/color"

// Logical canvas. Every pass paints the full surface.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// Background is #FFDAB9, repainted at the start of every pass.
var Background = color.RGBA{R: 0xFF, G: 0xDA, B: 0xB9, A: 0xFF}

// Flower geometry in canvas units.
const (
	StemWidth      = 20.0
	StemBendReach  = 100.0
	LeafDrop       = 200.0
	CenterDiameter = 150.0
	PetalRadius    = CenterDiameter / 2
	ClassicPetals  = 10
)

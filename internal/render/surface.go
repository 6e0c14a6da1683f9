// Package render paints flowers onto a 2D surface.
package render

import (
	"image/color"

	"github.com/fogleman/gg"
)

// Surface is the set of primitives a flower is drawn with. It hides the
// rasterizer so geometry can be inspected without pixels.
type Surface interface {
	// Size returns the logical canvas size in pixels.
	Size() (width int, height int)

	FillBackground(c color.Color)

	// StrokeQuadratic strokes an unfilled quadratic curve from (x0,y0) to
	// (x1,y1) with control point (cx,cy).
	StrokeQuadratic(x0, y0, cx, cy, x1, y1, width float64, c color.Color)

	// FillEllipse fills an ellipse of diameters (w,h) centred on the local
	// origin of m. m is a translation optionally followed by a rotation.
	FillEllipse(m gg.Matrix, w, h float64, c color.Color)
}

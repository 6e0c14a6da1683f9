package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/rook-computer/flowerfield/internal/render/layout"
)

const (
	captionSize   = 28
	captionMargin = 24
)

// Canvas is an offscreen RGBA surface backed by gg.
type Canvas struct {
	dc   *gg.Context
	face font.Face
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{dc: gg.NewContext(width, height)}
}

func (c *Canvas) Size() (int, int) { return c.dc.Width(), c.dc.Height() }

func (c *Canvas) FillBackground(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *Canvas) StrokeQuadratic(x0, y0, cx, cy, x1, y1, width float64, col color.Color) {
	c.dc.NewSubPath()
	c.dc.MoveTo(x0, y0)
	c.dc.QuadraticTo(cx, cy, x1, y1)
	c.dc.SetLineWidth(width)
	c.dc.SetLineCapRound()
	c.dc.SetColor(col)
	c.dc.Stroke()
}

// FillEllipse draws the ellipse with gg under the translation and rotation
// carried by m, then resets the context transform.
func (c *Canvas) FillEllipse(m gg.Matrix, w, h float64, col color.Color) {
	rx, ry := math.Abs(w)/2, math.Abs(h)/2
	if rx == 0 || ry == 0 {
		return
	}
	c.dc.Identity()
	c.dc.Translate(m.X0, m.Y0)
	c.dc.Rotate(math.Atan2(m.YX, m.XX))
	c.dc.DrawEllipse(0, 0, rx, ry)
	c.dc.SetColor(col)
	c.dc.Fill()
	c.dc.Identity()
}

// DrawCaption writes text in the bottom-left corner.
func (c *Canvas) DrawCaption(text string, fg color.Color) {
	if text == "" {
		return
	}
	if c.face == nil {
		c.face = captionFace()
	}
	c.dc.SetFontFace(c.face)
	width, height := c.Size()
	textWidth, textHeight := c.dc.MeasureString(text)
	box := layout.AnchorBottomLeft(layout.Inset(image.Rect(0, 0, width, height), captionMargin), int(math.Ceil(textWidth)), int(math.Ceil(textHeight)))
	c.dc.SetColor(fg)
	c.dc.DrawStringAnchored(text, float64(box.Min.X), float64(box.Max.Y), 0, 0)
}

func captionFace() font.Face {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(tt, &truetype.Options{Size: captionSize, DPI: 72, Hinting: font.HintingFull})
}

// Image returns the backing RGBA image. It is shared with the canvas.
func (c *Canvas) Image() *image.RGBA {
	return c.dc.Image().(*image.RGBA)
}

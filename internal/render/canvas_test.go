package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"
)

func TestCanvasFillEllipseFollowsMatrix(t *testing.T) {
	leaf := color.RGBA{G: 0x64, A: 0xFF}
	c := NewCanvas(200, 200)
	c.FillBackground(Background)

	// A 10x60 ellipse turned a quarter circle lies along the x axis.
	m := gg.Identity().Translate(100, 100).Rotate(math.Pi / 2)
	c.FillEllipse(m, 10, 60, leaf)
	img := c.Image()

	require.Equal(t, leaf, img.RGBAAt(100, 100))
	require.Equal(t, leaf, img.RGBAAt(125, 100))
	require.Equal(t, leaf, img.RGBAAt(75, 100))
	require.Equal(t, Background, img.RGBAAt(100, 125))
	require.Equal(t, Background, img.RGBAAt(100, 75))

	// The context transform is reset afterwards.
	c.FillEllipse(gg.Translate(20, 20), 10, 10, leaf)
	require.Equal(t, leaf, c.Image().RGBAAt(20, 20))
}

func TestCanvasFillEllipseIgnoresZeroSize(t *testing.T) {
	c := NewCanvas(20, 20)
	c.FillBackground(Background)
	c.FillEllipse(gg.Translate(10, 10), 0, 8, color.Black)
	require.Equal(t, Background, c.Image().RGBAAt(10, 10))
}

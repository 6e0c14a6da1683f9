package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInset(t *testing.T) {
	require.Equal(t, image.Rect(10, 10, 90, 40), Inset(image.Rect(0, 0, 100, 50), 10))
	require.Equal(t, image.Rect(0, 0, 100, 50), Inset(image.Rect(0, 0, 100, 50), 0))
	// Over-inset collapses but stays normalized.
	require.Equal(t, image.Rect(4, 4, 6, 6), Inset(image.Rect(0, 0, 10, 10), 6))
}

func TestAnchors(t *testing.T) {
	rect := image.Rect(0, 0, 1920, 1080)
	require.Equal(t, image.Rect(0, 1050, 200, 1080), AnchorBottomLeft(rect, 200, 30))
	require.Equal(t, image.Rect(1664, 824, 1920, 1080), AnchorBottomRight(rect, 256, 256))
	// Sizes are clamped to the container.
	require.Equal(t, image.Rect(0, 0, 10, 10), AnchorBottomRight(image.Rect(0, 0, 10, 10), 50, 50))
	require.Equal(t, image.Rect(0, 10, 0, 10), AnchorBottomLeft(image.Rect(0, 0, 10, 10), -5, -5))
}

func TestFitAspect(t *testing.T) {
	canvas := image.Rect(0, 0, 1920, 1080)
	require.Equal(t, image.Rect(0, 0, 1920, 1080), FitAspect(image.Rect(0, 0, 1920, 1080), canvas))
	// 4:3 display letterboxes a 16:9 canvas.
	require.Equal(t, image.Rect(0, 48, 1024, 624), FitAspect(image.Rect(0, 0, 1024, 672), canvas))
	require.True(t, FitAspect(image.Rect(0, 0, 10, 10), image.Rectangle{}).Empty())
}

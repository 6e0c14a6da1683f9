package render

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/google/uuid"

	"github.com/rook-computer/flowerfield/internal/field"
)

var captionColor = color.RGBA{R: 0x5A, G: 0x3E, B: 0x2B, A: 0xFF}

// PassOptions describes one full repaint of the field.
type PassOptions struct {
	Config  field.Config
	Seed    uint64
	Width   int
	Height  int
	Caption bool
}

// Frame is the result of a pass. Image is owned by the frame.
type Frame struct {
	ID         string
	Seed       uint64
	Flowers    int
	Image      *image.RGBA
	RenderedAt time.Time
	Duration   time.Duration
}

// Paint clears s and draws one freshly sampled field onto it. It returns the
// number of flowers drawn.
func Paint(s Surface, cfg field.Config, src field.Source) int {
	width, height := s.Size()
	s.FillBackground(Background)
	sampler := field.NewSampler(src, width, height)
	n := sampler.FlowerCount(cfg)
	for i := 0; i < n; i++ {
		DrawFlower(s, sampler.Sample(cfg, i, n))
	}
	return n
}

// RenderPass paints a new canvas. The same options always produce the same
// pixels.
func RenderPass(opts PassOptions) Frame {
	if opts.Width <= 0 {
		opts.Width = CanvasWidth
	}
	if opts.Height <= 0 {
		opts.Height = CanvasHeight
	}
	start := time.Now()
	canvas := NewCanvas(opts.Width, opts.Height)
	n := Paint(canvas, opts.Config, field.NewSource(opts.Seed))
	if opts.Caption {
		canvas.DrawCaption(Caption(opts.Seed, n), captionColor)
	}
	return Frame{
		ID:         uuid.NewString(),
		Seed:       opts.Seed,
		Flowers:    n,
		Image:      canvas.Image(),
		RenderedAt: start,
		Duration:   time.Since(start),
	}
}

func Caption(seed uint64, flowers int) string {
	return fmt.Sprintf("seed %d · %d flowers", seed, flowers)
}

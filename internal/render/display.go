package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"

	fb "github.com/gonutz/framebuffer"
)

// Display receives every completed frame.
type Display interface {
	Start(ctx context.Context) error
	Stop() error
	Show(img image.Image) error
}

type NoopDisplay struct{}

func (NoopDisplay) Start(ctx context.Context) error { return nil }
func (NoopDisplay) Stop() error                     { return nil }
func (NoopDisplay) Show(img image.Image) error      { return nil }

// FBDisplay shows frames on a Linux framebuffer, letterboxed to the
// device resolution.
type FBDisplay struct {
	Path   string
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	mu     sync.Mutex
	fbDev  *fb.Device
	scaled *image.RGBA
}

func NewFBDisplay(path string) *FBDisplay {
	if path == "" {
		path = "/dev/fb0"
	}
	return &FBDisplay{Path: path}
}

func (d *FBDisplay) Start(ctx context.Context) error {
	dev, err := fb.Open(d.Path)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.fbDev = dev
	d.scaled = image.NewRGBA(image.Rect(0, 0, dev.Bounds().Dx(), dev.Bounds().Dy()))
	d.mu.Unlock()
	if d.Logger != nil {
		bounds := dev.Bounds()
		d.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", d.Path, bounds.Dx(), bounds.Dy())
	}
	return nil
}

func (d *FBDisplay) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fbDev != nil {
		d.fbDev.Close()
		d.fbDev = nil
	}
	return nil
}

func (d *FBDisplay) Show(img image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fbDev == nil {
		return nil
	}
	draw.Draw(d.scaled, d.scaled.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
	Letterbox(d.scaled, img)
	blitToFB(d.fbDev, d.scaled)
	if d.Logger != nil {
		d.Logger.Infof("fb", "frame shown")
	}
	return nil
}

// blitToFB copies a device-sized buffer onto the framebuffer.
func blitToFB(dev *fb.Device, buf *image.RGBA) {
	bounds := dev.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			pixel := buf.RGBAAt(x, y)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}

package render

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/flowerfield/internal/render/layout"
)

// EncodePNG encodes img, first scaling it down to width pixels wide when
// width is positive and smaller than the image.
func EncodePNG(img image.Image, width int) ([]byte, error) {
	if width > 0 && width < img.Bounds().Dx() {
		img = Thumbnail(img, width)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Thumbnail scales img to width pixels wide, keeping its aspect ratio.
func Thumbnail(img image.Image, width int) *image.RGBA {
	src := img.Bounds()
	height := width * src.Dy() / src.Dx()
	if height <= 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst
}

// Letterbox scales img into a dst-sized image, preserving aspect ratio.
func Letterbox(dst *image.RGBA, img image.Image) {
	target := layout.FitAspect(dst.Bounds(), img.Bounds())
	xdraw.ApproxBiLinear.Scale(dst, target, img, img.Bounds(), xdraw.Src, nil)
}

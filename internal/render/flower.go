package render

import (
	"math"

	"github.com/fogleman/gg"

	"github.com/rook-computer/flowerfield/internal/field"
)

// DrawFlower paints one flower: stem, leaves, center, then petals.
func DrawFlower(s Surface, f field.Flower) {
	_, height := s.Size()

	s.StrokeQuadratic(
		f.CenterX, float64(height),
		f.CenterX+f.StemBend*StemBendReach, f.CenterY+f.StemHeight,
		f.CenterX, f.CenterY,
		StemWidth, f.StemColor,
	)

	for _, leaf := range f.Leaves {
		s.FillEllipse(LeafTransform(f, leaf), leaf.Size, leaf.Size*2, f.LeafColor)
	}

	s.FillEllipse(gg.Translate(f.CenterX, f.CenterY), CenterDiameter, CenterDiameter, f.CenterColor)

	for _, p := range PetalCenters(f) {
		s.FillEllipse(gg.Translate(p.X, p.Y), f.PetalWidth, f.PetalHeight, f.PetalColor)
	}
}

// LeafTransform maps leaf-local coordinates onto the canvas: rotate by the
// leaf angle plus stem bend, then move to the leaf's spot below the center.
func LeafTransform(f field.Flower, leaf field.Leaf) gg.Matrix {
	return gg.Identity().
		Translate(f.CenterX, f.CenterY+leaf.Position*LeafDrop).
		Rotate(leaf.Angle + f.StemBend)
}

// PetalCenters returns where each petal ellipse is centred. Petals sit on a
// circle of radius PetalRadius. In the classic layout there are always ten
// petals and PetalCount only turns the ring.
func PetalCenters(f field.Flower) []gg.Point {
	n, offset := ClassicPetals, float64(f.PetalCount)
	if f.ExactPetals {
		n, offset = f.PetalCount, 0
	}
	if n <= 0 {
		return nil
	}
	if n > field.MaxPetalCount {
		n = field.MaxPetalCount
	}
	out := make([]gg.Point, n)
	for i := range out {
		angle := 2*math.Pi/float64(n)*float64(i) + offset
		out[i] = gg.Point{
			X: f.CenterX + math.Cos(angle)*PetalRadius,
			Y: f.CenterY + math.Sin(angle)*PetalRadius,
		}
	}
	return out
}

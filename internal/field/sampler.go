// Package field samples randomized flower parameters from a Config.
package field

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	leafPositionMin = 0.5
	leafPositionMax = 0.8
	maxLeaves       = 3
)

// Source is the randomness a Sampler draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// NewSource returns a PCG-backed source fully determined by seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sampler turns a Config into Flowers for a canvas of the given size.
type Sampler struct {
	Src    Source
	Width  float64
	Height float64
}

func NewSampler(src Source, width, height int) *Sampler {
	return &Sampler{Src: src, Width: float64(width), Height: float64(height)}
}

// Between draws uniformly from r. Inverted ranges are swapped first.
func (s *Sampler) Between(r Range) float64 {
	r = r.Normalize()
	return r.Min + s.Src.Float64()*(r.Max-r.Min)
}

// FlowerCount draws how many flowers one pass paints.
func (s *Sampler) FlowerCount(cfg Config) int {
	return roundCount(s.Between(cfg.NumFlowers), MaxFlowers)
}

// roundCount rounds v to an integer in [0, limit]. NaN yields 0.
func roundCount(v float64, limit int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(limit) {
		return limit
	}
	return int(math.Round(v))
}

// Sample produces the flower at index out of total in the current pass.
// index and total only matter when random positioning is off.
func (s *Sampler) Sample(cfg Config, index, total int) Flower {
	t := cfg.Toggles

	var scale, stemHeight, petalWidth, petalHeight float64
	if t.RandomSize {
		scale = s.Between(cfg.FlowerScale)
		stemHeight = s.Between(cfg.StemHeight) * scale
		petalWidth = s.Between(cfg.PetalWidth) * scale
		petalHeight = s.Between(cfg.PetalHeight) * scale
	} else {
		scale = cfg.FlowerScale.Mid()
		stemHeight = cfg.StemHeight.Mid() * scale
		petalWidth = cfg.PetalWidth.Mid() * scale
		petalHeight = cfg.PetalHeight.Mid() * scale
	}

	petalCount := roundCount(s.Between(cfg.PetalCount), MaxPetalCount)

	stemColor, centerColor, petalColor := s.colors(cfg)

	stemBend := 0.0
	if t.RandomBend {
		stemBend = s.Between(cfg.StemBend)
	}

	var cx, cy float64
	if t.RandomPosition {
		cx = s.Src.Float64() * s.Width
		cy = s.Src.Float64() * s.Height
	} else {
		cx, cy = s.slot(index, total)
	}

	var leaves []Leaf
	if t.RandomLeaves {
		leaves = s.leaves(cfg.LeafSize)
	}

	return Flower{
		CenterX:     cx,
		CenterY:     cy,
		StemHeight:  stemHeight,
		PetalWidth:  petalWidth,
		PetalHeight: petalHeight,
		StemColor:   stemColor,
		CenterColor: centerColor,
		PetalColor:  petalColor,
		LeafColor:   parseHex(cfg.Palette.Leaf),
		StemBend:    stemBend,
		PetalCount:  petalCount,
		ExactPetals: t.ExactPetalCount,
		Leaves:      leaves,
	}
}

// slot spaces flowers evenly along the horizontal midline.
func (s *Sampler) slot(index, total int) (float64, float64) {
	if total <= 0 {
		total = 1
	}
	if index < 0 {
		index = 0
	}
	step := s.Width / float64(total)
	return step*float64(index) + step/2, s.Height / 2
}

func (s *Sampler) leaves(size Range) []Leaf {
	n := s.Src.IntN(maxLeaves) + 1
	out := make([]Leaf, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Leaf{
			Position: s.Between(Range{Min: leafPositionMin, Max: leafPositionMax}),
			Size:     s.Between(size),
			Angle:    s.Src.Float64() * 2 * math.Pi,
		})
	}
	return out
}

func (s *Sampler) colors(cfg Config) (stem, center, petal color.RGBA) {
	if !cfg.Toggles.UseRandomColors {
		return parseHex(cfg.Palette.Stem), parseHex(cfg.Palette.Center), parseHex(cfg.Palette.Petal)
	}
	return s.Color(cfg), s.Color(cfg), s.Color(cfg)
}

// Color draws one colour according to the configured variation.
func (s *Sampler) Color(cfg Config) color.RGBA {
	if cfg.Variation == VariationMono && len(cfg.PetalColors) > 0 {
		base := parseHex(cfg.PetalColors[s.Src.IntN(len(cfg.PetalColors))])
		return towardWhite(base, s.Src.Float64()*0.5)
	}
	return color.RGBA{
		R: uint8(s.Src.IntN(256)),
		G: uint8(s.Src.IntN(256)),
		B: uint8(s.Src.IntN(256)),
		A: 0xFF,
	}
}

func towardWhite(base color.RGBA, t float64) color.RGBA {
	c, _ := colorful.MakeColor(base)
	r, g, b := c.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, t).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// ParseHex converts a #RRGGBB or #RGB string to an opaque colour. Unparseable
// input yields black.
func ParseHex(hex string) color.RGBA {
	return parseHex(hex)
}

func parseHex(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{A: 0xFF}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

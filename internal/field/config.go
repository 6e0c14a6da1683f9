package field

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type Variation string

const (
	// VariationFull samples each RGB channel independently.
	VariationFull Variation = "full"
	// VariationMono blends a palette entry toward white.
	VariationMono Variation = "mono"
)

func ParseVariation(raw string) (Variation, error) {
	switch Variation(strings.ToLower(strings.TrimSpace(raw))) {
	case VariationFull:
		return VariationFull, nil
	case VariationMono:
		return VariationMono, nil
	default:
		return "", fmt.Errorf("unknown variation %q (want %q or %q)", raw, VariationFull, VariationMono)
	}
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Normalize ensures Min is <= Max.
func (r Range) Normalize() Range {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

func (r Range) Mid() float64 {
	r = r.Normalize()
	return r.Min + (r.Max-r.Min)/2
}

func (r Range) Contains(v float64) bool {
	r = r.Normalize()
	return v >= r.Min && v <= r.Max
}

type Toggles struct {
	UseRandomColors bool `json:"useRandomColors" mapstructure:"use_random_colors"`
	RandomBend      bool `json:"randomBend" mapstructure:"random_bend"`
	RandomLeaves    bool `json:"randomLeaves" mapstructure:"random_leaves"`
	RandomPosition  bool `json:"randomPosition" mapstructure:"random_position"`
	RandomSize      bool `json:"randomSize" mapstructure:"random_size"`
	// ExactPetalCount draws PetalCount petals instead of the classic ten
	// petals rotated by PetalCount.
	ExactPetalCount bool `json:"exactPetalCount" mapstructure:"exact_petal_count"`
}

// Palette holds the colours used when colour randomization is off.
type Palette struct {
	Stem   string `json:"stem" mapstructure:"stem"`
	Center string `json:"center" mapstructure:"center"`
	Petal  string `json:"petal" mapstructure:"petal"`
	Leaf   string `json:"leaf" mapstructure:"leaf"`
}

// Config is one immutable snapshot of the flower generation settings.
// Values are copied on every update; slices are never shared between
// snapshots.
type Config struct {
	NumFlowers  Range `json:"numFlowers" mapstructure:"num_flowers"`
	FlowerScale Range `json:"flowerScale" mapstructure:"flower_scale"`
	PetalWidth  Range `json:"petalWidth" mapstructure:"petal_width"`
	PetalHeight Range `json:"petalHeight" mapstructure:"petal_height"`
	StemHeight  Range `json:"stemHeight" mapstructure:"stem_height"`
	PetalCount  Range `json:"petalCount" mapstructure:"petal_count"`
	LeafSize    Range `json:"leafSize" mapstructure:"leaf_size"`
	StemBend    Range `json:"stemBend" mapstructure:"stem_bend"`

	PetalColors []string  `json:"petalColors" mapstructure:"petal_colors"`
	Variation   Variation `json:"variation" mapstructure:"variation"`
	Palette     Palette   `json:"palette" mapstructure:"palette"`
	Toggles     Toggles   `json:"toggles" mapstructure:"toggles"`
}

func DefaultPalette() Palette {
	return Palette{
		Stem:   "#008000",
		Center: "#FFD700",
		Petal:  "#FF6347",
		Leaf:   "#006400",
	}
}

func DefaultConfig() Config {
	return Config{
		NumFlowers:  Range{Min: 20, Max: 75},
		FlowerScale: Range{Min: 0.5, Max: 2},
		PetalWidth:  Range{Min: 50, Max: 150},
		PetalHeight: Range{Min: 50, Max: 150},
		StemHeight:  Range{Min: 50, Max: 300},
		PetalCount:  Range{Min: 5, Max: 20},
		LeafSize:    Range{Min: 10, Max: 20},
		StemBend:    Range{Min: 1, Max: 1},
		PetalColors: []string{"#FF6347", "#BA55D3", "#87CEFA", "#3CB371", "#FFD700"},
		Variation:   VariationFull,
		Palette:     DefaultPalette(),
		Toggles: Toggles{
			UseRandomColors: true,
			RandomBend:      true,
			RandomLeaves:    true,
			RandomPosition:  true,
			RandomSize:      true,
		},
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	if c.PetalColors != nil {
		out.PetalColors = make([]string, len(c.PetalColors))
		copy(out.PetalColors, c.PetalColors)
	}
	return out
}

// Hard ceilings for the counts a pass may draw.
const (
	MaxFlowers    = 1000
	MaxPetalCount = 360
)

const (
	maxFlowerScale = 20
	maxLength      = 5000
	maxStemBend    = 50
)

type bounds struct{ lo, hi float64 }

// rangeBounds are the accepted limits for each named range.
var rangeBounds = map[string]bounds{
	"num_flowers":  {0, MaxFlowers},
	"flower_scale": {0, maxFlowerScale},
	"petal_width":  {0, maxLength},
	"petal_height": {0, maxLength},
	"stem_height":  {0, maxLength},
	"petal_count":  {0, MaxPetalCount},
	"leaf_size":    {0, maxLength},
	"stem_bend":    {-maxStemBend, maxStemBend},
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (c Config) namedRanges() []struct {
	name string
	r    Range
} {
	return []struct {
		name string
		r    Range
	}{
		{"num_flowers", c.NumFlowers},
		{"flower_scale", c.FlowerScale},
		{"petal_width", c.PetalWidth},
		{"petal_height", c.PetalHeight},
		{"stem_height", c.StemHeight},
		{"petal_count", c.PetalCount},
		{"leaf_size", c.LeafSize},
		{"stem_bend", c.StemBend},
	}
}

// Validate reports every inverted, out-of-bounds or non-finite range and
// every colour that cannot be parsed.
func (c Config) Validate() error {
	var errs []error
	for _, nr := range c.namedRanges() {
		if !isFinite(nr.r.Min) || !isFinite(nr.r.Max) {
			errs = append(errs, fmt.Errorf("%s: min and max must be finite", nr.name))
			continue
		}
		if nr.r.Min > nr.r.Max {
			errs = append(errs, fmt.Errorf("%s: min %g > max %g", nr.name, nr.r.Min, nr.r.Max))
		}
		b := rangeBounds[nr.name]
		if nr.r.Min < b.lo {
			errs = append(errs, fmt.Errorf("%s: min %g < %g", nr.name, nr.r.Min, b.lo))
		}
		if nr.r.Max > b.hi {
			errs = append(errs, fmt.Errorf("%s: max %g > limit %g", nr.name, nr.r.Max, b.hi))
		}
	}
	if _, err := ParseVariation(string(c.Variation)); err != nil {
		errs = append(errs, err)
	}
	if c.Variation == VariationMono && len(c.PetalColors) == 0 {
		errs = append(errs, errors.New("petal_colors: mono variation needs at least one colour"))
	}
	for _, hex := range c.PetalColors {
		if _, err := colorful.Hex(hex); err != nil {
			errs = append(errs, fmt.Errorf("petal_colors: %q: %w", hex, err))
		}
	}
	for name, hex := range map[string]string{
		"palette.stem":   c.Palette.Stem,
		"palette.center": c.Palette.Center,
		"palette.petal":  c.Palette.Petal,
		"palette.leaf":   c.Palette.Leaf,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %q: %w", name, hex, err))
		}
	}
	return errors.Join(errs...)
}

// Controls are the runtime-settable knobs of the control surface. Nil
// fields leave the current value untouched.
type Controls struct {
	NumFlowersMax  *float64 `json:"numFlowersMax,omitempty"`
	FlowerScaleMax *float64 `json:"flowerScaleMax,omitempty"`
	StemHeightMax  *float64 `json:"stemHeightMax,omitempty"`
	PetalCountMax  *float64 `json:"petalCountMax,omitempty"`
	Variation      *string  `json:"variation,omitempty"`

	UseRandomColors *bool `json:"useRandomColors,omitempty"`
	RandomBend      *bool `json:"randomBend,omitempty"`
	RandomLeaves    *bool `json:"randomLeaves,omitempty"`
	RandomPosition  *bool `json:"randomPosition,omitempty"`
	RandomSize      *bool `json:"randomSize,omitempty"`
	ExactPetalCount *bool `json:"exactPetalCount,omitempty"`
}

// Apply returns a new validated snapshot with the controls applied. The
// receiver is never modified.
func (c Config) Apply(ctl Controls) (Config, error) {
	out := c.Clone()
	setMax := func(r *Range, v *float64) {
		if v != nil {
			r.Max = *v
		}
	}
	setMax(&out.NumFlowers, ctl.NumFlowersMax)
	setMax(&out.FlowerScale, ctl.FlowerScaleMax)
	setMax(&out.StemHeight, ctl.StemHeightMax)
	setMax(&out.PetalCount, ctl.PetalCountMax)
	if ctl.Variation != nil {
		v, err := ParseVariation(*ctl.Variation)
		if err != nil {
			return c, err
		}
		out.Variation = v
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&out.Toggles.UseRandomColors, ctl.UseRandomColors)
	setBool(&out.Toggles.RandomBend, ctl.RandomBend)
	setBool(&out.Toggles.RandomLeaves, ctl.RandomLeaves)
	setBool(&out.Toggles.RandomPosition, ctl.RandomPosition)
	setBool(&out.Toggles.RandomSize, ctl.RandomSize)
	setBool(&out.Toggles.ExactPetalCount, ctl.ExactPetalCount)

	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}

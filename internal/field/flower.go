package field

import "image/color"

// Leaf hangs off a stem. Position is a fraction of the stem height.
type Leaf struct {
	Position float64
	Size     float64
	Angle    float64
}

// Flower is the full parameter set for drawing one flower. It lives only
// for the duration of a single draw call.
type Flower struct {
	CenterX     float64
	CenterY     float64
	StemHeight  float64
	PetalWidth  float64
	PetalHeight float64
	StemColor   color.RGBA
	CenterColor color.RGBA
	PetalColor  color.RGBA
	LeafColor   color.RGBA
	StemBend    float64
	PetalCount  int
	// ExactPetals makes PetalCount the number of petals drawn instead of a
	// rotation offset for the fixed ten-petal layout.
	ExactPetals bool
	Leaves      []Leaf
}

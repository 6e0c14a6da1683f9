package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "inverted stem height",
			mutate:  func(c *Config) { c.StemHeight = Range{Min: 300, Max: 50} },
			wantErr: "stem_height: min 300 > max 50",
		},
		{
			name:    "negative flower count",
			mutate:  func(c *Config) { c.NumFlowers = Range{Min: -1, Max: 3} },
			wantErr: "num_flowers: min -1 < 0",
		},
		{
			name:    "petal count above limit",
			mutate:  func(c *Config) { c.PetalCount = Range{Min: 5, Max: 1e15} },
			wantErr: "petal_count: max 1e+15 > limit 360",
		},
		{
			name:    "flower count above limit",
			mutate:  func(c *Config) { c.NumFlowers = Range{Min: 20, Max: 1e12} },
			wantErr: "num_flowers: max 1e+12 > limit 1000",
		},
		{
			name:    "stem height above limit",
			mutate:  func(c *Config) { c.StemHeight = Range{Min: 50, Max: 5001} },
			wantErr: "stem_height: max 5001 > limit 5000",
		},
		{
			name:    "negative leaf size",
			mutate:  func(c *Config) { c.LeafSize = Range{Min: -3, Max: 20} },
			wantErr: "leaf_size: min -3 < 0",
		},
		{
			name:    "infinite scale",
			mutate:  func(c *Config) { c.FlowerScale = Range{Min: 0.5, Max: math.Inf(1)} },
			wantErr: "flower_scale: min and max must be finite",
		},
		{
			name:    "nan bend",
			mutate:  func(c *Config) { c.StemBend = Range{Min: math.NaN(), Max: 1} },
			wantErr: "stem_bend: min and max must be finite",
		},
		{
			name:    "unknown variation",
			mutate:  func(c *Config) { c.Variation = "neon" },
			wantErr: "unknown variation",
		},
		{
			name: "mono without palette",
			mutate: func(c *Config) {
				c.Variation = VariationMono
				c.PetalColors = nil
			},
			wantErr: "mono variation needs at least one colour",
		},
		{
			name:    "bad palette colour",
			mutate:  func(c *Config) { c.Palette.Leaf = "green" },
			wantErr: "palette.leaf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyProducesNewSnapshot(t *testing.T) {
	orig := DefaultConfig()
	next, err := orig.Apply(Controls{
		NumFlowersMax:  ptr(30.0),
		FlowerScaleMax: ptr(1.5),
		StemHeightMax:  ptr(200.0),
		PetalCountMax:  ptr(12.0),
		Variation:      ptr("mono"),
		RandomLeaves:   ptr(false),
	})
	require.NoError(t, err)

	require.Equal(t, 30.0, next.NumFlowers.Max)
	require.Equal(t, 1.5, next.FlowerScale.Max)
	require.Equal(t, 200.0, next.StemHeight.Max)
	require.Equal(t, 12.0, next.PetalCount.Max)
	require.Equal(t, VariationMono, next.Variation)
	require.False(t, next.Toggles.RandomLeaves)

	require.Equal(t, DefaultConfig(), orig)
	next.PetalColors[0] = "#000000"
	require.Equal(t, "#FF6347", orig.PetalColors[0])
}

func TestApplyRejectsInvertedRange(t *testing.T) {
	orig := DefaultConfig()
	got, err := orig.Apply(Controls{NumFlowersMax: ptr(5.0)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "num_flowers")
	require.Equal(t, orig, got)
}

func TestApplyRejectsHugeMaxima(t *testing.T) {
	orig := DefaultConfig()
	tests := []struct {
		name string
		ctl  Controls
	}{
		{"petal count", Controls{PetalCountMax: ptr(1e15), ExactPetalCount: ptr(true)}},
		{"flower count", Controls{NumFlowersMax: ptr(1e12)}},
		{"flower scale", Controls{FlowerScaleMax: ptr(1e9)}},
		{"stem height", Controls{StemHeightMax: ptr(1e9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := orig.Apply(tt.ctl)
			require.Error(t, err)
			require.Contains(t, err.Error(), "> limit")
			require.Equal(t, orig, got)
		})
	}

	next, err := orig.Apply(Controls{NumFlowersMax: ptr(float64(MaxFlowers)), PetalCountMax: ptr(float64(MaxPetalCount))})
	require.NoError(t, err)
	require.Equal(t, float64(MaxFlowers), next.NumFlowers.Max)
}

func TestParseVariation(t *testing.T) {
	v, err := ParseVariation(" MONO ")
	require.NoError(t, err)
	require.Equal(t, VariationMono, v)
	_, err = ParseVariation("")
	require.Error(t, err)
}

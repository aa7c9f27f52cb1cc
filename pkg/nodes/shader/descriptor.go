// Package shader is the reference plug-in for shader graphs. Its nodes
// build a tree of Descriptors that a preview renderer can interpret.
package shader

import (
	"github.com/chazu/nodeforge/pkg/types"
)

// Descriptor types.
const (
	TypePrincipled = "principled"
	TypeEmission   = "emission"
	TypeMix        = "mix"
)

// Descriptor describes a surface shader. Principled shaders use Color,
// Metallic, Roughness and Alpha; emission shaders use Color and Strength;
// mix shaders blend A and B by Factor.
type Descriptor struct {
	Type      string      `json:"type"`
	Color     string      `json:"color,omitempty"`
	Metallic  float64     `json:"metallic,omitempty"`
	Roughness float64     `json:"roughness,omitempty"`
	Alpha     float64     `json:"alpha,omitempty"`
	Strength  float64     `json:"strength,omitempty"`
	Factor    float64     `json:"factor,omitempty"`
	A         *Descriptor `json:"a,omitempty"`
	B         *Descriptor `json:"b,omitempty"`
}

// Principled returns a principled BSDF descriptor.
func Principled(c types.RGBA, metallic, roughness float64) *Descriptor {
	return &Descriptor{
		Type:      TypePrincipled,
		Color:     c.Hex(),
		Metallic:  clamp01(metallic),
		Roughness: clamp01(roughness),
		Alpha:     clamp01(c.A),
	}
}

// Emission returns an emissive descriptor. Negative strengths are
// clamped to zero.
func Emission(c types.RGBA, strength float64) *Descriptor {
	return &Descriptor{Type: TypeEmission, Color: c.Hex(), Strength: max(strength, 0)}
}

// Mix blends a toward b. A missing side yields the other unchanged, and
// factors at either end collapse to the chosen side.
func Mix(a, b *Descriptor, factor float64) *Descriptor {
	factor = clamp01(factor)
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case factor == 0:
		return a
	case factor == 1:
		return b
	}
	return &Descriptor{Type: TypeMix, Factor: factor, A: a, B: b}
}

// Depth returns the height of the descriptor tree.
func (d *Descriptor) Depth() int {
	if d == nil {
		return 0
	}
	return 1 + max(d.A.Depth(), d.B.Depth())
}

// MixColor linearly interpolates two colors, alpha included.
func MixColor(a, b types.RGBA, factor float64) types.RGBA {
	f := clamp01(factor)
	lerp := func(x, y float64) float64 { return x + (y-x)*f }
	return types.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}

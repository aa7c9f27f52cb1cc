package types

import "math"

// Coercion is an ordered (from, to) pair naming an allowed implicit
// conversion. Rules are not transitively closed.
type Coercion struct {
	From SocketType
	To   SocketType
}

// Converter turns a runtime value of a rule's From type into its To type.
// It reports false when v does not hold a value of the expected shape.
type Converter func(v any) (any, bool)

// DefaultCoercions is the built-in coercion table.
var DefaultCoercions = map[Coercion]Converter{
	{Int, Float}:    intToFloat,
	{Float, Int}:    floatToInt,
	{Bool, Int}:     boolToInt,
	{Int, Bool}:     numberToBool,
	{Bool, Float}:   boolToFloat,
	{Float, Bool}:   numberToBool,
	{Float, Vector}: numberToVector,
	{Int, Vector}:   numberToVector,
	{Float, Color}:  numberToColor,
	{Color, Vector}: colorToVector,
	{Vector, Color}: vectorToColor,
}

// Registry answers socket compatibility questions from a static rule table.
// The zero value has no coercions; use NewRegistry for the default table.
type Registry struct {
	rules map[Coercion]Converter
}

// NewRegistry returns a registry seeded with DefaultCoercions.
func NewRegistry() *Registry {
	return NewRegistryWith(DefaultCoercions)
}

// NewRegistryWith returns a registry using exactly the given rules.
// Rules naming undeclared socket types are dropped.
func NewRegistryWith(rules map[Coercion]Converter) *Registry {
	r := &Registry{rules: make(map[Coercion]Converter, len(rules))}
	for c, conv := range rules {
		if c.From.Valid() && c.To.Valid() && c.From != c.To {
			r.rules[c] = conv
		}
	}
	return r
}

// AreCompatible reports whether an output of type from may feed an input
// of type to. Identical declared types are always compatible; unknown
// types never are.
func (r *Registry) AreCompatible(from, to SocketType) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	_, ok := r.rules[Coercion{From: from, To: to}]
	return ok
}

// Coerce converts v from one socket type to another. Values crossing
// identical types, and nil values, pass through unchanged. The boolean is
// false when no rule exists or the converter rejected the value.
func (r *Registry) Coerce(from, to SocketType, v any) (any, bool) {
	if v == nil || from == to {
		return v, true
	}
	conv, ok := r.rules[Coercion{From: from, To: to}]
	if !ok || conv == nil {
		return v, false
	}
	return conv(v)
}

// Rules returns a copy of the coercion pairs known to the registry.
func (r *Registry) Rules() []Coercion {
	out := make([]Coercion, 0, len(r.rules))
	for c := range r.rules {
		out = append(out, c)
	}
	return out
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

func intToFloat(v any) (any, bool) {
	f, ok := AsFloat(v)
	return f, ok
}

func floatToInt(v any) (any, bool) {
	f, ok := AsFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return int(math.Trunc(f)), true
}

func boolToInt(v any) (any, bool) {
	b, ok := v.(bool)
	if !ok {
		return nil, false
	}
	if b {
		return 1, true
	}
	return 0, true
}

func boolToFloat(v any) (any, bool) {
	b, ok := v.(bool)
	if !ok {
		return nil, false
	}
	if b {
		return 1.0, true
	}
	return 0.0, true
}

func numberToBool(v any) (any, bool) {
	f, ok := AsFloat(v)
	if !ok {
		return nil, false
	}
	return f != 0, true
}

func numberToVector(v any) (any, bool) {
	f, ok := AsFloat(v)
	if !ok {
		return nil, false
	}
	return Vec3{X: f, Y: f, Z: f}, true
}

func numberToColor(v any) (any, bool) {
	f, ok := AsFloat(v)
	if !ok {
		return nil, false
	}
	return RGBA{R: f, G: f, B: f, A: 1}, true
}

func colorToVector(v any) (any, bool) {
	c, ok := AsRGBA(v)
	if !ok {
		return nil, false
	}
	return Vec3{X: c.R, Y: c.G, Z: c.B}, true
}

func vectorToColor(v any) (any, bool) {
	vec, ok := AsVec3(v)
	if !ok {
		return nil, false
	}
	return RGBA{R: vec.X, G: vec.Y, B: vec.Z, A: 1}, true
}

package catalog

import "github.com/chazu/nodeforge/pkg/types"

// Params is a node instance's parameter mapping as seen by an evaluator.
// Accessors fall back to the supplied default when a key is missing or
// holds a value of the wrong shape.
type Params map[string]any

// Float returns the parameter as a float64.
func (p Params) Float(key string, def float64) float64 {
	if f, ok := types.AsFloat(p[key]); ok {
		return f
	}
	return def
}

// Int returns the parameter truncated to an int.
func (p Params) Int(key string, def int) int {
	if f, ok := types.AsFloat(p[key]); ok {
		return int(f)
	}
	return def
}

// Bool returns the parameter as a bool.
func (p Params) Bool(key string, def bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return def
}

// String returns the parameter as a string.
func (p Params) String(key string, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

// Vector returns the parameter as a vector.
func (p Params) Vector(key string, def types.Vec3) types.Vec3 {
	if v, ok := types.AsVec3(p[key]); ok {
		return v
	}
	return def
}

// Color returns the parameter as a color.
func (p Params) Color(key string, def types.RGBA) types.RGBA {
	if c, ok := types.AsRGBA(p[key]); ok {
		return c
	}
	return def
}

// FloatInput resolves a numeric input: the connected value when present,
// otherwise the parameter of the same name, otherwise def.
func (p Params) FloatInput(inputs []any, i int, key string, def float64) float64 {
	if i < len(inputs) {
		if f, ok := types.AsFloat(inputs[i]); ok {
			return f
		}
	}
	return p.Float(key, def)
}

// VectorInput resolves a vector input like FloatInput.
func (p Params) VectorInput(inputs []any, i int, key string, def types.Vec3) types.Vec3 {
	if i < len(inputs) {
		if v, ok := types.AsVec3(inputs[i]); ok {
			return v
		}
	}
	return p.Vector(key, def)
}

// ColorInput resolves a color input like FloatInput.
func (p Params) ColorInput(inputs []any, i int, key string, def types.RGBA) types.RGBA {
	if i < len(inputs) {
		if c, ok := types.AsRGBA(inputs[i]); ok {
			return c
		}
	}
	return p.Color(key, def)
}

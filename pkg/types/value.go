package types

import (
	"fmt"
	"reflect"
)

// AsFloat extracts a float64 from any Go numeric value.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// AsVec3 extracts a vector from a Vec3, an RGBA, or a numeric list of
// length three or more (the persisted form of vector parameters).
func AsVec3(v any) (Vec3, bool) {
	switch x := v.(type) {
	case Vec3:
		return x, true
	case RGBA:
		return Vec3{X: x.R, Y: x.G, Z: x.B}, true
	}
	f, ok := floatList(v, 3)
	if !ok {
		return Vec3{}, false
	}
	return Vec3{X: f[0], Y: f[1], Z: f[2]}, true
}

// AsRGBA extracts a color from an RGBA, a Vec3, or a numeric list of
// length three (alpha 1) or four.
func AsRGBA(v any) (RGBA, bool) {
	switch x := v.(type) {
	case RGBA:
		return x, true
	case Vec3:
		return RGBA{R: x.X, G: x.Y, B: x.Z, A: 1}, true
	}
	f, ok := floatList(v, 3)
	if !ok {
		return RGBA{}, false
	}
	c := RGBA{R: f[0], G: f[1], B: f[2], A: 1}
	if len(f) > 3 {
		c.A = f[3]
	}
	return c, true
}

func floatList(v any, min int) ([]float64, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() < min {
		return nil, false
	}
	out := make([]float64, rv.Len())
	for i := range out {
		f, ok := AsFloat(rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Normalize canonicalizes a parameter value into the persisted data model:
// every number becomes float64, vectors and colors become []any of
// float64, slices become []any and string-keyed maps map[string]any.
// Values survive a JSON or MessagePack round trip unchanged once
// normalized.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string, float64:
		return x
	case Vec3:
		return []any{x.X, x.Y, x.Z}
	case RGBA:
		return []any{x.R, x.G, x.B, x.A}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	}
	if f, ok := AsFloat(v); ok {
		return f
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return fmt.Sprint(v)
}

// NormalizeMap applies Normalize to every value of m. A nil map yields an
// empty, non-nil map.
func NormalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

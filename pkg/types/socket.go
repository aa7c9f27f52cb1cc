// Package types declares the socket types of the node graph and the closed
// table of implicit coercions allowed between them.
package types

import "fmt"

// SocketType tags the kind of value carried by a node socket.
type SocketType int

const (
	Geometry SocketType = iota + 1
	Float
	Int
	Vector
	Bool
	Color
	Shader
)

// socketNames is indexed by SocketType.
var socketNames = [...]string{
	Geometry: "geometry",
	Float:    "float",
	Int:      "int",
	Vector:   "vector",
	Bool:     "bool",
	Color:    "color",
	Shader:   "shader",
}

// All returns every declared socket type in declaration order.
func All() []SocketType {
	return []SocketType{Geometry, Float, Int, Vector, Bool, Color, Shader}
}

// Valid reports whether t is one of the declared socket types.
func (t SocketType) Valid() bool {
	return t >= Geometry && t <= Shader
}

func (t SocketType) String() string {
	if t.Valid() {
		return socketNames[t]
	}
	return fmt.Sprintf("SocketType(%d)", int(t))
}

// ParseSocketType maps a socket type name back to its tag.
func ParseSocketType(s string) (SocketType, error) {
	for _, t := range All() {
		if socketNames[t] == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown socket type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t SocketType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid socket type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SocketType) UnmarshalText(b []byte) error {
	parsed, err := ParseSocketType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Vec3 is the runtime value carried by vector sockets.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// RGBA is the runtime value carried by color sockets. Components are
// linear and nominally in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Hex formats the color as #rrggbb, clamping each channel.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	default:
		return uint8(f*255 + 0.5)
	}
}

// Package kerneltest provides a lightweight kernel.Kernel that tracks
// bounding boxes only. It lets node and tessellation tests run without
// marching cubes.
package kerneltest

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/nodeforge/pkg/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)

// Solid records how it was built and its bounding box.
type Solid struct {
	Op       string
	Min, Max [3]float64
	Parts    []*Solid
}

func (s *Solid) BoundingBox() (min, max [3]float64) {
	return s.Min, s.Max
}

// Kernel is a bounding-box kernel. Meshed counts ToMesh calls.
type Kernel struct {
	Meshed int
}

// New returns an empty fake kernel.
func New() *Kernel { return &Kernel{} }

func unwrap(s kernel.Solid) (*Solid, error) {
	fs, ok := s.(*Solid)
	if !ok || fs == nil {
		return nil, kernel.ErrForeignSolid
	}
	return fs, nil
}

func positive(name string, vs ...float64) error {
	for _, v := range vs {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: dimensions must be positive, got %v", name, vs)
		}
	}
	return nil
}

func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := positive("box", x, y, z); err != nil {
		return nil, err
	}
	return &Solid{Op: "box", Min: [3]float64{-x / 2, -y / 2, -z / 2}, Max: [3]float64{x / 2, y / 2, z / 2}}, nil
}

func (k *Kernel) Sphere(r float64) (kernel.Solid, error) {
	if err := positive("sphere", r); err != nil {
		return nil, err
	}
	return &Solid{Op: "sphere", Min: [3]float64{-r, -r, -r}, Max: [3]float64{r, r, r}}, nil
}

func (k *Kernel) Cylinder(h, r float64) (kernel.Solid, error) {
	if err := positive("cylinder", h, r); err != nil {
		return nil, err
	}
	return &Solid{Op: "cylinder", Min: [3]float64{-r, -r, -h / 2}, Max: [3]float64{r, r, h / 2}}, nil
}

func (k *Kernel) boolean(op string, a, b kernel.Solid, bounds func(x, y *Solid) (min, max [3]float64)) (kernel.Solid, error) {
	x, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	y, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	min, max := bounds(x, y)
	return &Solid{Op: op, Min: min, Max: max, Parts: []*Solid{x, y}}, nil
}

func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("union", a, b, func(x, y *Solid) (min, max [3]float64) {
		for i := range 3 {
			min[i] = math.Min(x.Min[i], y.Min[i])
			max[i] = math.Max(x.Max[i], y.Max[i])
		}
		return min, max
	})
}

func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("difference", a, b, func(x, _ *Solid) (min, max [3]float64) {
		return x.Min, x.Max
	})
}

func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean("intersection", a, b, func(x, y *Solid) (min, max [3]float64) {
		for i := range 3 {
			min[i] = math.Max(x.Min[i], y.Min[i])
			max[i] = math.Min(x.Max[i], y.Max[i])
		}
		return min, max
	})
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	fs, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	d := [3]float64{x, y, z}
	out := &Solid{Op: "translate", Parts: []*Solid{fs}}
	for i := range 3 {
		out.Min[i] = fs.Min[i] + d[i]
		out.Max[i] = fs.Max[i] + d[i]
	}
	return out, nil
}

// Rotate rotates the eight corners of the box and re-bounds them.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	fs, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	rx, ry, rz := x*math.Pi/180, y*math.Pi/180, z*math.Pi/180
	out := &Solid{Op: "rotate", Parts: []*Solid{fs}}
	for i := range 3 {
		out.Min[i] = math.Inf(1)
		out.Max[i] = math.Inf(-1)
	}
	for c := range 8 {
		p := [3]float64{fs.Min[0], fs.Min[1], fs.Min[2]}
		for a := range 3 {
			if c&(1<<a) != 0 {
				p[a] = fs.Max[a]
			}
		}
		p = rotZ(rotY(rotX(p, rx), ry), rz)
		for i := range 3 {
			out.Min[i] = math.Min(out.Min[i], p[i])
			out.Max[i] = math.Max(out.Max[i], p[i])
		}
	}
	return out, nil
}

func rotX(p [3]float64, a float64) [3]float64 {
	s, c := math.Sincos(a)
	return [3]float64{p[0], c*p[1] - s*p[2], s*p[1] + c*p[2]}
}

func rotY(p [3]float64, a float64) [3]float64 {
	s, c := math.Sincos(a)
	return [3]float64{c*p[0] + s*p[2], p[1], -s*p[0] + c*p[2]}
}

func rotZ(p [3]float64, a float64) [3]float64 {
	s, c := math.Sincos(a)
	return [3]float64{c*p[0] - s*p[1], s*p[0] + c*p[1], p[2]}
}

func (k *Kernel) Scale(s kernel.Solid, f float64) (kernel.Solid, error) {
	fs, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if err := positive("scale", f); err != nil {
		return nil, err
	}
	out := &Solid{Op: "scale", Parts: []*Solid{fs}}
	for i := range 3 {
		out.Min[i] = fs.Min[i] * f
		out.Max[i] = fs.Max[i] * f
	}
	return out, nil
}

// ErrEmptySolid is returned by ToMesh for a solid with no volume.
var ErrEmptySolid = errors.New("kerneltest: solid is empty")

// ToMesh returns the twelve-triangle mesh of the solid's bounding box.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	fs, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	for i := range 3 {
		if fs.Max[i] <= fs.Min[i] {
			return nil, ErrEmptySolid
		}
	}
	k.Meshed++

	m := &kernel.Mesh{}
	for c := range 8 {
		for a := range 3 {
			v := fs.Min[a]
			if c&(1<<a) != 0 {
				v = fs.Max[a]
			}
			m.Vertices = append(m.Vertices, float32(v))
			m.Normals = append(m.Normals, 0)
		}
	}
	m.Indices = []uint32{
		0, 2, 1, 1, 2, 3, // -z
		4, 5, 6, 5, 7, 6, // +z
		0, 1, 4, 1, 5, 4, // -y
		2, 6, 3, 3, 6, 7, // +y
		0, 4, 2, 2, 4, 6, // -x
		1, 3, 5, 3, 7, 5, // +x
	}
	return m, nil
}

// Package kernel defines the solid modeling interface geometry nodes build
// on. Implementations (sdfx) own the solid representation; callers only
// hold opaque Solid handles and ask for triangle meshes at the end.
package kernel

import "errors"

// ErrForeignSolid is returned when a Solid built by one kernel is passed
// to another.
var ErrForeignSolid = errors.New("kernel: solid belongs to a different kernel")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel. Primitives are centered on the
// origin. Constructors reject non-positive dimensions with an error.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) (Solid, error)
	Rotate(s Solid, x, y, z float64) (Solid, error) // Euler angles in degrees
	Scale(s Solid, k float64) (Solid, error)        // uniform

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

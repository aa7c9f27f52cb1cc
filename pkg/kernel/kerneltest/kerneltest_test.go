package kerneltest

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/nodeforge/pkg/kernel"
)

type foreign struct{}

func (foreign) BoundingBox() (min, max [3]float64) { return }

func near(a, b [3]float64) bool {
	for i := range 3 {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestRotateQuarterTurn(t *testing.T) {
	k := New()
	box, _ := k.Box(4, 2, 2)
	r, err := k.Rotate(box, 0, 0, 90)
	if err != nil {
		t.Fatal(err)
	}
	min, max := r.BoundingBox()
	if !near(min, [3]float64{-1, -2, -1}) || !near(max, [3]float64{1, 2, 1}) {
		t.Errorf("unexpected bounds %v..%v", min, max)
	}
}

func TestRejectsBadInput(t *testing.T) {
	k := New()
	if _, err := k.Sphere(0); err == nil {
		t.Error("expected error for zero radius")
	}
	if _, err := k.Box(1, math.Inf(1), 1); err == nil {
		t.Error("expected error for infinite box")
	}
	if _, err := k.Translate(foreign{}, 1, 0, 0); !errors.Is(err, kernel.ErrForeignSolid) {
		t.Errorf("expected ErrForeignSolid, got %v", err)
	}
}

func TestToMeshCounts(t *testing.T) {
	k := New()
	box, _ := k.Box(1, 1, 1)
	m, err := k.ToMesh(box)
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 8 || m.TriangleCount() != 12 {
		t.Errorf("got %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
	if k.Meshed != 1 {
		t.Errorf("Meshed = %d", k.Meshed)
	}
}

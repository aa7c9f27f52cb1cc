// Package tessellate turns an evaluated geometry payload into triangle
// meshes using a geometry kernel. One mesh is produced per item.
package tessellate

import (
	"fmt"

	"github.com/chazu/nodeforge/pkg/kernel"
	"github.com/chazu/nodeforge/pkg/nodes/geometry"
)

// Payload meshes every geometry item in an evaluator payload. Entries
// that are not geometry are skipped. The payload is never mutated.
func Payload(payload []any, k kernel.Kernel) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, entry := range payload {
		for _, it := range geometry.Items(entry) {
			mesh, err := Item(it, k)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, mesh)
		}
	}
	return meshes, nil
}

// Item meshes a single geometry item, naming the mesh after it.
func Item(it geometry.Item, k kernel.Kernel) (*kernel.Mesh, error) {
	if it.Solid == nil {
		return nil, fmt.Errorf("tessellate: item %q has no solid", it.Name)
	}
	mesh, err := k.ToMesh(it.Solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for item %q: %w", it.Name, err)
	}
	mesh.Name = it.Name
	return mesh, nil
}

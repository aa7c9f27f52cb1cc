package main

import (
	"encoding/json"
	"testing"

	"github.com/chazu/nodeforge/pkg/config"
	"github.com/chazu/nodeforge/pkg/kernel/kerneltest"
)

// newTestApp returns an App on the bounding-box kernel so the binding
// tests do not pay for marching cubes.
func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := newApp(config.Default(), nil, kerneltest.New())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	return app
}

// buildTransformedCube wires cube -> transform -> output and returns the
// node ids in that order.
func buildTransformedCube(t *testing.T, app *App) (cube, xf, out int) {
	t.Helper()
	c := app.AddNode("geometry", "cube", 0, 0)
	x := app.AddNode("geometry", "transform", 200, 0)
	o := app.AddNode("geometry", "output", 400, 0)
	if c == nil || x == nil || o == nil {
		t.Fatal("AddNode returned nil")
	}
	if !app.AddConnection("geometry", c.ID, 0, x.ID, 0) || !app.AddConnection("geometry", x.ID, 0, o.ID, 0) {
		t.Fatal("AddConnection failed")
	}
	return c.ID, x.ID, o.ID
}

// TestE2ECubeTransformOutput exercises the full pipeline: bindings ->
// engine -> evaluator -> tessellate -> meshes.
func TestE2ECubeTransformOutput(t *testing.T) {
	app := newTestApp(t)
	_, xf, _ := buildTransformedCube(t, app)
	if !app.SetNodeValue("geometry", xf, "translate", []any{10.0, 0.0, 0.0}) {
		t.Fatal("SetNodeValue failed")
	}

	result := app.Evaluate("geometry")
	if result.Error != nil {
		t.Fatalf("unexpected error: %s", *result.Error)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	m := result.Meshes[0]
	if m.Name != "cube_1" {
		t.Errorf("expected mesh name cube_1, got %q", m.Name)
	}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		t.Error("mesh has no geometry")
	}
	if m.Color == "" {
		t.Error("no color assigned")
	}
	if m.Vertices[0] != 9.5 {
		t.Errorf("expected translated min x 9.5, got %v", m.Vertices[0])
	}
}

func TestE2ENoOutputNode(t *testing.T) {
	app := newTestApp(t)
	app.AddNode("geometry", "cube", 0, 0)

	result := app.Evaluate("geometry")
	if result.Error == nil || *result.Error != "No output node" {
		t.Fatalf("expected No output node, got %v", result.Error)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(result.Meshes))
	}
}

func TestE2EShaderDescriptor(t *testing.T) {
	app := newTestApp(t)
	rgb := app.AddNode("shader", "rgb", 0, 0)
	em := app.AddNode("shader", "emission", 200, 0)
	out := app.AddNode("shader", "shader_output", 400, 0)
	app.SetNodeValue("shader", rgb.ID, "color", []any{0.0, 1.0, 0.0, 1.0})
	app.AddConnection("shader", rgb.ID, 0, em.ID, 0)
	app.AddConnection("shader", em.ID, 0, out.ID, 0)

	result := app.Evaluate("shader")
	if result.Error != nil {
		t.Fatalf("unexpected error: %s", *result.Error)
	}
	if result.Shader == nil {
		t.Fatal("expected a shader descriptor")
	}
	if result.Shader.Color != "#00ff00" {
		t.Errorf("expected #00ff00, got %s", result.Shader.Color)
	}
}

func TestE2EUndoRedo(t *testing.T) {
	app := newTestApp(t)
	buildTransformedCube(t, app)

	if !app.Undo("geometry") {
		t.Fatal("Undo failed")
	}
	if n := len(app.Graph("geometry").Connections); n != 1 {
		t.Fatalf("expected 1 connection after undo, got %d", n)
	}
	if !app.Redo("geometry") {
		t.Fatal("Redo failed")
	}
	if n := len(app.Graph("geometry").Connections); n != 2 {
		t.Fatalf("expected 2 connections after redo, got %d", n)
	}
}

func TestE2ESaveLoad(t *testing.T) {
	src := newTestApp(t)
	buildTransformedCube(t, src)
	text, err := src.Save("geometry")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := newTestApp(t)
	if !dst.Load("geometry", text) {
		t.Fatal("Load rejected a saved document")
	}
	if len(dst.Graph("geometry").Nodes) != 3 {
		t.Errorf("expected 3 nodes after load")
	}
	if dst.Evaluate("geometry").Error != nil {
		t.Error("loaded graph does not evaluate cleanly")
	}
}

func TestE2ECatalog(t *testing.T) {
	app := newTestApp(t)
	data := app.Catalog("shader")
	if len(data.Nodes) != 8 {
		t.Errorf("expected 8 shader node types, got %d", len(data.Nodes))
	}

	b, err := json.Marshal(app.Catalog("geometry"))
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	var raw struct {
		Nodes []struct {
			ID     string `json:"id"`
			Inputs []struct {
				Type string `json:"type"`
			} `json:"inputs"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal catalog: %v", err)
	}
	for _, n := range raw.Nodes {
		if n.ID == "transform" && n.Inputs[1].Type != "vector" {
			t.Errorf("expected transform input 1 to be vector, got %q", n.Inputs[1].Type)
		}
	}
}

func TestE2ERemoveAndMove(t *testing.T) {
	app := newTestApp(t)
	cube, xf, _ := buildTransformedCube(t, app)

	if !app.MoveNode("geometry", cube, 50, 60) {
		t.Fatal("MoveNode failed")
	}
	if !app.SetCollapsed("geometry", cube, true) {
		t.Fatal("SetCollapsed failed")
	}
	if !app.RemoveConnection("geometry", cube, 0, xf, 0) {
		t.Fatal("RemoveConnection failed")
	}
	if !app.RemoveNode("geometry", xf) {
		t.Fatal("RemoveNode failed")
	}
	st := app.Graph("geometry")
	if len(st.Nodes) != 2 || len(st.Connections) != 0 {
		t.Fatalf("unexpected graph %d nodes, %d connections", len(st.Nodes), len(st.Connections))
	}
	if st.Nodes[0].X != 50 || !st.Nodes[0].Collapsed {
		t.Errorf("move/collapse not applied: %+v", st.Nodes[0])
	}
}

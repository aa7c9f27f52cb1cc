package main

import (
	"context"
	"log/slog"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/config"
	"github.com/chazu/nodeforge/pkg/engine"
	"github.com/chazu/nodeforge/pkg/graph"
	"github.com/chazu/nodeforge/pkg/kernel"
	"github.com/chazu/nodeforge/pkg/kernel/sdfx"
	"github.com/chazu/nodeforge/pkg/nodes/geometry"
	"github.com/chazu/nodeforge/pkg/nodes/shader"
	"github.com/chazu/nodeforge/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Every method takes the graph kind as its first argument.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	kernel kernel.Kernel
	logger *slog.Logger
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// EvalResult is the full result returned to the frontend. Geometry runs
// fill Meshes; shader runs fill Shader.
type EvalResult struct {
	Meshes     []MeshData         `json:"meshes"`
	Shader     *shader.Descriptor `json:"shader"`
	Error      *string            `json:"error"`
	EvalTimeMs float64            `json:"evalTimeMs"`
}

// CatalogData lists the node types of one graph kind.
type CatalogData struct {
	Categories []catalog.Category    `json:"categories"`
	Nodes      []*catalog.Definition `json:"nodes"`
}

// NewApp creates an App backed by the sdfx kernel.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	return newApp(cfg, logger, sdfx.New(sdfx.WithMeshCells(cfg.Kernel.MeshCells)))
}

func newApp(cfg config.Config, logger *slog.Logger, k kernel.Kernel) (*App, error) {
	e, err := engine.New(cfg, logger, geometry.New(k), shader.New())
	if err != nil {
		return nil, err
	}
	return &App{
		ctx:    context.Background(),
		engine: e,
		kernel: k,
		logger: e.Logger(),
	}, nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// kind parses a frontend kind name, logging unknown ones.
func (a *App) kind(name string) (catalog.Kind, bool) {
	k, err := catalog.ParseKind(name)
	if err != nil {
		a.logger.Warn("app: bad graph kind", "err", err)
		return "", false
	}
	return k, true
}

func (a *App) edit(kindName string, fn func(s *graph.Store) bool) bool {
	k, ok := a.kind(kindName)
	if !ok {
		return false
	}
	return a.engine.Edit(k, fn)
}

// Catalog returns the categories and node types of a graph kind.
func (a *App) Catalog(kindName string) CatalogData {
	data := CatalogData{Categories: []catalog.Category{}, Nodes: []*catalog.Definition{}}
	k, ok := a.kind(kindName)
	if !ok {
		return data
	}
	if cats := a.engine.Catalog().Categories(k); cats != nil {
		data.Categories = cats
	}
	if defs := a.engine.Catalog().Definitions(k); defs != nil {
		data.Nodes = defs
	}
	return data
}

// Graph returns the current nodes and connections of a graph kind.
func (a *App) Graph(kindName string) graph.State {
	var st graph.State
	a.edit(kindName, func(s *graph.Store) bool {
		st = s.Snapshot()
		return true
	})
	return st
}

// AddNode places a node and returns it, or nil if the type is unknown.
func (a *App) AddNode(kindName, typeID string, x, y float64) *graph.Node {
	var n *graph.Node
	a.edit(kindName, func(s *graph.Store) bool {
		n = s.AddNode(typeID, x, y)
		return n != nil
	})
	return n
}

func (a *App) RemoveNode(kindName string, id int) bool {
	return a.edit(kindName, func(s *graph.Store) bool { return s.RemoveNode(id) })
}

func (a *App) MoveNode(kindName string, id int, x, y float64) bool {
	return a.edit(kindName, func(s *graph.Store) bool { return s.MoveNode(id, x, y) })
}

func (a *App) SetCollapsed(kindName string, id int, collapsed bool) bool {
	return a.edit(kindName, func(s *graph.Store) bool { return s.SetCollapsed(id, collapsed) })
}

func (a *App) SetNodeValue(kindName string, id int, key string, value any) bool {
	return a.edit(kindName, func(s *graph.Store) bool { return s.SetNodeValue(id, key, value) })
}

func (a *App) AddConnection(kindName string, from, fromSocket, to, toSocket int) bool {
	return a.edit(kindName, func(s *graph.Store) bool {
		return s.AddConnection(from, fromSocket, to, toSocket)
	})
}

func (a *App) RemoveConnection(kindName string, from, fromSocket, to, toSocket int) bool {
	return a.edit(kindName, func(s *graph.Store) bool {
		return s.RemoveConnection(from, fromSocket, to, toSocket)
	})
}

func (a *App) Undo(kindName string) bool {
	return a.edit(kindName, (*graph.Store).Undo)
}

func (a *App) Redo(kindName string) bool {
	return a.edit(kindName, (*graph.Store).Redo)
}

// Save returns the persisted JSON document of a graph kind.
func (a *App) Save(kindName string) (string, error) {
	k, err := catalog.ParseKind(kindName)
	if err != nil {
		return "", err
	}
	return a.engine.Save(k)
}

// Load replaces a graph with a persisted JSON document.
func (a *App) Load(kindName, text string) bool {
	k, ok := a.kind(kindName)
	if !ok {
		return false
	}
	return a.engine.Load(k, text)
}

// Evaluate runs a graph and converts its payload for the frontend:
// geometry is tessellated into meshes, shader descriptors are passed
// through.
func (a *App) Evaluate(kindName string) EvalResult {
	result := EvalResult{Meshes: []MeshData{}}
	k, err := catalog.ParseKind(kindName)
	if err != nil {
		msg := err.Error()
		result.Error = &msg
		return result
	}

	res := a.engine.Evaluate(a.ctx, k)
	result.EvalTimeMs = res.EvalTimeMs()
	if !res.OK() {
		msg := res.Error()
		result.Error = &msg
	}

	switch k {
	case catalog.KindGeometry:
		meshes, err := tessellate.Payload(res.Payload, a.kernel)
		if err != nil {
			a.logger.Error("app: tessellate", "err", err)
			msg := "tessellation failed: " + err.Error()
			if result.Error != nil {
				msg = *result.Error + "; " + msg
			}
			result.Error = &msg
			return result
		}
		for i, m := range meshes {
			result.Meshes = append(result.Meshes, MeshData{
				Vertices: m.Vertices,
				Normals:  m.Normals,
				Indices:  m.Indices,
				Name:     m.Name,
				Color:    colorPalette[i%len(colorPalette)],
			})
		}
	case catalog.KindShader:
		for _, p := range res.Payload {
			if d, ok := p.(*shader.Descriptor); ok {
				result.Shader = d
				break
			}
		}
	}
	return result
}

package geometry

import (
	"fmt"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/kernel"
	"github.com/chazu/nodeforge/pkg/nodes"
	"github.com/chazu/nodeforge/pkg/script"
	"github.com/chazu/nodeforge/pkg/types"
)

// Node type ids.
const (
	TypeValue        = "value"
	TypeVector       = "vector"
	TypeMath         = "math"
	TypeExpression   = "expression"
	TypeCube         = "cube"
	TypeSphere       = "sphere"
	TypeCylinder     = "cylinder"
	TypeTransform    = "transform"
	TypeUnion        = "union"
	TypeDifference   = "difference"
	TypeIntersection = "intersection"
	TypeMerge        = "merge"
	TypeOutput       = "output"
)

// PayloadField is the side field the output node fills.
const PayloadField = "geometry"

// MergeInputs is the number of geometry inputs on a merge node.
const MergeInputs = 4

// Module registers the geometry node types.
type Module struct {
	kernel kernel.Kernel
	script *script.Engine
}

// Option configures a Module.
type Option func(*Module)

// WithScript sets the engine used by expression nodes.
func WithScript(e *script.Engine) Option {
	return func(m *Module) {
		if e != nil {
			m.script = e
		}
	}
}

// New returns the geometry plug-in backed by k.
func New(k kernel.Kernel, opts ...Option) *Module {
	m := &Module{kernel: k, script: script.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var categories = []catalog.Category{
	{ID: "input", Name: "Input", Color: "#8e6dd1", Icon: "sliders"},
	{ID: "primitive", Name: "Primitives", Color: "#3f8fd2", Icon: "cube"},
	{ID: "transform", Name: "Transform", Color: "#d2913f", Icon: "move"},
	{ID: "boolean", Name: "Boolean", Color: "#d24f3f", Icon: "intersect"},
	{ID: "math", Name: "Math", Color: "#5aa05a", Icon: "function"},
	{ID: "output", Name: "Output", Color: "#444444", Icon: "export"},
}

func geo(name string) catalog.Socket   { return catalog.Socket{Name: name, Type: types.Geometry} }
func float(name string) catalog.Socket { return catalog.Socket{Name: name, Type: types.Float} }
func vec(name string) catalog.Socket   { return catalog.Socket{Name: name, Type: types.Vector} }

// Register implements catalog.Module.
func (m *Module) Register(c *catalog.Catalog) error {
	for _, cat := range categories {
		if err := c.RegisterCategory(catalog.KindGeometry, cat); err != nil {
			return err
		}
	}

	mergeInputs := make([]catalog.Socket, MergeInputs)
	for i := range mergeInputs {
		mergeInputs[i] = geo(fmt.Sprintf("Geometry %d", i+1))
	}

	defs := []catalog.Definition{
		{
			ID: TypeValue, Label: "Value", Category: "input",
			Outputs:   []catalog.Socket{float("Value")},
			Defaults:  map[string]any{"value": 0.0},
			Evaluator: catalog.EvaluatorFunc(evalValue),
		},
		{
			ID: TypeVector, Label: "Vector", Category: "input",
			Inputs:    []catalog.Socket{float("X"), float("Y"), float("Z")},
			Outputs:   []catalog.Socket{vec("Vector")},
			Defaults:  map[string]any{"x": 0.0, "y": 0.0, "z": 0.0},
			Evaluator: catalog.EvaluatorFunc(evalVector),
		},
		{
			ID: TypeMath, Label: "Math", Category: "math",
			Inputs:    []catalog.Socket{float("A"), float("B")},
			Outputs:   []catalog.Socket{float("Result")},
			Defaults:  map[string]any{"op": "add", "a": 0.0, "b": 0.0},
			Evaluator: catalog.EvaluatorFunc(evalMath),
		},
		{
			ID: TypeExpression, Label: "Expression", Category: "math",
			Inputs:    []catalog.Socket{float("A"), float("B")},
			Outputs:   []catalog.Socket{float("Result")},
			Defaults:  map[string]any{"expr": "(+ a b)", "a": 0.0, "b": 0.0},
			Evaluator: catalog.EvaluatorFunc(m.evalExpression),
		},
		{
			ID: TypeCube, Label: "Cube", Category: "primitive",
			Inputs:    []catalog.Socket{vec("Size")},
			Outputs:   []catalog.Socket{geo("Geometry")},
			Defaults:  map[string]any{"size": []any{1.0, 1.0, 1.0}},
			Evaluator: catalog.EvaluatorFunc(m.evalCube),
		},
		{
			ID: TypeSphere, Label: "Sphere", Category: "primitive",
			Inputs:    []catalog.Socket{float("Radius")},
			Outputs:   []catalog.Socket{geo("Geometry")},
			Defaults:  map[string]any{"radius": 1.0},
			Evaluator: catalog.EvaluatorFunc(m.evalSphere),
		},
		{
			ID: TypeCylinder, Label: "Cylinder", Category: "primitive",
			Inputs:    []catalog.Socket{float("Radius"), float("Height")},
			Outputs:   []catalog.Socket{geo("Geometry")},
			Defaults:  map[string]any{"radius": 0.5, "height": 2.0},
			Evaluator: catalog.EvaluatorFunc(m.evalCylinder),
		},
		{
			ID: TypeTransform, Label: "Transform", Category: "transform",
			Inputs:  []catalog.Socket{geo("Geometry"), vec("Translate"), vec("Rotate"), float("Scale")},
			Outputs: []catalog.Socket{geo("Geometry")},
			Defaults: map[string]any{
				"translate": []any{0.0, 0.0, 0.0},
				"rotate":    []any{0.0, 0.0, 0.0},
				"scale":     1.0,
			},
			Evaluator: catalog.EvaluatorFunc(m.evalTransform),
		},
		{
			ID: TypeUnion, Label: "Union", Category: "boolean",
			Inputs:    []catalog.Socket{geo("A"), geo("B")},
			Outputs:   []catalog.Socket{geo("Geometry")},
			Evaluator: catalog.EvaluatorFunc(m.evalUnion),
		},
		{
			ID: TypeDifference, Label: "Difference", Category: "boolean",
			Inputs:    []catalog.Socket{geo("A"), geo("B")},
			Outputs:   []catalog.Socket{geo("Geometry")},
			Evaluator: catalog.EvaluatorFunc(m.evalDifference),
		},
		{
			ID: TypeIntersection, Label: "Intersection", Category: "boolean",
			Inputs:    []catalog.Socket{geo("A"), geo("B")},
			Outputs:   []catalog.Socket{geo("Geometry")},
			Evaluator: catalog.EvaluatorFunc(m.evalIntersection),
		},
		{
			ID: TypeMerge, Label: "Merge", Category: "transform",
			Inputs:    mergeInputs,
			Outputs:   []catalog.Socket{geo("Geometry")},
			Evaluator: catalog.EvaluatorFunc(evalMerge),
		},
		{
			ID: TypeOutput, Label: "Output", Category: "output",
			Inputs:    []catalog.Socket{geo("Geometry")},
			Singular:  true,
			Evaluator: catalog.EvaluatorFunc(evalOutput),
		},
	}
	for _, d := range defs {
		if err := c.Register(catalog.KindGeometry, d); err != nil {
			return err
		}
	}
	return nil
}

func itemName(n catalog.Instance) string {
	return fmt.Sprintf("%s_%d", n.Type, n.ID)
}

// ---------------------------------------------------------------------------
// Inputs and math
// ---------------------------------------------------------------------------

func evalValue(p catalog.Params, _ []any, _ catalog.Instance) (catalog.Result, error) {
	return catalog.Outputs(p.Float("value", 0)), nil
}

func evalVector(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	return catalog.Outputs(types.Vec3{
		X: p.FloatInput(in, 0, "x", 0),
		Y: p.FloatInput(in, 1, "y", 0),
		Z: p.FloatInput(in, 2, "z", 0),
	}), nil
}

func evalMath(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	v, err := nodes.ApplyMath(p.String("op", "add"), p.FloatInput(in, 0, "a", 0), p.FloatInput(in, 1, "b", 0))
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(v), nil
}

func (m *Module) evalExpression(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	v, err := m.script.Eval(p.String("expr", ""), map[string]float64{
		"a": p.FloatInput(in, 0, "a", 0),
		"b": p.FloatInput(in, 1, "b", 0),
	})
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(v), nil
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

func (m *Module) evalCube(p catalog.Params, in []any, n catalog.Instance) (catalog.Result, error) {
	size := p.VectorInput(in, 0, "size", types.Vec3{X: 1, Y: 1, Z: 1})
	s, err := m.kernel.Box(size.X, size.Y, size.Z)
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(Item{Name: itemName(n), Solid: s}), nil
}

func (m *Module) evalSphere(p catalog.Params, in []any, n catalog.Instance) (catalog.Result, error) {
	s, err := m.kernel.Sphere(p.FloatInput(in, 0, "radius", 1))
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(Item{Name: itemName(n), Solid: s}), nil
}

func (m *Module) evalCylinder(p catalog.Params, in []any, n catalog.Instance) (catalog.Result, error) {
	s, err := m.kernel.Cylinder(p.FloatInput(in, 1, "height", 2), p.FloatInput(in, 0, "radius", 0.5))
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(Item{Name: itemName(n), Solid: s}), nil
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// evalTransform scales, then rotates, then translates every incoming item.
// A missing geometry input yields no geometry.
func (m *Module) evalTransform(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	items := Items(in[0])
	if len(items) == 0 {
		return catalog.Outputs(nil), nil
	}
	move := p.VectorInput(in, 1, "translate", types.Vec3{})
	rot := p.VectorInput(in, 2, "rotate", types.Vec3{})
	scale := p.FloatInput(in, 3, "scale", 1)

	out := make([]Item, len(items))
	for i, it := range items {
		s := it.Solid
		var err error
		if scale != 1 {
			if s, err = m.kernel.Scale(s, scale); err != nil {
				return catalog.Result{}, err
			}
		}
		if !rot.IsZero() {
			if s, err = m.kernel.Rotate(s, rot.X, rot.Y, rot.Z); err != nil {
				return catalog.Result{}, err
			}
		}
		if !move.IsZero() {
			if s, err = m.kernel.Translate(s, move.X, move.Y, move.Z); err != nil {
				return catalog.Result{}, err
			}
		}
		out[i] = Item{Name: it.Name, Solid: s}
	}
	return catalog.Outputs(value(out)), nil
}

// ---------------------------------------------------------------------------
// Booleans
// ---------------------------------------------------------------------------

// fold unions every item into a single solid. It returns nil for no items.
func (m *Module) fold(items []Item) (kernel.Solid, error) {
	if len(items) == 0 {
		return nil, nil
	}
	acc := items[0].Solid
	for _, it := range items[1:] {
		var err error
		if acc, err = m.kernel.Union(acc, it.Solid); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (m *Module) evalUnion(_ catalog.Params, in []any, n catalog.Instance) (catalog.Result, error) {
	s, err := m.fold(append(Items(in[0]), Items(in[1])...))
	if err != nil || s == nil {
		return catalog.Outputs(nil), err
	}
	return catalog.Outputs(Item{Name: itemName(n), Solid: s}), nil
}

// evalDifference subtracts everything on B from everything on A. Without
// a cutter the base passes through unchanged.
func (m *Module) evalDifference(_ catalog.Params, in []any, n catalog.Instance) (catalog.Result, error) {
	base, err := m.fold(Items(in[0]))
	if err != nil || base == nil {
		return catalog.Outputs(nil), err
	}
	cutter, err := m.fold(Items(in[1]))
	if err != nil {
		return catalog.Result{}, err
	}
	if cutter == nil {
		return catalog.Outputs(in[0]), nil
	}
	s, err := m.kernel.Difference(base, cutter)
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(Item{Name: itemName(n), Solid: s}), nil
}

func (m *Module) evalIntersection(_ catalog.Params, in []any, n catalog.Instance) (catalog.Result, error) {
	a, err := m.fold(Items(in[0]))
	if err != nil {
		return catalog.Result{}, err
	}
	b, err := m.fold(Items(in[1]))
	if err != nil {
		return catalog.Result{}, err
	}
	if a == nil || b == nil {
		return catalog.Outputs(nil), nil
	}
	s, err := m.kernel.Intersection(a, b)
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(Item{Name: itemName(n), Solid: s}), nil
}

// ---------------------------------------------------------------------------
// Merge and output
// ---------------------------------------------------------------------------

func evalMerge(_ catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	var out []Item
	for _, v := range in {
		out = append(out, Items(v)...)
	}
	return catalog.Outputs(value(out)), nil
}

func evalOutput(_ catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	return catalog.Result{Side: map[string]any{PayloadField: value(Items(in[0]))}}, nil
}

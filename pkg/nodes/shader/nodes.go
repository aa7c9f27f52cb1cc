package shader

import (
	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/nodes"
	"github.com/chazu/nodeforge/pkg/types"
)

// Node type ids.
const (
	NodeValue      = "value"
	NodeRGB        = "rgb"
	NodeMath       = "math"
	NodeMixColor   = "mix_color"
	NodePrincipled = "principled"
	NodeEmission   = "emission"
	NodeMixShader  = "mix_shader"
	NodeOutput     = "shader_output"
)

// PayloadField is the side field the shader output node fills.
const PayloadField = "shader"

var (
	white = types.RGBA{R: 1, G: 1, B: 1, A: 1}
	grey  = types.RGBA{R: 0.8, G: 0.8, B: 0.8, A: 1}
)

var categories = []catalog.Category{
	{ID: "input", Name: "Input", Color: "#8e6dd1", Icon: "sliders"},
	{ID: "color", Name: "Color", Color: "#d2b43f", Icon: "palette"},
	{ID: "shader", Name: "Shader", Color: "#3fa58f", Icon: "sphere"},
	{ID: "output", Name: "Output", Color: "#444444", Icon: "export"},
}

// Module registers the shader node types.
type Module struct{}

// New returns the shader plug-in.
func New() *Module { return &Module{} }

func sock(name string, t types.SocketType) catalog.Socket {
	return catalog.Socket{Name: name, Type: t}
}

// Register implements catalog.Module.
func (Module) Register(c *catalog.Catalog) error {
	for _, cat := range categories {
		if err := c.RegisterCategory(catalog.KindShader, cat); err != nil {
			return err
		}
	}
	defs := []catalog.Definition{
		{
			ID: NodeValue, Label: "Value", Category: "input",
			Outputs:   []catalog.Socket{sock("Value", types.Float)},
			Defaults:  map[string]any{"value": 0.5},
			Evaluator: catalog.EvaluatorFunc(evalValue),
		},
		{
			ID: NodeRGB, Label: "RGB", Category: "input",
			Outputs:   []catalog.Socket{sock("Color", types.Color)},
			Defaults:  map[string]any{"color": []any{0.8, 0.8, 0.8, 1.0}},
			Evaluator: catalog.EvaluatorFunc(evalRGB),
		},
		{
			ID: NodeMath, Label: "Math", Category: "input",
			Inputs:    []catalog.Socket{sock("A", types.Float), sock("B", types.Float)},
			Outputs:   []catalog.Socket{sock("Result", types.Float)},
			Defaults:  map[string]any{"op": "add", "a": 0.0, "b": 0.0},
			Evaluator: catalog.EvaluatorFunc(evalMath),
		},
		{
			ID: NodeMixColor, Label: "Mix Color", Category: "color",
			Inputs: []catalog.Socket{
				sock("A", types.Color),
				sock("B", types.Color),
				sock("Factor", types.Float),
			},
			Outputs: []catalog.Socket{sock("Color", types.Color)},
			Defaults: map[string]any{
				"a":      []any{0.0, 0.0, 0.0, 1.0},
				"b":      []any{1.0, 1.0, 1.0, 1.0},
				"factor": 0.5,
			},
			Evaluator: catalog.EvaluatorFunc(evalMixColor),
		},
		{
			ID: NodePrincipled, Label: "Principled BSDF", Category: "shader",
			Inputs: []catalog.Socket{
				sock("Base Color", types.Color),
				sock("Metallic", types.Float),
				sock("Roughness", types.Float),
			},
			Outputs: []catalog.Socket{sock("Shader", types.Shader)},
			Defaults: map[string]any{
				"color":     []any{0.8, 0.8, 0.8, 1.0},
				"metallic":  0.0,
				"roughness": 0.5,
			},
			Evaluator: catalog.EvaluatorFunc(evalPrincipled),
		},
		{
			ID: NodeEmission, Label: "Emission", Category: "shader",
			Inputs:  []catalog.Socket{sock("Color", types.Color), sock("Strength", types.Float)},
			Outputs: []catalog.Socket{sock("Shader", types.Shader)},
			Defaults: map[string]any{
				"color":    []any{1.0, 1.0, 1.0, 1.0},
				"strength": 1.0,
			},
			Evaluator: catalog.EvaluatorFunc(evalEmission),
		},
		{
			ID: NodeMixShader, Label: "Mix Shader", Category: "shader",
			Inputs: []catalog.Socket{
				sock("Factor", types.Float),
				sock("A", types.Shader),
				sock("B", types.Shader),
			},
			Outputs:   []catalog.Socket{sock("Shader", types.Shader)},
			Defaults:  map[string]any{"factor": 0.5},
			Evaluator: catalog.EvaluatorFunc(evalMixShader),
		},
		{
			ID: NodeOutput, Label: "Material Output", Category: "output",
			Inputs:    []catalog.Socket{sock("Surface", types.Shader)},
			Singular:  true,
			Evaluator: catalog.EvaluatorFunc(evalOutput),
		},
	}
	for _, d := range defs {
		if err := c.Register(catalog.KindShader, d); err != nil {
			return err
		}
	}
	return nil
}

func evalValue(p catalog.Params, _ []any, _ catalog.Instance) (catalog.Result, error) {
	return catalog.Outputs(p.Float("value", 0)), nil
}

func evalRGB(p catalog.Params, _ []any, _ catalog.Instance) (catalog.Result, error) {
	return catalog.Outputs(p.Color("color", grey)), nil
}

func evalMath(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	v, err := nodes.ApplyMath(p.String("op", "add"), p.FloatInput(in, 0, "a", 0), p.FloatInput(in, 1, "b", 0))
	if err != nil {
		return catalog.Result{}, err
	}
	return catalog.Outputs(v), nil
}

func evalMixColor(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	a := p.ColorInput(in, 0, "a", types.RGBA{A: 1})
	b := p.ColorInput(in, 1, "b", white)
	return catalog.Outputs(MixColor(a, b, p.FloatInput(in, 2, "factor", 0.5))), nil
}

func evalPrincipled(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	return catalog.Outputs(Principled(
		p.ColorInput(in, 0, "color", grey),
		p.FloatInput(in, 1, "metallic", 0),
		p.FloatInput(in, 2, "roughness", 0.5),
	)), nil
}

func evalEmission(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	return catalog.Outputs(Emission(
		p.ColorInput(in, 0, "color", white),
		p.FloatInput(in, 1, "strength", 1),
	)), nil
}

func evalMixShader(p catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	a, _ := in[1].(*Descriptor)
	b, _ := in[2].(*Descriptor)
	return catalog.Outputs(Mix(a, b, p.FloatInput(in, 0, "factor", 0.5))), nil
}

// evalOutput publishes the surface descriptor. An unconnected surface
// yields no descriptor.
func evalOutput(_ catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
	d, _ := in[0].(*Descriptor)
	if d == nil {
		return catalog.Result{Side: map[string]any{PayloadField: nil}}, nil
	}
	return catalog.Result{Side: map[string]any{PayloadField: d}}, nil
}

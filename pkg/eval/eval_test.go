package eval_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/eval"
	"github.com/chazu/nodeforge/pkg/graph"
	"github.com/chazu/nodeforge/pkg/types"
)

// item stands in for a geometry descriptor.
type item struct {
	Name   string
	Offset float64
}

type fixture struct {
	store *graph.Store
	calls map[string]int
	fail  map[string]error
	boom  map[string]bool
	seen  map[string][]any
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		calls: make(map[string]int),
		fail:  make(map[string]error),
		boom:  make(map[string]bool),
		seen:  make(map[string][]any),
	}
	wrap := func(id string, fn catalog.EvaluatorFunc) catalog.Evaluator {
		return catalog.EvaluatorFunc(func(p catalog.Params, in []any, n catalog.Instance) (catalog.Result, error) {
			f.calls[id]++
			f.seen[id] = in
			if f.boom[id] {
				panic("kaboom")
			}
			if err := f.fail[id]; err != nil {
				return catalog.Result{}, err
			}
			return fn(p, in, n)
		})
	}

	c := catalog.New()
	require.NoError(t, c.RegisterCategory(catalog.KindGeometry, catalog.Category{ID: "t", Name: "T"}))
	defs := []catalog.Definition{
		{
			ID: "count", Label: "Count", Category: "t",
			Outputs:  []catalog.Socket{{Name: "N", Type: types.Int}},
			Defaults: map[string]any{"n": 3},
			Evaluator: wrap("count", func(p catalog.Params, _ []any, _ catalog.Instance) (catalog.Result, error) {
				return catalog.Outputs(p.Int("n", 0)), nil
			}),
		},
		{
			ID: "cube", Label: "Cube", Category: "t",
			Inputs:  []catalog.Socket{{Name: "Size", Type: types.Float}},
			Outputs: []catalog.Socket{{Name: "Geometry", Type: types.Geometry}},
			Evaluator: wrap("cube", func(_ catalog.Params, _ []any, n catalog.Instance) (catalog.Result, error) {
				return catalog.Outputs(item{Name: "cube"}), nil
			}),
		},
		{
			ID: "transform", Label: "Transform", Category: "t",
			Inputs:  []catalog.Socket{{Name: "Geometry", Type: types.Geometry}},
			Outputs: []catalog.Socket{{Name: "Geometry", Type: types.Geometry}},
			Evaluator: wrap("transform", func(_ catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
				it, ok := in[0].(item)
				if !ok {
					return catalog.Outputs(nil), nil
				}
				it.Offset++
				return catalog.Outputs(it), nil
			}),
		},
		{
			ID: "merge", Label: "Merge", Category: "t",
			Inputs: []catalog.Socket{
				{Name: "A", Type: types.Geometry},
				{Name: "B", Type: types.Geometry},
			},
			Outputs: []catalog.Socket{{Name: "Geometry", Type: types.Geometry}},
			Evaluator: wrap("merge", func(_ catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
				return catalog.Outputs([]any{in[0], in[1]}), nil
			}),
		},
		{
			ID: "output", Label: "Output", Category: "t", Singular: true,
			Inputs: []catalog.Socket{{Name: "Geometry", Type: types.Geometry}},
			Evaluator: wrap("output", func(_ catalog.Params, in []any, _ catalog.Instance) (catalog.Result, error) {
				return catalog.Result{Side: map[string]any{"geometry": in[0]}}, nil
			}),
		},
	}
	for _, d := range defs {
		require.NoError(t, c.Register(catalog.KindGeometry, d))
	}
	f.store = graph.New(catalog.KindGeometry, c, types.NewRegistry())
	return f
}

func (f *fixture) add(t *testing.T, typeID string) int {
	t.Helper()
	n := f.store.AddNode(typeID, 0, 0)
	require.NotNil(t, n)
	return n.ID
}

func (f *fixture) connect(t *testing.T, from, to, toSocket int) {
	t.Helper()
	require.True(t, f.store.AddConnection(from, 0, to, toSocket))
}

func evaluate(f *fixture) *eval.Result {
	return eval.New().Evaluate(context.Background(), f.store, eval.GeometryTarget)
}

func TestNoOutputNode(t *testing.T) {
	f := newFixture(t)
	f.add(t, "cube")

	res := evaluate(f)
	assert.Nil(t, res.Payload)
	assert.Equal(t, eval.MsgNoOutput, res.Error())
	assert.Zero(t, f.calls["cube"], "nothing evaluated")
}

func TestCubeTransformOutput(t *testing.T) {
	f := newFixture(t)
	cube := f.add(t, "cube")
	xf := f.add(t, "transform")
	out := f.add(t, "output")
	f.connect(t, cube, xf, 0)
	f.connect(t, xf, out, 0)

	res := evaluate(f)
	assert.True(t, res.OK(), res.Error())
	assert.Equal(t, []any{item{Name: "cube", Offset: 1}}, res.Payload)
	assert.Equal(t, 3, res.Evaluated)
	assert.NotEmpty(t, res.RunID)
}

func TestThrowingNodeIsLabelledAndRunCompletes(t *testing.T) {
	f := newFixture(t)
	cube := f.add(t, "cube")
	xf := f.add(t, "transform")
	out := f.add(t, "output")
	f.connect(t, cube, xf, 0)
	f.connect(t, xf, out, 0)
	f.fail["transform"] = errors.New("bad matrix")

	res := evaluate(f)
	assert.Equal(t, "Transform: bad matrix", res.Error())
	assert.Nil(t, res.Payload)
	assert.Equal(t, 1, f.calls["output"], "downstream still evaluated")
	assert.Equal(t, []any{nil}, f.seen["output"], "placeholder has no outputs")
}

func TestPanickingNodeIsRecovered(t *testing.T) {
	f := newFixture(t)
	cube := f.add(t, "cube")
	out := f.add(t, "output")
	f.connect(t, cube, out, 0)
	f.boom["cube"] = true

	var res *eval.Result
	require.NotPanics(t, func() { res = evaluate(f) })
	require.Len(t, res.Faults, 1)
	assert.Equal(t, "Cube: kaboom", res.Faults[0].String())
	assert.Equal(t, cube, res.Faults[0].NodeID)
}

func TestFaultsAccumulate(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "cube")
	b := f.add(t, "transform")
	m := f.add(t, "merge")
	out := f.add(t, "output")
	f.connect(t, a, m, 0)
	f.connect(t, b, m, 1)
	f.connect(t, m, out, 0)
	f.fail["cube"] = errors.New("e1")
	f.fail["transform"] = errors.New("e2")

	res := evaluate(f)
	assert.Equal(t, "Cube: e1; Transform: e2", res.Error())
}

func TestDiamondEvaluatesUpstreamOnce(t *testing.T) {
	f := newFixture(t)
	cube := f.add(t, "cube")
	left := f.add(t, "transform")
	right := f.add(t, "transform")
	m := f.add(t, "merge")
	out := f.add(t, "output")
	f.connect(t, cube, left, 0)
	f.connect(t, cube, right, 0)
	f.connect(t, left, m, 0)
	f.connect(t, right, m, 1)
	f.connect(t, m, out, 0)

	res := evaluate(f)
	require.True(t, res.OK(), res.Error())
	assert.Equal(t, 1, f.calls["cube"])
	assert.Equal(t, 2, f.calls["transform"])
	assert.Len(t, res.Payload, 2)

	evaluate(f)
	assert.Equal(t, 2, f.calls["cube"], "no caching across runs")
}

func TestCoercionAppliedAcrossSocketTypes(t *testing.T) {
	f := newFixture(t)
	n := f.add(t, "count")
	cube := f.add(t, "cube")
	out := f.add(t, "output")
	f.connect(t, n, cube, 0)
	f.connect(t, cube, out, 0)

	res := evaluate(f)
	require.True(t, res.OK(), res.Error())
	require.Len(t, f.seen["cube"], 1)
	assert.Equal(t, 3.0, f.seen["cube"][0], "int output arrives as float64")
}

func TestUnconnectedInputsAreNil(t *testing.T) {
	f := newFixture(t)
	f.add(t, "output")
	res := evaluate(f)
	assert.True(t, res.OK())
	assert.Nil(t, res.Payload)
	assert.Equal(t, []any{nil}, f.seen["output"])
}

func TestLoadedCycleIsAFault(t *testing.T) {
	f := newFixture(t)
	f.store.Replace("load", graph.State{
		Nodes: []graph.Node{
			{ID: 1, Type: "transform"},
			{ID: 2, Type: "transform"},
			{ID: 3, Type: "output"},
		},
		Connections: []graph.Connection{
			{FromNode: 1, ToNode: 2},
			{FromNode: 2, ToNode: 1},
			{FromNode: 2, ToNode: 3},
		},
	})

	var res *eval.Result
	require.NotPanics(t, func() { res = evaluate(f) })
	assert.Contains(t, res.Error(), "Transform: "+eval.MsgCycle)
}

func TestDepthLimit(t *testing.T) {
	f := newFixture(t)
	prev := f.add(t, "cube")
	for range 5 {
		xf := f.add(t, "transform")
		f.connect(t, prev, xf, 0)
		prev = xf
	}
	out := f.add(t, "output")
	f.connect(t, prev, out, 0)

	res := eval.New(eval.WithMaxDepth(3)).Evaluate(context.Background(), f.store, eval.GeometryTarget)
	assert.Contains(t, res.Error(), eval.MsgDepth)

	res = eval.New(eval.WithMaxDepth(10)).Evaluate(context.Background(), f.store, eval.GeometryTarget)
	assert.True(t, res.OK(), res.Error())
}

func TestUnknownNodeTypeIsAFault(t *testing.T) {
	f := newFixture(t)
	f.store.Replace("load", graph.State{
		Nodes: []graph.Node{
			{ID: 1, Type: "teapot"},
			{ID: 2, Type: "output"},
		},
		Connections: []graph.Connection{{FromNode: 1, ToNode: 2}},
	})
	res := evaluate(f)
	assert.Equal(t, "teapot: "+eval.MsgUnknownType, res.Error())
}

func TestPayloadNormalization(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "cube")
	m := f.add(t, "merge")
	out := f.add(t, "output")
	f.connect(t, a, m, 0)
	f.connect(t, m, out, 0)

	res := evaluate(f)
	require.True(t, res.OK(), res.Error())
	assert.Equal(t, []any{item{Name: "cube"}}, res.Payload, "nil entries dropped")
}

func TestResultJSON(t *testing.T) {
	clean := &eval.Result{Payload: []any{"x"}}
	b, err := json.Marshal(clean)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":["x"],"error":null,"evalTimeMs":0}`, string(b))

	faulty := &eval.Result{Faults: []eval.Fault{{Message: eval.MsgNoOutput}}}
	b, err = json.Marshal(faulty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":null,"error":"No output node","evalTimeMs":0}`, string(b))
}

func TestTargetFor(t *testing.T) {
	tg, ok := eval.TargetFor(catalog.KindShader)
	require.True(t, ok)
	assert.Equal(t, eval.ShaderTarget, tg)
	_, ok = eval.TargetFor(catalog.Kind("audio"))
	assert.False(t, ok)
}

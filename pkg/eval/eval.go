// Package eval runs a pull-based evaluation of one graph, starting at its
// terminal node and memoizing every node result for the duration of a
// single run. Nothing is cached across runs.
package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/ctxlog"
	"github.com/chazu/nodeforge/pkg/graph"
	"github.com/chazu/nodeforge/pkg/types"
)

// DefaultMaxDepth bounds the length of an upstream chain.
const DefaultMaxDepth = 512

// Fault messages shared with callers and tests.
const (
	MsgNoOutput    = "No output node"
	MsgCycle       = "cycle detected"
	MsgDepth       = "evaluation depth limit exceeded"
	MsgUnknownType = "unknown node type"
)

// Target names the terminal node type of a graph kind and the side field
// of its result that carries the payload.
type Target struct {
	TerminalType string
	PayloadField string
}

var (
	GeometryTarget = Target{TerminalType: "output", PayloadField: "geometry"}
	ShaderTarget   = Target{TerminalType: "shader_output", PayloadField: "shader"}
)

// TargetFor returns the terminal target of a graph kind.
func TargetFor(kind catalog.Kind) (Target, bool) {
	switch kind {
	case catalog.KindGeometry:
		return GeometryTarget, true
	case catalog.KindShader:
		return ShaderTarget, true
	}
	return Target{}, false
}

// Graph is the read-only view of a graph store the evaluator needs.
// *graph.Store implements it.
type Graph interface {
	Kind() catalog.Kind
	Registry() *types.Registry
	Definition(typeID string) (*catalog.Definition, bool)
	Node(id int) (graph.Node, bool)
	FindByType(typeID string) (graph.Node, bool)
	GetInputConnection(nodeID, socket int) (graph.Connection, bool)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxDepth bounds recursion depth. Values below one are ignored.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// Evaluator is stateless between runs and safe to reuse.
type Evaluator struct {
	maxDepth int
}

// New creates an evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxDepth returns the configured recursion bound.
func (e *Evaluator) MaxDepth() int { return e.maxDepth }

// Evaluate resolves the graph's terminal node and returns its payload.
// It never panics: faults raised by node evaluators are collected into
// the result and the run continues with an empty placeholder for the
// faulting node.
func (e *Evaluator) Evaluate(ctx context.Context, g Graph, target Target) *Result {
	start := time.Now()
	r := &run{
		graph:    g,
		maxDepth: e.maxDepth,
		memo:     make(map[int]catalog.Result),
		active:   make(map[int]bool),
		cyclic:   make(map[int]bool),
	}
	res := &Result{RunID: uuid.NewString()}
	logger := ctxlog.FromContext(ctx).With("run_id", res.RunID, "kind", string(g.Kind()))

	terminal, ok := g.FindByType(target.TerminalType)
	if !ok {
		res.Faults = []Fault{{Message: MsgNoOutput}}
		res.Elapsed = time.Since(start)
		logger.Debug("eval: no terminal node", "terminal", target.TerminalType)
		return res
	}

	logger.Debug("eval: start", "terminal", terminal.ID)
	out := r.resolve(terminal.ID, 0)

	res.Payload = normalizePayload(out.Side[target.PayloadField])
	res.Faults = r.faults
	res.Evaluated = r.evaluated
	res.Elapsed = time.Since(start)

	logger.Debug("eval: done",
		"nodes", r.evaluated,
		"faults", len(res.Faults),
		"payload", len(res.Payload),
		"elapsed", res.Elapsed)
	for _, f := range res.Faults {
		logger.Info("eval: node fault", "node", f.NodeID, "fault", f.String())
	}
	return res
}

// run holds the per-call memo table and fault list.
type run struct {
	graph     Graph
	maxDepth  int
	memo      map[int]catalog.Result
	active    map[int]bool
	cyclic    map[int]bool
	faults    []Fault
	evaluated int
}

// placeholder is memoized for a node whose evaluation failed.
var placeholder = catalog.Result{Outputs: []any{}}

func (r *run) resolve(id int, depth int) catalog.Result {
	if res, ok := r.memo[id]; ok {
		return res
	}

	node, ok := r.graph.Node(id)
	if !ok {
		// Connections to vanished nodes cannot be created through the
		// store; treat them as unconnected.
		return placeholder
	}
	def, ok := r.graph.Definition(node.Type)
	if !ok {
		r.fault(node.ID, node.Type, MsgUnknownType)
		r.memo[id] = placeholder
		return placeholder
	}

	if r.active[id] {
		if !r.cyclic[id] {
			r.cyclic[id] = true
			r.fault(node.ID, def.Label, MsgCycle)
		}
		return placeholder
	}
	if depth >= r.maxDepth {
		r.fault(node.ID, def.Label, MsgDepth)
		r.memo[id] = placeholder
		return placeholder
	}

	r.active[id] = true
	inputs := r.inputs(node, def, depth)
	delete(r.active, id)

	res, err := invoke(def, node, inputs)
	r.evaluated++
	if err != nil {
		r.fault(node.ID, def.Label, err.Error())
		res = placeholder
	}
	r.memo[id] = res
	return res
}

// inputs resolves every declared input socket in order. Unconnected
// inputs stay nil.
func (r *run) inputs(node graph.Node, def *catalog.Definition, depth int) []any {
	inputs := make([]any, len(def.Inputs))
	for i, in := range def.Inputs {
		conn, ok := r.graph.GetInputConnection(node.ID, i)
		if !ok {
			continue
		}
		up := r.resolve(conn.FromNode, depth+1)
		v := up.Output(conn.FromSocket)
		if v == nil {
			continue
		}
		inputs[i] = r.coerce(conn, in.Type, v)
	}
	return inputs
}

// coerce converts v when the connection crosses socket types. A value the
// rule cannot convert is passed on as unresolved.
func (r *run) coerce(conn graph.Connection, to types.SocketType, v any) any {
	upNode, ok := r.graph.Node(conn.FromNode)
	if !ok {
		return v
	}
	upDef, ok := r.graph.Definition(upNode.Type)
	if !ok {
		return v
	}
	out, ok := upDef.Output(conn.FromSocket)
	if !ok || out.Type == to {
		return v
	}
	cv, ok := r.graph.Registry().Coerce(out.Type, to, v)
	if !ok {
		return nil
	}
	return cv
}

func (r *run) fault(id int, label, msg string) {
	r.faults = append(r.faults, Fault{NodeID: id, Label: label, Message: msg})
}

// invoke calls the node's evaluator, turning a panic into an error.
func invoke(def *catalog.Definition, node graph.Node, inputs []any) (res catalog.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			if pe, ok := p.(error); ok {
				err = pe
			} else {
				err = fmt.Errorf("%v", p)
			}
		}
	}()
	return def.Evaluator.Evaluate(
		catalog.Params(node.Values),
		inputs,
		catalog.Instance{ID: node.ID, Type: node.Type},
	)
}

// Package catalog maps a graph kind and a node type identifier to a static
// node definition: display metadata, typed sockets, default parameters and
// the evaluate capability supplied by a plug-in.
package catalog

import (
	"fmt"

	"github.com/chazu/nodeforge/pkg/types"
)

// Kind identifies one of the independent node graphs.
type Kind string

const (
	KindGeometry Kind = "geometry"
	KindShader   Kind = "shader"
)

// Kinds returns every graph kind known to the engine.
func Kinds() []Kind {
	return []Kind{KindGeometry, KindShader}
}

// ParseKind validates a graph kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown graph kind %q", s)
}

// Category groups node types in the editor's add-node menu.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Socket is a typed input or output slot, addressed by its position in
// the definition's socket list.
type Socket struct {
	Name string           `json:"name"`
	Type types.SocketType `json:"type"`
}

// Definition describes a node type. It is created once at registration
// time and never mutated afterwards.
type Definition struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Category string         `json:"category"`
	Inputs   []Socket       `json:"inputs"`
	Outputs  []Socket       `json:"outputs"`
	Defaults map[string]any `json:"defaults"`
	Singular bool           `json:"singular,omitempty"`

	Evaluator Evaluator `json:"-"`
}

// Input returns the input socket at index i.
func (d *Definition) Input(i int) (Socket, bool) {
	if i < 0 || i >= len(d.Inputs) {
		return Socket{}, false
	}
	return d.Inputs[i], true
}

// Output returns the output socket at index i.
func (d *Definition) Output(i int) (Socket, bool) {
	if i < 0 || i >= len(d.Outputs) {
		return Socket{}, false
	}
	return d.Outputs[i], true
}

// Instance is the read-only view of a node instance handed to evaluators.
type Instance struct {
	ID   int
	Type string
}

// Result is what a node evaluation produces. Outputs is indexed by output
// socket; Side carries kind-specific side-channel fields such as the
// terminal node's payload.
type Result struct {
	Outputs []any
	Side    map[string]any
}

// Output returns the value at output slot i, or nil if the slot is absent.
func (r Result) Output(i int) any {
	if i < 0 || i >= len(r.Outputs) {
		return nil
	}
	return r.Outputs[i]
}

// Evaluator is the capability a plug-in supplies for one node type.
// inputs has one entry per declared input socket; unconnected inputs are
// nil and the evaluator supplies its own default.
type Evaluator interface {
	Evaluate(params Params, inputs []any, node Instance) (Result, error)
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(params Params, inputs []any, node Instance) (Result, error)

// Evaluate calls f(params, inputs, node).
func (f EvaluatorFunc) Evaluate(params Params, inputs []any, node Instance) (Result, error) {
	return f(params, inputs, node)
}

// Outputs is a convenience constructor for a Result without side fields.
func Outputs(values ...any) Result {
	return Result{Outputs: values}
}

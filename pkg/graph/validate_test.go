package graph_test

import (
	"strings"
	"testing"

	"github.com/chazu/nodeforge/pkg/graph"
	"github.com/stretchr/testify/assert"
)

// validState is cube(1) -> transform(2) -> output(3).
func validState() graph.State {
	return graph.State{
		Nodes: []graph.Node{
			{ID: 1, Type: "cube"},
			{ID: 2, Type: "transform"},
			{ID: 3, Type: "output"},
		},
		Connections: []graph.Connection{
			{FromNode: 1, FromSocket: 0, ToNode: 2, ToSocket: 0},
			{FromNode: 2, FromSocket: 0, ToNode: 3, ToSocket: 0},
		},
		NextID: 4,
	}
}

func TestValidateAcceptsValidState(t *testing.T) {
	s := newStore(t)
	errs := s.Validate(validState())
	assert.Empty(t, errs)
	assert.False(t, graph.HasErrors(errs))
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name     string
		mod      func(st *graph.State)
		contains string
		severity graph.ValidationSeverity
	}{
		{"negative counter", func(st *graph.State) { st.NextID = -1 }, "negative id counter", graph.SeverityError},
		{"zero id", func(st *graph.State) { st.Nodes[0].ID = 0 }, "invalid node id", graph.SeverityError},
		{"duplicate id", func(st *graph.State) { st.Nodes[1].ID = 1 }, "duplicate node id", graph.SeverityError},
		{"missing type", func(st *graph.State) { st.Nodes[0].Type = "" }, "missing node type", graph.SeverityError},
		{"unknown type", func(st *graph.State) { st.Nodes[0].Type = "teapot" }, "unknown node type", graph.SeverityWarning},
		{"second singular", func(st *graph.State) {
			st.Nodes = append(st.Nodes, graph.Node{ID: 4, Type: "output"})
		}, "more than one", graph.SeverityError},
		{"dangling connection", func(st *graph.State) {
			st.Connections = append(st.Connections, graph.Connection{FromNode: 9, ToNode: 2, ToSocket: 1})
		}, "missing node", graph.SeverityError},
		{"self loop", func(st *graph.State) {
			st.Connections = append(st.Connections, graph.Connection{FromNode: 2, ToNode: 2, ToSocket: 1})
		}, "self loop", graph.SeverityError},
		{"two sources", func(st *graph.State) {
			st.Connections = append(st.Connections, graph.Connection{FromNode: 1, ToNode: 3, ToSocket: 0})
		}, "more than one source", graph.SeverityError},
		{"output out of range", func(st *graph.State) { st.Connections[0].FromSocket = 4 }, "output socket 4", graph.SeverityError},
		{"input out of range", func(st *graph.State) { st.Connections[0].ToSocket = 4 }, "input socket 4", graph.SeverityError},
		{"incompatible", func(st *graph.State) { st.Connections[0].ToSocket = 1 }, "cannot connect geometry to vector", graph.SeverityError},
		{"cycle", func(st *graph.State) {
			st.Nodes = append(st.Nodes, graph.Node{ID: 4, Type: "transform"})
			st.Connections = []graph.Connection{
				{FromNode: 2, ToNode: 4, ToSocket: 0},
				{FromNode: 4, ToNode: 2, ToSocket: 0},
			}
		}, "cycle", graph.SeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			st := validState()
			tt.mod(&st)

			var found *graph.ValidationError
			for _, e := range s.Validate(st) {
				if strings.Contains(e.Message, tt.contains) {
					found = &e
					break
				}
			}
			if assert.NotNil(t, found, "no finding containing %q", tt.contains) {
				assert.Equal(t, tt.severity, found.Severity)
			}
		})
	}
}

func TestValidateIsReadOnly(t *testing.T) {
	s := newStore(t)
	st := validState()
	st.NextID = -5
	s.Validate(st)
	assert.Equal(t, 0, s.NodeCount())
	assert.False(t, s.CanUndo())
}

func TestValidationErrorString(t *testing.T) {
	e := graph.ValidationError{NodeID: 3, Message: "self loop", Severity: graph.SeverityError}
	assert.Equal(t, "[error] node 3: self loop", e.Error())
	g := graph.ValidationError{Message: "negative id counter -1", Severity: graph.SeverityWarning}
	assert.Equal(t, "[warning] negative id counter -1", g.Error())
}

package graph

import (
	"slices"

	"github.com/chazu/nodeforge/pkg/types"
)

// Node is one instance of a node type placed in the graph.
type Node struct {
	ID        int            `json:"id"`
	Type      string         `json:"type"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Values    map[string]any `json:"values"`
	Collapsed bool           `json:"collapsed"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.Values = types.NormalizeMap(n.Values)
	return n
}

// Connection links output socket FromSocket of FromNode to input socket
// ToSocket of ToNode.
type Connection struct {
	FromNode   int `json:"fromNode"`
	FromSocket int `json:"fromSocket"`
	ToNode     int `json:"toNode"`
	ToSocket   int `json:"toSocket"`
}

// Touches reports whether the connection has node id as either endpoint.
func (c Connection) Touches(id int) bool {
	return c.FromNode == id || c.ToNode == id
}

// State is the plain-data shape of a graph: what undo snapshots and the
// persisted format carry. Node order is z-order, not evaluation order.
type State struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	NextID      int          `json:"nextId"`
}

// Clone returns a deep copy of s with non-nil slices.
func (s State) Clone() State {
	out := State{
		Nodes:       make([]Node, len(s.Nodes)),
		Connections: slices.Clone(s.Connections),
		NextID:      s.NextID,
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	if out.Connections == nil {
		out.Connections = []Connection{}
	}
	return out
}

// MaxID returns the largest node id in s, or zero for an empty graph.
func (s State) MaxID() int {
	hi := 0
	for _, n := range s.Nodes {
		hi = max(hi, n.ID)
	}
	return hi
}

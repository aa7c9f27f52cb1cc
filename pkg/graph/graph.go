package graph

import (
	"log/slog"
	"slices"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/types"
	"github.com/chazu/nodeforge/pkg/undo"
)

// FirstID is the id assigned to the first node of an empty graph.
const FirstID = 1

// Option configures a Store.
type Option func(*Store)

// WithUndoCapacity bounds the undo history.
func WithUndoCapacity(n int) Option {
	return func(s *Store) { s.history = undo.New(n) }
}

// WithLogger sets the logger used to report rejected mutations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store owns the graph of one kind. Mutations that violate an invariant
// return nil or false and change nothing, including the undo history.
// A Store is not safe for concurrent use.
type Store struct {
	kind     catalog.Kind
	catalog  *catalog.Catalog
	registry *types.Registry
	history  *undo.History
	logger   *slog.Logger

	nodes  []*Node
	conns  []Connection
	nextID int
}

// New creates an empty store for one graph kind.
func New(kind catalog.Kind, cat *catalog.Catalog, reg *types.Registry, opts ...Option) *Store {
	s := &Store{
		kind:     kind,
		catalog:  cat,
		registry: reg,
		history:  undo.New(undo.DefaultCapacity),
		logger:   slog.Default(),
		nextID:   FirstID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("kind", string(kind))
	return s
}

// Kind returns the graph kind this store holds.
func (s *Store) Kind() catalog.Kind { return s.kind }

// Registry returns the type registry used for socket compatibility.
func (s *Store) Registry() *types.Registry { return s.registry }

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger { return s.logger }

// Definition resolves a node type id against the catalog.
func (s *Store) Definition(typeID string) (*catalog.Definition, bool) {
	return s.catalog.Lookup(s.kind, typeID)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Node returns a copy of the node with the given id.
func (s *Store) Node(id int) (Node, bool) {
	n := s.find(id)
	if n == nil {
		return Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of every node in z-order.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Connections returns a copy of every connection.
func (s *Store) Connections() []Connection {
	return slices.Clone(s.conns)
}

// NodeCount returns the number of node instances.
func (s *Store) NodeCount() int { return len(s.nodes) }

// ConnectionCount returns the number of connections.
func (s *Store) ConnectionCount() int { return len(s.conns) }

// NextID returns the id the next added node will receive.
func (s *Store) NextID() int { return s.nextID }

// FindByType returns the first node of the given type in z-order.
func (s *Store) FindByType(typeID string) (Node, bool) {
	for _, n := range s.nodes {
		if n.Type == typeID {
			return n.Clone(), true
		}
	}
	return Node{}, false
}

// GetInputConnection returns the connection feeding input socket of node.
func (s *Store) GetInputConnection(nodeID, socket int) (Connection, bool) {
	for _, c := range s.conns {
		if c.ToNode == nodeID && c.ToSocket == socket {
			return c, true
		}
	}
	return Connection{}, false
}

// Snapshot returns a deep copy of the full graph state.
func (s *Store) Snapshot() State {
	st := State{
		Nodes:       make([]Node, len(s.nodes)),
		Connections: slices.Clone(s.conns),
		NextID:      s.nextID,
	}
	for i, n := range s.nodes {
		st.Nodes[i] = n.Clone()
	}
	if st.Connections == nil {
		st.Connections = []Connection{}
	}
	return st
}

func (s *Store) find(id int) *Node {
	for _, n := range s.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// AddNode places a new instance of typeID at (x, y), seeded with the
// definition's defaults. It returns nil for an unknown type. For singular
// types that already have an instance, the existing instance is returned
// and nothing changes.
func (s *Store) AddNode(typeID string, x, y float64) *Node {
	def, ok := s.Definition(typeID)
	if !ok {
		s.reject("add node", "unknown node type", "type", typeID)
		return nil
	}
	if def.Singular {
		if existing, ok := s.FindByType(typeID); ok {
			return &existing
		}
	}

	s.saveUndo("add " + typeID)
	n := &Node{
		ID:     s.nextID,
		Type:   typeID,
		X:      x,
		Y:      y,
		Values: def.DefaultValues(),
	}
	s.nextID++
	s.nodes = append(s.nodes, n)

	out := n.Clone()
	return &out
}

// RemoveNode deletes a node and every connection touching it.
func (s *Store) RemoveNode(id int) bool {
	idx := slices.IndexFunc(s.nodes, func(n *Node) bool { return n.ID == id })
	if idx < 0 {
		return s.reject("remove node", "no such node", "node", id)
	}

	s.saveUndo("remove node")
	s.nodes = slices.Delete(s.nodes, idx, idx+1)
	s.conns = slices.DeleteFunc(s.conns, func(c Connection) bool { return c.Touches(id) })
	return true
}

// MoveNode updates a node's position. Layout is not recorded in the undo
// history.
func (s *Store) MoveNode(id int, x, y float64) bool {
	n := s.find(id)
	if n == nil {
		return s.reject("move node", "no such node", "node", id)
	}
	n.X, n.Y = x, y
	return true
}

// SetCollapsed toggles a node's collapsed display flag. Like MoveNode it
// is display-only and not recorded in the undo history.
func (s *Store) SetCollapsed(id int, collapsed bool) bool {
	n := s.find(id)
	if n == nil {
		return s.reject("collapse node", "no such node", "node", id)
	}
	n.Collapsed = collapsed
	return true
}

// SetNodeValue overwrites one parameter of a node.
func (s *Store) SetNodeValue(id int, key string, value any) bool {
	n := s.find(id)
	if n == nil {
		return s.reject("set value", "no such node", "node", id, "key", key)
	}

	s.saveUndo("set " + key)
	if n.Values == nil {
		n.Values = make(map[string]any)
	}
	n.Values[key] = types.Normalize(value)
	return true
}

// AddConnection links output fromSocket of node from to input toSocket of
// node to. Any connection already feeding that input is replaced. It
// returns false, changing nothing, when either node or socket is missing,
// the socket types are incompatible, the nodes are the same, or the new
// edge would close a cycle.
func (s *Store) AddConnection(from, fromSocket, to, toSocket int) bool {
	if from == to {
		return s.reject("connect", "self loop", "node", from)
	}
	fromNode, toNode := s.find(from), s.find(to)
	if fromNode == nil || toNode == nil {
		return s.reject("connect", "no such node", "from", from, "to", to)
	}
	fromDef, ok := s.Definition(fromNode.Type)
	if !ok {
		return s.reject("connect", "unknown node type", "type", fromNode.Type)
	}
	toDef, ok := s.Definition(toNode.Type)
	if !ok {
		return s.reject("connect", "unknown node type", "type", toNode.Type)
	}
	out, ok := fromDef.Output(fromSocket)
	if !ok {
		return s.reject("connect", "output socket out of range", "node", from, "socket", fromSocket)
	}
	in, ok := toDef.Input(toSocket)
	if !ok {
		return s.reject("connect", "input socket out of range", "node", to, "socket", toSocket)
	}
	if !s.registry.AreCompatible(out.Type, in.Type) {
		return s.reject("connect", "incompatible socket types",
			"from_type", out.Type.String(), "to_type", in.Type.String())
	}
	if s.reaches(to, from) {
		return s.reject("connect", "would create a cycle", "from", from, "to", to)
	}

	s.saveUndo("connect")
	s.conns = slices.DeleteFunc(s.conns, func(c Connection) bool {
		return c.ToNode == to && c.ToSocket == toSocket
	})
	s.conns = append(s.conns, Connection{FromNode: from, FromSocket: fromSocket, ToNode: to, ToSocket: toSocket})
	return true
}

// RemoveConnection deletes the connection matching all four fields.
func (s *Store) RemoveConnection(from, fromSocket, to, toSocket int) bool {
	want := Connection{FromNode: from, FromSocket: fromSocket, ToNode: to, ToSocket: toSocket}
	idx := slices.Index(s.conns, want)
	if idx < 0 {
		return s.reject("disconnect", "no such connection",
			"from", from, "from_socket", fromSocket, "to", to, "to_socket", toSocket)
	}

	s.saveUndo("disconnect")
	s.conns = slices.Delete(s.conns, idx, idx+1)
	return true
}

// Replace swaps in a whole new graph state, recording the current one in
// the undo history under label.
func (s *Store) Replace(label string, st State) {
	s.saveUndo(label)
	s.restore(st)
}

// Clear removes every node and connection. The id counter keeps counting.
func (s *Store) Clear() {
	s.Replace("clear", State{NextID: s.nextID})
}

// reaches reports whether dst is reachable from src by following
// connections downstream.
func (s *Store) reaches(src, dst int) bool {
	seen := map[int]bool{src: true}
	stack := []int{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == dst {
			return true
		}
		for _, c := range s.conns {
			if c.FromNode == cur && !seen[c.ToNode] {
				seen[c.ToNode] = true
				stack = append(stack, c.ToNode)
			}
		}
	}
	return false
}

func (s *Store) reject(op, reason string, args ...any) bool {
	s.logger.Debug("graph: "+op+" rejected", append([]any{"reason", reason}, args...)...)
	return false
}

// ---------------------------------------------------------------------------
// Undo
// ---------------------------------------------------------------------------

// Undo restores the state from before the last recorded mutation. It
// returns false, leaving the graph unchanged, if the history is empty.
func (s *Store) Undo() bool {
	var prev State
	action, err := s.history.Undo(s.Snapshot(), &prev)
	if err != nil {
		s.logger.Debug("graph: undo unavailable", "err", err)
		return false
	}
	s.restore(prev)
	s.logger.Debug("graph: undo", "action", action)
	return true
}

// Redo reapplies the last undone mutation.
func (s *Store) Redo() bool {
	var next State
	action, err := s.history.Redo(s.Snapshot(), &next)
	if err != nil {
		s.logger.Debug("graph: redo unavailable", "err", err)
		return false
	}
	s.restore(next)
	s.logger.Debug("graph: redo", "action", action)
	return true
}

// CanUndo reports whether Undo would succeed.
func (s *Store) CanUndo() bool { return s.history.Len() > 0 }

// CanRedo reports whether Redo would succeed.
func (s *Store) CanRedo() bool { return s.history.RedoLen() > 0 }

// UndoLabels lists the recorded actions, oldest first.
func (s *Store) UndoLabels() []string { return s.history.Labels() }

func (s *Store) saveUndo(action string) {
	if err := s.history.Save(action, s.Snapshot()); err != nil {
		s.logger.Warn("graph: undo snapshot failed", "action", action, "err", err)
	}
}

func (s *Store) restore(st State) {
	st = st.Clone()
	s.nodes = make([]*Node, len(st.Nodes))
	for i := range st.Nodes {
		n := st.Nodes[i]
		s.nodes[i] = &n
	}
	s.conns = st.Connections
	s.nextID = max(st.NextID, st.MaxID()+1, FirstID)
}

// Package graph holds the mutable node graph of one graph kind: node
// instances, the connections between their sockets, and the id counter.
// The Store enforces the structural invariants (singular node types, one
// upstream source per input socket, type-compatible and acyclic
// connections) and snapshots its full state into an undo history before
// every structural or parameter edit.
package graph

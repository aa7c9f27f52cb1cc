package graph

import (
	"fmt"
	"slices"
)

// ValidationSeverity indicates whether a finding makes a state unusable or
// is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // state must be rejected
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   int // zero if graph-level
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID == 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %d: %s", e.Severity, e.NodeID, e.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []ValidationError) bool {
	return slices.ContainsFunc(findings, func(e ValidationError) bool {
		return e.Severity == SeverityError
	})
}

// Validate checks a state built outside the mutation API (for example a
// loaded document) against the invariants the Store maintains. It is
// read-only. Node types missing from the catalog are reported as
// warnings; such nodes evaluate to a fault but do not make the state
// unusable.
func (s *Store) Validate(st State) []ValidationError {
	var errs []ValidationError
	errs = append(errs, s.validateNodes(st)...)
	errs = append(errs, s.validateConnections(st)...)
	errs = append(errs, validateAcyclic(st)...)
	return errs
}

func (s *Store) validateNodes(st State) []ValidationError {
	var errs []ValidationError
	if st.NextID < 0 {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("negative id counter %d", st.NextID),
			Severity: SeverityError,
		})
	}

	seen := make(map[int]bool, len(st.Nodes))
	singular := make(map[string]int)
	for _, n := range st.Nodes {
		if n.ID < FirstID {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("invalid node id %d", n.ID),
				Severity: SeverityError,
			})
			continue
		}
		if seen[n.ID] {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "duplicate node id",
				Severity: SeverityError,
			})
			continue
		}
		seen[n.ID] = true

		if n.Type == "" {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: "missing node type", Severity: SeverityError})
			continue
		}
		def, ok := s.Definition(n.Type)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("unknown node type %q", n.Type),
				Severity: SeverityWarning,
			})
			continue
		}
		if def.Singular {
			singular[n.Type]++
			if singular[n.Type] == 2 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("more than one %q node", n.Type),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func (s *Store) validateConnections(st State) []ValidationError {
	nodeTypes := make(map[int]string, len(st.Nodes))
	for _, n := range st.Nodes {
		nodeTypes[n.ID] = n.Type
	}

	var errs []ValidationError
	type dest struct{ node, socket int }
	fed := make(map[dest]bool, len(st.Connections))
	for _, c := range st.Connections {
		fromType, fromOK := nodeTypes[c.FromNode]
		toType, toOK := nodeTypes[c.ToNode]
		if !fromOK || !toOK {
			errs = append(errs, ValidationError{
				NodeID:   c.ToNode,
				Message:  fmt.Sprintf("connection %d->%d references a missing node", c.FromNode, c.ToNode),
				Severity: SeverityError,
			})
			continue
		}
		if c.FromNode == c.ToNode {
			errs = append(errs, ValidationError{NodeID: c.ToNode, Message: "self loop", Severity: SeverityError})
			continue
		}
		d := dest{c.ToNode, c.ToSocket}
		if fed[d] {
			errs = append(errs, ValidationError{
				NodeID:   c.ToNode,
				Message:  fmt.Sprintf("input socket %d has more than one source", c.ToSocket),
				Severity: SeverityError,
			})
			continue
		}
		fed[d] = true

		fromDef, ok1 := s.Definition(fromType)
		toDef, ok2 := s.Definition(toType)
		if !ok1 || !ok2 {
			continue // unknown types already reported
		}
		out, ok := fromDef.Output(c.FromSocket)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   c.FromNode,
				Message:  fmt.Sprintf("output socket %d out of range", c.FromSocket),
				Severity: SeverityError,
			})
			continue
		}
		in, ok := toDef.Input(c.ToSocket)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   c.ToNode,
				Message:  fmt.Sprintf("input socket %d out of range", c.ToSocket),
				Severity: SeverityError,
			})
			continue
		}
		if !s.registry.AreCompatible(out.Type, in.Type) {
			errs = append(errs, ValidationError{
				NodeID:   c.ToNode,
				Message:  fmt.Sprintf("cannot connect %s to %s", out.Type, in.Type),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateAcyclic checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = on the current path, black (2) = done.
func validateAcyclic(st State) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	next := make(map[int][]int)
	for _, c := range st.Connections {
		next[c.FromNode] = append(next[c.FromNode], c.ToNode)
	}

	color := make(map[int]int)
	var errs []ValidationError

	var visit func(id int) bool
	visit = func(id int) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "node is part of a cycle",
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		for _, to := range next[id] {
			if visit(to) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, n := range st.Nodes {
		if color[n.ID] == white && visit(n.ID) {
			break
		}
	}
	return errs
}

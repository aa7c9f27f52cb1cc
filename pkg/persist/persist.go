// Package persist converts a graph store to and from its persisted forms:
// the JSON document exchanged with callers and a compact binary blob for
// autosave and clipboard use. Loading is all or nothing.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chazu/nodeforge/pkg/codec"
	"github.com/chazu/nodeforge/pkg/graph"
)

// Compact is the pipeline used for binary blobs.
var Compact = codec.Snapshot

// LoadLabel is the undo label recorded when a document replaces a graph.
const LoadLabel = "load"

var (
	ErrMissingNodes = errors.New("persist: document has no nodes field")
	ErrTrailingData = errors.New("persist: trailing data after document")
)

// document mirrors graph.State with pointer fields so that absent keys
// can be told apart from empty ones.
type document struct {
	Nodes       *[]graph.Node      `json:"nodes"`
	Connections []graph.Connection `json:"connections"`
	NextID      *int               `json:"nextId"`
}

func (d document) state() (graph.State, error) {
	if d.Nodes == nil {
		return graph.State{}, ErrMissingNodes
	}
	st := graph.State{Nodes: *d.Nodes, Connections: d.Connections}
	if d.NextID != nil {
		st.NextID = *d.NextID
	}
	return st, nil
}

// ToPersisted returns the graph as a {nodes, connections, nextId} JSON
// document.
func ToPersisted(s *graph.Store) (string, error) {
	data, err := codec.JSON{}.Encode(s.Snapshot())
	if err != nil {
		return "", fmt.Errorf("persist: encode %s graph: %w", s.Kind(), err)
	}
	return string(data), nil
}

// FromPersisted replaces the graph with the one described by text. It
// returns false and leaves the graph untouched when text is not a valid
// document. An id counter below the largest node id is repaired.
func FromPersisted(s *graph.Store, text string) bool {
	st, err := Decode([]byte(text))
	if err != nil {
		s.Logger().Warn("persist: malformed document", "err", err)
		return false
	}
	return apply(s, st)
}

// Decode parses a JSON document without applying it.
func Decode(data []byte) (graph.State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return graph.State{}, fmt.Errorf("persist: decode: %w", err)
	}
	if dec.More() {
		return graph.State{}, ErrTrailingData
	}
	return doc.state()
}

// ToCompact returns the graph as a compressed binary blob.
func ToCompact(s *graph.Store) ([]byte, error) {
	data, err := Compact.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("persist: encode compact %s graph: %w", s.Kind(), err)
	}
	return data, nil
}

// FromCompact is the binary counterpart of FromPersisted.
func FromCompact(s *graph.Store, data []byte) bool {
	var doc document
	if err := Compact.Unmarshal(data, &doc); err != nil {
		s.Logger().Warn("persist: malformed compact blob", "err", err)
		return false
	}
	st, err := doc.state()
	if err != nil {
		s.Logger().Warn("persist: malformed compact blob", "err", err)
		return false
	}
	return apply(s, st)
}

func apply(s *graph.Store, st graph.State) bool {
	findings := s.Validate(st)
	for _, f := range findings {
		if f.Severity == graph.SeverityWarning {
			s.Logger().Warn("persist: load", "finding", f.Error())
		}
	}
	if graph.HasErrors(findings) {
		for _, f := range findings {
			if f.Severity == graph.SeverityError {
				s.Logger().Warn("persist: rejected", "finding", f.Error())
			}
		}
		return false
	}

	if hi := st.MaxID(); st.NextID <= hi {
		s.Logger().Debug("persist: repaired id counter", "nextId", st.NextID, "repaired", hi+1)
		st.NextID = hi + 1
	}
	s.Replace(LoadLabel, st)
	return true
}

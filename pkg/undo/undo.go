// Package undo keeps a bounded history of full-state snapshots. Each record
// is a complete encoded copy of the state taken before one labelled action,
// so restoring is exact and never depends on neighbouring records.
package undo

import (
	"errors"
	"fmt"

	"github.com/chazu/nodeforge/pkg/codec"
)

// DefaultCapacity is the number of undo records kept when none is given.
const DefaultCapacity = 50

// ErrEmpty is returned by Undo and Redo when there is nothing to restore.
var ErrEmpty = errors.New("undo: history is empty")

// Rec is one saved state and the action that followed it.
type Rec struct {
	Action string
	Data   []byte
}

// History is a bounded undo stack with a redo stack. Pushing past capacity
// silently evicts the oldest record. It is not safe for concurrent use.
type History struct {
	capacity int
	pipeline codec.Pipeline
	undo     []Rec
	redo     []Rec
}

// New returns a history holding at most capacity records. A capacity
// below one selects DefaultCapacity.
func New(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity, pipeline: codec.Snapshot}
}

// Capacity returns the maximum number of undo records.
func (h *History) Capacity() int {
	return h.capacity
}

// Save records state as the target of the next Undo, labelled with the
// action about to be applied. Any redo records are discarded.
func (h *History) Save(action string, state any) error {
	data, err := h.pipeline.Marshal(state)
	if err != nil {
		return fmt.Errorf("undo: save %q: %w", action, err)
	}
	h.undo = push(h.undo, Rec{Action: action, Data: data}, h.capacity)
	h.redo = h.redo[:0]
	return nil
}

// Undo restores the most recent record into out and moves current onto
// the redo stack. It returns the undone action's label, or ErrEmpty.
func (h *History) Undo(current, out any) (string, error) {
	return h.step(&h.undo, &h.redo, current, out)
}

// Redo reverses the last Undo.
func (h *History) Redo(current, out any) (string, error) {
	return h.step(&h.redo, &h.undo, current, out)
}

// step pops from src into out and pushes current onto dst. Nothing changes
// if encoding or decoding fails.
func (h *History) step(src, dst *[]Rec, current, out any) (string, error) {
	if len(*src) == 0 {
		return "", ErrEmpty
	}
	top := (*src)[len(*src)-1]

	cur, err := h.pipeline.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("undo: encode current state: %w", err)
	}
	if err := h.pipeline.Unmarshal(top.Data, out); err != nil {
		return "", fmt.Errorf("undo: restore %q: %w", top.Action, err)
	}

	*src = (*src)[:len(*src)-1]
	*dst = push(*dst, Rec{Action: top.Action, Data: cur}, h.capacity)
	return top.Action, nil
}

// Len returns the number of undo records.
func (h *History) Len() int { return len(h.undo) }

// RedoLen returns the number of redo records.
func (h *History) RedoLen() int { return len(h.redo) }

// Labels returns the undo action labels, oldest first.
func (h *History) Labels() []string {
	out := make([]string, len(h.undo))
	for i, r := range h.undo {
		out[i] = r.Action
	}
	return out
}

// Clear drops every record.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func push(stack []Rec, r Rec, capacity int) []Rec {
	stack = append(stack, r)
	if over := len(stack) - capacity; over > 0 {
		stack = append(stack[:0], stack[over:]...)
	}
	return stack
}

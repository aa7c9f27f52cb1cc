package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/chazu/nodeforge/pkg/types"
)

var (
	ErrUnknownKind     = errors.New("unknown graph kind")
	ErrDuplicateType   = errors.New("node type already registered")
	ErrDuplicateCat    = errors.New("category already registered")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNoEvaluator     = errors.New("node type has no evaluator")
	ErrInvalidSocket   = errors.New("invalid socket")
)

// Module is implemented by plug-in packages that contribute categories and
// node types to a catalog.
type Module interface {
	Register(c *Catalog) error
}

// ModuleFunc adapts a function to the Module interface.
type ModuleFunc func(c *Catalog) error

// Register calls f(c).
func (f ModuleFunc) Register(c *Catalog) error {
	return f(c)
}

// section holds the registrations for one graph kind.
type section struct {
	categories []Category
	catIndex   map[string]int
	defs       map[string]*Definition
	order      []string
}

// Catalog holds node definitions per graph kind. Registration happens at
// start-up; lookups afterwards are read-only.
type Catalog struct {
	sections map[Kind]*section
}

// New creates an empty catalog covering every graph kind.
func New() *Catalog {
	c := &Catalog{sections: make(map[Kind]*section)}
	for _, k := range Kinds() {
		c.sections[k] = &section{
			catIndex: make(map[string]int),
			defs:     make(map[string]*Definition),
		}
	}
	return c
}

// Install registers each module in order, stopping at the first error.
func (c *Catalog) Install(modules ...Module) error {
	for _, m := range modules {
		if err := m.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCategory adds a display category to a graph kind.
func (c *Catalog) RegisterCategory(kind Kind, cat Category) error {
	s, ok := c.sections[kind]
	if !ok {
		return fmt.Errorf("register category %q: %w: %s", cat.ID, ErrUnknownKind, kind)
	}
	if _, exists := s.catIndex[cat.ID]; exists {
		return fmt.Errorf("register category %q in %s: %w", cat.ID, kind, ErrDuplicateCat)
	}
	s.catIndex[cat.ID] = len(s.categories)
	s.categories = append(s.categories, cat)
	return nil
}

// Register adds a node definition to a graph kind. The definition is
// copied; later changes to the caller's value have no effect.
func (c *Catalog) Register(kind Kind, def Definition) error {
	s, ok := c.sections[kind]
	if !ok {
		return fmt.Errorf("register %q: %w: %s", def.ID, ErrUnknownKind, kind)
	}
	if def.ID == "" {
		return fmt.Errorf("register in %s: node type id must not be empty", kind)
	}
	if _, exists := s.defs[def.ID]; exists {
		return fmt.Errorf("register %q in %s: %w", def.ID, kind, ErrDuplicateType)
	}
	if _, exists := s.catIndex[def.Category]; !exists {
		return fmt.Errorf("register %q in %s: %w %q", def.ID, kind, ErrUnknownCategory, def.Category)
	}
	if def.Evaluator == nil {
		return fmt.Errorf("register %q in %s: %w", def.ID, kind, ErrNoEvaluator)
	}
	for i, sock := range def.Inputs {
		if !sock.Type.Valid() {
			return fmt.Errorf("register %q in %s: input %d (%s): %w", def.ID, kind, i, sock.Name, ErrInvalidSocket)
		}
	}
	for i, sock := range def.Outputs {
		if !sock.Type.Valid() {
			return fmt.Errorf("register %q in %s: output %d (%s): %w", def.ID, kind, i, sock.Name, ErrInvalidSocket)
		}
	}
	if def.Label == "" {
		def.Label = def.ID
	}

	d := def
	d.Inputs = slices.Clone(def.Inputs)
	d.Outputs = slices.Clone(def.Outputs)
	d.Defaults = types.NormalizeMap(def.Defaults)
	s.defs[d.ID] = &d
	s.order = append(s.order, d.ID)
	return nil
}

// Lookup resolves a node type within a graph kind.
func (c *Catalog) Lookup(kind Kind, typeID string) (*Definition, bool) {
	s, ok := c.sections[kind]
	if !ok {
		return nil, false
	}
	d, ok := s.defs[typeID]
	return d, ok
}

// Definitions returns the definitions of a kind in registration order.
func (c *Catalog) Definitions(kind Kind) []*Definition {
	s, ok := c.sections[kind]
	if !ok {
		return nil
	}
	out := make([]*Definition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.defs[id])
	}
	return out
}

// Categories returns the categories of a kind in registration order.
func (c *Catalog) Categories(kind Kind) []Category {
	s, ok := c.sections[kind]
	if !ok {
		return nil
	}
	return slices.Clone(s.categories)
}

// DefaultValues returns a fresh copy of a definition's default parameters,
// suitable for seeding a new node instance.
func (d *Definition) DefaultValues() map[string]any {
	out := maps.Clone(d.Defaults)
	if out == nil {
		out = make(map[string]any)
	}
	for k, v := range out {
		out[k] = types.Normalize(v)
	}
	return out
}

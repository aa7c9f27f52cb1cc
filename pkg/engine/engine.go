// Package engine wires the node graph subsystems into a single context:
// one type registry, one catalog, one store per graph kind and one
// evaluator. Front ends (the desktop binding, the CLI) talk to an Engine
// rather than to the stores directly.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/config"
	"github.com/chazu/nodeforge/pkg/ctxlog"
	"github.com/chazu/nodeforge/pkg/eval"
	"github.com/chazu/nodeforge/pkg/graph"
	"github.com/chazu/nodeforge/pkg/persist"
	"github.com/chazu/nodeforge/pkg/types"
)

// Engine owns the graphs of every kind. It is safe for concurrent use;
// all access to a store goes through the engine's lock.
type Engine struct {
	mu        sync.Mutex
	cfg       config.Config
	logger    *slog.Logger
	registry  *types.Registry
	catalog   *catalog.Catalog
	stores    map[catalog.Kind]*graph.Store
	evaluator *eval.Evaluator
}

// New validates cfg, installs the node modules and creates an empty
// store for each graph kind. A nil logger discards output.
func New(cfg config.Config, logger *slog.Logger, modules ...catalog.Module) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = ctxlog.Discard()
	}

	cat := catalog.New()
	if err := cat.Install(modules...); err != nil {
		return nil, fmt.Errorf("engine: install modules: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		registry:  types.NewRegistry(),
		catalog:   cat,
		stores:    make(map[catalog.Kind]*graph.Store),
		evaluator: eval.New(eval.WithMaxDepth(cfg.Eval.MaxDepth)),
	}
	for _, kind := range catalog.Kinds() {
		e.stores[kind] = graph.New(kind, cat, e.registry,
			graph.WithUndoCapacity(cfg.Undo.Capacity),
			graph.WithLogger(logger),
		)
	}
	logger.Debug("engine: ready",
		"geometry_types", len(cat.Definitions(catalog.KindGeometry)),
		"shader_types", len(cat.Definitions(catalog.KindShader)))
	return e, nil
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() config.Config { return e.cfg }

// Catalog returns the node catalog. It is read-only after New.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Registry returns the socket type registry.
func (e *Engine) Registry() *types.Registry { return e.registry }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Store returns the store for kind, or nil for an unknown kind. The
// caller must not use it concurrently with other engine calls; use Edit
// from concurrent code.
func (e *Engine) Store(kind catalog.Kind) *graph.Store {
	return e.stores[kind]
}

// Edit runs fn on the store for kind under the engine lock and returns
// its result. It returns false for an unknown kind.
func (e *Engine) Edit(kind catalog.Kind, fn func(s *graph.Store) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.stores[kind]
	if !ok {
		e.logger.Debug("engine: edit on unknown kind", "kind", string(kind))
		return false
	}
	return fn(s)
}

// Evaluate runs the evaluator over the graph of kind.
func (e *Engine) Evaluate(ctx context.Context, kind catalog.Kind) *eval.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, ok := eval.TargetFor(kind)
	s, known := e.stores[kind]
	if !ok || !known {
		return &eval.Result{Faults: []eval.Fault{{Message: fmt.Sprintf("%s: %s", catalog.ErrUnknownKind, kind)}}}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return e.evaluator.Evaluate(ctxlog.WithLogger(ctx, e.logger), s, target)
}

// Save returns the persisted JSON form of the graph of kind.
func (e *Engine) Save(kind catalog.Kind) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.stores[kind]
	if !ok {
		return "", fmt.Errorf("engine: save: %w: %s", catalog.ErrUnknownKind, kind)
	}
	return persist.ToPersisted(s)
}

// Load replaces the graph of kind with a persisted JSON document. It
// returns false and changes nothing when the document is rejected.
func (e *Engine) Load(kind catalog.Kind, text string) bool {
	return e.Edit(kind, func(s *graph.Store) bool {
		return persist.FromPersisted(s, text)
	})
}

// Autosave returns the compact binary form of the graph of kind.
func (e *Engine) Autosave(kind catalog.Kind) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.stores[kind]
	if !ok {
		return nil, fmt.Errorf("engine: autosave: %w: %s", catalog.ErrUnknownKind, kind)
	}
	return persist.ToCompact(s)
}

// Restore is the counterpart of Autosave.
func (e *Engine) Restore(kind catalog.Kind, blob []byte) bool {
	return e.Edit(kind, func(s *graph.Store) bool {
		return persist.FromCompact(s, blob)
	})
}

// Undo reverts the last undoable edit on the graph of kind.
func (e *Engine) Undo(kind catalog.Kind) bool {
	return e.Edit(kind, (*graph.Store).Undo)
}

// Redo reapplies the last undone edit on the graph of kind.
func (e *Engine) Redo(kind catalog.Kind) bool {
	return e.Edit(kind, (*graph.Store).Redo)
}

package catalog_test

import (
	"errors"
	"testing"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noop = catalog.EvaluatorFunc(func(catalog.Params, []any, catalog.Instance) (catalog.Result, error) {
	return catalog.Result{}, nil
})

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	require.NoError(t, c.RegisterCategory(catalog.KindGeometry, catalog.Category{ID: "math", Name: "Math", Color: "#888"}))
	return c
}

func TestRegisterAndLookup(t *testing.T) {
	c := newCatalog(t)
	err := c.Register(catalog.KindGeometry, catalog.Definition{
		ID:        "value",
		Category:  "math",
		Outputs:   []catalog.Socket{{Name: "Value", Type: types.Float}},
		Defaults:  map[string]any{"value": 2},
		Evaluator: noop,
	})
	require.NoError(t, err)

	def, ok := c.Lookup(catalog.KindGeometry, "value")
	require.True(t, ok)
	assert.Equal(t, "value", def.Label, "label defaults to the id")
	assert.Equal(t, 2.0, def.Defaults["value"], "defaults are normalized")

	_, ok = c.Lookup(catalog.KindShader, "value")
	assert.False(t, ok, "kinds are independent")

	_, ok = c.Lookup(catalog.Kind("audio"), "value")
	assert.False(t, ok)
}

func TestRegisterRejects(t *testing.T) {
	base := catalog.Definition{ID: "n", Category: "math", Evaluator: noop}

	tests := []struct {
		name string
		kind catalog.Kind
		mod  func(d *catalog.Definition)
		want error
	}{
		{"unknown kind", catalog.Kind("audio"), func(*catalog.Definition) {}, catalog.ErrUnknownKind},
		{"unknown category", catalog.KindGeometry, func(d *catalog.Definition) { d.Category = "nope" }, catalog.ErrUnknownCategory},
		{"no evaluator", catalog.KindGeometry, func(d *catalog.Definition) { d.Evaluator = nil }, catalog.ErrNoEvaluator},
		{"bad input socket", catalog.KindGeometry, func(d *catalog.Definition) {
			d.Inputs = []catalog.Socket{{Name: "x", Type: types.SocketType(0)}}
		}, catalog.ErrInvalidSocket},
		{"bad output socket", catalog.KindGeometry, func(d *catalog.Definition) {
			d.Outputs = []catalog.Socket{{Name: "x", Type: types.SocketType(77)}}
		}, catalog.ErrInvalidSocket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCatalog(t)
			d := base
			tt.mod(&d)
			err := c.Register(tt.kind, d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	c := newCatalog(t)
	def := catalog.Definition{ID: "n", Category: "math", Evaluator: noop}
	require.NoError(t, c.Register(catalog.KindGeometry, def))
	assert.ErrorIs(t, c.Register(catalog.KindGeometry, def), catalog.ErrDuplicateType)
	assert.ErrorIs(t, c.RegisterCategory(catalog.KindGeometry, catalog.Category{ID: "math"}), catalog.ErrDuplicateCat)
}

func TestRegisterCopiesDefinition(t *testing.T) {
	c := newCatalog(t)
	inputs := []catalog.Socket{{Name: "A", Type: types.Float}}
	require.NoError(t, c.Register(catalog.KindGeometry, catalog.Definition{
		ID: "n", Category: "math", Inputs: inputs, Evaluator: noop,
	}))
	inputs[0].Name = "mutated"

	def, _ := c.Lookup(catalog.KindGeometry, "n")
	assert.Equal(t, "A", def.Inputs[0].Name)
}

func TestOrderAndDefaults(t *testing.T) {
	c := newCatalog(t)
	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, c.Register(catalog.KindGeometry, catalog.Definition{ID: id, Category: "math", Evaluator: noop}))
	}
	var ids []string
	for _, d := range c.Definitions(catalog.KindGeometry) {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Len(t, c.Categories(catalog.KindGeometry), 1)

	def, _ := c.Lookup(catalog.KindGeometry, "a")
	vals := def.DefaultValues()
	assert.NotNil(t, vals)
	vals["x"] = 1.0
	assert.NotContains(t, def.Defaults, "x")
}

func TestInstallStopsAtFirstError(t *testing.T) {
	c := catalog.New()
	calls := 0
	boom := errors.New("boom")
	err := c.Install(
		catalog.ModuleFunc(func(*catalog.Catalog) error { calls++; return boom }),
		catalog.ModuleFunc(func(*catalog.Catalog) error { calls++; return nil }),
	)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestParamsAccessors(t *testing.T) {
	p := catalog.Params{
		"size":  2.5,
		"count": 3.0,
		"on":    true,
		"op":    "mul",
		"at":    []any{1.0, 2.0, 3.0},
		"tint":  []any{1.0, 0.0, 0.0},
	}
	assert.Equal(t, 2.5, p.Float("size", 0))
	assert.Equal(t, 9.0, p.Float("missing", 9))
	assert.Equal(t, 3, p.Int("count", 0))
	assert.True(t, p.Bool("on", false))
	assert.Equal(t, "mul", p.String("op", "add"))
	assert.Equal(t, "add", p.String("size", "add"))
	assert.Equal(t, types.Vec3{X: 1, Y: 2, Z: 3}, p.Vector("at", types.Vec3{}))
	assert.Equal(t, types.RGBA{R: 1, A: 1}, p.Color("tint", types.RGBA{}))

	inputs := []any{7.0, nil}
	assert.Equal(t, 7.0, p.FloatInput(inputs, 0, "size", 0))
	assert.Equal(t, 2.5, p.FloatInput(inputs, 1, "size", 0))
	assert.Equal(t, 2.5, p.FloatInput(inputs, 5, "size", 0))
}

func TestParseKind(t *testing.T) {
	k, err := catalog.ParseKind("shader")
	require.NoError(t, err)
	assert.Equal(t, catalog.KindShader, k)
	_, err = catalog.ParseKind("audio")
	assert.Error(t, err)
}

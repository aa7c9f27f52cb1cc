package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nodeforge/pkg/config"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestParseEmptyYieldsDefault(t *testing.T) {
	cfg, err := config.Parse(nil, "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseOverrides(t *testing.T) {
	src := `
undo {
  capacity = 10
}
log {
  level  = "DEBUG"
  format = "json"
}
`
	cfg, err := config.Parse([]byte(src), "test.hcl")
	require.NoError(t, err)

	want := config.Default()
	want.Undo.Capacity = 10
	want.Log.Level = "debug"
	want.Log.Format = "json"
	assert.Equal(t, want, cfg)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `undo {`},
		{"unknown block", `render {}`},
		{"unknown attribute", "undo {\n  size = 3\n}\n"},
		{"wrong type", "eval {\n  max_depth = \"deep\"\n}\n"},
		{"capacity too small", "undo {\n  capacity = 0\n}\n"},
		{"bad level", "log {\n  level = \"loud\"\n}\n"},
		{"bad format", "log {\n  format = \"xml\"\n}\n"},
		{"mesh too coarse", "kernel {\n  mesh_cells = 2\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodeforge.hcl")
	require.NoError(t, os.WriteFile(path, []byte("kernel {\n  mesh_cells = 64\n}\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Kernel.MeshCells)
	assert.Equal(t, 512, cfg.Eval.MaxDepth)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

// Package config loads engine settings from an HCL file. Every setting
// has a default, so an empty or missing file yields Default().
//
// Example:
//
//	undo {
//	  capacity = 100
//	}
//	eval {
//	  max_depth = 256
//	}
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//	kernel {
//	  mesh_cells = 128
//	}
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config holds the engine settings.
type Config struct {
	Undo   UndoConfig
	Eval   EvalConfig
	Log    LogConfig
	Kernel KernelConfig
}

type UndoConfig struct {
	Capacity int `validate:"min=1,max=10000"`
}

type EvalConfig struct {
	MaxDepth int `validate:"min=1,max=100000"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=text json"`
}

// KernelConfig tunes mesh extraction. MeshCells is the marching cubes
// resolution along the longest bounding box axis.
type KernelConfig struct {
	MeshCells int `validate:"min=8,max=1024"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Undo:   UndoConfig{Capacity: 50},
		Eval:   EvalConfig{MaxDepth: 512},
		Log:    LogConfig{Level: "info", Format: "text"},
		Kernel: KernelConfig{MeshCells: 200},
	}
}

var validate = validator.New()

// Validate checks every setting against its bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// hclFile is the on-disk shape. Blocks and attributes are optional and
// fall back to Default().
type hclFile struct {
	Undo *struct {
		Capacity *int `hcl:"capacity,optional"`
	} `hcl:"undo,block"`
	Eval *struct {
		MaxDepth *int `hcl:"max_depth,optional"`
	} `hcl:"eval,block"`
	Log *struct {
		Level  *string `hcl:"level,optional"`
		Format *string `hcl:"format,optional"`
	} `hcl:"log,block"`
	Kernel *struct {
		MeshCells *int `hcl:"mesh_cells,optional"`
	} `hcl:"kernel,block"`
}

// Load reads and validates an HCL config file.
func Load(path string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return decode(file, path)
}

// Parse decodes and validates HCL source. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, filename string) (Config, error) {
	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}

	cfg := Default()
	if b := raw.Undo; b != nil {
		set(&cfg.Undo.Capacity, b.Capacity)
	}
	if b := raw.Eval; b != nil {
		set(&cfg.Eval.MaxDepth, b.MaxDepth)
	}
	if b := raw.Log; b != nil {
		set(&cfg.Log.Level, b.Level)
		set(&cfg.Log.Format, b.Format)
	}
	if b := raw.Kernel; b != nil {
		set(&cfg.Kernel.MeshCells, b.MeshCells)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

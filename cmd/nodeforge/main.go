// Command nodeforge evaluates a persisted node graph without the desktop
// front end and prints the evaluator output as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/chazu/nodeforge/pkg/catalog"
	"github.com/chazu/nodeforge/pkg/config"
	"github.com/chazu/nodeforge/pkg/ctxlog"
	"github.com/chazu/nodeforge/pkg/engine"
	"github.com/chazu/nodeforge/pkg/kernel/sdfx"
	"github.com/chazu/nodeforge/pkg/nodes/geometry"
	"github.com/chazu/nodeforge/pkg/nodes/shader"
)

// ConfigEnv names the environment variable holding the default config path.
const ConfigEnv = "NODEFORGE_CONFIG"

// ExitError carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	kind       catalog.Kind
	logLevel   string
	logFormat  string
	graphPath  string
}

func parse(args []string, out io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("nodeforge", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
nodeforge - evaluate a node graph document.

Usage:
  nodeforge [options] GRAPH.json

Options:
`)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "Path to an HCL config file. Defaults to $"+ConfigEnv+".")
	kindFlag := fs.String("kind", string(catalog.KindGeometry), "Graph kind: 'geometry' or 'shader'.")
	logLevel := fs.String("log-level", "", "Override the configured log level.")
	logFormat := fs.String("log-format", "", "Override the configured log format: 'text' or 'json'.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, false, &ExitError{Code: 2}
	}
	kind, err := catalog.ParseKind(strings.ToLower(*kindFlag))
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	opts := &options{
		configPath: *configPath,
		kind:       kind,
		logLevel:   *logLevel,
		logFormat:  *logFormat,
		graphPath:  fs.Arg(0),
	}
	if opts.configPath == "" {
		opts.configPath = os.Getenv(ConfigEnv)
	}
	return opts, false, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if opts.logLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.logLevel)
	}
	if opts.logFormat != "" {
		cfg.Log.Format = strings.ToLower(opts.logFormat)
	}
	return cfg, cfg.Validate()
}

func run(out, errOut io.Writer, args []string) error {
	// A missing .env is not an error.
	_ = godotenv.Load()

	opts, shouldExit, err := parse(args, errOut)
	if err != nil || shouldExit {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, errOut)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	text, err := os.ReadFile(opts.graphPath)
	if err != nil {
		return fmt.Errorf("failed to read graph: %w", err)
	}

	k := sdfx.New(sdfx.WithMeshCells(cfg.Kernel.MeshCells))
	e, err := engine.New(cfg, logger, geometry.New(k), shader.New())
	if err != nil {
		return err
	}
	if !e.Load(opts.kind, string(text)) {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%s: not a valid %s graph document", opts.graphPath, opts.kind)}
	}
	logger.Debug("cli: graph loaded", "path", opts.graphPath, "nodes", e.Store(opts.kind).NodeCount())

	res := e.Evaluate(ctx, opts.kind)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if !res.OK() {
		return &ExitError{Code: 1}
	}
	return nil
}

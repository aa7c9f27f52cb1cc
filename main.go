package main

import (
	"embed"
	"log"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/chazu/nodeforge/pkg/config"
	"github.com/chazu/nodeforge/pkg/ctxlog"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg := config.Default()
	if path := os.Getenv("NODEFORGE_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	app, err := NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	err = wails.Run(&options.App{
		Title:       "Nodeforge",
		Width:       1280,
		Height:      800,
		AssetServer: &assetserver.Options{Assets: assets},
		OnStartup:   app.startup,
		Bind:        []interface{}{app},
	})
	if err != nil {
		log.Fatalf("wails: %v", err)
	}
}

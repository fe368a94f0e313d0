// flux engine - conversation routing for the grid assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/flux-engine/internal/backend"
	"github.com/jeranaias/flux-engine/internal/cli"
	"github.com/jeranaias/flux-engine/internal/config"
	"github.com/jeranaias/flux-engine/internal/engine"
	"github.com/jeranaias/flux-engine/internal/services"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config.toml (default ~/.flux/config.toml)")
		userName    = flag.String("user", "", "user name for the session")
		noColor     = flag.Bool("no-color", false, "disable colored output")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("flux-engine %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flux: %v\n", err)
		os.Exit(1)
	}
	if *userName != "" {
		cfg.UI.UserName = *userName
	}
	if *noColor {
		cfg.UI.Color = false
	}

	if !cli.IsTTY() {
		fmt.Fprintln(os.Stderr, "flux: stdin is not a terminal")
		os.Exit(1)
	}

	// Route internal logging away from the interactive surface.
	log.SetOutput(logSink())

	grid := gridClient(cfg)
	eng := engine.New(cfg, grid, grid, backendClient(cfg))

	// Hot-reload routing settings while the session runs. Without -config,
	// watch the default path so edits to ~/.flux/config.toml take effect too.
	watchPath := *configPath
	if watchPath == "" {
		if dp, err := config.DefaultPath(); err == nil {
			watchPath = dp
		}
	}
	if watchPath != "" {
		if w, err := config.Watch(watchPath, eng.UpdateConfig); err == nil {
			defer w.Close()
		} else {
			log.Printf("MAIN: config watch unavailable: %v", err)
		}
	}

	repl := cli.NewREPL(eng, cfg)
	if err := repl.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "flux: %v\n", err)
		os.Exit(1)
	}
}

// backendClient builds the generative backend client from config.
func backendClient(cfg *config.Config) *backend.Client {
	bc := backend.DefaultConfig()
	bc.BaseURL = cfg.Backend.BaseURL
	bc.APIKey = cfg.Backend.APIKey()
	bc.Model = cfg.Backend.Model
	if cfg.Backend.TimeoutSeconds > 0 {
		bc.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	}
	if cfg.Backend.MaxRetries > 0 {
		bc.MaxRetries = cfg.Backend.MaxRetries
	}
	return backend.NewClient(bc)
}

// gridClient builds the grid REST client from config.
func gridClient(cfg *config.Config) *services.Grid {
	gc := services.Config{
		BaseURL: cfg.Services.BaseURL,
		APIKey:  cfg.Services.APIKey(),
	}
	if cfg.Services.TimeoutSeconds > 0 {
		gc.Timeout = time.Duration(cfg.Services.TimeoutSeconds) * time.Second
	}
	return services.NewGrid(gc)
}

// logSink sends log output to ~/.flux/flux.log, or discards it.
func logSink() io.Writer {
	home, err := os.UserHomeDir()
	if err != nil {
		return io.Discard
	}
	dir := filepath.Join(home, ".flux")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return io.Discard
	}
	f, err := os.OpenFile(filepath.Join(dir, "flux.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return io.Discard
	}
	return f
}

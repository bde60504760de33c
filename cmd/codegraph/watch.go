// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/indexer"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/internal/ui"
	"github.com/kraklabs/codegraph/internal/watch"
	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/extract"
)

func runWatch(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph watch [options]

Description:
  Index the current repository, then keep the graph updated in-process
  as files change. Runs until interrupted (Ctrl-C).

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	configDir := config.Dir(cwd)
	dataDir := config.DataDir(cfg, configDir)
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		errors.FatalError(fmt.Errorf("create data directory %s: %w", dataDir, err), globals.JSON)
	}
	cachePath := filepath.Join(dataDir, "cache.bolt")

	st, err := store.OpenOrCreate(cachePath, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer st.Close()

	registry := extract.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	ui.Header("Initial Index")
	result, err := indexer.Run(ctx, indexer.Options{
		Root:           cwd,
		FollowSymlinks: cfg.Indexing.FollowSymlinks,
		Workers:        cfg.Indexing.Workers,
		Store:          st,
	}, registry, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	fmt.Printf("Indexed %s files (%s cached), %s nodes, %s edges\n",
		ui.CountText(result.FilesIndexed), ui.CountText(result.CacheHits),
		ui.CountText(result.Graph.NodeCount()), ui.CountText(result.Graph.EdgeCount()))

	shared := codegraph.NewShared(result.Graph)

	w, err := watch.New(watch.Options{
		Root:             cwd,
		DebounceInterval: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		Registry:         registry,
		Store:            st,
		OnChange: func(c watch.Change) {
			logger.Info("watch.change", "path", c.Path, "kind", c.Kind.String())
		},
	}, shared, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer w.Close()

	ui.Info("Watching for changes. Press Ctrl-C to stop.")
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		errors.FatalError(err, globals.JSON)
	}
	ui.Success("Watcher stopped.")
}

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
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/indexer"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/internal/telemetry"
	"github.com/kraklabs/codegraph/internal/ui"
	"github.com/kraklabs/codegraph/pkg/extract"
	"github.com/prometheus/client_golang/prometheus"
)

func runIndex(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	full := fs.Bool("full", false, "Force full reindex, discarding the on-disk cache")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph index [options]

Description:
  Index the current repository: parse every supported source file with
  Tree-sitter, extract functions/types/calls, and cache the result in
  the embedded bbolt database. Runs incrementally by default, reusing
  cached vertices for files whose mtime has not changed.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codegraph index
  codegraph index --full
  codegraph index --debug --metrics-addr :9090

`)
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

	var metrics *telemetry.Metrics
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = telemetry.New(reg)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", telemetry.Handler(reg))
			srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			logger.Info("metrics.http.start", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

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

	var st *store.Store
	if *full {
		st, err = store.OpenOrReset(cachePath, logger)
	} else {
		st, err = store.OpenOrCreate(cachePath, logger)
	}
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer st.Close()

	registry := extract.NewRegistry()

	opts := indexer.Options{
		Root:           cwd,
		FollowSymlinks: cfg.Indexing.FollowSymlinks,
		Workers:        cfg.Indexing.Workers,
		Store:          st,
	}

	logger.Info("indexing.starting", "project_id", cfg.ProjectID, "root", cwd)
	result, err := indexer.Run(ctx, opts, registry, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if metrics != nil {
		metrics.IndexDuration.Observe(result.Elapsed.Seconds())
		metrics.IndexFiles.Add(float64(result.FilesIndexed))
		metrics.IndexCacheHits.Add(float64(result.CacheHits))
		metrics.GraphNodeCount.Set(float64(result.Graph.NodeCount()))
		metrics.GraphEdgeCount.Set(float64(result.Graph.EdgeCount()))
	}

	if globals.JSON {
		_ = outputIndexResultJSON(cfg.ProjectID, result)
		return
	}
	printIndexResult(cfg.ProjectID, result)
}

type indexResultJSON struct {
	ProjectID      string `json:"projectId"`
	FilesIndexed   int    `json:"filesIndexed"`
	CacheHits      int    `json:"cacheHits"`
	NodesExtracted int    `json:"nodesExtracted"`
	Nodes          int    `json:"nodes"`
	Edges          int    `json:"edges"`
	Errors         int    `json:"errors"`
	ElapsedMs      int64  `json:"elapsedMs"`
}

func outputIndexResultJSON(projectID string, result *indexer.Result) error {
	return output.JSON(indexResultJSON{
		ProjectID:      projectID,
		FilesIndexed:   result.FilesIndexed,
		CacheHits:      result.CacheHits,
		NodesExtracted: result.NodesExtracted,
		Nodes:          result.Graph.NodeCount(),
		Edges:          result.Graph.EdgeCount(),
		Errors:         len(result.Errors),
		ElapsedMs:      result.Elapsed.Milliseconds(),
	})
}

func printIndexResult(projectID string, result *indexer.Result) {
	fmt.Println()
	if result.FilesIndexed == 0 && result.CacheHits > 0 {
		ui.Header("Index Up to Date")
		fmt.Printf("%s %s\n", ui.Label("Project ID:"), projectID)
		_, _ = ui.Green.Println("Everything is already indexed. No changes detected.")
		fmt.Println()
		fmt.Println("To force a full re-index:")
		fmt.Println("  codegraph index --full")
		return
	}

	ui.Header("Indexing Complete")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), projectID)
	fmt.Printf("Files Indexed: %s\n", ui.CountText(result.FilesIndexed))
	fmt.Printf("Cache Hits: %s\n", ui.CountText(result.CacheHits))
	fmt.Printf("Nodes Extracted: %s\n", ui.CountText(result.NodesExtracted))
	fmt.Printf("Graph Nodes: %s\n", ui.CountText(result.Graph.NodeCount()))
	fmt.Printf("Graph Edges: %s\n", ui.CountText(result.Graph.EdgeCount()))

	if len(result.Errors) > 0 {
		_, _ = ui.Yellow.Printf("Parse Errors: %d\n", len(result.Errors))
		for _, fe := range result.Errors {
			fmt.Printf("  %s: %s\n", ui.DimText(fe.Path), fe.Message)
		}
	}

	fmt.Println()
	_, _ = ui.Dim.Printf("Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))
}

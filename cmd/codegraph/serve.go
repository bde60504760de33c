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
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/rpcserver"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/internal/telemetry"
	"github.com/kraklabs/codegraph/internal/watch"
	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/extract"
)

// runServe starts a local HTTP server exposing the query RPC surface over
// JSON-RPC 2.0, backed by the repository's cached graph. It re-loads the
// graph from cache on start and keeps it current with an in-process
// watcher, so MCP tools and editor integrations see a live view.
func runServe(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "HTTP listen address (default: config server.addr)")
	telemetryAddr := fs.String("telemetry-addr", "", "Prometheus metrics listen address (empty to disable)")
	noWatch := fs.Bool("no-watch", false, "Do not watch the repository for changes while serving")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph serve [options]

Description:
  Start the HTTP query server. Every query-surface method (discover,
  impact, context, search, node.get) is served as JSON-RPC 2.0 over
  POST /.

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

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	configDir := config.Dir(cwd)
	dataDir := config.DataDir(cfg, configDir)
	cachePath := filepath.Join(dataDir, "cache.bolt")

	st, err := store.OpenOrCreate(cachePath, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer st.Close()

	graph, err := st.LoadGraph()
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	shared := codegraph.NewShared(graph)

	var metrics *telemetry.Metrics
	var reg prometheus.Gatherer
	if *telemetryAddr != "" {
		r := prometheus.NewRegistry()
		metrics = telemetry.New(r)
		reg = r
	}

	rpc := rpcserver.New(shared, logger, metrics)

	mux := http.NewServeMux()
	mux.Handle("/", rpc.HTTPHandler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var w *watch.Watcher
	if !*noWatch {
		registry := extract.NewRegistry()
		w, err = watch.New(watch.Options{
			Root:             cwd,
			DebounceInterval: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
			Registry:         registry,
			Store:            st,
		}, shared, logger)
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("watch.run.error", "err", err)
			}
		}()
	}

	if metrics != nil {
		go func() {
			tmux := http.NewServeMux()
			tmux.Handle("/metrics", telemetry.Handler(reg))
			tsrv := &http.Server{Addr: *telemetryAddr, Handler: tmux, ReadHeaderTimeout: 10 * time.Second}
			log.Printf("telemetry listening on http://%s/metrics", *telemetryAddr)
			if err := tsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("telemetry.http.error", "err", err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("shutting down codegraph server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("codegraph server listening on http://%s", listenAddr)
	log.Printf("project: %s", cfg.ProjectID)
	log.Printf("graph: %d nodes, %d edges", graph.NodeCount(), graph.EdgeCount())

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errors.FatalError(err, globals.JSON)
	}
}

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

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/mcp"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/pkg/codegraph"
)

// runMCP starts the MCP stdio server for agent integrations (Claude Desktop,
// editor extensions, etc). It loads the cached graph once at startup and
// serves get_logic_path/analyze_impact/find_path over JSON-RPC 2.0 on
// stdin/stdout until the process is interrupted or stdin is closed.
func runMCP(configPath string) {
	cwd, _ := os.Getwd()
	fmt.Fprintf(os.Stderr, "codegraph MCP server CWD: %s\n", cwd)
	fmt.Fprintf(os.Stderr, "config path arg: %q\n", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		errors.FatalError(err, false)
	}
	fmt.Fprintf(os.Stderr, "config loaded: project=%s\n", cfg.ProjectID)

	configDir := config.Dir(cwd)
	dataDir := config.DataDir(cfg, configDir)
	cachePath := filepath.Join(dataDir, "cache.bolt")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := store.OpenOrCreate(cachePath, logger)
	if err != nil {
		errors.FatalError(err, false)
	}

	graph, err := st.LoadGraph()
	if err != nil {
		errors.FatalError(err, false)
	}
	shared := codegraph.NewShared(graph)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		signal.Stop(sigCh)
		_ = st.Close()
		os.Exit(0)
	}()

	fmt.Fprintf(os.Stderr, "codegraph MCP server starting...\n")
	fmt.Fprintf(os.Stderr, "  project: %s\n", cfg.ProjectID)
	fmt.Fprintf(os.Stderr, "  graph: %d nodes, %d edges\n", graph.NodeCount(), graph.EdgeCount())

	server := mcp.New(shared, logger)
	if err := server.Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
		errors.FatalError(err, false)
	}
}

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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/internal/ui"
)

func runExport(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.StringP("output", "o", "", "Write the export to this file instead of stdout")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph export [options]

Description:
  Dump the indexed graph as JSON: { "version", "stats": { "nodeCount",
  "edgeCount" }, "nodes": [...] }. Each node carries its resolved
  centrality score alongside its vertex record.

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

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	configDir := config.Dir(cwd)
	dataDir := config.DataDir(cfg, configDir)
	cachePath := filepath.Join(dataDir, "cache.bolt")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	st, err := store.OpenOrCreate(cachePath, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer st.Close()

	graph, err := st.LoadGraph()
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			errors.FatalError(fmt.Errorf("create export file %s: %w", *out, err), globals.JSON)
		}
		defer f.Close()
		if err := graph.WriteJSON(f); err != nil {
			errors.FatalError(fmt.Errorf("write export: %w", err), globals.JSON)
		}
		if !globals.Quiet {
			ui.Success(fmt.Sprintf("Wrote %d nodes to %s", graph.NodeCount(), *out))
		}
		return
	}

	if err := graph.WriteJSON(w); err != nil {
		errors.FatalError(fmt.Errorf("write export: %w", err), globals.JSON)
	}
}

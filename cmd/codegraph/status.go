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
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/internal/ui"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// statusResult is the project status, shared by the human and JSON renderers.
type statusResult struct {
	ProjectID  string `json:"projectId"`
	CachePath  string `json:"cachePath"`
	HasData    bool   `json:"hasData"`
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	Files      int    `json:"files"`
	Functions  int    `json:"functions"`
	Types      int    `json:"types"`
}

func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: codegraph status [--json]\n\nShow the indexed project's cache statistics.\n")
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

	result := statusResult{ProjectID: cfg.ProjectID, CachePath: cachePath}

	if _, statErr := os.Stat(cachePath); statErr != nil {
		if globals.JSON {
			_ = output.JSON(result)
			return
		}
		printEmptyStatus(result)
		return
	}

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

	files, err := st.ListCachedFiles()
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	result.HasData = true
	result.Nodes = graph.NodeCount()
	result.Edges = graph.EdgeCount()
	result.Files = len(files)
	for _, v := range graph.Vertices() {
		switch v.Kind {
		case vertex.KindFunction, vertex.KindMethod, vertex.KindConstructor:
			result.Functions++
		case vertex.KindClass, vertex.KindInterface, vertex.KindStruct, vertex.KindEnum, vertex.KindTypeAlias:
			result.Types++
		}
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}
	printStatus(result)
}

func printEmptyStatus(result statusResult) {
	ui.Header("Project Status")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), result.ProjectID)
	ui.Warning("No indexed data found. Run 'codegraph index' to get started.")
}

func printStatus(result statusResult) {
	ui.Header("Project Status")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), result.ProjectID)
	fmt.Printf("%s %s\n", ui.Label("Cache:"), ui.DimText(result.CachePath))
	fmt.Println()
	ui.SubHeader("Graph:")
	fmt.Printf("  Nodes: %s\n", ui.CountText(result.Nodes))
	fmt.Printf("  Edges: %s\n", ui.CountText(result.Edges))
	fmt.Printf("  Files: %s\n", ui.CountText(result.Files))
	fmt.Printf("  Functions: %s\n", ui.CountText(result.Functions))
	fmt.Printf("  Types: %s\n", ui.CountText(result.Types))
}

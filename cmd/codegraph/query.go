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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/rpcserver"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// runQuery executes the 'query' CLI command, dispatching a single
// discover/impact/context/search/node.get call against the locally cached
// graph through the same JSON-RPC surface 'codegraph serve' exposes over
// HTTP and 'codegraph --mcp' exposes to agents.
//
// Examples:
//
//	codegraph query discover "pipeline"
//	codegraph query search NewPipeline --kind function
//	codegraph query impact pkg.NewPipeline --depth 3
//	codegraph query node pkg.NewPipeline
//	codegraph query context "refactor the indexer"
func runQuery(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Maximum results to return")
	depth := fs.Int("depth", 3, "Traversal depth for impact")
	kind := fs.String("kind", "", "Restrict search to a vertex kind (function, class, ...)")
	maxTokens := fs.Int("max-tokens", 8000, "Token budget for context")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph query <method> <args> [options]

Description:
  Run a single query against the indexed graph. <method> is one of:
    discover <text>     fuzzy-match vertices by name
    search   <text>      substring search, optionally filtered by --kind
    impact   <node>       upstream/downstream impact analysis
    node     <id>          fetch a single vertex by id or qualified name
    context  <task>       token-bounded context slice around a best match

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codegraph query discover "pipeline"
  codegraph query search NewPipeline --kind function
  codegraph query impact pkg.NewPipeline --depth 3
  codegraph query node pkg.NewPipeline
  codegraph query context "refactor the indexer" --json

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fs.Usage()
		errors.FatalError(fmt.Errorf("a query method is required"), globals.JSON)
	}

	method := fs.Arg(0)
	rest := fs.Args()[1:]

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

	if _, statErr := os.Stat(cachePath); os.IsNotExist(statErr) {
		errors.FatalError(fmt.Errorf("project %q not indexed yet: run 'codegraph index' first", cfg.ProjectID), globals.JSON)
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
	shared := codegraph.NewShared(graph)
	rpc := rpcserver.New(shared, logger, nil)

	var (
		rpcMethod string
		params    map[string]any
	)

	switch method {
	case "discover":
		if len(rest) == 0 {
			errors.FatalError(fmt.Errorf("discover requires a query string"), globals.JSON)
		}
		rpcMethod = "discover"
		params = map[string]any{"query": strings.Join(rest, " "), "limit": *limit}
	case "search":
		if len(rest) == 0 {
			errors.FatalError(fmt.Errorf("search requires a query string"), globals.JSON)
		}
		rpcMethod = "search"
		params = map[string]any{"query": strings.Join(rest, " "), "kind": *kind, "limit": *limit}
	case "impact":
		if len(rest) == 0 {
			errors.FatalError(fmt.Errorf("impact requires a node id or qualified name"), globals.JSON)
		}
		rpcMethod = "impact"
		params = map[string]any{"node": rest[0], "depth": *depth}
	case "node":
		if len(rest) == 0 {
			errors.FatalError(fmt.Errorf("node requires an id or qualified name"), globals.JSON)
		}
		rpcMethod = "node.get"
		params = map[string]any{"id": rest[0]}
	case "context":
		if len(rest) == 0 {
			errors.FatalError(fmt.Errorf("context requires a task description"), globals.JSON)
		}
		rpcMethod = "context"
		params = map[string]any{"task": strings.Join(rest, " "), "maxTokens": *maxTokens}
	default:
		fs.Usage()
		errors.FatalError(fmt.Errorf("unknown query method: %s", method), globals.JSON)
	}

	raw, err := json.Marshal(params)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	resp := rpc.Handle(context.Background(), rpcMethod, raw, 1)
	if resp.Error != nil {
		errors.FatalError(fmt.Errorf("%s", resp.Error.Message), globals.JSON)
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp.Result)
		return
	}

	printQueryResult(method, resp.Result)
}

// printQueryResult renders a query result as a tab-aligned table. It
// round-trips through JSON to normalize the rpcserver.response's `any`
// payload into plain maps/slices, since Handle returns pre-marshaled Go
// values rather than a typed result per method.
func printQueryResult(method string, result any) {
	encoded, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error formatting result: %v\n", err)
		return
	}

	switch method {
	case "discover", "search":
		var vertices []vertex.Vertex
		if err := json.Unmarshal(encoded, &vertices); err != nil {
			fmt.Fprintf(os.Stderr, "error formatting result: %v\n", err)
			return
		}
		printVertexTable(vertices)
	case "node":
		var v vertex.Vertex
		if err := json.Unmarshal(encoded, &v); err != nil {
			fmt.Fprintf(os.Stderr, "error formatting result: %v\n", err)
			return
		}
		printVertexTable([]vertex.Vertex{v})
	default:
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, encoded, "", "  "); err != nil {
			fmt.Fprintf(os.Stderr, "error formatting result: %v\n", err)
			return
		}
		fmt.Println(pretty.String())
	}
}

func printVertexTable(vertices []vertex.Vertex) {
	if len(vertices) == 0 {
		fmt.Println("No results")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tFILE\tLINE")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t----")
	for _, v := range vertices {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", formatQueryCell(v.QualifiedName), v.Kind, formatQueryCell(v.File), v.LineStart)
	}
	_ = w.Flush()
	fmt.Printf("\n(%d rows)\n", len(vertices))
}

// formatQueryCell truncates long cell values so tables stay readable in a
// terminal.
func formatQueryCell(s string) string {
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}

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

// Package main implements the codegraph CLI for indexing a repository's
// source into a call graph and querying it.
//
// Usage:
//
//	codegraph init                 Create .codegraph/project.yaml configuration
//	codegraph index                Index the current repository
//	codegraph watch                Index, then keep the graph updated as files change
//	codegraph status [--json]      Show project status
//	codegraph query <method>       Run one query-surface call
//	codegraph export                Dump the indexed graph as JSON
//	codegraph serve                Start the HTTP query server
//	codegraph --mcp                Start as an MCP agent-tool server (JSON-RPC over stdio)
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		mcpMode     = flag.Bool("mcp", false, "Start as an MCP agent-tool server (JSON-RPC over stdio)")
		configPath  = flag.StringP("config", "c", "", "Path to .codegraph/project.yaml (default: auto-discovered)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing at the first non-flag argument so subcommand flags like
	// "reset --yes" pass through instead of being rejected here.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `codegraph - directed call-graph indexer and query server

codegraph indexes a repository's source into a directed multigraph of
functions, types, and their call/reference relationships, then serves
that graph over a query RPC surface and a set of MCP agent tools.

Usage:
  codegraph <command> [options]

Commands:
  init      Create .codegraph/project.yaml configuration
  index     Index the current repository
  watch     Index, then keep the graph updated as files change
  status    Show indexed project status
  config    Show current configuration
  query     Run one query-surface call against the local cache
  export    Dump the indexed graph as JSON
  serve     Start the HTTP query server (JSON-RPC 2.0)
  reset     Delete the local cache (destructive!)

Global Options:
  --json            Output in JSON format (for applicable commands)
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output (progress, info messages)
  --mcp             Start as an MCP agent-tool server (JSON-RPC over stdio)
  -c, --config      Path to .codegraph/project.yaml
  -V, --version     Show version and exit

Examples:
  codegraph init
  codegraph index
  codegraph watch
  codegraph status --json
  codegraph query discover --query "parseConfig"
  codegraph export -o graph.json
  codegraph serve --addr 127.0.0.1:8991
  codegraph --mcp

Data Storage:
  The indexed graph is cached in an embedded bbolt database under the
  configured data directory (default: .codegraph/cache.bolt).

For detailed command help: codegraph <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("codegraph version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintln(os.Stderr, "Error: cannot use --quiet and --verbose together")
		os.Exit(1)
	}

	// JSON mode auto-enables quiet to keep progress bars out of machine output.
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	if *mcpMode {
		runMCP(*configPath)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, *configPath, globals)
	case "index":
		runIndex(cmdArgs, *configPath, globals)
	case "watch":
		runWatch(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "config":
		runConfigCmd(cmdArgs, *configPath, globals)
	case "query":
		runQuery(cmdArgs, *configPath, globals)
	case "export":
		runExport(cmdArgs, *configPath, globals)
	case "serve":
		runServe(cmdArgs, *configPath, globals)
	case "reset":
		runReset(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

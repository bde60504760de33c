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
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/ui"
)

type initFlags struct {
	force      bool
	projectID  string
	workers    int
	debounceMs int
	serverAddr string
}

func runInit(args []string, _ string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	f := initFlags{}
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.StringVar(&f.projectID, "project-id", "", "Project identifier (default: directory name)")
	fs.IntVar(&f.workers, "workers", 4, "Parse worker count")
	fs.IntVar(&f.debounceMs, "debounce-ms", 1000, "Watcher debounce window in milliseconds")
	fs.StringVar(&f.serverAddr, "addr", "127.0.0.1:8991", "Default listen address for 'codegraph serve'")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph init [options]

Description:
  Create a .codegraph/project.yaml configuration file for the current
  repository.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codegraph init
  codegraph init --project-id my-service --workers 8

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	configPath := config.Path(cwd)
	if _, err := os.Stat(configPath); err == nil && !f.force {
		errors.FatalError(fmt.Errorf("%s already exists; use --force to overwrite", configPath), globals.JSON)
	}

	projectID := f.projectID
	if projectID == "" {
		projectID = filepath.Base(cwd)
	}

	cfg := config.Default(projectID)
	cfg.Indexing.Workers = f.workers
	cfg.Watch.DebounceMs = f.debounceMs
	cfg.Server.Addr = f.serverAddr

	if err := config.Save(cfg, configPath); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	ui.Successf("Created %s", configPath)
	addToGitignore(cwd)

	fmt.Println()
	ui.SubHeader("Next steps:")
	fmt.Printf("  1. Run '%s' to index your repository\n", ui.Cyan.Sprint("codegraph index"))
	fmt.Printf("  2. Run '%s' to verify indexing\n", ui.Cyan.Sprint("codegraph status"))
	fmt.Printf("  3. Run '%s' to keep the graph updated as you edit\n", ui.Cyan.Sprint("codegraph watch"))
}

func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // path built from repo dir
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".codegraph/" || line == ".codegraph" || line == "/.codegraph/" || line == "/.codegraph" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // path built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# codegraph cache\n.codegraph/\n")
	fmt.Println("Added .codegraph/ to .gitignore")
}

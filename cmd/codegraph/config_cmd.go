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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/internal/ui"
)

func runConfigCmd(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: codegraph config [--json]\n\nShow the resolved .codegraph/project.yaml configuration.\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(cfg); err != nil {
			errors.FatalError(err, globals.JSON)
		}
		return
	}
	printConfigHuman(cfg)
}

func printConfigHuman(cfg *config.Config) {
	ui.Header("Configuration")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), cfg.ProjectID)
	fmt.Println()

	ui.SubHeader("Indexing:")
	fmt.Printf("  Workers: %d\n", cfg.Indexing.Workers)
	fmt.Printf("  Follow Symlinks: %v\n", cfg.Indexing.FollowSymlinks)
	if len(cfg.Indexing.Exclude) > 0 {
		fmt.Printf("  Exclude: %v\n", cfg.Indexing.Exclude)
	}
	if cfg.Indexing.DataDir != "" {
		fmt.Printf("  Data Dir: %s\n", ui.DimText(cfg.Indexing.DataDir))
	}

	fmt.Println()
	ui.SubHeader("Watch:")
	fmt.Printf("  Debounce: %dms\n", cfg.Watch.DebounceMs)

	fmt.Println()
	ui.SubHeader("Server:")
	fmt.Printf("  Addr: %s\n", cfg.Server.Addr)

	if cfg.Telemetry.Enabled {
		fmt.Println()
		ui.SubHeader("Telemetry:")
		fmt.Printf("  Addr: %s\n", cfg.Telemetry.Addr)
	}
}

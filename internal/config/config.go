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

// Package config loads and saves the .codegraph/project.yaml project
// configuration, with environment variable overrides applied on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/codegraph/internal/errors"
)

const (
	configDirName  = ".codegraph"
	configFileName = "project.yaml"
	configVersion  = "1"
)

// Config represents the .codegraph/project.yaml configuration file.
type Config struct {
	Version   string          `yaml:"version"`
	ProjectID string          `yaml:"project_id"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Watch     WatchConfig     `yaml:"watch"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// IndexingConfig controls the indexer's walk and cache behavior.
type IndexingConfig struct {
	Workers        int      `yaml:"workers"`         // parse worker count
	FollowSymlinks bool     `yaml:"follow_symlinks"` // resolve symlinked directories during the walk
	Exclude        []string `yaml:"exclude"`         // extra gitignore-style patterns; shown by `config`, not applied by the indexer walk
	DataDir        string   `yaml:"data_dir,omitempty"` // override for the bbolt cache location; defaults under ConfigDir
}

// WatchConfig controls the filesystem watcher's debouncing.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"` // per-path debounce window; default 1000
}

// ServerConfig controls the JSON-RPC query server and MCP stdio server.
type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address for 'codegraph serve'; default 127.0.0.1:8991
}

// TelemetryConfig controls the optional Prometheus metrics endpoint.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"` // default 127.0.0.1:9091
}

// Default returns a config with sensible defaults for local development.
func Default(projectID string) *Config {
	return &Config{
		Version:   configVersion,
		ProjectID: projectID,
		Indexing: IndexingConfig{
			Workers:        4,
			FollowSymlinks: false,
		},
		Watch: WatchConfig{
			DebounceMs: 1000,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8991",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9091",
		},
	}
}

// Load reads configuration from configPath, or auto-discovers
// .codegraph/project.yaml by walking up from the working directory when
// configPath is empty. Environment overrides are applied before return.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CODEGRAPH_CONFIG_PATH")
	}
	if configPath == "" {
		var err error
		configPath, err = findConfigFile()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // path comes from user config discovery
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}
	if cfg.Version != configVersion {
		return nil, fmt.Errorf("config %s has unsupported version %q (expected %q): %w", configPath, cfg.Version, configVersion, errors.ErrVersionMismatch)
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

// Save writes cfg to configPath as YAML, creating the parent directory if
// needed.
func Save(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", configPath, err)
	}
	return nil
}

// Path returns <dir>/.codegraph/project.yaml.
func Path(dir string) string {
	return filepath.Join(dir, configDirName, configFileName)
}

// Dir returns <dir>/.codegraph.
func Dir(dir string) string {
	return filepath.Join(dir, configDirName)
}

// DataDir resolves the effective on-disk cache directory for cfg, honoring
// CODEGRAPH_DATA_DIR, then indexing.data_dir (relative to configDir), then
// falling back to <configDir>/cache.bolt's parent.
func DataDir(cfg *Config, configDir string) string {
	if env := os.Getenv("CODEGRAPH_DATA_DIR"); env != "" {
		return env
	}
	if cfg.Indexing.DataDir != "" {
		if filepath.IsAbs(cfg.Indexing.DataDir) {
			return cfg.Indexing.DataDir
		}
		return filepath.Join(configDir, cfg.Indexing.DataDir)
	}
	return configDir
}

func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		candidate := Path(dir)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s/%s found in this or any parent directory: %w", configDirName, configFileName, errors.ErrNotFound)
}

func (c *Config) applyEnvOverrides() {
	if id := os.Getenv("CODEGRAPH_PROJECT_ID"); id != "" {
		c.ProjectID = id
	}
	if addr := os.Getenv("CODEGRAPH_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

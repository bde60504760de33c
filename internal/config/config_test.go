// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)

	cfg := Default("myproject")
	cfg.Indexing.Exclude = []string{"*.gen.go"}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "myproject", loaded.ProjectID)
	require.Equal(t, []string{"*.gen.go"}, loaded.Indexing.Exclude)
	require.Equal(t, 1000, loaded.Watch.DebounceMs)
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("version: \"99\"\nproject_id: x\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadWalksUpParentDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default("parent-discovered")
	require.NoError(t, Save(cfg, Path(root)))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { require.NoError(t, os.Chdir(wd)) }()
	require.NoError(t, os.Chdir(nested))

	loaded, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "parent-discovered", loaded.ProjectID)
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	require.NoError(t, Save(Default("fileproject"), path))

	t.Setenv("CODEGRAPH_PROJECT_ID", "envproject")
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "envproject", loaded.ProjectID)
}

func TestDataDirPrefersEnvThenConfigThenDefault(t *testing.T) {
	cfg := Default("p")
	configDir := "/repo/.codegraph"

	require.Equal(t, configDir, DataDir(cfg, configDir))

	cfg.Indexing.DataDir = "cache"
	require.Equal(t, filepath.Join(configDir, "cache"), DataDir(cfg, configDir))

	t.Setenv("CODEGRAPH_DATA_DIR", "/tmp/override")
	require.Equal(t, "/tmp/override", DataDir(cfg, configDir))
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/pkg/extract"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunIndexesSupportedFilesAndResolvesCalls(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc caller() {\n\tcallee()\n}\n\nfunc callee() {}\n")
	writeFile(t, root, "README.md", "not code")
	writeFile(t, root, "node_modules/pkg/index.js", "function shouldBeIgnored() {}\n")

	result, err := Run(context.Background(), Options{Root: root, Workers: 1}, extract.NewRegistry(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesIndexed)
	require.Equal(t, 0, result.CacheHits)
	require.Equal(t, 2, result.NodesExtracted)
	require.Empty(t, result.Errors)
	require.Equal(t, 2, result.Graph.NodeCount())
	require.Equal(t, 1, result.Graph.EdgeCount())
}

func TestRunUsesCacheOnSecondPass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc f() {}\n")

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	st, err := store.OpenOrCreate(dbPath, nil)
	require.NoError(t, err)
	defer st.Close()

	opts := Options{Root: root, Workers: 1, Store: st}
	first, err := Run(context.Background(), opts, extract.NewRegistry(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, first.FilesIndexed)
	require.Equal(t, 0, first.CacheHits)

	second, err := Run(context.Background(), opts, extract.NewRegistry(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, second.FilesIndexed)
	require.Equal(t, 1, second.CacheHits)
	require.Equal(t, 1, second.Graph.NodeCount())
}

func TestRunReconcilesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "main.go", "package main\n\nfunc f() {}\n")

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	st, err := store.OpenOrCreate(dbPath, nil)
	require.NoError(t, err)
	defer st.Close()

	opts := Options{Root: root, Workers: 1, Store: st}
	_, err = Run(context.Background(), opts, extract.NewRegistry(), nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	result, err := Run(context.Background(), opts, extract.NewRegistry(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, result.Graph.NodeCount())

	cached, err := st.ListCachedFiles()
	require.NoError(t, err)
	require.Empty(t, cached)
}

func TestRunRecordsParseErrorsWithoutAborting(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.go", "package main\n\nfunc f() {}\n")
	// An empty .go file trips extract's ErrEmptyFile without aborting the walk.
	require.NoError(t, os.WriteFile(filepath.Join(root, "empty.go"), nil, 0o644))

	result, err := Run(context.Background(), Options{Root: root, Workers: 1}, extract.NewRegistry(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesIndexed)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Path, "empty.go")
}

func TestRunRespectsContextCancellation(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, root, fmt.Sprintf("pkg/%c.go", 'a'+i), "package main\n\nfunc f() {}\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, Options{Root: root, Workers: 1}, extract.NewRegistry(), nil)
	require.NoError(t, err)
	require.LessOrEqual(t, result.FilesIndexed, 5)
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultExcludesMatchCommonDirectories(t *testing.T) {
	root := t.TempDir()
	m := New(root)

	require.True(t, m.Match("node_modules", true))
	require.True(t, m.Match("node_modules/pkg/index.js", false))
	require.True(t, m.Match(".git", true))
	require.False(t, m.Match("src/main.go", false))
}

func TestGitignoreFileIsRespected(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n/generated/\n"), 0o644))

	m := New(root)
	require.True(t, m.Match("debug.log", false))
	require.True(t, m.Match("generated", true))
	require.False(t, m.Match("src/debug.log.go", false))
}

func TestNegationUnignoresLaterMatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n!keep.log\n"), 0o644))

	m := New(root)
	require.True(t, m.Match("debug.log", false))
	require.False(t, m.Match("keep.log", false))
}

func TestShouldSkipHidden(t *testing.T) {
	require.True(t, ShouldSkipHidden(".env"))
	require.True(t, ShouldSkipHidden(".hidden-dir"))
	require.False(t, ShouldSkipHidden("."))
	require.False(t, ShouldSkipHidden(".."))
	require.False(t, ShouldSkipHidden("visible.go"))
}

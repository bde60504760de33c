// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/extract"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func startWatcher(t *testing.T, root string, onChange func(Change)) (*Watcher, *codegraph.SharedGraph) {
	t.Helper()
	shared := codegraph.NewShared(codegraph.New())
	w, err := New(Options{
		Root:             root,
		DebounceInterval: 30 * time.Millisecond,
		Registry:         extract.NewRegistry(),
		OnChange:         onChange,
	}, shared, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	go w.Run(ctx)
	return w, shared
}

func waitForChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher change")
		return Change{}
	}
}

func TestWatcherAppliesCreatedFile(t *testing.T) {
	root := t.TempDir()
	changes := make(chan Change, 8)
	_, shared := startWatcher(t, root, func(c Change) { changes <- c })

	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc f() {}\n"), 0o644))

	c := waitForChange(t, changes)
	require.Equal(t, Created, c.Kind)

	var count int
	shared.WithRead(func(g *codegraph.Graph) { count = g.NodeCount() })
	require.Equal(t, 1, count)
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc f() {}\n"), 0o644))

	changes := make(chan Change, 8)
	_, _ = startWatcher(t, root, func(c Change) { changes <- c })

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc f() {}\n// edit\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	waitForChange(t, changes)
	select {
	case extra := <-changes:
		t.Fatalf("expected writes to coalesce into one applied change, got extra: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherAppliesDeletion(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc f() {}\n"), 0o644))

	changes := make(chan Change, 8)
	_, shared := startWatcher(t, root, func(c Change) { changes <- c })

	require.NoError(t, os.Remove(path))
	c := waitForChange(t, changes)
	require.Equal(t, Deleted, c.Kind)

	var count int
	shared.WithRead(func(g *codegraph.Graph) { count = g.NodeCount() })
	require.Equal(t, 0, count)
}

// TestReplaceFileVerticesMatchesColdBuildAmbiguity reproduces the scenario
// where two distinct-FQN symbols share a short name ("helper") in unrelated
// directories and a caller in a third, unrelated directory references the
// short name. A cold build cannot disambiguate and produces no edge; an
// incremental update to the caller's file must not fabricate one either.
func TestReplaceFileVerticesMatchesColdBuildAmbiguity(t *testing.T) {
	g := codegraph.New()

	aHelper := vertex.New("helper", "pkg/a.helper", vertex.KindFunction, "pkg/a/a.go")
	bHelper := vertex.New("helper", "pkg/b.helper", vertex.KindFunction, "pkg/b/b.go")
	caller := vertex.New("caller", "pkg/c.caller", vertex.KindFunction, "pkg/c/c.go")
	caller.References = []string{"helper"}

	g.AddNode(aHelper)
	g.AddNode(bHelper)
	g.AddNode(caller)
	replaceFileVertices(g, caller.File, []vertex.Vertex{caller})

	require.Empty(t, g.GetCallees(caller.ID), "ambiguous short name must not fabricate an edge")

	// Editing the caller's file again (e.g. a no-op re-save) must not change
	// that outcome, since the ambiguity is unchanged.
	replaceFileVertices(g, caller.File, []vertex.Vertex{caller})
	require.Empty(t, g.GetCallees(caller.ID))
}

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

// Package watch subscribes to recursive filesystem events under an
// indexed root and applies debounced, incremental updates to a shared
// graph.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/codegraph/internal/ignore"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/extract"
	"github.com/kraklabs/codegraph/pkg/graphbuild"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// ChangeKind classifies a coalesced filesystem change.
type ChangeKind int

const (
	Created ChangeKind = iota
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is surfaced to subscribers after a debounced update has been
// applied to the shared graph.
type Change struct {
	Path string
	Kind ChangeKind
}

// Options configures a Watcher.
type Options struct {
	Root             string
	DebounceInterval time.Duration // default 1000ms
	Registry         *extract.Registry
	Store            *store.Store // optional persistent cache to keep in sync
	OnChange         func(Change) // optional, called without holding the graph lock
}

// Watcher applies fsnotify events to a codegraph.SharedGraph, debounced
// per path.
type Watcher struct {
	opts    Options
	shared  *codegraph.SharedGraph
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	matcher *ignore.Matcher
	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]ChangeKind
}

// New creates a Watcher over shared, recursively registering every
// non-ignored directory under opts.Root with fsnotify.
func New(opts Options, shared *codegraph.SharedGraph, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = 1000 * time.Millisecond
	}
	if opts.Registry == nil {
		opts.Registry = extract.NewRegistry()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		shared:  shared,
		fsw:     fsw,
		logger:  logger,
		matcher: ignore.New(opts.Root),
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]ChangeKind),
	}

	if err := w.addTree(opts.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignore.ShouldSkipHidden(d.Name()) {
			return filepath.SkipDir
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && rel != "." {
			w.matcher.LoadDir(path)
			if w.matcher.Match(rel, true) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("watch.add_dir.error", "path", path, "err", err)
		}
		return nil
	})
}

// Close stops the underlying fsnotify watcher and cancels pending timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

// Run processes fsnotify events until ctx is cancelled or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.fsnotify.error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watch.add_new_dir.error", "path", event.Name, "err", err)
			}
		}
		return
	}

	if !w.opts.Registry.IsSupported(event.Name) {
		return
	}

	var kind ChangeKind
	switch {
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		kind = Deleted
	case event.Op&fsnotify.Create != 0:
		kind = Created
	case event.Op&fsnotify.Write != 0:
		kind = Modified
	default:
		return
	}

	w.debounce(event.Name, kind)
}

// debounce records kind as the latest state for path and (re)starts its
// debounce timer. The last coalesced state wins, matching the ordering
// rule that operations on a given file are serialized by the debouncer.
func (w *Watcher) debounce(path string, kind ChangeKind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = kind
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.DebounceInterval, func() {
		w.flush(path)
	})
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	kind, ok := w.pending[path]
	delete(w.pending, path)
	delete(w.timers, path)
	w.mu.Unlock()
	if !ok {
		return
	}

	switch kind {
	case Deleted:
		w.applyDeletion(path)
	default:
		w.applyUpsert(path, kind)
	}
}

func (w *Watcher) applyUpsert(path string, kind ChangeKind) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.applyDeletion(path)
			return
		}
		w.logger.Warn("watch.read_file.error", "path", path, "err", err)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn("watch.stat_file.error", "path", path, "err", err)
		return
	}

	drafts, err := w.opts.Registry.Extract(path, content)
	if err != nil {
		w.logger.Warn("watch.extract.error", "path", path, "err", err)
		return
	}
	newVertices := extract.ToVertices(drafts, path)

	if w.opts.Store != nil {
		if err := w.opts.Store.UpdateFile(path, newVertices, info.ModTime().Unix()); err != nil {
			w.logger.Warn("watch.store.update_file.error", "path", path, "err", err)
		}
	}

	w.shared.WithWrite(func(g *codegraph.Graph) {
		replaceFileVertices(g, path, newVertices)
	})

	w.logger.Info("watch.applied", "path", path, "kind", kind.String(), "vertices", len(newVertices))
	w.notify(Change{Path: path, Kind: kind})
}

func (w *Watcher) applyDeletion(path string) {
	if w.opts.Store != nil {
		if err := w.opts.Store.RemoveFile(path); err != nil {
			w.logger.Warn("watch.store.remove_file.error", "path", path, "err", err)
		}
	}

	w.shared.WithWrite(func(g *codegraph.Graph) {
		replaceFileVertices(g, path, nil)
	})

	w.logger.Info("watch.applied", "path", path, "kind", Deleted.String())
	w.notify(Change{Path: path, Kind: Deleted})
}

func (w *Watcher) notify(c Change) {
	if w.opts.OnChange != nil {
		w.opts.OnChange(c)
	}
}

// replaceFileVertices removes every existing vertex whose File equals
// path, inserts newVertices, and re-resolves the graph's entire edge set
// from scratch via graphbuild.ResolveAllEdges. A partial, locality-blind
// re-resolution can fabricate or miss edges that a cold build would not
// (e.g. two same-short-name symbols in different packages); rebuilding the
// symbol table from the current vertex set and re-running the same
// resolution algorithm the cold build uses is the only way to guarantee
// an incremental update's edge set matches spec §4.9.
func replaceFileVertices(g *codegraph.Graph, path string, newVertices []vertex.Vertex) {
	for _, v := range g.Vertices() {
		if v.File == path {
			g.RemoveNode(v.ID)
		}
	}

	for _, v := range newVertices {
		g.AddNode(v)
	}

	graphbuild.ResolveAllEdges(g)
}

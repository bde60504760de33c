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

// Package indexer walks a project tree, extracts vertices from every
// supported file, resolves them into a graph, and (when a cache is open)
// reconciles the on-disk cache with the files actually seen on this walk.
package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kraklabs/codegraph/internal/ignore"
	"github.com/kraklabs/codegraph/internal/store"
	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/extract"
	"github.com/kraklabs/codegraph/pkg/graphbuild"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// FileError records a parse failure for one file without aborting the walk.
type FileError struct {
	Path    string
	Message string
}

// Options configures one indexing run.
type Options struct {
	Root           string
	FollowSymlinks bool
	Workers        int // parse worker count; <=0 means 4, 1 runs sequentially (as does any run with fewer than 2*Workers files)
	Store          *store.Store
}

// Result summarizes a completed indexing run.
type Result struct {
	Graph          *codegraph.Graph
	FilesIndexed   int // freshly parsed, i.e. not served from cache
	CacheHits      int
	NodesExtracted int
	Elapsed        time.Duration
	Errors         []FileError
}

type parsedFile struct {
	path      string
	vertices  []vertex.Vertex
	fromCache bool
	err       error
}

// Run walks opts.Root, extracts every supported file, and returns the
// resolved graph plus run statistics. Parse failures are collected, not
// fatal. ctx cancellation is checked between files.
func Run(ctx context.Context, opts Options, registry *extract.Registry, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	paths, err := walkFiles(opts.Root, opts.FollowSymlinks, registry)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", opts.Root, err)
	}
	sort.Strings(paths)

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	parsed, errs := parseFiles(ctx, paths, opts.Store, registry, workers, logger)

	builder := graphbuild.New(logger)
	seen := make(map[string]bool, len(parsed))
	var filesIndexed, cacheHits, nodesExtracted int

	for _, pf := range parsed {
		seen[pf.path] = true
		builder.AddVertices(pf.vertices)
		nodesExtracted += len(pf.vertices)
		if pf.fromCache {
			cacheHits++
		} else {
			filesIndexed++
		}
	}

	graph := builder.Build()

	if opts.Store != nil {
		cached, err := opts.Store.ListCachedFiles()
		if err != nil {
			return nil, fmt.Errorf("list cached files: %w", err)
		}
		for _, path := range cached {
			if !seen[path] {
				if err := opts.Store.RemoveFile(path); err != nil {
					logger.Warn("indexer.cache.remove_file.error", "path", path, "err", err)
				}
			}
		}
	}

	logger.Info("indexer.run.complete",
		"root", opts.Root,
		"files_indexed", filesIndexed,
		"cache_hits", cacheHits,
		"nodes_extracted", nodesExtracted,
		"errors", len(errs),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Graph:          graph,
		FilesIndexed:   filesIndexed,
		CacheHits:      cacheHits,
		NodesExtracted: nodesExtracted,
		Elapsed:        time.Since(start),
		Errors:         errs,
	}, nil
}

func walkFiles(root string, followSymlinks bool, registry *extract.Registry) ([]string, error) {
	var paths []string
	matcher := ignore.New(root)

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // a stat/readdir error on one entry should not abort the whole walk
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		if ignore.ShouldSkipHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			matcher.LoadDir(path)
		}
		if matcher.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !registry.IsSupported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	}

	walkRoot := filepath.WalkDir
	if followSymlinks {
		walkRoot = walkDirFollowingSymlinks
	}
	if err := walkRoot(root, walkFn); err != nil {
		return nil, err
	}
	return paths, nil
}

// walkDirFollowingSymlinks behaves like filepath.WalkDir but resolves
// symlinked directories instead of skipping them.
func walkDirFollowingSymlinks(root string, fn fs.WalkDirFunc) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		resolved = root
	}
	return filepath.WalkDir(resolved, fn)
}

func parseFiles(ctx context.Context, paths []string, st *store.Store, registry *extract.Registry, workers int, logger *slog.Logger) ([]parsedFile, []FileError) {
	if len(paths) == 0 {
		return nil, nil
	}
	if workers <= 1 || len(paths) < 2*workers {
		return parseFilesSequential(ctx, paths, st, registry, logger)
	}

	jobs := make(chan string, len(paths))
	results := make(chan parsedFile, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- parseOneFile(path, st, registry)
			}
		}()
	}

	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var parsed []parsedFile
	var errs []FileError
	for r := range results {
		if r.err != nil {
			errs = append(errs, FileError{Path: r.path, Message: r.err.Error()})
			logger.Warn("indexer.parse.error", "path", r.path, "err", r.err)
			continue
		}
		parsed = append(parsed, r)
	}
	return parsed, errs
}

func parseFilesSequential(ctx context.Context, paths []string, st *store.Store, registry *extract.Registry, logger *slog.Logger) ([]parsedFile, []FileError) {
	var parsed []parsedFile
	var errs []FileError

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return parsed, errs
		default:
		}

		r := parseOneFile(path, st, registry)
		if r.err != nil {
			errs = append(errs, FileError{Path: path, Message: r.err.Error()})
			logger.Warn("indexer.parse.error", "path", path, "err", r.err)
			continue
		}
		parsed = append(parsed, r)
	}
	return parsed, errs
}

func parseOneFile(path string, st *store.Store, registry *extract.Registry) parsedFile {
	info, err := os.Stat(path)
	if err != nil {
		return parsedFile{path: path, err: err}
	}
	mtime := info.ModTime().Unix()

	if st != nil {
		cachedMtime, found, err := st.GetMtime(path)
		if err == nil && found && cachedMtime == mtime {
			if ids, err := st.GetFileNodes(path); err == nil {
				if vertices, err := st.GetVertices(ids); err == nil {
					return parsedFile{path: path, vertices: vertices, fromCache: true}
				}
			}
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{path: path, err: err}
	}

	// An empty __init__.py only marks a Python package: it is indexed as a
	// file with no vertices rather than reported as an empty-file error.
	var drafts []extract.ExtractedVertex
	if len(content) > 0 || filepath.Base(path) != "__init__.py" {
		drafts, err = registry.Extract(path, content)
		if err != nil {
			return parsedFile{path: path, err: err}
		}
	}

	vertices := extract.ToVertices(drafts, path)

	if st != nil {
		if err := st.UpdateFile(path, vertices, mtime); err != nil {
			return parsedFile{path: path, err: err}
		}
	}

	return parsedFile{path: path, vertices: vertices}
}

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

// Package ignore implements the subset of gitignore pattern matching the
// indexer and watcher need: per-directory .gitignore files, a built-in
// default exclude set, and hidden file/directory skipping. There is no
// third-party gitignore matcher in the dependency set this project draws
// from, so this is a small hand-rolled matcher rather than a vendored one.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExcludes mirrors the exclude list a source-aware indexer always
// applies regardless of project-specific .gitignore content: VCS metadata,
// dependency directories, build output, editor state, and this tool's own
// cache directory.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"vendor",
	"dist",
	"build",
	"bin",
	"out",
	".idea",
	".vscode",
	".next",
	".nuxt",
	".codegraph",
	".cache",
	"coverage",
	"tmp",
	".tmp",
}

// pattern is one compiled gitignore-style rule.
type pattern struct {
	raw      string
	negate   bool
	dirOnly  bool
	anchored bool // pattern contains a "/" before the final segment, anchoring it to its base directory
	base     string
	glob     string
}

// Matcher answers whether a path should be skipped, accumulating patterns
// from a root .gitignore plus any .gitignore found while walking deeper
// directories.
type Matcher struct {
	root     string
	patterns []pattern
}

// New creates a Matcher rooted at root, pre-loaded with DefaultExcludes and
// the root-level .gitignore (if present).
func New(root string) *Matcher {
	m := &Matcher{root: root}
	for _, e := range DefaultExcludes {
		m.patterns = append(m.patterns, compilePattern(e, root))
	}
	m.loadGitignore(root)
	m.loadExcludeFile(filepath.Join(root, ".git", "info", "exclude"))
	return m
}

// LoadDir merges in a .gitignore found in dir (a descendant of root
// encountered during a directory walk). Call this once per directory
// before testing paths inside it.
func (m *Matcher) LoadDir(dir string) {
	m.loadGitignore(dir)
}

func (m *Matcher) loadGitignore(dir string) {
	m.loadExcludeFile(filepath.Join(dir, ".gitignore"))
}

func (m *Matcher) loadExcludeFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	base := filepath.Dir(path)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, compilePattern(line, base))
	}
}

func compilePattern(raw, base string) pattern {
	p := pattern{raw: raw, base: filepath.ToSlash(base)}
	glob := raw

	if strings.HasPrefix(glob, "!") {
		p.negate = true
		glob = glob[1:]
	}
	if strings.HasSuffix(glob, "/") {
		p.dirOnly = true
		glob = strings.TrimSuffix(glob, "/")
	}
	if strings.HasPrefix(glob, "/") {
		p.anchored = true
		glob = strings.TrimPrefix(glob, "/")
	} else if strings.Contains(glob, "/") {
		p.anchored = true
	}
	glob = strings.TrimSuffix(glob, "/**")
	p.glob = glob
	return p
}

// Match reports whether the path at relPath (slash-separated, relative to
// the matcher's root) should be ignored. isDir indicates whether relPath
// names a directory, since some patterns only match directories.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matchesPattern(p, relPath) {
			ignored = !p.negate
		}
	}
	return ignored
}

func matchesPattern(p pattern, relPath string) bool {
	name := relPath
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		name = relPath[idx+1:]
	}

	if !p.anchored {
		if ok, _ := filepath.Match(p.glob, name); ok {
			return true
		}
		for _, segment := range strings.Split(relPath, "/") {
			if ok, _ := filepath.Match(p.glob, segment); ok {
				return true
			}
		}
		return false
	}

	ok, _ := filepath.Match(p.glob, relPath)
	if ok {
		return true
	}
	return strings.HasPrefix(relPath, p.glob+"/")
}

// ShouldSkipHidden reports whether name is a hidden entry (dotfile or
// dotdir) other than the current/parent directory markers.
func ShouldSkipHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

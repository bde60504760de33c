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

// Package symtab maps qualified and short names to vertex identities so the
// graph builder can turn a reference name into a Calls edge. Resolution is
// intentionally best-effort: an ambiguous short name never fabricates an
// edge.
package symtab

import (
	"path/filepath"
	"strings"
)

// SymbolTable maps fully qualified and short names to vertex identities,
// and remembers which qualified names each file defines for directory
// locality resolution.
type SymbolTable struct {
	byQualified map[string]string   // qualified name -> id
	byShort     map[string][]string // short name -> ids (may have duplicates across files)
	fileOf      map[string]string   // qualified name -> defining file
	exportsByFile map[string][]string
}

// New creates an empty symbol table.
func New() *SymbolTable {
	return &SymbolTable{
		byQualified:   make(map[string]string),
		byShort:       make(map[string][]string),
		fileOf:        make(map[string]string),
		exportsByFile: make(map[string][]string),
	}
}

// Insert records that qualifiedName (defined in file) resolves to id, and
// tracks it both under its qualified name and its short name (the trailing
// component after a '.' or ':' separator, or the whole name if it has none).
func (t *SymbolTable) Insert(qualifiedName, id, file string) {
	t.byQualified[qualifiedName] = id
	t.fileOf[qualifiedName] = file
	t.exportsByFile[file] = append(t.exportsByFile[file], qualifiedName)

	short := shortName(qualifiedName)
	t.byShort[short] = append(t.byShort[short], id)
}

// Resolve performs an exact qualified-name lookup.
func (t *SymbolTable) Resolve(qualifiedName string) (string, bool) {
	id, ok := t.byQualified[qualifiedName]
	return id, ok
}

// ShortNameCandidates returns every vertex id registered under the given
// short name (the trailing component of a qualified name). Used by
// callers that need to detect ambiguity themselves, e.g. the uncertain-edge
// heuristics pass flagging dynamic dispatch.
func (t *SymbolTable) ShortNameCandidates(name string) []string {
	return t.byShort[name]
}

// FileExports returns the qualified names defined in file.
func (t *SymbolTable) FileExports(file string) []string {
	return t.exportsByFile[file]
}

// ResolveWithContext resolves name against the table, preferring locality
// when multiple candidates tie on short name:
//
//  1. Exact qualified-name match.
//  2. Suffix match: name equals the tail of a qualified name after a '.' or
//     ':' separator. A single candidate resolves outright; multiple
//     candidates resolve only if exactly one is defined in callerFile's
//     parent directory, otherwise the match is ambiguous and no edge is
//     produced.
func (t *SymbolTable) ResolveWithContext(name, callerFile string) (string, bool) {
	if id, ok := t.byQualified[name]; ok {
		return id, true
	}

	candidates := t.suffixCandidates(name)
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	default:
		return t.resolveByLocality(candidates, callerFile)
	}
}

// suffixCandidates finds every qualified name whose tail (after a '.' or
// ':' separator) equals name exactly.
func (t *SymbolTable) suffixCandidates(name string) []string {
	var ids []string
	for qualified, id := range t.byQualified {
		if suffixMatches(qualified, name) {
			ids = append(ids, id)
		}
	}
	return ids
}

func suffixMatches(qualified, name string) bool {
	if qualified == name {
		return true
	}
	if !strings.HasSuffix(qualified, name) {
		return false
	}
	prefixLen := len(qualified) - len(name)
	if prefixLen == 0 {
		return true
	}
	sep := qualified[prefixLen-1]
	return sep == '.' || sep == ':'
}

func (t *SymbolTable) resolveByLocality(ids []string, callerFile string) (string, bool) {
	callerDir := filepath.Dir(callerFile)

	idToFile := make(map[string]string, len(ids))
	for qualified, file := range t.fileOf {
		id, ok := t.byQualified[qualified]
		if !ok {
			continue
		}
		idToFile[id] = file
	}

	var local []string
	for _, id := range ids {
		if file, ok := idToFile[id]; ok && filepath.Dir(file) == callerDir {
			local = append(local, id)
		}
	}
	if len(local) == 1 {
		return local[0], true
	}
	return "", false
}

// shortName returns the final component of a qualified name, split on '.'
// or ':'.
func shortName(qualifiedName string) string {
	idx := strings.LastIndexAny(qualifiedName, ".:")
	if idx < 0 {
		return qualifiedName
	}
	return qualifiedName[idx+1:]
}

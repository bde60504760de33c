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

// Package graphbuild assembles a codegraph.Graph from extracted vertices in
// two passes: ingest, then resolve references into edges.
package graphbuild

import (
	"log/slog"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/symtab"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// Builder performs the two-pass ingest/resolve assembly described in
// spec §4.4.
type Builder struct {
	graph  *codegraph.Graph
	table  *symtab.SymbolTable
	logger *slog.Logger
}

// New creates a Builder with an empty graph and symbol table.
func New(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		graph:  codegraph.New(),
		table:  symtab.New(),
		logger: logger,
	}
}

// AddVertices ingests a batch of vertices: each is inserted into the graph
// and registered in the symbol table under its qualified name.
func (b *Builder) AddVertices(vertices []vertex.Vertex) {
	for _, v := range vertices {
		if _, inserted := b.graph.AddNode(v); !inserted {
			b.logger.Warn("vertex identity collision, rejecting second insertion",
				"id", v.ID, "file", v.File, "qualified_name", v.QualifiedName)
			continue
		}
		b.table.Insert(v.QualifiedName, v.ID, v.File)
	}
}

// ResolveEdges runs the second pass: for every vertex, resolve each
// reference name against the symbol table using the vertex's own file for
// locality, and add a Calls edge when resolution succeeds and the target
// differs from the source.
func (b *Builder) ResolveEdges() {
	resolveEdges(b.graph, b.table)
}

// ResolveAllEdges rebuilds a fresh symbol table from every vertex currently
// in g, clears g's existing Calls edges, and re-resolves every reference
// against the rebuilt table using the exact same algorithm a cold build
// uses (symtab.ResolveWithContext: exact, then suffix, then directory
// locality, ambiguous -> no edge). Incremental callers (the watcher) call
// this after mutating vertices so an edit's resulting edge set is always
// identical to what a cold rebuild from the current on-disk state would
// produce.
func ResolveAllEdges(g *codegraph.Graph) {
	vertices := g.Vertices()

	table := symtab.New()
	for _, v := range vertices {
		table.Insert(v.QualifiedName, v.ID, v.File)
	}

	g.ClearEdges()
	resolveEdges(g, table)
}

func resolveEdges(g *codegraph.Graph, table *symtab.SymbolTable) {
	type pending struct{ from, to string }
	var edges []pending

	for _, v := range g.Vertices() {
		for _, ref := range v.References {
			toID, ok := table.ResolveWithContext(ref, v.File)
			if !ok || toID == v.ID {
				continue
			}
			edges = append(edges, pending{from: v.ID, to: toID})
		}
	}

	for _, e := range edges {
		g.AddEdge(e.from, e.to, vertex.EdgeCalls)
	}

	// Centrality depends on the edge set, so it is recomputed on every resolve.
	g.SetCentrality(codegraph.ComputeCentrality(g, codegraph.DefaultRankOptions()))
}

// Build runs AddVertices is assumed already called, resolves edges, and
// returns the finished graph.
func (b *Builder) Build() *codegraph.Graph {
	b.ResolveEdges()
	return b.graph
}

// BuildWithoutResolve returns the graph with vertices ingested but no
// edges resolved, for callers that will resolve at a later point (the
// incremental watcher path).
func (b *Builder) BuildWithoutResolve() *codegraph.Graph {
	return b.graph
}

// SymbolTable exposes the builder's symbol table, e.g. for incremental
// re-resolution that needs to look up names without a full rebuild.
func (b *Builder) SymbolTable() *symtab.SymbolTable {
	return b.table
}

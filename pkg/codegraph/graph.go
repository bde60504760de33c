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

// Package codegraph implements the in-memory directed multigraph over code
// vertices. It is the single shared mutable resource of the system; callers
// needing concurrent access should wrap a *Graph in a SharedGraph.
package codegraph

import (
	"strings"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

// Graph is a directed multigraph of code vertices. Distinct reference
// occurrences may yield parallel edges between the same pair of nodes;
// neighbor accessors de-duplicate by node when that matters to callers.
type Graph struct {
	nodes       []vertex.Vertex
	indexByID   map[string]int
	byQualified map[string]int
	byShortName map[string][]int

	outEdges map[string][]vertex.Edge // from id -> edges
	inEdges  map[string][]vertex.Edge // to id -> edges

	centrality map[string]float64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		indexByID:   make(map[string]int),
		byQualified: make(map[string]int),
		byShortName: make(map[string][]int),
		outEdges:    make(map[string][]vertex.Edge),
		inEdges:     make(map[string][]vertex.Edge),
		centrality:  make(map[string]float64),
	}
}

// AddNode inserts v into the graph. If a vertex with the same ID already
// exists, the insertion is rejected and the second return value is false —
// callers (the builder) are expected to log this as a collision rather than
// silently overwrite, per the identity policy in spec §9.
func (g *Graph) AddNode(v vertex.Vertex) (string, bool) {
	if _, exists := g.indexByID[v.ID]; exists {
		return v.ID, false
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, v)
	g.indexByID[v.ID] = idx
	g.byQualified[v.QualifiedName] = idx
	g.byShortName[v.Name] = append(g.byShortName[v.Name], idx)
	return v.ID, true
}

// AddEdge adds a directed edge of the given kind between two existing
// vertex IDs. Self-edges (from == to) are dropped. Edges whose endpoints
// don't exist in the graph are dropped to preserve the endpoint-integrity
// invariant.
func (g *Graph) AddEdge(from, to string, kind vertex.EdgeKind) {
	if from == to {
		return
	}
	if _, ok := g.indexByID[from]; !ok {
		return
	}
	if _, ok := g.indexByID[to]; !ok {
		return
	}
	e := vertex.Edge{From: from, To: to, Kind: kind}
	g.outEdges[from] = append(g.outEdges[from], e)
	g.inEdges[to] = append(g.inEdges[to], e)
}

// RemoveNode deletes the vertex with the given id along with every edge
// incident to it. It is used by the incremental watcher path when a file's
// prior vertices are replaced.
func (g *Graph) RemoveNode(id string) {
	idx, ok := g.indexByID[id]
	if !ok {
		return
	}
	v := g.nodes[idx]

	delete(g.indexByID, id)
	delete(g.byQualified, v.QualifiedName)
	g.byShortName[v.Name] = removeIndex(g.byShortName[v.Name], idx)
	delete(g.centrality, id)

	for _, e := range g.outEdges[id] {
		g.inEdges[e.To] = removeEdge(g.inEdges[e.To], id, e.To)
	}
	for _, e := range g.inEdges[id] {
		g.outEdges[e.From] = removeEdge(g.outEdges[e.From], e.From, id)
	}
	delete(g.outEdges, id)
	delete(g.inEdges, id)

	g.nodes[idx] = vertex.Vertex{}
}

// ClearEdges removes every edge in the graph, leaving vertices untouched.
// Used by callers that re-resolve the full edge set from scratch (the
// incremental watcher path, to keep its edge set identical to a cold
// build's).
func (g *Graph) ClearEdges() {
	g.outEdges = make(map[string][]vertex.Edge)
	g.inEdges = make(map[string][]vertex.Edge)
}

func removeIndex(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func removeEdge(edges []vertex.Edge, from, to string) []vertex.Edge {
	out := edges[:0]
	for _, e := range edges {
		if e.From == from && e.To == to {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Get returns a snapshot copy of the vertex with the given id.
func (g *Graph) Get(id string) (vertex.Vertex, bool) {
	idx, ok := g.indexByID[id]
	if !ok || g.nodes[idx].ID == "" {
		return vertex.Vertex{}, false
	}
	return g.nodes[idx], true
}

// GetIndex resolves either a vertex id or a qualified name to its id.
func (g *Graph) GetIndex(idOrQualified string) (string, bool) {
	if _, ok := g.indexByID[idOrQualified]; ok {
		return idOrQualified, true
	}
	if idx, ok := g.byQualified[idOrQualified]; ok {
		return g.nodes[idx].ID, true
	}
	return "", false
}

// FindByName returns snapshot copies of every live vertex with the given
// short name.
func (g *Graph) FindByName(name string) []vertex.Vertex {
	var out []vertex.Vertex
	for _, idx := range g.byShortName[name] {
		if g.nodes[idx].ID != "" {
			out = append(out, g.nodes[idx])
		}
	}
	return out
}

// Vertices returns snapshot copies of every live vertex in the graph.
func (g *Graph) Vertices() []vertex.Vertex {
	out := make([]vertex.Vertex, 0, len(g.nodes))
	for _, v := range g.nodes {
		if v.ID != "" {
			out = append(out, v)
		}
	}
	return out
}

// IDs returns the id of every live vertex in the graph.
func (g *Graph) IDs() []string {
	out := make([]string, 0, len(g.indexByID))
	for id := range g.indexByID {
		out = append(out, id)
	}
	return out
}

// NodeCount returns the number of live vertices.
func (g *Graph) NodeCount() int {
	return len(g.indexByID)
}

// EdgeCount returns the total number of edges, counting parallel edges
// separately.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.outEdges {
		n += len(edges)
	}
	return n
}

// GetCallers returns snapshot copies of every distinct vertex with an
// outbound Calls edge into id.
func (g *Graph) GetCallers(id string) []vertex.Vertex {
	return g.neighborsByKind(g.inEdges[id], func(e vertex.Edge) string { return e.From })
}

// GetCallees returns snapshot copies of every distinct vertex id reaches
// via an outbound Calls edge.
func (g *Graph) GetCallees(id string) []vertex.Vertex {
	return g.neighborsByKind(g.outEdges[id], func(e vertex.Edge) string { return e.To })
}

func (g *Graph) neighborsByKind(edges []vertex.Edge, pick func(vertex.Edge) string) []vertex.Vertex {
	seen := make(map[string]bool)
	var out []vertex.Vertex
	for _, e := range edges {
		if e.Kind != vertex.EdgeCalls {
			continue
		}
		id := pick(e)
		if seen[id] {
			continue
		}
		seen[id] = true
		if v, ok := g.Get(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// OutDegree returns the number of distinct Calls callees for id.
func (g *Graph) OutDegree(id string) int {
	return len(g.GetCallees(id))
}

// SetCentrality stores a centrality score map over node ids.
func (g *Graph) SetCentrality(scores map[string]float64) {
	g.centrality = scores
}

// Centrality returns the stored centrality score for id, or 0 if unknown.
func (g *Graph) Centrality(id string) float64 {
	return g.centrality[id]
}

// Search performs a case-insensitive substring match over name and
// qualified name.
func (g *Graph) Search(substring string) []vertex.Vertex {
	needle := strings.ToLower(substring)
	var out []vertex.Vertex
	for _, v := range g.nodes {
		if v.ID == "" {
			continue
		}
		if strings.Contains(strings.ToLower(v.Name), needle) ||
			strings.Contains(strings.ToLower(v.QualifiedName), needle) {
			out = append(out, v)
		}
	}
	return out
}

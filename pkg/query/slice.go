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

package query

import (
	"sort"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// EstimateTokens is the deterministic token estimator used to budget a
// context slice: chars grows with every identifying string plus 40 bytes
// per source line the vertex spans, divided by 4 and rounded up.
func EstimateTokens(v vertex.Vertex) int {
	lines := v.LineEnd - v.LineStart + 1
	if lines < 1 {
		lines = 1
	}
	chars := len(v.Name) + len(v.QualifiedName) + len(v.File) + len(v.Signature) + 40*lines
	return (chars + 3) / 4
}

// Slice performs a token-bounded BFS outward from target, exploring both
// inbound and outbound Calls neighbors, per spec §4.7.4. maxTokens == 0
// and maxDepth == 0 both mean unlimited.
func Slice(g *codegraph.Graph, target string, maxTokens, maxDepth int, pinned []string) SliceResult {
	result := SliceResult{Target: target, TruncationReason: TruncationComplete}

	if _, ok := g.Get(target); !ok {
		return result
	}

	pinnedSet := make(map[string]bool, len(pinned))
	for _, id := range pinned {
		pinnedSet[id] = true
	}

	type frontierItem struct {
		id    string
		depth int
	}

	visited := map[string]bool{target: true}
	queue := []frontierItem{{id: target, depth: 0}}

	var totalTokens int
	var hitTokenBudget, hitMaxDepth bool

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		v, ok := g.Get(cur.id)
		if !ok {
			continue
		}

		isPinned := pinnedSet[cur.id]
		tokens := EstimateTokens(v)
		fitsBudget := maxTokens == 0 || totalTokens+tokens <= maxTokens

		switch {
		case isPinned:
			result.Nodes = append(result.Nodes, SliceNode{
				Vertex: v, Depth: cur.depth, Pinned: true, TokenEstimate: tokens,
			})
			totalTokens += tokens
			if !fitsBudget {
				hitTokenBudget = true
			}
		case fitsBudget:
			result.Nodes = append(result.Nodes, SliceNode{
				Vertex: v, Depth: cur.depth, Pinned: false, TokenEstimate: tokens,
			})
			totalTokens += tokens
		default:
			hitTokenBudget = true
		}

		if maxDepth > 0 && cur.depth >= maxDepth {
			hitMaxDepth = true
			continue
		}

		for _, n := range neighborsBothDirections(g, cur.id) {
			if visited[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, frontierItem{id: n, depth: cur.depth + 1})
		}
	}

	result.TotalTokens = totalTokens
	switch {
	case hitTokenBudget:
		result.TruncationReason = TruncationTokenBudget
	case hitMaxDepth:
		result.TruncationReason = TruncationMaxDepth
	default:
		result.TruncationReason = TruncationComplete
	}

	sortSliceNodes(result.Nodes, g)
	return result
}

func neighborsBothDirections(g *codegraph.Graph, id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range g.GetCallers(id) {
		if !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v.ID)
		}
	}
	for _, v := range g.GetCallees(id) {
		if !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v.ID)
		}
	}
	return out
}

// sortSliceNodes orders pinned first, then ascending depth, then
// descending centrality.
func sortSliceNodes(nodes []SliceNode, g *codegraph.Graph) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return g.Centrality(a.Vertex.ID) > g.Centrality(b.Vertex.ID)
	})
}

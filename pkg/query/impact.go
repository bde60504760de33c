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
	"time"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// Impact runs two independent bounded BFS traversals from target — one
// over outbound Calls edges (downstream), one over inbound Calls edges
// (upstream) — and reports hop distance and direct/transitive severity
// for every discovered vertex. maxDepth == 0 means unlimited.
func Impact(g *codegraph.Graph, target string, maxDepth int) ImpactResult {
	start := time.Now()

	result := ImpactResult{Target: target, MaxDepth: maxDepth}
	if _, ok := g.Get(target); !ok {
		result.QueryTimeMs = elapsedMs(start)
		return result
	}

	result.Downstream = bfsImpact(g, target, maxDepth, g.GetCallees)
	result.Upstream = bfsImpact(g, target, maxDepth, g.GetCallers)
	result.TotalAffected = len(result.Upstream) + len(result.Downstream)
	result.QueryTimeMs = elapsedMs(start)
	return result
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// bfsImpact performs a bounded BFS from target using neighbors(id) to
// expand the frontier, recording hop distance and severity for every
// vertex other than target itself.
func bfsImpact(g *codegraph.Graph, target string, maxDepth int, neighbors func(string) []vertex.Vertex) []ImpactEntry {
	type frontierItem struct {
		id    string
		depth int
	}

	visited := map[string]bool{target: true}
	queue := []frontierItem{{id: target, depth: 0}}
	var entries []ImpactEntry

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}

		for _, n := range neighbors(cur.id) {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			depth := cur.depth + 1

			severity := SeverityTransitive
			if depth == 1 {
				severity = SeverityDirect
			}
			entries = append(entries, ImpactEntry{
				Vertex:      n,
				HopDistance: depth,
				Severity:    severity,
				EntryEdge:   vertex.EdgeCalls,
			})
			queue = append(queue, frontierItem{id: n.ID, depth: depth})
		}
	}
	return entries
}

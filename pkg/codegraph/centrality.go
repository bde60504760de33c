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

package codegraph

// RankOptions configures the damped random-walk centrality pass.
type RankOptions struct {
	Iterations int
	Damping    float64
}

// DefaultRankOptions mirrors the defaults used by the ranking pass in the
// reference implementation: 20 iterations, damping 0.85.
func DefaultRankOptions() RankOptions {
	return RankOptions{Iterations: 20, Damping: 0.85}
}

// ComputeCentrality runs a damped random-walk (PageRank-style) pass over
// the Calls edges and returns a score per vertex id, normalized into
// [0, 1]:
//
//  1. Initialize every vertex score to 1/N.
//  2. Compute each vertex's out-degree; treat zero as 1 to avoid
//     division by zero rather than redistributing dangling mass.
//  3. Repeat Iterations times: new[v] = (1-d)/N + d * sum over callers u
//     of v of score[u] / out_degree[u].
//  4. Normalize by dividing every score by the maximum (if > 0).
func ComputeCentrality(g *Graph, opts RankOptions) map[string]float64 {
	ids := g.IDs()
	n := len(ids)
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores
	}

	for _, id := range ids {
		scores[id] = 1.0 / float64(n)
	}

	outDeg := make(map[string]int, n)
	for _, id := range ids {
		d := g.OutDegree(id)
		if d == 0 {
			d = 1
		}
		outDeg[id] = d
	}

	base := (1.0 - opts.Damping) / float64(n)

	for iter := 0; iter < opts.Iterations; iter++ {
		next := make(map[string]float64, n)
		for _, id := range ids {
			var sum float64
			for _, caller := range g.GetCallers(id) {
				sum += scores[caller.ID] / float64(outDeg[caller.ID])
			}
			next[id] = base + opts.Damping*sum
		}
		scores = next
	}

	var max float64
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	if max > 0 {
		for id := range scores {
			scores[id] /= max
		}
	}
	return scores
}

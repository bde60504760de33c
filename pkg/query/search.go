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

// Search performs a case-insensitive substring match over name and
// qualified name, ranked by descending centrality, limited to limit
// results (limit <= 0 means unlimited).
func Search(g *codegraph.Graph, substring string, kind vertex.Kind, limit int) []vertex.Vertex {
	matches := g.Search(substring)

	if kind != "" {
		filtered := matches[:0]
		for _, v := range matches {
			if v.Kind == kind {
				filtered = append(filtered, v)
			}
		}
		matches = filtered
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return g.Centrality(matches[i].ID) > g.Centrality(matches[j].ID)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Discover ranks vertices for a free-text query, currently an alias for
// Search over both name and qualified name with no kind filter. It exists
// as the RPC-facing `discover` entry point's thin query-layer counterpart.
func Discover(g *codegraph.Graph, queryText string, limit int) []vertex.Vertex {
	return Search(g, queryText, "", limit)
}

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

import "github.com/kraklabs/codegraph/pkg/codegraph"

// FindPath returns the vertex ids on a shortest directed path from u to v
// following Calls edges, including both endpoints. The second return
// value is false when v is unreachable from u (or either id is unknown).
func FindPath(g *codegraph.Graph, u, v string) ([]string, bool) {
	if _, ok := g.Get(u); !ok {
		return nil, false
	}
	if _, ok := g.Get(v); !ok {
		return nil, false
	}
	if u == v {
		return []string{u}, true
	}

	prev := map[string]string{u: ""}
	queue := []string{u}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, callee := range g.GetCallees(cur) {
			if _, seen := prev[callee.ID]; seen {
				continue
			}
			prev[callee.ID] = cur
			if callee.ID == v {
				return reconstructPath(prev, u, v), true
			}
			queue = append(queue, callee.ID)
		}
	}
	return nil, false
}

func reconstructPath(prev map[string]string, u, v string) []string {
	var path []string
	for cur := v; cur != ""; cur = prev[cur] {
		path = append([]string{cur}, path...)
		if cur == u {
			break
		}
	}
	return path
}

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

import (
	"encoding/json"
	"io"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

// ExportNode is the JSON representation of a single vertex, with its
// centrality score inlined since callers of the export format generally
// want to rank nodes without a second query.
type ExportNode struct {
	vertex.Vertex
	Centrality float64 `json:"centrality"`
}

// ExportVersion is the stamped format version of the JSON export, per
// spec §6 ({ "version": "1.0", "stats": {...}, "nodes": [...] }).
const ExportVersion = "1.0"

// ExportStats summarizes the exported graph's size.
type ExportStats struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}

// Export is the full JSON-serializable snapshot of a graph, matching the
// export format mandated by spec §6. Edges are not listed individually;
// each node's Calls relationships are recoverable by re-querying the
// graph (codegraph export is a node/stats snapshot, not an edge dump).
type Export struct {
	Version string       `json:"version"`
	Stats   ExportStats  `json:"stats"`
	Nodes   []ExportNode `json:"nodes"`
}

// ToExport builds a JSON-serializable snapshot of g.
func (g *Graph) ToExport() Export {
	nodes := make([]ExportNode, 0, len(g.indexByID))
	for _, v := range g.Vertices() {
		nodes = append(nodes, ExportNode{Vertex: v, Centrality: g.Centrality(v.ID)})
	}

	return Export{
		Version: ExportVersion,
		Stats:   ExportStats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()},
		Nodes:   nodes,
	}
}

// WriteJSON serializes g to w in the export format, pretty-printed.
func (g *Graph) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g.ToExport())
}

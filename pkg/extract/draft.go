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

package extract

import "github.com/kraklabs/codegraph/pkg/vertex"

// VertexDraft is everything an Extractor can determine about a vertex
// before the file path is stamped on and its identity hash computed.
type VertexDraft struct {
	Name          string
	QualifiedName string
	Kind          vertex.Kind
	LineStart     int
	LineEnd       int
	Column        int
	ByteStart     int
	ByteEnd       int
	Signature     string
	Visibility    vertex.Visibility
	IsAsync       bool
	IsStatic      bool
	IsExported    bool
	Docstring     string
	References    []string
}

// ToVertex stamps file onto the draft and computes its identity hash.
func (d VertexDraft) ToVertex(file string) vertex.Vertex {
	v := vertex.New(d.Name, d.QualifiedName, d.Kind, file)
	v.LineStart = d.LineStart
	v.LineEnd = d.LineEnd
	v.Column = d.Column
	v.ByteStart = d.ByteStart
	v.ByteEnd = d.ByteEnd
	v.Signature = d.Signature
	v.Visibility = d.Visibility
	v.IsAsync = d.IsAsync
	v.IsStatic = d.IsStatic
	v.IsExported = d.IsExported
	v.Docstring = d.Docstring
	v.References = d.References
	return v
}

// ToVertices converts a batch of drafts, all from the same file.
func ToVertices(drafts []VertexDraft, file string) []vertex.Vertex {
	out := make([]vertex.Vertex, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, d.ToVertex(file))
	}
	return out
}

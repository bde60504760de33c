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

// Package vertex defines the language-agnostic code entity record that
// flows from extraction through the graph builder, the store, and the
// query engine. A Vertex never carries language-specific structure; each
// extractor is responsible for normalizing into this shape.
package vertex

// Kind classifies the kind of code entity a Vertex represents.
type Kind string

// The full set of vertex kinds extractors may emit.
const (
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindVariable    Kind = "variable"
	KindConstant    Kind = "constant"
	KindTypeAlias   Kind = "type_alias"
	KindModule      Kind = "module"
	KindImport      Kind = "import"
	KindExport      Kind = "export"
	KindConstructor Kind = "constructor"
	KindField       Kind = "field"
)

// Visibility is the four-valued visibility domain every language's native
// access modifiers are mapped onto.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityInternal  Visibility = "internal"
)

// EdgeKind classifies a directed relationship between two vertices.
type EdgeKind string

const (
	EdgeCalls   EdgeKind = "calls"
	EdgeImports EdgeKind = "imports"
	EdgeExtends EdgeKind = "extends"
)

// Vertex is a single code entity: a function, class, import, etc. It is
// the unit the extractor produces, the builder links into edges, the store
// persists, and the query engine returns snapshots of.
type Vertex struct {
	ID            string
	Name          string
	QualifiedName string
	Kind          Kind
	File          string

	LineStart int
	LineEnd   int
	Column    int
	ByteStart int
	ByteEnd   int

	Signature  string
	Visibility Visibility

	IsAsync    bool
	IsStatic   bool
	IsExported bool

	Docstring string

	// References is the ordered, de-duplicated list of unresolved names
	// this entity's body refers to. The builder resolves these into edges;
	// extractors never attempt resolution themselves.
	References []string
}

// Edge is a directed relationship between two vertex identities.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

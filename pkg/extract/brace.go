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

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/rust"
	dart "github.com/UserNobody14/tree-sitter-dart"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

// braceFamily is a declarative description of one brace-language grammar:
// which node kinds declare a function/method, a struct/class-like type,
// and an enum, and how to find the name and call-reference nodes within
// each. C, C++, Rust and Dart share this walker because their
// declaration shapes are close enough to generalize, rather than writing
// four near-identical tree walkers.
type braceFamily struct {
	lang            func() *sitter.Language
	functionKinds   map[string]bool
	typeKinds       map[string]vertex.Kind
	callKinds       map[string]bool
	identifierKinds map[string]bool
	nameField       string
}

// CFamily configures the walker for C.
var CFamily = braceFamily{
	lang:          c.GetLanguage,
	functionKinds: map[string]bool{"function_definition": true},
	typeKinds: map[string]vertex.Kind{
		"struct_specifier": vertex.KindStruct,
		"enum_specifier":   vertex.KindEnum,
	},
	callKinds:       map[string]bool{"call_expression": true},
	identifierKinds: map[string]bool{"identifier": true, "field_identifier": true},
	nameField:       "declarator",
}

// CppFamily configures the walker for C++.
var CppFamily = braceFamily{
	lang:          cpp.GetLanguage,
	functionKinds: map[string]bool{"function_definition": true},
	typeKinds: map[string]vertex.Kind{
		"struct_specifier": vertex.KindStruct,
		"class_specifier":  vertex.KindClass,
		"enum_specifier":   vertex.KindEnum,
	},
	callKinds:       map[string]bool{"call_expression": true},
	identifierKinds: map[string]bool{"identifier": true, "field_identifier": true},
	nameField:       "declarator",
}

// RustFamily configures the walker for Rust.
var RustFamily = braceFamily{
	lang: rust.GetLanguage,
	functionKinds: map[string]bool{
		"function_item": true,
	},
	typeKinds: map[string]vertex.Kind{
		"struct_item": vertex.KindStruct,
		"enum_item":   vertex.KindEnum,
		"trait_item":  vertex.KindInterface,
	},
	callKinds:       map[string]bool{"call_expression": true},
	identifierKinds: map[string]bool{"identifier": true, "field_identifier": true},
	nameField:       "name",
}

// DartFamily configures the walker for Dart, using the out-of-pack
// UserNobody14/tree-sitter-dart grammar binding since go-tree-sitter does
// not vendor Dart itself.
var DartFamily = braceFamily{
	lang: dart.GetLanguage,
	functionKinds: map[string]bool{
		"function_signature": true,
		"method_signature":   true,
	},
	typeKinds: map[string]vertex.Kind{
		"class_definition": vertex.KindClass,
		"enum_declaration": vertex.KindEnum,
	},
	callKinds:       map[string]bool{"method_invocation": true},
	identifierKinds: map[string]bool{"identifier": true},
	nameField:       "name",
}

// BraceExtractor is a single generalized walker parameterized by a
// braceFamily config.
type BraceExtractor struct {
	family braceFamily
	pool   *parserPool
}

// NewBraceExtractor creates an Extractor for the given brace-language
// family.
func NewBraceExtractor(family braceFamily) *BraceExtractor {
	return &BraceExtractor{family: family, pool: newParserPool(family.lang)}
}

func (e *BraceExtractor) Extract(path string, content []byte) ([]ExtractedVertex, error) {
	tree, err := e.pool.parse(content)
	if err != nil {
		return nil, fmt.Errorf("extract brace-language %s: %w", path, err)
	}
	defer tree.Close()

	var drafts []VertexDraft
	e.walk(tree.RootNode(), content, "", &drafts)
	return drafts, nil
}

func (e *BraceExtractor) walk(node *sitter.Node, content []byte, scope string, out *[]VertexDraft) {
	if node == nil {
		return
	}

	if e.family.functionKinds[node.Type()] {
		name := e.nameOf(node, content)
		kind := vertex.KindFunction
		if scope != "" {
			kind = vertex.KindMethod
		}
		refs := collectCallReferences(node, content, e.family.callKinds, e.family.identifierKinds)
		*out = append(*out, braceDraft(node, name, joinScope(scope, name), kind, refs))
		return
	}

	if typeKind, ok := e.family.typeKinds[node.Type()]; ok {
		name := e.nameOf(node, content)
		qualified := joinScope(scope, name)
		*out = append(*out, braceDraft(node, name, qualified, typeKind, nil))
		for i := 0; i < int(node.ChildCount()); i++ {
			e.walk(node.Child(i), content, qualified, out)
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), content, scope, out)
	}
}

func (e *BraceExtractor) nameOf(node *sitter.Node, content []byte) string {
	target := childByFieldName(node, e.family.nameField)
	if target == nil {
		return ""
	}
	// C/C++ function_declarator nests the identifier under its own
	// "declarator" field (pointer/array wrappers); unwrap until a leaf.
	for target.Type() != "identifier" && target.Type() != "field_identifier" {
		inner := childByFieldName(target, "declarator")
		if inner == nil {
			break
		}
		target = inner
	}
	return nodeText(target, content)
}

func braceDraft(node *sitter.Node, name, qualified string, kind vertex.Kind, refs []string) VertexDraft {
	start, end := node.StartPoint(), node.EndPoint()
	return VertexDraft{
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		LineStart:     int(start.Row) + 1,
		LineEnd:       int(end.Row) + 1,
		Column:        int(start.Column),
		ByteStart:     int(node.StartByte()),
		ByteEnd:       int(node.EndByte()),
		Visibility:    vertex.VisibilityPublic,
		IsExported:    true,
		References:    refs,
	}
}

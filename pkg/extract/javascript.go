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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

// JSDialect selects which grammar and export semantics a JSExtractor uses.
type JSDialect int

const (
	JSVariant JSDialect = iota
	TSVariant
	TSXVariant
)

var (
	jsCallKinds       = map[string]bool{"call_expression": true, "new_expression": true}
	jsIdentifierKinds = map[string]bool{"identifier": true, "property_identifier": true}
)

// JSExtractor walks a JavaScript/TypeScript/TSX AST for function
// declarations, arrow functions bound to a const/let, classes and their
// methods.
type JSExtractor struct {
	pool *parserPool
}

// NewJSExtractor creates a JSExtractor for the given language variant.
func NewJSExtractor(variant JSDialect) *JSExtractor {
	switch variant {
	case TSVariant:
		return &JSExtractor{pool: newParserPool(typescript.GetLanguage)}
	case TSXVariant:
		return &JSExtractor{pool: newParserPool(tsx.GetLanguage)}
	default:
		return &JSExtractor{pool: newParserPool(javascript.GetLanguage)}
	}
}

func (e *JSExtractor) Extract(path string, content []byte) ([]ExtractedVertex, error) {
	tree, err := e.pool.parse(content)
	if err != nil {
		return nil, fmt.Errorf("extract js/ts %s: %w", path, err)
	}
	defer tree.Close()

	var drafts []VertexDraft
	walkJSNode(tree.RootNode(), content, "", &drafts)
	return drafts, nil
}

func walkJSNode(node *sitter.Node, content []byte, scope string, out *[]VertexDraft) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		name := nodeText(childByFieldName(node, "name"), content)
		emitJS(out, node, content, name, joinScope(scope, name), vertex.KindFunction)
		return

	case "method_definition":
		name := nodeText(childByFieldName(node, "name"), content)
		kind := vertex.KindMethod
		if name == "constructor" {
			kind = vertex.KindConstructor
		}
		emitJS(out, node, content, name, joinScope(scope, name), kind)
		return

	case "class_declaration":
		name := nodeText(childByFieldName(node, "name"), content)
		qualified := joinScope(scope, name)
		emitJS(out, node, content, name, qualified, vertex.KindClass)
		if body := childByFieldName(node, "body"); body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				walkJSNode(body.Child(i), content, qualified, out)
			}
		}
		return

	case "interface_declaration":
		name := nodeText(childByFieldName(node, "name"), content)
		emitJS(out, node, content, name, joinScope(scope, name), vertex.KindInterface)
		return

	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(node.ChildCount()); i++ {
			declarator := node.Child(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			value := childByFieldName(declarator, "value")
			if value == nil || (value.Type() != "arrow_function" && value.Type() != "function") {
				continue
			}
			name := nodeText(childByFieldName(declarator, "name"), content)
			emitJS(out, declarator, content, name, joinScope(scope, name), vertex.KindFunction)
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkJSNode(node.Child(i), content, scope, out)
	}
}

func emitJS(out *[]VertexDraft, node *sitter.Node, content []byte, name, qualified string, kind vertex.Kind) {
	body := childByFieldName(node, "body")
	refs := collectCallReferences(body, content, jsCallKinds, jsIdentifierKinds)

	start, end := node.StartPoint(), node.EndPoint()
	*out = append(*out, VertexDraft{
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		LineStart:     int(start.Row) + 1,
		LineEnd:       int(end.Row) + 1,
		Column:        int(start.Column),
		ByteStart:     int(node.StartByte()),
		ByteEnd:       int(node.EndByte()),
		Visibility:    vertex.VisibilityPublic,
		IsExported:    !strings.HasPrefix(name, "_"),
		References:    refs,
	})
}

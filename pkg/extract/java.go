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
	"github.com/smacker/go-tree-sitter/java"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

var (
	javaCallKinds       = map[string]bool{"method_invocation": true, "object_creation_expression": true}
	javaIdentifierKinds = map[string]bool{"identifier": true}
)

// JavaExtractor walks a Java compilation unit for class, interface, enum
// and method declarations, reading modifiers for visibility.
type JavaExtractor struct {
	pool *parserPool
}

// NewJavaExtractor creates a Java Extractor.
func NewJavaExtractor() *JavaExtractor {
	return &JavaExtractor{pool: newParserPool(java.GetLanguage)}
}

func (e *JavaExtractor) Extract(path string, content []byte) ([]ExtractedVertex, error) {
	tree, err := e.pool.parse(content)
	if err != nil {
		return nil, fmt.Errorf("extract java %s: %w", path, err)
	}
	defer tree.Close()

	var drafts []VertexDraft
	walkJavaNode(tree.RootNode(), content, "", &drafts)
	return drafts, nil
}

func walkJavaNode(node *sitter.Node, content []byte, scope string, out *[]VertexDraft) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration":
		name := nodeText(childByFieldName(node, "name"), content)
		qualified := joinScope(scope, name)
		kind := vertex.KindClass
		switch node.Type() {
		case "interface_declaration":
			kind = vertex.KindInterface
		case "enum_declaration":
			kind = vertex.KindEnum
		}
		*out = append(*out, javaDraft(node, content, name, qualified, kind))

		if body := childByFieldName(node, "body"); body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				walkJavaNode(body.Child(i), content, qualified, out)
			}
		}
		return

	case "method_declaration", "constructor_declaration":
		name := nodeText(childByFieldName(node, "name"), content)
		kind := vertex.KindMethod
		if node.Type() == "constructor_declaration" {
			kind = vertex.KindConstructor
		}
		*out = append(*out, javaDraft(node, content, name, joinScope(scope, name), kind))
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkJavaNode(node.Child(i), content, scope, out)
	}
}

func javaDraft(node *sitter.Node, content []byte, name, qualified string, kind vertex.Kind) VertexDraft {
	body := childByFieldName(node, "body")
	refs := collectCallReferences(body, content, javaCallKinds, javaIdentifierKinds)

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
		Visibility:    javaVisibilityOf(node, content),
		IsExported:    javaVisibilityOf(node, content) == vertex.VisibilityPublic,
		References:    refs,
	}
}

func javaVisibilityOf(node *sitter.Node, content []byte) vertex.Visibility {
	mods := childByFieldName(node, "modifiers")
	if mods == nil {
		return vertex.VisibilityPrivate
	}
	text := nodeText(mods, content)
	switch {
	case strings.Contains(text, "public"):
		return vertex.VisibilityPublic
	case strings.Contains(text, "protected"):
		return vertex.VisibilityProtected
	case strings.Contains(text, "private"):
		return vertex.VisibilityPrivate
	default:
		return vertex.VisibilityInternal
	}
}

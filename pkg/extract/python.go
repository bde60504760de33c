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
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

var (
	pyCallKinds       = map[string]bool{"call": true}
	pyIdentifierKinds = map[string]bool{"identifier": true}
)

// PythonExtractor walks a Python module for function and class
// definitions, tracking class scope for qualified names and the
// `__`-prefix convention for visibility.
type PythonExtractor struct {
	pool *parserPool
}

// NewPythonExtractor creates a Python Extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{pool: newParserPool(python.GetLanguage)}
}

func (e *PythonExtractor) Extract(path string, content []byte) ([]ExtractedVertex, error) {
	tree, err := e.pool.parse(content)
	if err != nil {
		return nil, fmt.Errorf("extract python %s: %w", path, err)
	}
	defer tree.Close()

	var drafts []VertexDraft
	walkPythonNode(tree.RootNode(), content, "", &drafts)
	return drafts, nil
}

func walkPythonNode(node *sitter.Node, content []byte, scope string, out *[]VertexDraft) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		name := nodeText(childByFieldName(node, "name"), content)
		kind := vertex.KindFunction
		qualified := joinScope(scope, name)
		if scope != "" {
			kind = vertex.KindMethod
		}

		body := childByFieldName(node, "body")
		refs := collectCallReferences(body, content, pyCallKinds, pyIdentifierKinds)

		*out = append(*out, pyDraft(node, name, qualified, kind, content, refs))

		if body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				walkPythonNode(body.Child(i), content, qualified, out)
			}
		}
		return

	case "class_definition":
		name := nodeText(childByFieldName(node, "name"), content)
		qualified := joinScope(scope, name)
		*out = append(*out, pyDraft(node, name, qualified, vertex.KindClass, content, nil))

		if body := childByFieldName(node, "body"); body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				walkPythonNode(body.Child(i), content, qualified, out)
			}
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkPythonNode(node.Child(i), content, scope, out)
	}
}

func pyDraft(node *sitter.Node, name, qualified string, kind vertex.Kind, content []byte, refs []string) VertexDraft {
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
		Visibility:    pyVisibilityOf(name),
		IsExported:    !strings.HasPrefix(name, "_"),
		References:    refs,
	}
}

func joinScope(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func pyVisibilityOf(name string) vertex.Visibility {
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return vertex.VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return vertex.VisibilityProtected
	default:
		return vertex.VisibilityPublic
	}
}

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
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

var (
	goCallKinds       = map[string]bool{"call_expression": true}
	goIdentifierKinds = map[string]bool{"identifier": true, "field_identifier": true}
)

// GoExtractor walks a Go source file's tree-sitter AST for function,
// method, struct, interface and top-level declarations.
type GoExtractor struct {
	pool *parserPool
}

// NewGoExtractor creates a Go Extractor.
func NewGoExtractor() *GoExtractor {
	return &GoExtractor{pool: newParserPool(golang.GetLanguage)}
}

func (e *GoExtractor) Extract(path string, content []byte) ([]ExtractedVertex, error) {
	tree, err := e.pool.parse(content)
	if err != nil {
		return nil, fmt.Errorf("extract go %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := goPackageName(root, content)

	var drafts []VertexDraft
	walkGoNode(root, content, pkg, &drafts)
	return drafts, nil
}

func goPackageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "package_clause" {
			if id := childByFieldName(child, "name"); id != nil {
				return nodeText(id, content)
			}
		}
	}
	return ""
}

func walkGoNode(node *sitter.Node, content []byte, pkg string, out *[]VertexDraft) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_declaration":
		*out = append(*out, goFunctionDraft(node, content, pkg, ""))
	case "method_declaration":
		receiver := goReceiverTypeName(node, content)
		*out = append(*out, goFunctionDraft(node, content, pkg, receiver))
	case "type_declaration":
		*out = append(*out, goTypeDrafts(node, content, pkg)...)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkGoNode(node.Child(i), content, pkg, out)
	}
}

func goFunctionDraft(node *sitter.Node, content []byte, pkg, receiver string) VertexDraft {
	nameNode := childByFieldName(node, "name")
	name := nodeText(nameNode, content)

	kind := vertex.KindFunction
	qualified := pkg + "." + name
	if receiver != "" {
		kind = vertex.KindMethod
		qualified = pkg + "." + receiver + "." + name
	}

	body := childByFieldName(node, "body")
	refs := collectCallReferences(body, content, goCallKinds, goIdentifierKinds)

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
		Signature:     goSignature(node, content),
		Visibility:    goVisibilityOf(name),
		IsExported:    isGoExported(name),
		References:    refs,
	}
}

func goReceiverTypeName(method *sitter.Node, content []byte) string {
	receiver := childByFieldName(method, "receiver")
	if receiver == nil {
		return ""
	}
	// parameter_list -> parameter_declaration -> type (possibly pointer_type)
	for i := 0; i < int(receiver.ChildCount()); i++ {
		param := receiver.Child(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		typ := childByFieldName(param, "type")
		if typ == nil {
			continue
		}
		if typ.Type() == "pointer_type" && typ.ChildCount() > 0 {
			typ = typ.Child(int(typ.ChildCount()) - 1)
		}
		return nodeText(typ, content)
	}
	return ""
}

func goSignature(node *sitter.Node, content []byte) string {
	params := childByFieldName(node, "parameters")
	result := childByFieldName(node, "result")
	sig := ""
	if params != nil {
		sig += nodeText(params, content)
	}
	if result != nil {
		sig += " " + nodeText(result, content)
	}
	return sig
}

func goTypeDrafts(node *sitter.Node, content []byte, pkg string) []VertexDraft {
	var drafts []VertexDraft
	for i := 0; i < int(node.ChildCount()); i++ {
		spec := node.Child(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := childByFieldName(spec, "name")
		name := nodeText(nameNode, content)
		typeNode := childByFieldName(spec, "type")

		kind := vertex.KindTypeAlias
		if typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				kind = vertex.KindStruct
			case "interface_type":
				kind = vertex.KindInterface
			}
		}

		start, end := spec.StartPoint(), spec.EndPoint()
		drafts = append(drafts, VertexDraft{
			Name:          name,
			QualifiedName: pkg + "." + name,
			Kind:          kind,
			LineStart:     int(start.Row) + 1,
			LineEnd:       int(end.Row) + 1,
			Column:        int(start.Column),
			ByteStart:     int(spec.StartByte()),
			ByteEnd:       int(spec.EndByte()),
			Visibility:    goVisibilityOf(name),
			IsExported:    isGoExported(name),
		})
	}
	return drafts
}

func isGoExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func goVisibilityOf(name string) vertex.Visibility {
	if isGoExported(name) {
		return vertex.VisibilityPublic
	}
	return vertex.VisibilityPrivate
}

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
	"context"
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// parserPool lazily builds a sync.Pool of *sitter.Parser for a single
// grammar, since tree-sitter parsers are not safe for concurrent reuse
// (mirroring the teacher's per-language sync.Pool fields on
// TreeSitterParser).
type parserPool struct {
	once sync.Once
	pool sync.Pool
	lang func() *sitter.Language
}

func newParserPool(lang func() *sitter.Language) *parserPool {
	return &parserPool{lang: lang}
}

func (p *parserPool) init() {
	p.once.Do(func() {
		p.pool.New = func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(p.lang())
			return parser
		}
	})
}

func (p *parserPool) parse(content []byte) (*sitter.Tree, error) {
	p.init()
	parser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("extract: invalid parser type from pool")
	}
	defer p.pool.Put(parser)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	return tree, nil
}

// countErrors counts ERROR nodes in a parsed tree, for diagnostics on
// partially-parseable files.
func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrors(node.Child(i))
	}
	return count
}

// nodeText returns the source slice a node spans.
func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

// childByFieldName is a nil-safe wrapper around Node.ChildByFieldName.
func childByFieldName(node *sitter.Node, field string) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(field)
}

// collectCallReferences walks a subtree collecting the callee name of every
// call_expression-shaped node it finds, using the grammar-specific node
// kind names passed in (each grammar names call/invocation nodes and their
// identifier leaves slightly differently). The result is sorted and
// de-duplicated: references are a set of names a vertex's body mentions,
// not a call count, and a stable order keeps vertex hashing deterministic.
func collectCallReferences(node *sitter.Node, content []byte, callNodeKinds, identifierKinds map[string]bool) []string {
	var refs []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if callNodeKinds[n.Type()] {
			if callee := firstIdentifierDescendant(n, content, identifierKinds); callee != "" {
				refs = append(refs, callee)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return sortDedupReferences(refs)
}

// sortDedupReferences sorts refs and removes adjacent duplicates in place,
// giving every extractor a stable, de-duplicated references list regardless
// of how many times a name is referenced in a body.
func sortDedupReferences(refs []string) []string {
	if len(refs) < 2 {
		return refs
	}
	sort.Strings(refs)
	out := refs[:1]
	for _, r := range refs[1:] {
		if r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}

// firstIdentifierDescendant returns the text of the rightmost
// identifier-like leaf within a call node's "function" field child, or
// within its first child when the grammar has no such field.
func firstIdentifierDescendant(call *sitter.Node, content []byte, identifierKinds map[string]bool) string {
	fn := childByFieldName(call, "function")
	if fn == nil && call.ChildCount() > 0 {
		fn = call.Child(0)
	}
	if fn == nil {
		return ""
	}
	return lastIdentifierText(fn, content, identifierKinds)
}

// lastIdentifierText returns the text of the rightmost identifier-kind
// leaf in a subtree, which for a member/selector expression like a.b.c is
// the call target's own name (c), matching the short-name-first
// resolution the symbol table performs.
func lastIdentifierText(node *sitter.Node, content []byte, identifierKinds map[string]bool) string {
	if node == nil {
		return ""
	}
	if identifierKinds[node.Type()] {
		return nodeText(node, content)
	}
	var last string
	for i := 0; i < int(node.ChildCount()); i++ {
		if t := lastIdentifierText(node.Child(i), content, identifierKinds); t != "" {
			last = t
		}
	}
	return last
}

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

import (
	"strings"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/symtab"
)

type heuristicRule struct {
	kind   UncertainEdgeKind
	detail string
	match  func(ref, file string) bool
}

var heuristicRules = []heuristicRule{
	{
		kind:   UncertainEventHandler,
		detail: "reference name follows an event-handler naming convention",
		match: func(ref, file string) bool {
			return (len(ref) > 2 && strings.HasPrefix(ref, "on") && ref[2] >= 'A' && ref[2] <= 'Z') ||
				strings.Contains(ref, "Handler") || strings.Contains(ref, "Listener")
		},
	},
	{
		kind:   UncertainCallback,
		detail: "reference name follows a callback/closure naming convention",
		match: func(ref, file string) bool {
			lower := strings.ToLower(ref)
			return strings.Contains(lower, "callback") || strings.HasSuffix(ref, "Fn") || strings.HasSuffix(ref, "Func")
		},
	},
	{
		kind:   UncertainDependencyInjection,
		detail: "reference name follows a dependency-injection container naming convention",
		match: func(ref, file string) bool {
			lower := strings.ToLower(ref)
			return strings.Contains(lower, "inject") || strings.Contains(lower, "provide") ||
				strings.Contains(ref, "ServiceLocator") || strings.Contains(ref, "Container")
		},
	},
	{
		kind:   UncertainReflection,
		detail: "reference invokes language reflection facilities",
		match: func(ref, file string) bool {
			return strings.Contains(ref, "reflect.") || strings.HasPrefix(ref, "Reflect")
		},
	},
	{
		kind:   UncertainWidgetTree,
		detail: "reference constructs a UI widget in a declarative build method",
		match: func(ref, file string) bool {
			if !strings.HasSuffix(file, ".dart") && !strings.HasSuffix(file, ".tsx") && !strings.HasSuffix(file, ".jsx") {
				return false
			}
			return len(ref) > 0 && ref[0] >= 'A' && ref[0] <= 'Z'
		},
	},
}

// Annotate scans every reference on every vertex and flags the ones that
// match a known uncertain-resolution pattern. It never creates graph
// edges; it is a surfacing aid for callers who want to know where the
// resolver's confidence is structurally lower (callbacks, dynamic
// dispatch, DI containers, reflection, and declarative widget trees).
//
// A reference that the symbol table could resolve unambiguously to a
// single candidate is not flagged as DynamicDispatch even if it matches
// another rule's naming pattern; an ambiguous short name with more than
// one same-named candidate across the index is always flagged as
// DynamicDispatch, since the resolver could not pick a unique target.
func Annotate(g *codegraph.Graph, table *symtab.SymbolTable) []UncertainEdgeNote {
	var notes []UncertainEdgeNote

	for _, v := range g.Vertices() {
		for _, ref := range v.References {
			if _, exact := table.Resolve(ref); !exact && len(table.ShortNameCandidates(ref)) > 1 {
				notes = append(notes, UncertainEdgeNote{
					VertexID: v.ID,
					Kind:     UncertainDynamicDispatch,
					Detail:   "reference name resolves to multiple candidates; call target depends on runtime dispatch",
				})
				continue
			}

			for _, rule := range heuristicRules {
				if rule.match(ref, v.File) {
					notes = append(notes, UncertainEdgeNote{VertexID: v.ID, Kind: rule.kind, Detail: rule.detail})
					break
				}
			}
		}
	}
	return notes
}

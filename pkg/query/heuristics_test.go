// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"testing"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/symtab"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func TestAnnotateFlagsEventHandlerNamingConvention(t *testing.T) {
	g := codegraph.New()
	v := vertex.New("setup", "pkg.setup", vertex.KindFunction, "a.go")
	v.References = []string{"onClick"}
	g.AddNode(v)

	notes := Annotate(g, symtab.New())
	if len(notes) != 1 || notes[0].Kind != UncertainEventHandler {
		t.Fatalf("expected one EventHandler note, got %+v", notes)
	}
}

func TestAnnotateFlagsAmbiguousShortNameAsDynamicDispatch(t *testing.T) {
	g := codegraph.New()
	caller := vertex.New("caller", "pkg.caller", vertex.KindFunction, "caller.go")
	caller.References = []string{"helper"}
	g.AddNode(caller)

	table := symtab.New()
	table.Insert("pkg.a.helper", "id1", "a/mod.go")
	table.Insert("pkg.b.helper", "id2", "b/mod.go")

	notes := Annotate(g, table)
	if len(notes) != 1 || notes[0].Kind != UncertainDynamicDispatch {
		t.Fatalf("expected one DynamicDispatch note, got %+v", notes)
	}
}

func TestAnnotateSkipsUnambiguousResolvedReferences(t *testing.T) {
	g := codegraph.New()
	caller := vertex.New("caller", "pkg.caller", vertex.KindFunction, "a.go")
	caller.References = []string{"pkg.helper"}
	g.AddNode(caller)

	table := symtab.New()
	table.Insert("pkg.helper", "id1", "a.go")

	notes := Annotate(g, table)
	if len(notes) != 0 {
		t.Fatalf("expected no notes for an exactly-resolved reference, got %+v", notes)
	}
}

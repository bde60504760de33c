// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"testing"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	g := codegraph.New()
	g.AddNode(vertex.New("ParseFile", "ingestion.ParseFile", vertex.KindFunction, "a.go"))
	g.AddNode(vertex.New("helper", "utils.helper", vertex.KindFunction, "b.go"))

	results := Search(g, "PARSE", "", 10)
	if len(results) != 1 || results[0].Name != "ParseFile" {
		t.Fatalf("expected one case-insensitive match, got %+v", results)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	g := codegraph.New()
	for _, n := range []string{"fooA", "fooB", "fooC"} {
		g.AddNode(vertex.New(n, "pkg."+n, vertex.KindFunction, n+".go"))
	}

	results := Search(g, "foo", "", 2)
	if len(results) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(results))
	}
}

func TestSearchFiltersByKind(t *testing.T) {
	g := codegraph.New()
	g.AddNode(vertex.New("widget", "pkg.widget", vertex.KindFunction, "a.go"))
	g.AddNode(vertex.New("widget", "pkg.Widget", vertex.KindClass, "b.go"))

	results := Search(g, "widget", vertex.KindClass, 10)
	if len(results) != 1 || results[0].Kind != vertex.KindClass {
		t.Fatalf("expected only class-kind match, got %+v", results)
	}
}

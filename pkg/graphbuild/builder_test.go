// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graphbuild

import (
	"testing"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

func TestBuildResolvesCallsAcrossVertices(t *testing.T) {
	caller := vertex.New("caller", "pkg.caller", vertex.KindFunction, "a.go")
	caller.References = []string{"callee"}
	callee := vertex.New("callee", "pkg.callee", vertex.KindFunction, "b.go")

	b := New(nil)
	b.AddVertices([]vertex.Vertex{caller, callee})
	g := b.Build()

	callees := g.GetCallees(caller.ID)
	if len(callees) != 1 || callees[0].ID != callee.ID {
		t.Fatalf("expected caller to resolve to callee, got %+v", callees)
	}
}

func TestBuildSkipsUnresolvedAndSelfReferences(t *testing.T) {
	self := vertex.New("recurse", "pkg.recurse", vertex.KindFunction, "a.go")
	self.References = []string{"recurse", "nonexistent"}

	b := New(nil)
	b.AddVertices([]vertex.Vertex{self})
	g := b.Build()

	if g.EdgeCount() != 0 {
		t.Fatalf("expected no edges for self-reference or unresolved name, got %d", g.EdgeCount())
	}
}

func TestAddVerticesRejectsDuplicateIdentity(t *testing.T) {
	v1 := vertex.New("foo", "pkg.foo", vertex.KindFunction, "a.go")
	v2 := v1 // identical file/qualified name/kind -> identical id

	b := New(nil)
	b.AddVertices([]vertex.Vertex{v1, v2})
	g := b.BuildWithoutResolve()

	if g.NodeCount() != 1 {
		t.Fatalf("expected duplicate identity to collapse to 1 node, got %d", g.NodeCount())
	}
}

func TestBuildWithoutResolveLeavesNoEdges(t *testing.T) {
	caller := vertex.New("caller", "pkg.caller", vertex.KindFunction, "a.go")
	caller.References = []string{"callee"}
	callee := vertex.New("callee", "pkg.callee", vertex.KindFunction, "b.go")

	b := New(nil)
	b.AddVertices([]vertex.Vertex{caller, callee})
	g := b.BuildWithoutResolve()

	if g.EdgeCount() != 0 {
		t.Fatalf("expected no edges before resolve pass, got %d", g.EdgeCount())
	}
}

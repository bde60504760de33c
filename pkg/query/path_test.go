// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"testing"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func TestFindPathShortestRoute(t *testing.T) {
	g := codegraph.New()
	a := vertex.New("a", "a", vertex.KindFunction, "a.go")
	b := vertex.New("b", "b", vertex.KindFunction, "b.go")
	c := vertex.New("c", "c", vertex.KindFunction, "c.go")
	d := vertex.New("d", "d", vertex.KindFunction, "d.go")
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(c)
	g.AddNode(d)
	g.AddEdge(a.ID, b.ID, vertex.EdgeCalls)
	g.AddEdge(b.ID, d.ID, vertex.EdgeCalls)
	g.AddEdge(a.ID, c.ID, vertex.EdgeCalls)
	g.AddEdge(c.ID, d.ID, vertex.EdgeCalls)

	path, ok := FindPath(g, a.ID, d.ID)
	if !ok {
		t.Fatalf("expected a path from a to d")
	}
	if len(path) != 3 || path[0] != a.ID || path[2] != d.ID {
		t.Fatalf("expected a 3-node shortest path, got %+v", path)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := codegraph.New()
	a := vertex.New("a", "a", vertex.KindFunction, "a.go")
	b := vertex.New("b", "b", vertex.KindFunction, "b.go")
	g.AddNode(a)
	g.AddNode(b)

	_, ok := FindPath(g, a.ID, b.ID)
	if ok {
		t.Fatalf("expected no path between disconnected vertices")
	}
}

func TestFindPathSameNode(t *testing.T) {
	g := codegraph.New()
	a := vertex.New("a", "a", vertex.KindFunction, "a.go")
	g.AddNode(a)

	path, ok := FindPath(g, a.ID, a.ID)
	if !ok || len(path) != 1 || path[0] != a.ID {
		t.Fatalf("expected trivial single-node path, got %+v %v", path, ok)
	}
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package codegraph

import (
	"testing"

	"github.com/kraklabs/codegraph/pkg/vertex"
)

func mustVertex(t *testing.T, name, qualified, file string) vertex.Vertex {
	t.Helper()
	return vertex.New(name, qualified, vertex.KindFunction, file)
}

func TestAddNodeRejectsDuplicateID(t *testing.T) {
	g := New()
	v := mustVertex(t, "foo", "pkg.foo", "a.go")

	if _, inserted := g.AddNode(v); !inserted {
		t.Fatalf("expected first insert to succeed")
	}
	if _, inserted := g.AddNode(v); inserted {
		t.Fatalf("expected duplicate id insert to be rejected")
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected node count 1, got %d", g.NodeCount())
	}
}

func TestAddEdgeDropsSelfAndDanglingEndpoints(t *testing.T) {
	g := New()
	a := mustVertex(t, "a", "pkg.a", "a.go")
	g.AddNode(a)

	g.AddEdge(a.ID, a.ID, vertex.EdgeCalls)
	g.AddEdge(a.ID, "missing", vertex.EdgeCalls)
	g.AddEdge("missing", a.ID, vertex.EdgeCalls)

	if g.EdgeCount() != 0 {
		t.Fatalf("expected no edges to survive, got %d", g.EdgeCount())
	}
}

func TestCallersAndCallees(t *testing.T) {
	g := New()
	a := mustVertex(t, "a", "pkg.a", "a.go")
	b := mustVertex(t, "b", "pkg.b", "b.go")
	g.AddNode(a)
	g.AddNode(b)
	g.AddEdge(a.ID, b.ID, vertex.EdgeCalls)

	callees := g.GetCallees(a.ID)
	if len(callees) != 1 || callees[0].ID != b.ID {
		t.Fatalf("expected a to call b, got %+v", callees)
	}

	callers := g.GetCallers(b.ID)
	if len(callers) != 1 || callers[0].ID != a.ID {
		t.Fatalf("expected b to be called by a, got %+v", callers)
	}
}

func TestRemoveNodeClearsIncidentEdges(t *testing.T) {
	g := New()
	a := mustVertex(t, "a", "pkg.a", "a.go")
	b := mustVertex(t, "b", "pkg.b", "b.go")
	g.AddNode(a)
	g.AddNode(b)
	g.AddEdge(a.ID, b.ID, vertex.EdgeCalls)

	g.RemoveNode(a.ID)

	if _, ok := g.Get(a.ID); ok {
		t.Fatalf("expected a to be removed")
	}
	if callers := g.GetCallers(b.ID); len(callers) != 0 {
		t.Fatalf("expected no callers for b after removing a, got %+v", callers)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 remaining node, got %d", g.NodeCount())
	}
}

func TestSearchMatchesNameAndQualifiedName(t *testing.T) {
	g := New()
	g.AddNode(mustVertex(t, "ParseFile", "ingestion.ParseFile", "a.go"))
	g.AddNode(mustVertex(t, "helper", "utils.helper", "b.go"))

	results := g.Search("parse")
	if len(results) != 1 || results[0].Name != "ParseFile" {
		t.Fatalf("expected one match for 'parse', got %+v", results)
	}
}

func TestComputeCentralityRanksHubsAboveLeaves(t *testing.T) {
	g := New()
	hub := mustVertex(t, "hub", "pkg.hub", "a.go")
	leaf1 := mustVertex(t, "leaf1", "pkg.leaf1", "b.go")
	leaf2 := mustVertex(t, "leaf2", "pkg.leaf2", "c.go")
	g.AddNode(hub)
	g.AddNode(leaf1)
	g.AddNode(leaf2)
	g.AddEdge(leaf1.ID, hub.ID, vertex.EdgeCalls)
	g.AddEdge(leaf2.ID, hub.ID, vertex.EdgeCalls)

	scores := ComputeCentrality(g, DefaultRankOptions())

	if scores[hub.ID] <= scores[leaf1.ID] {
		t.Fatalf("expected hub score %f to exceed leaf score %f", scores[hub.ID], scores[leaf1.ID])
	}
	for id, s := range scores {
		if s < 0 || s > 1 {
			t.Fatalf("score for %s out of [0,1] range: %f", id, s)
		}
	}
}

func TestComputeCentralityEmptyGraph(t *testing.T) {
	g := New()
	scores := ComputeCentrality(g, DefaultRankOptions())
	if len(scores) != 0 {
		t.Fatalf("expected no scores for empty graph, got %v", scores)
	}
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"testing"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func buildChain(t *testing.T) (*codegraph.Graph, vertex.Vertex, vertex.Vertex, vertex.Vertex) {
	t.Helper()
	g := codegraph.New()
	a := vertex.New("a", "a", vertex.KindFunction, "a.go")
	b := vertex.New("b", "b", vertex.KindFunction, "b.go")
	c := vertex.New("c", "c", vertex.KindFunction, "c.go")
	a.LineStart, a.LineEnd = 1, 1
	b.LineStart, b.LineEnd = 1, 1
	c.LineStart, c.LineEnd = 1, 1
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(c)
	g.AddEdge(a.ID, b.ID, vertex.EdgeCalls)
	g.AddEdge(b.ID, c.ID, vertex.EdgeCalls)
	return g, a, b, c
}

func TestSliceTruncatesAtTokenBudgetWithoutPins(t *testing.T) {
	g, a, _, _ := buildChain(t)
	perNode := EstimateTokens(a)
	budget := perNode * 2

	result := Slice(g, a.ID, budget, 0, nil)

	if len(result.Nodes) != 2 {
		t.Fatalf("expected exactly 2 nodes, got %d: %+v", len(result.Nodes), result.Nodes)
	}
	if result.TruncationReason != TruncationTokenBudget {
		t.Fatalf("expected TokenBudget truncation, got %s", result.TruncationReason)
	}
}

func TestSlicePinnedNodeBypassesBudget(t *testing.T) {
	g, a, _, c := buildChain(t)
	perNode := EstimateTokens(a)
	budget := perNode * 2

	result := Slice(g, a.ID, budget, 0, []string{c.ID})

	if len(result.Nodes) != 3 {
		t.Fatalf("expected 3 nodes with c pinned, got %d: %+v", len(result.Nodes), result.Nodes)
	}
	var cNode *SliceNode
	for i := range result.Nodes {
		if result.Nodes[i].Vertex.ID == c.ID {
			cNode = &result.Nodes[i]
		}
	}
	if cNode == nil || !cNode.Pinned {
		t.Fatalf("expected c present and pinned, got %+v", result.Nodes)
	}
	if result.TruncationReason != TruncationTokenBudget {
		t.Fatalf("expected TokenBudget truncation reason preserved, got %s", result.TruncationReason)
	}
}

func TestSliceCompleteWhenEverythingFits(t *testing.T) {
	g, a, _, _ := buildChain(t)
	result := Slice(g, a.ID, 0, 0, nil)
	if result.TruncationReason != TruncationComplete {
		t.Fatalf("expected Complete truncation with unlimited budget, got %s", result.TruncationReason)
	}
	if len(result.Nodes) != 3 {
		t.Fatalf("expected all 3 nodes, got %d", len(result.Nodes))
	}
}

func TestSliceRespectsMaxDepth(t *testing.T) {
	g, a, _, c := buildChain(t)
	result := Slice(g, a.ID, 0, 1, nil)

	for _, n := range result.Nodes {
		if n.Vertex.ID == c.ID {
			t.Fatalf("did not expect c within depth 1: %+v", result.Nodes)
		}
	}
	if result.TruncationReason != TruncationMaxDepth {
		t.Fatalf("expected MaxDepth truncation, got %s", result.TruncationReason)
	}
}

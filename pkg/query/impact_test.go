// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"testing"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func TestImpactTwoFunctionCall(t *testing.T) {
	g := codegraph.New()
	caller := vertex.New("caller", "pkg.caller", vertex.KindFunction, "a.go")
	callee := vertex.New("callee", "pkg.callee", vertex.KindFunction, "a.go")
	g.AddNode(caller)
	g.AddNode(callee)
	g.AddEdge(caller.ID, callee.ID, vertex.EdgeCalls)

	result := Impact(g, callee.ID, 5)

	if len(result.Downstream) != 0 {
		t.Fatalf("expected no downstream for callee, got %+v", result.Downstream)
	}
	if len(result.Upstream) != 1 || result.Upstream[0].Vertex.ID != caller.ID {
		t.Fatalf("expected caller in upstream, got %+v", result.Upstream)
	}
	if result.Upstream[0].HopDistance != 1 || result.Upstream[0].Severity != SeverityDirect {
		t.Fatalf("expected direct hop-1 severity, got %+v", result.Upstream[0])
	}
	if result.TotalAffected != 1 {
		t.Fatalf("expected total affected 1, got %d", result.TotalAffected)
	}
}

func TestImpactOfALeaf(t *testing.T) {
	g := codegraph.New()
	target := vertex.New("target", "pkg.target", vertex.KindFunction, "a.go")
	g.AddNode(target)

	for i := 0; i < 5; i++ {
		caller := vertex.New("caller", "pkg.caller"+string(rune('A'+i)), vertex.KindFunction, "a.go")
		g.AddNode(caller)
		g.AddEdge(caller.ID, target.ID, vertex.EdgeCalls)
	}

	result := Impact(g, target.ID, 5)
	if len(result.Upstream) != 5 {
		t.Fatalf("expected 5 upstream callers, got %d", len(result.Upstream))
	}
	if len(result.Downstream) != 0 {
		t.Fatalf("expected no downstream, got %+v", result.Downstream)
	}

	classified := Classify(result, DefaultBlastRadiusThresholds())
	if classified.Role != RoleUtility || classified.Confidence != ConfidenceHigh {
		t.Fatalf("expected Utility/High, got %+v", classified)
	}
}

func TestImpactRespectsMaxDepth(t *testing.T) {
	g := codegraph.New()
	a := vertex.New("a", "pkg.a", vertex.KindFunction, "a.go")
	b := vertex.New("b", "pkg.b", vertex.KindFunction, "b.go")
	c := vertex.New("c", "pkg.c", vertex.KindFunction, "c.go")
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(c)
	g.AddEdge(a.ID, b.ID, vertex.EdgeCalls)
	g.AddEdge(b.ID, c.ID, vertex.EdgeCalls)

	result := Impact(g, a.ID, 1)
	if len(result.Downstream) != 1 || result.Downstream[0].Vertex.ID != b.ID {
		t.Fatalf("expected only b within depth 1, got %+v", result.Downstream)
	}
	for _, e := range result.Downstream {
		if e.HopDistance > 1 {
			t.Fatalf("found vertex beyond max depth: %+v", e)
		}
	}
}

func TestClassifyIsolated(t *testing.T) {
	result := ImpactResult{}
	c := Classify(result, DefaultBlastRadiusThresholds())
	if c.Role != RoleIsolated || c.Confidence != ConfidenceLow {
		t.Fatalf("expected Isolated/Low, got %+v", c)
	}
}

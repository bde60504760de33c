// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func fixtureGraph() *codegraph.SharedGraph {
	g := codegraph.New()
	caller := vertex.New("caller", "pkg.caller", vertex.KindFunction, "a.go")
	callee := vertex.New("callee", "pkg.callee", vertex.KindFunction, "a.go")
	caller.References = []string{"pkg.callee"}
	g.AddNode(caller)
	g.AddNode(callee)
	g.AddEdge(caller.ID, callee.ID, vertex.EdgeCalls)
	return codegraph.NewShared(g)
}

func TestServeInitializeAndToolsList(t *testing.T) {
	srv := New(fixtureGraph(), nil)

	input := `{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	var out bytes.Buffer
	err := srv.Serve(context.Background(), bytes.NewBufferString(input), &out)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var initResp jsonRPCResponse
	require.NoError(t, json.Unmarshal(lines[0], &initResp))
	require.Nil(t, initResp.Error)

	var listResp jsonRPCResponse
	require.NoError(t, json.Unmarshal(lines[1], &listResp))
	require.Nil(t, listResp.Error)
}

func TestServeSkipsNotificationResponses(t *testing.T) {
	srv := New(fixtureGraph(), nil)
	input := `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"

	var out bytes.Buffer
	err := srv.Serve(context.Background(), bytes.NewBufferString(input), &out)
	require.NoError(t, err)
	require.Empty(t, out.Bytes())
}

func TestGetLogicPathRendersMarkdownBrief(t *testing.T) {
	srv := New(fixtureGraph(), nil)
	result := srv.getLogicPath(map[string]any{"start_node": "pkg.caller"})
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	require.Contains(t, result.Content[0].Text, "pkg.caller")
	require.True(t, strings.Contains(result.Content[0].Text, "## Callees"))
}

func TestGetLogicPathUnknownNodeReturnsError(t *testing.T) {
	srv := New(fixtureGraph(), nil)
	result := srv.getLogicPath(map[string]any{"start_node": "does.not.exist"})
	require.True(t, result.IsError)
}

func TestAnalyzeImpactReturnsJSONWithRoleAndConfidence(t *testing.T) {
	srv := New(fixtureGraph(), nil)
	result := srv.analyzeImpact(map[string]any{"node_id": "pkg.callee", "max_depth": float64(2)})
	require.False(t, result.IsError)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &decoded))
	require.Contains(t, decoded, "role")
	require.Contains(t, decoded, "confidence")
	require.Contains(t, decoded, "total_affected")
}

func TestFindPathReturnsChain(t *testing.T) {
	srv := New(fixtureGraph(), nil)
	result := srv.findPath(map[string]any{"start_node": "pkg.caller", "end_node": "pkg.callee"})
	require.False(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "pkg.caller")
	require.Contains(t, result.Content[0].Text, "pkg.callee")
}

func TestFindPathMissingArgsIsError(t *testing.T) {
	srv := New(fixtureGraph(), nil)
	result := srv.findPath(map[string]any{"start_node": "pkg.caller"})
	require.True(t, result.IsError)
}

func TestCallToolUnknownNameIsError(t *testing.T) {
	srv := New(fixtureGraph(), nil)
	result := srv.callTool(toolCallParams{Name: "bogus"})
	require.True(t, result.IsError)
}

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

// Package mcp implements the Model Context Protocol stdio server exposing
// three agent tools over the indexed graph: get_logic_path, analyze_impact,
// and find_path.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/query"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "codegraph"
	serverVersion   = "1.0.0"
)

const instructions = `codegraph indexes a repository's source into a call graph and exposes three tools for understanding it: get_logic_path gives a markdown architectural brief starting from a node; analyze_impact reports what a change to a node would affect, with a confidence-graded role; find_path traces the shortest call chain between two nodes. Node identifiers accept either the internal vertex id or a qualified name.`

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type toolResult struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Server serves the three agent tools against a codegraph.SharedGraph.
type Server struct {
	shared *codegraph.SharedGraph
	logger *slog.Logger
}

// New builds an mcp.Server over shared.
func New(shared *codegraph.SharedGraph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{shared: shared, logger: logger}
}

// Serve runs the stdio JSON-RPC loop, reading requests from r and writing
// responses to w, until r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<16), 1<<24)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("mcp.request.invalid_json", "err", err)
			continue
		}

		resp := s.handleRequest(req)
		if resp.ID == nil && resp.Result == nil && resp.Error == nil {
			continue
		}
		encoded, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encode mcp response: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", encoded); err != nil {
			return fmt.Errorf("write mcp response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handleRequest(req jsonRPCRequest) jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]any{
				"protocolVersion": protocolVersion,
				"capabilities":    map[string]any{"tools": map[string]any{"listChanged": false}},
				"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
				"instructions":    instructions,
			},
		}

	case "notifications/initialized":
		return jsonRPCResponse{}

	case "tools/list":
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"tools": s.tools()}}

	case "tools/call":
		var params toolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: "invalid params", Data: err.Error()}}
		}
		result := s.callTool(params)
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result}

	default:
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found", Data: req.Method}}
	}
}

func (s *Server) tools() []map[string]any {
	return []map[string]any{
		{
			"name":        "get_logic_path",
			"description": "Return a markdown architectural brief for a node: its role, callers, and callees.",
			"inputSchema": map[string]any{
				"type":       "object",
				"properties": map[string]any{"start_node": map[string]any{"type": "string"}},
				"required":   []string{"start_node"},
			},
		},
		{
			"name":        "analyze_impact",
			"description": "Report the upstream and downstream blast radius of changing a node, with a confidence-graded architectural role.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"node_id":   map[string]any{"type": "string"},
					"max_depth": map[string]any{"type": "integer", "default": 5},
				},
				"required": []string{"node_id"},
			},
		},
		{
			"name":        "find_path",
			"description": "Find the shortest call-graph path between two nodes.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"start_node": map[string]any{"type": "string"},
					"end_node":   map[string]any{"type": "string"},
				},
				"required": []string{"start_node", "end_node"},
			},
		},
	}
}

func (s *Server) callTool(p toolCallParams) toolResult {
	switch p.Name {
	case "get_logic_path":
		return s.getLogicPath(p.Arguments)
	case "analyze_impact":
		return s.analyzeImpact(p.Arguments)
	case "find_path":
		return s.findPath(p.Arguments)
	default:
		return errorResult(fmt.Sprintf("unknown tool: %s", p.Name))
	}
}

func errorResult(msg string) toolResult {
	return toolResult{Content: []contentBlock{{Type: "text", Text: msg}}, IsError: true}
}

func textResult(text string) toolResult {
	return toolResult{Content: []contentBlock{{Type: "text", Text: text}}}
}

func jsonResult(v any) toolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %v", err))
	}
	return textResult(string(data))
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func (s *Server) getLogicPath(args map[string]any) toolResult {
	startNode := stringArg(args, "start_node")
	if startNode == "" {
		return errorResult("start_node is required")
	}

	var brief string
	var resolveErr error
	s.shared.WithRead(func(g *codegraph.Graph) {
		id, ok := g.GetIndex(startNode)
		if !ok {
			resolveErr = fmt.Errorf("node not found: %s", startNode)
			return
		}
		v, _ := g.Get(id)
		impact := query.Impact(g, id, 3)
		classification := query.Classify(impact, query.DefaultBlastRadiusThresholds())
		brief = renderLogicPath(v, classification, impact)
	})
	if resolveErr != nil {
		return errorResult(resolveErr.Error())
	}
	return textResult(brief)
}

func renderLogicPath(v vertex.Vertex, c query.ConfidenceExplanation, impact query.ImpactResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", v.QualifiedName)
	fmt.Fprintf(&b, "**File:** `%s` (lines %d-%d)\n\n", v.File, v.LineStart, v.LineEnd)
	fmt.Fprintf(&b, "**Role:** %s (confidence: %s)\n\n", c.Role, c.Confidence)
	for _, reason := range c.Reasons {
		fmt.Fprintf(&b, "- %s\n", reason)
	}
	fmt.Fprintf(&b, "\n## Callers (%d)\n\n", len(impact.Upstream))
	for _, entry := range impact.Upstream {
		fmt.Fprintf(&b, "- `%s` (%s, hop %d)\n", entry.Vertex.QualifiedName, entry.Severity, entry.HopDistance)
	}
	fmt.Fprintf(&b, "\n## Callees (%d)\n\n", len(impact.Downstream))
	for _, entry := range impact.Downstream {
		fmt.Fprintf(&b, "- `%s` (%s, hop %d)\n", entry.Vertex.QualifiedName, entry.Severity, entry.HopDistance)
	}
	return b.String()
}

func (s *Server) analyzeImpact(args map[string]any) toolResult {
	nodeID := stringArg(args, "node_id")
	if nodeID == "" {
		return errorResult("node_id is required")
	}
	maxDepth := intArg(args, "max_depth", 5)

	var out map[string]any
	var resolveErr error
	s.shared.WithRead(func(g *codegraph.Graph) {
		id, ok := g.GetIndex(nodeID)
		if !ok {
			resolveErr = fmt.Errorf("node not found: %s", nodeID)
			return
		}
		impact := query.Impact(g, id, maxDepth)
		classification := query.Classify(impact, query.DefaultBlastRadiusThresholds())
		out = map[string]any{
			"target": impact.Target,
			"confidence": map[string]any{
				"level":   classification.Confidence,
				"reasons": classification.Reasons,
			},
			"role":           classification.Role,
			"upstream":       impact.Upstream,
			"downstream":     impact.Downstream,
			"total_affected": impact.TotalAffected,
			"max_depth":      impact.MaxDepth,
			"query_time_ms":  impact.QueryTimeMs,
		}
	})
	if resolveErr != nil {
		return errorResult(resolveErr.Error())
	}
	return jsonResult(out)
}

func (s *Server) findPath(args map[string]any) toolResult {
	startNode := stringArg(args, "start_node")
	endNode := stringArg(args, "end_node")
	if startNode == "" || endNode == "" {
		return errorResult("start_node and end_node are required")
	}

	var path []map[string]any
	var found bool
	var resolveErr error
	s.shared.WithRead(func(g *codegraph.Graph) {
		startID, ok := g.GetIndex(startNode)
		if !ok {
			resolveErr = fmt.Errorf("node not found: %s", startNode)
			return
		}
		endID, ok := g.GetIndex(endNode)
		if !ok {
			resolveErr = fmt.Errorf("node not found: %s", endNode)
			return
		}
		ids, ok := query.FindPath(g, startID, endID)
		found = ok
		for _, id := range ids {
			v, _ := g.Get(id)
			path = append(path, map[string]any{"id": v.ID, "qualifiedName": v.QualifiedName, "file": v.File})
		}
	})
	if resolveErr != nil {
		return errorResult(resolveErr.Error())
	}
	if !found {
		return textResult(fmt.Sprintf("no path found from %s to %s", startNode, endNode))
	}
	return jsonResult(map[string]any{"path": path})
}

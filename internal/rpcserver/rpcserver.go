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

// Package rpcserver exposes the read-only query surface (discover, impact,
// context, search, node.get) as JSON-RPC 2.0, over either a single stdio
// session or a long-running HTTP server. Every method runs its query under
// a SharedGraph read lock and returns a value snapshot.
package rpcserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kraklabs/codegraph/internal/telemetry"
	"github.com/kraklabs/codegraph/pkg/codegraph"
	"github.com/kraklabs/codegraph/pkg/query"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

// JSON-RPC 2.0 error codes, per the protocol's reserved range.
const (
	CodeParseError     = -32700
	CodeInvalidParams  = -32602
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string  `json:"jsonrpc"`
	ID      any     `json:"id,omitempty"`
	Result  any     `json:"result,omitempty"`
	Error   *rpcErr `json:"error,omitempty"`
}

type rpcErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Server dispatches the query RPC surface against shared.
type Server struct {
	shared  *codegraph.SharedGraph
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// New builds a Server. metrics may be nil to disable instrumentation.
func New(shared *codegraph.SharedGraph, logger *slog.Logger, metrics *telemetry.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{shared: shared, logger: logger, metrics: metrics}
}

// ServeStdio reads one JSON-RPC request per line from r and writes one
// response per line to w, until r is exhausted or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
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

		resp := s.handleLine(ctx, line)
		encoded, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", encoded); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte) response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return response{JSONRPC: "2.0", Error: &rpcErr{Code: CodeParseError, Message: "parse error", Data: err.Error()}}
	}
	return s.Handle(ctx, req.Method, req.Params, req.ID)
}

// Handle dispatches a single method call and returns its JSON-RPC envelope.
func (s *Server) Handle(ctx context.Context, method string, params json.RawMessage, id any) response {
	start := time.Now()
	result, err := s.dispatch(ctx, method, params)
	if s.metrics != nil {
		s.metrics.ObserveQuery(method, time.Since(start).Seconds(), err)
	}

	if err != nil {
		var code int
		switch {
		case err == errUnknownMethod:
			code = CodeMethodNotFound
		case err == errInvalidParams:
			code = CodeInvalidParams
		default:
			code = CodeInternalError
		}
		return response{JSONRPC: "2.0", ID: id, Error: &rpcErr{Code: code, Message: err.Error()}}
	}
	return response{JSONRPC: "2.0", ID: id, Result: result}
}

var (
	errUnknownMethod = fmt.Errorf("method not found")
	errInvalidParams = fmt.Errorf("invalid params")
)

func (s *Server) dispatch(_ context.Context, method string, raw json.RawMessage) (any, error) {
	switch method {
	case "discover":
		return s.discover(raw)
	case "impact":
		return s.impact(raw)
	case "context":
		return s.context(raw)
	case "search":
		return s.search(raw)
	case "node.get":
		return s.nodeGet(raw)
	default:
		return nil, errUnknownMethod
	}
}

type discoverParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) discover(raw json.RawMessage) (any, error) {
	p := discoverParams{Limit: 10}
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	var out []vertex.Vertex
	s.shared.WithRead(func(g *codegraph.Graph) {
		out = query.Discover(g, p.Query, p.Limit)
	})
	return out, nil
}

type impactParams struct {
	Node  string `json:"node"`
	Depth int    `json:"depth"`
}

func (s *Server) impact(raw json.RawMessage) (any, error) {
	p := impactParams{Depth: 3}
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Node == "" {
		return nil, errInvalidParams
	}
	var out query.ImpactResult
	var resolveErr error
	s.shared.WithRead(func(g *codegraph.Graph) {
		id, ok := g.GetIndex(p.Node)
		if !ok {
			resolveErr = fmt.Errorf("node not found: %s", p.Node)
			return
		}
		out = query.Impact(g, id, p.Depth)
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return out, nil
}

type contextParams struct {
	Task          string `json:"task"`
	MaxTokens     int    `json:"maxTokens"`
	IncludeSource bool   `json:"includeSource"`
}

func (s *Server) context(raw json.RawMessage) (any, error) {
	p := contextParams{MaxTokens: 8000}
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	var out query.SliceResult
	var resolveErr error
	s.shared.WithRead(func(g *codegraph.Graph) {
		matches := query.Discover(g, p.Task, 1)
		if len(matches) == 0 {
			resolveErr = fmt.Errorf("no vertex matches task: %s", p.Task)
			return
		}
		out = query.Slice(g, matches[0].ID, p.MaxTokens, 0, nil)
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return out, nil
}

type searchParams struct {
	Query string `json:"query"`
	Kind  string `json:"kind"`
	Limit int    `json:"limit"`
}

func (s *Server) search(raw json.RawMessage) (any, error) {
	p := searchParams{Limit: 10}
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	var out []vertex.Vertex
	s.shared.WithRead(func(g *codegraph.Graph) {
		out = query.Search(g, p.Query, vertex.Kind(p.Kind), p.Limit)
	})
	return out, nil
}

type nodeGetParams struct {
	ID string `json:"id"`
}

func (s *Server) nodeGet(raw json.RawMessage) (any, error) {
	var p nodeGetParams
	if err := unmarshalParams(raw, &p); err != nil {
		return nil, err
	}
	var out vertex.Vertex
	var found bool
	s.shared.WithRead(func(g *codegraph.Graph) {
		if id, ok := g.GetIndex(p.ID); ok {
			out, found = g.Get(id)
		}
	})
	if !found {
		return nil, fmt.Errorf("node not found: %s", p.ID)
	}
	return out, nil
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidParams
	}
	return nil
}

// HTTPHandler serves POST / as a JSON-RPC 2.0 endpoint for use with
// net/http.Server (the 'codegraph serve' HTTP mode).
func (s *Server) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req request
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, response{JSONRPC: "2.0", Error: &rpcErr{Code: CodeParseError, Message: "parse error", Data: err.Error()}})
			return
		}
		resp := s.Handle(r.Context(), req.Method, req.Params, req.ID)
		writeJSON(w, resp)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

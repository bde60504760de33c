// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package rpcserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func TestServeStdioHandlesDiscoverAndUnknownMethod(t *testing.T) {
	srv := New(fixtureGraph(), nil, nil)

	input := `{"jsonrpc":"2.0","id":1,"method":"discover","params":{"query":"caller"}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"bogus"}` + "\n"

	var out bytes.Buffer
	err := srv.ServeStdio(context.Background(), bytes.NewBufferString(input), &out)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first response
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.Nil(t, first.Error)

	var second response
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.NotNil(t, second.Error)
	require.Equal(t, CodeMethodNotFound, second.Error.Code)
}

func TestImpactResolvesByQualifiedName(t *testing.T) {
	srv := New(fixtureGraph(), nil, nil)
	resp := srv.Handle(context.Background(), "impact", json.RawMessage(`{"node":"pkg.callee","depth":2}`), 1)
	require.Nil(t, resp.Error)
}

func TestImpactUnknownNodeReturnsError(t *testing.T) {
	srv := New(fixtureGraph(), nil, nil)
	resp := srv.Handle(context.Background(), "impact", json.RawMessage(`{"node":"does.not.exist"}`), 1)
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeInternalError, resp.Error.Code)
}

func TestHTTPHandlerRejectsNonPost(t *testing.T) {
	srv := New(fixtureGraph(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHTTPHandlerServesSearch(t *testing.T) {
	srv := New(fixtureGraph(), nil, nil)
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","id":7,"method":"search","params":{"query":"call"}}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Nil(t, resp.Error)
}

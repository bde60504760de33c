// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/vertex"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cache.db")
}

func TestOpenOrCreateStampsVersionOnFirstOpen(t *testing.T) {
	path := tempStorePath(t)

	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.readVersion()
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, version)
}

func TestOpenOrCreateRejectsVersionMismatch(t *testing.T) {
	path := tempStorePath(t)

	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.stampArbitraryVersionForTest("codegraph-0"))
	require.NoError(t, s.Close())

	_, err = OpenOrCreate(path, nil)
	require.ErrorIs(t, err, cgerrors.ErrVersionMismatch)
}

func TestOpenOrResetClearsOnVersionMismatch(t *testing.T) {
	path := tempStorePath(t)

	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	v := vertex.New("f", "pkg.f", vertex.KindFunction, "a.go")
	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{v}, 100))
	require.NoError(t, s.stampArbitraryVersionForTest("codegraph-0"))
	require.NoError(t, s.Close())

	s2, err := OpenOrReset(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	files, err := s2.ListCachedFiles()
	require.NoError(t, err)
	require.Empty(t, files)

	version, err := s2.readVersion()
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, version)
}

func TestUpdateFileRoundTrips(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	defer s.Close()

	v1 := vertex.New("caller", "pkg.caller", vertex.KindFunction, "a.go")
	v2 := vertex.New("callee", "pkg.callee", vertex.KindFunction, "a.go")
	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{v1, v2}, 1000))

	ids, err := s.GetFileNodes("a.go")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{v1.ID, v2.ID}, ids)

	mtime, found, err := s.GetMtime("a.go")
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 1000, mtime)
}

func TestUpdateFileReplacesPreviousVertexSet(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	defer s.Close()

	vOld := vertex.New("old", "pkg.old", vertex.KindFunction, "a.go")
	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{vOld}, 1))

	vNew := vertex.New("new", "pkg.new", vertex.KindFunction, "a.go")
	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{vNew}, 2))

	graph, err := s.LoadGraph()
	require.NoError(t, err)
	_, oldPresent := graph.Get(vOld.ID)
	require.False(t, oldPresent)
	_, newPresent := graph.Get(vNew.ID)
	require.True(t, newPresent)
}

func TestRemoveFileDeletesVerticesAndIndex(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	defer s.Close()

	v := vertex.New("f", "pkg.f", vertex.KindFunction, "a.go")
	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{v}, 1))
	require.NoError(t, s.RemoveFile("a.go"))

	ids, err := s.GetFileNodes("a.go")
	require.NoError(t, err)
	require.Empty(t, ids)

	_, found, err := s.GetMtime("a.go")
	require.NoError(t, err)
	require.False(t, found)

	graph, err := s.LoadGraph()
	require.NoError(t, err)
	require.Equal(t, 0, graph.NodeCount())
}

func TestListCachedFiles(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	defer s.Close()

	va := vertex.New("a", "pkg.a", vertex.KindFunction, "a.go")
	vb := vertex.New("b", "pkg.b", vertex.KindFunction, "b.go")
	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{va}, 1))
	require.NoError(t, s.UpdateFile("b.go", []vertex.Vertex{vb}, 1))

	files, err := s.ListCachedFiles()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go", "b.go"}, files)
}

func TestLoadGraphResolvesCallsAcrossFiles(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	defer s.Close()

	caller := vertex.New("caller", "pkg.caller", vertex.KindFunction, "a.go")
	caller.References = []string{"callee"}
	callee := vertex.New("callee", "pkg.callee", vertex.KindFunction, "b.go")

	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{caller}, 1))
	require.NoError(t, s.UpdateFile("b.go", []vertex.Vertex{callee}, 1))

	graph, err := s.LoadGraph()
	require.NoError(t, err)

	callees := graph.GetCallees(caller.ID)
	require.Len(t, callees, 1)
	require.Equal(t, callee.ID, callees[0].ID)
}

func TestClearWipesAllBuckets(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenOrCreate(path, nil)
	require.NoError(t, err)
	defer s.Close()

	v := vertex.New("f", "pkg.f", vertex.KindFunction, "a.go")
	require.NoError(t, s.UpdateFile("a.go", []vertex.Vertex{v}, 1))
	require.NoError(t, s.Clear())

	files, err := s.ListCachedFiles()
	require.NoError(t, err)
	require.Empty(t, files)

	version, err := s.readVersion()
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, version)
}

func TestErrVersionMismatchIsDistinguishable(t *testing.T) {
	require.True(t, errors.Is(cgerrors.ErrVersionMismatch, cgerrors.ErrVersionMismatch))
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestLabelDimTextCountTextStripColorCodes(t *testing.T) {
	require.Equal(t, "Project:", Label("Project:"))
	require.Equal(t, "/tmp/x", DimText("/tmp/x"))
	require.Equal(t, "42", CountText(42))
}

func TestInitColorsDisablesWhenNoColorRequested(t *testing.T) {
	InitColors(true)
	require.True(t, color.NoColor)
}

func TestNewIndexProgressBarNilWhenQuiet(t *testing.T) {
	require.Nil(t, NewIndexProgressBar(100, true))
}

func TestNewIndexProgressBarNilWhenTotalIsZero(t *testing.T) {
	require.Nil(t, NewIndexProgressBar(0, false))
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestHeaderAndSubHeaderWriteToStdout(t *testing.T) {
	out := captureStdout(t, func() { Header("Project Status") })
	require.Contains(t, out, "Project Status")

	out = captureStdout(t, func() { SubHeader("Indexing:") })
	require.Contains(t, out, "Indexing:")
}

func TestSuccessAndInfoWriteToStdout(t *testing.T) {
	out := captureStdout(t, func() { Success("done") })
	require.Contains(t, out, "done")

	out = captureStdout(t, func() { Successf("indexed %d files", 3) })
	require.Contains(t, out, "indexed 3 files")

	out = captureStdout(t, func() { Info("heads up") })
	require.Contains(t, out, "heads up")

	out = captureStdout(t, func() { Infof("project %s", "codegraph") })
	require.Contains(t, out, "project codegraph")
}

func TestWarningAndErrorMsgWriteToStderr(t *testing.T) {
	out := captureStderr(t, func() { Warning("careful") })
	require.Contains(t, out, "careful")

	out = captureStderr(t, func() { Warningf("retrying %d", 2) })
	require.Contains(t, out, "retrying 2")

	out = captureStderr(t, func() { ErrorMsg("boom") })
	require.Contains(t, out, "boom")
}

func TestExportedColorsAreUsable(t *testing.T) {
	var buf bytes.Buffer
	Cyan.Fprint(&buf, "cyan")
	Green.Fprint(&buf, "green")
	Yellow.Fprint(&buf, "yellow")
	Dim.Fprint(&buf, "dim")
	require.Equal(t, "cyangreenyellowdim", buf.String())
}

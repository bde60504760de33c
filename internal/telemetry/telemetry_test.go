// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestObserveQueryRecordsDurationAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQuery("discover", 0.01, nil)
	m.ObserveQuery("discover", 0.02, errors.New("boom"))

	families, err := reg.Gather()
	require.NoError(t, err)

	var errCount float64
	var sampleCount uint64
	for _, fam := range families {
		switch fam.GetName() {
		case "codegraph_query_errors_total":
			for _, metric := range fam.GetMetric() {
				errCount += metric.GetCounter().GetValue()
			}
		case "codegraph_query_duration_seconds":
			for _, metric := range fam.GetMetric() {
				sampleCount += metric.GetHistogram().GetSampleCount()
			}
		}
	}
	require.Equal(t, float64(1), errCount)
	require.Equal(t, uint64(2), sampleCount)
}

func TestGraphGaugesAreSettable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.GraphNodeCount.Set(42)
	m.GraphEdgeCount.Set(7)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			if g := metric.GetGauge(); g != nil {
				values[fam.GetName()] = g.GetValue()
			}
		}
	}
	require.Equal(t, float64(42), values["codegraph_graph_nodes"])
	require.Equal(t, float64(7), values["codegraph_graph_edges"])
}

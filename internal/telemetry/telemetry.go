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

// Package telemetry exposes the Prometheus counters and histograms that
// the index command and the query server record against, plus an HTTP
// handler to serve them.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every counter/histogram this binary registers. Callers
// hold one process-wide instance: the index command records the index and
// graph-size metrics after a run, and rpcserver.New takes it for the query
// metrics. IndexCacheMiss and WatchEvents are registered but not recorded.
type Metrics struct {
	IndexDuration  prometheus.Histogram
	IndexFiles     prometheus.Counter
	IndexCacheHits prometheus.Counter
	IndexCacheMiss prometheus.Counter
	WatchEvents    *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	QueryErrors    *prometheus.CounterVec
	GraphNodeCount prometheus.Gauge
	GraphEdgeCount prometheus.Gauge
}

// New registers a fresh Metrics set against reg. Pass prometheus.NewRegistry()
// in tests to avoid the global default registry's duplicate-registration
// panics across parallel test runs.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IndexDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "codegraph_index_duration_seconds",
			Help:    "Duration of a full indexing run.",
			Buckets: prometheus.DefBuckets,
		}),
		IndexFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_index_files_total",
			Help: "Files freshly parsed across all indexing runs.",
		}),
		IndexCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_index_cache_hits_total",
			Help: "Files served from the on-disk cache across all indexing runs.",
		}),
		IndexCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_index_cache_misses_total",
			Help: "Files re-parsed due to a cache miss across all indexing runs.",
		}),
		WatchEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codegraph_watch_events_total",
			Help: "Filesystem changes applied by the watcher, by kind.",
		}, []string{"kind"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codegraph_query_duration_seconds",
			Help:    "Duration of a query-surface call, by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		QueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codegraph_query_errors_total",
			Help: "Query-surface calls that returned an error, by method.",
		}, []string{"method"}),
		GraphNodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "codegraph_graph_nodes",
			Help: "Vertex count of the currently served graph.",
		}),
		GraphEdgeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "codegraph_graph_edges",
			Help: "Edge count of the currently served graph.",
		}),
	}

	reg.MustRegister(
		m.IndexDuration, m.IndexFiles, m.IndexCacheHits, m.IndexCacheMiss,
		m.WatchEvents, m.QueryDuration, m.QueryErrors,
		m.GraphNodeCount, m.GraphEdgeCount,
	)
	return m
}

// ObserveQuery records a query-surface call's duration and, when err is
// non-nil, increments the error counter for method.
func (m *Metrics) ObserveQuery(method string, seconds float64, err error) {
	m.QueryDuration.WithLabelValues(method).Observe(seconds)
	if err != nil {
		m.QueryErrors.WithLabelValues(method).Inc()
	}
}

// Handler returns the Prometheus scrape endpoint for reg.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one server on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	durationHistogram *prometheus.HistogramVec
	cellsRendered     *prometheus.CounterVec
	tableLoadErrors   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with the Go runtime
// collector on a new registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	durationHistogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "A histogram of duration for requests.",
			Buckets: []float64{
				1e-4,
				5e-4,
				1e-3, // 1 millisecond
				5e-3,
				0.01,
				0.05,
				0.1,
				0.5,
				1, // 1 second
			},
		},
		[]string{"code", "handler", "method"},
	)
	registry.MustRegister(durationHistogram)

	cellsRendered := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hapitable_cells_rendered_total",
			Help: "A count of rendered cells by table and rendering strategy.",
		},
		[]string{"table", "kind"},
	)
	registry.MustRegister(cellsRendered)

	tableLoadErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hapitable_table_load_errors_total",
			Help: "A count of failed table loads.",
		},
		[]string{"table"},
	)
	registry.MustRegister(tableLoadErrors)

	return &Metrics{
		registry:          registry,
		durationHistogram: durationHistogram,
		cellsRendered:     cellsRendered,
		tableLoadErrors:   tableLoadErrors,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records the request duration of handler under label.
func (m *Metrics) InstrumentHandler(handler http.Handler, label string) http.Handler {
	durationCollector := m.durationHistogram.MustCurryWith(prometheus.Labels{"handler": label})
	return promhttp.InstrumentHandlerDuration(durationCollector, handler)
}

func (m *Metrics) cells(table, kind string, n int) {
	m.cellsRendered.WithLabelValues(table, kind).Add(float64(n))
}

func (m *Metrics) loadError(table string) {
	m.tableLoadErrors.WithLabelValues(table).Inc()
}

// Copyright © 2025 The concordium-tools Authors
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ccdencoder"

type Metrics interface {
	Registry() *prometheus.Registry
	RecordRequest(route string, status int, duration time.Duration)
	SchemaCacheHit()
	SchemaCacheMiss()
}

type encoderMetrics struct {
	registry          *prometheus.Registry
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	schemaCacheHits   prometheus.Counter
	schemaCacheMisses prometheus.Counter
}

func NewMetrics(ctx context.Context) Metrics {
	m := &encoderMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Encoding API requests by route and response status",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Encoding API request latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"route"}),
		schemaCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "schema_cache_hits_total",
			Help:      "Module schemas served from the parsed schema cache",
		}),
		schemaCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "schema_cache_misses_total",
			Help:      "Module schemas that had to be parsed",
		}),
	}
	m.registry.MustRegister(m.requests, m.requestDuration, m.schemaCacheHits, m.schemaCacheMisses)
	return m
}

func (m *encoderMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *encoderMetrics) RecordRequest(route string, status int, duration time.Duration) {
	m.requests.With(prometheus.Labels{"route": route, "status": strconv.Itoa(status)}).Inc()
	m.requestDuration.With(prometheus.Labels{"route": route}).Observe(duration.Seconds())
}

func (m *encoderMetrics) SchemaCacheHit() {
	m.schemaCacheHits.Inc()
}

func (m *encoderMetrics) SchemaCacheMiss() {
	m.schemaCacheMisses.Inc()
}

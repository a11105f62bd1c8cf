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

package metricsserver

import (
	"context"
	"net"
	"net/http"

	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/bisgardo/concordium-tools/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsServer interface {
	Start() error
	Stop()
	// Addr is nil when the server is disabled
	Addr() net.Addr
}

// NewMetricsServer exposes the registry on /metrics, when enabled
func NewMetricsServer(ctx context.Context, registry *prometheus.Registry, conf *ccdconf.MetricsServerConfig) (MetricsServer, error) {
	s := &metricsServer{}
	if !confutil.Bool(conf.Enabled, *ccdconf.MetricsServerDefaults.Enabled) {
		return s, nil
	}
	r, err := router.NewRouter(ctx, "metrics", &conf.HTTPServerConfig)
	if err != nil {
		return nil, err
	}
	r.HandleFunc("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP, http.MethodGet)
	s.router = r
	return s, nil
}

type metricsServer struct {
	router router.Router
}

func (s *metricsServer) Start() error {
	if s.router != nil {
		return s.router.Start()
	}
	return nil
}

func (s *metricsServer) Stop() {
	if s.router != nil {
		s.router.Stop()
	}
}

func (s *metricsServer) Addr() net.Addr {
	if s.router != nil {
		return s.router.Addr()
	}
	return nil
}

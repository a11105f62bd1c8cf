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
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServerDisabled(t *testing.T) {
	s, err := NewMetricsServer(context.Background(), prometheus.NewRegistry(), &ccdconf.MetricsServerConfig{})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Nil(t, s.Addr())
	s.Stop()
}

func TestMetricsServerServesRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "unittest_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Add(3)

	s, err := NewMetricsServer(context.Background(), registry, &ccdconf.MetricsServerConfig{
		Enabled: confutil.P(true),
		HTTPServerConfig: ccdconf.HTTPServerConfig{
			Address: confutil.P("127.0.0.1"),
			Port:    confutil.P(0),
		},
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	res, err := http.Get(fmt.Sprintf("http://%s/metrics", s.Addr()))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "unittest_total 3")
}

func TestMetricsServerBadConfig(t *testing.T) {
	_, err := NewMetricsServer(context.Background(), prometheus.NewRegistry(), &ccdconf.MetricsServerConfig{
		Enabled: confutil.P(true),
	})
	assert.Regexp(t, "CE010101", err)
}

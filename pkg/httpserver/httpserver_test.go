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

package httpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, conf *ccdconf.HTTPServerConfig, handler http.HandlerFunc) (string, func()) {
	conf.Address = confutil.P("127.0.0.1")
	conf.Port = confutil.P(0)
	s, err := NewServer(context.Background(), "unittest", conf, handler)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	return fmt.Sprintf("http://%s", s.Addr()), s.Stop
}

func TestMissingPort(t *testing.T) {
	_, err := NewServer(context.Background(), "unittest", &ccdconf.HTTPServerConfig{}, nil)
	assert.Regexp(t, "CE010101.*unittest", err)
}

func TestBadTLSConfig(t *testing.T) {
	_, err := NewServer(context.Background(), "unittest", &ccdconf.HTTPServerConfig{
		Port: confutil.P(0),
		TLS: ccdconf.TLSConfig{
			Enabled: true,
			CAFile:  "!!!!!badness",
		},
	}, nil)
	assert.Regexp(t, "CE010201", err)
}

func TestBadAddress(t *testing.T) {
	_, err := NewServer(context.Background(), "unittest", &ccdconf.HTTPServerConfig{
		Port:    confutil.P(0),
		Address: confutil.P(":::::badness"),
	}, nil)
	assert.Regexp(t, "CE010100", err)
}

func TestServeOK(t *testing.T) {
	url, done := newTestServer(t, &ccdconf.HTTPServerConfig{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		_, err := w.Write([]byte("0a0b"))
		require.NoError(t, err)
	})
	defer done()

	res, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "0a0b", string(data))
}

func TestStopIdempotent(t *testing.T) {
	_, done := newTestServer(t, &ccdconf.HTTPServerConfig{}, func(w http.ResponseWriter, r *http.Request) {})
	done()
	done()
}

func TestForceShutdown(t *testing.T) {
	requestStarted := make(chan struct{})
	url, done := newTestServer(t, &ccdconf.HTTPServerConfig{
		ShutdownTimeout: confutil.P("1ns"),
	}, func(w http.ResponseWriter, r *http.Request) {
		close(requestStarted)
		<-r.Context().Done()
	})

	returned := make(chan error)
	go func() {
		_, err := http.Post(url, "application/json", nil)
		returned <- err
	}()
	<-requestStarted

	done()
	assert.Regexp(t, "EOF", <-returned)
}

func TestServeCustomTimeout(t *testing.T) {
	url, done := newTestServer(t, &ccdconf.HTTPServerConfig{}, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.WriteHeader(http.StatusRequestTimeout)
	})
	defer done()

	req, err := http.NewRequest(http.MethodPost, url, nil)
	require.NoError(t, err)
	req.Header.Set(RequestTimeoutHeader, "1ms")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestTimeout, res.StatusCode)
}

func TestRequestTimeoutHeader(t *testing.T) {
	ctx := context.Background()
	rt := requestTimeouts{def: 10 * time.Second, max: 20 * time.Second}
	assert.Equal(t, 10*time.Second, rt.requestTimeout(ctx, ""))
	assert.Equal(t, 1*time.Second, rt.requestTimeout(ctx, "1"))
	assert.Equal(t, 1*time.Millisecond, rt.requestTimeout(ctx, "1ms"))
	assert.Equal(t, 20*time.Second, rt.requestTimeout(ctx, "30"))
	assert.Equal(t, 10*time.Second, rt.requestTimeout(ctx, "wrongness"))
	assert.Equal(t, 10*time.Second, rt.requestTimeout(ctx, "0"))
	assert.Equal(t, 10*time.Second, rt.requestTimeout(ctx, "-5"))
	assert.Equal(t, 10*time.Second, rt.requestTimeout(ctx, "-1s"))
	assert.Equal(t, 10*time.Second, rt.requestTimeout(ctx, "999us"))
}

func TestOnlyAcceptsTLSConnectionsWhenTLSEnabled(t *testing.T) {
	url, done := newTestServer(t, &ccdconf.HTTPServerConfig{
		TLS: ccdconf.TLSConfig{Enabled: true},
	}, func(w http.ResponseWriter, r *http.Request) {})
	defer done()

	// plain HTTP spoken to an HTTPS listener gets a 400 from the TLS stack
	res, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDebugServer(t *testing.T) {
	s, err := NewDebugServer(context.Background(), &ccdconf.HTTPServerConfig{
		Address: confutil.P("127.0.0.1"),
		Port:    confutil.P(0),
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	res, err := http.Get(fmt.Sprintf("http://%s/debug/pprof/goroutine?debug=2", s.Addr()))
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Regexp(t, "httpserver_test.go", string(b))
}

func TestDebugServerMissingPort(t *testing.T) {
	_, err := NewDebugServer(context.Background(), &ccdconf.HTTPServerConfig{})
	assert.Regexp(t, "CE010101.*debug", err)
}

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
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/bisgardo/concordium-tools/pkg/log"
	"github.com/bisgardo/concordium-tools/pkg/tlsconf"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// RequestTimeoutHeader lets a caller shorten (or, up to the configured maximum,
// extend) the server side deadline of a single request. The value is either a
// number of seconds or a Go duration such as "500ms".
const RequestTimeoutHeader = "Request-Timeout"

// shorter Request-Timeout values fall back to the default
const minRequestTimeout = time.Millisecond

type Server interface {
	Start() error
	Stop()
	Addr() net.Addr
}

var _ Server = &httpServer{}

type httpServer struct {
	ctx             context.Context
	cancelCtx       func()
	description     string
	listener        net.Listener
	httpServer      *http.Server
	serveDone       chan error
	shutdownTimeout time.Duration
	started         bool
}

type requestTimeouts struct {
	def time.Duration
	max time.Duration
}

func NewServer(ctx context.Context, description string, conf *ccdconf.HTTPServerConfig, handler http.Handler) (_ Server, err error) {
	if conf.Port == nil {
		return nil, i18n.NewError(ctx, msgs.MsgHTTPServerMissingPort, description)
	}

	s := &httpServer{
		description:     description,
		serveDone:       make(chan error, 1),
		shutdownTimeout: confutil.DurationMin(conf.ShutdownTimeout, 0, *ccdconf.HTTPDefaults.ShutdownTimeout),
	}
	s.ctx, s.cancelCtx = context.WithCancel(ctx)

	tlsConfig, err := tlsconf.BuildTLSConfig(ctx, &conf.TLS, tlsconf.ServerType)
	if err != nil {
		return nil, err
	}

	listenAddr := fmt.Sprintf("%s:%d", confutil.StringNotEmpty(conf.Address, *ccdconf.HTTPDefaults.Address), *conf.Port)
	if s.listener, err = net.Listen("tcp", listenAddr); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgHTTPServerStartFailed, listenAddr)
	}
	if tlsConfig != nil {
		s.listener = tls.NewListener(s.listener, tlsConfig)
	}
	log.L(ctx).Infof("%s server listening on %s (tls=%t)", description, s.listener.Addr(), tlsConfig != nil)

	timeouts := requestTimeouts{
		def: confutil.DurationMin(conf.DefaultRequestTimeout, time.Second, *ccdconf.HTTPDefaults.DefaultRequestTimeout),
		max: confutil.DurationMin(conf.MaxRequestTimeout, time.Second, *ccdconf.HTTPDefaults.MaxRequestTimeout),
	}
	// socket level timeouts must outlast the longest permitted request
	readTimeout := confutil.DurationMin(conf.ReadTimeout, timeouts.max+time.Second, "0")
	writeTimeout := confutil.DurationMin(conf.WriteTimeout, timeouts.max+time.Second, "0")
	log.L(ctx).Debugf("%s server timeouts: read=%s write=%s request=%s/%s", description, readTimeout, writeTimeout, timeouts.def, timeouts.max)

	handler = s.accessLog(handler, timeouts)
	handler = WrapCorsIfEnabled(ctx, handler, &conf.CORS)

	s.httpServer = &http.Server{
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		TLSConfig:         tlsConfig,
		ConnContext: func(connCtx context.Context, c net.Conn) context.Context {
			l := log.L(ctx).WithField("req", shortID())
			l.Debugf("New %s connection: remote=%s local=%s", description, c.RemoteAddr(), c.LocalAddr())
			return log.WithLogger(connCtx, l)
		},
	}
	return s, nil
}

func shortID() string {
	return uuid.NewString()[:8]
}

// requestTimeout resolves the deadline for one request from its Request-Timeout header
func (rt requestTimeouts) requestTimeout(ctx context.Context, header string) time.Duration {
	if header == "" {
		return rt.def
	}
	var timeout time.Duration
	seconds, err := strconv.ParseInt(header, 10, 32)
	if err == nil {
		timeout = time.Duration(seconds) * time.Second
	} else if timeout, err = time.ParseDuration(header); err != nil {
		log.L(ctx).Warnf("Invalid %s header '%s': %s", RequestTimeoutHeader, header, err)
		return rt.def
	}
	if timeout < minRequestTimeout {
		log.L(ctx).Warnf("%s header '%s' is below the minimum of %s", RequestTimeoutHeader, header, minRequestTimeout)
		return rt.def
	}
	if timeout > rt.max {
		return rt.max
	}
	return timeout
}

// statusRecorder remembers the status written by the handler, for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	sr.status = statusCode
	sr.ResponseWriter.WriteHeader(statusCode)
}

func (s *httpServer) accessLog(handler http.Handler, timeouts requestTimeouts) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(req.Context(), timeouts.requestTimeout(req.Context(), req.Header.Get(RequestTimeoutHeader)))
		defer cancel()
		req = req.WithContext(ctx)

		log.L(ctx).Debugf("--> %s %s (%s)", req.Method, req.URL.Path, s.description)
		sr := &statusRecorder{ResponseWriter: res, status: http.StatusOK}
		handler.ServeHTTP(sr, req)
		log.L(ctx).Debugf("<-- %s %s [%d] (%.2fms)", req.Method, req.URL.Path, sr.status, float64(time.Since(start))/float64(time.Millisecond))
	})
}

func (s *httpServer) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *httpServer) Start() error {
	s.started = true
	go func() {
		s.serveDone <- s.httpServer.Serve(s.listener)
	}()
	return nil
}

func (s *httpServer) Stop() {
	if !s.started {
		// release the port of a server that never started serving
		_ = s.listener.Close()
		return
	}
	s.started = false
	log.L(s.ctx).Infof("%s server shutting down", s.description)

	shutdownCtx, cancel := context.WithTimeout(s.ctx, s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.L(s.ctx).Warnf("%s server terminating after waiting %s for shutdown: %s", s.description, s.shutdownTimeout, err)
		_ = s.httpServer.Close()
	}
	s.cancelCtx()
	err := <-s.serveDone
	log.L(s.ctx).Infof("%s server ended (err=%v)", s.description, err)
}

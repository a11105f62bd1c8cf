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

package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bisgardo/concordium-tools/internal/encoder"
	"github.com/bisgardo/concordium-tools/internal/metrics"
	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/bisgardo/concordium-tools/pkg/log"
	"github.com/bisgardo/concordium-tools/pkg/router"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

const (
	RouteInit   = "/init"
	RouteUpdate = "/update"
	RouteSchema = "/schema"
	RouteType   = "/type"
)

type Server interface {
	Start() error
	Stop()
	Addr() net.Addr
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

type apiServer struct {
	router      router.Router
	encoder     encoder.Encoder
	metrics     metrics.Metrics
	maxBodySize int64
}

func NewServer(ctx context.Context, conf *ccdconf.APIConfig, enc encoder.Encoder, m metrics.Metrics) (Server, error) {
	s := &apiServer{
		encoder:     enc,
		metrics:     m,
		maxBodySize: confutil.ByteSize(conf.MaxRequestBodySize, 1, *ccdconf.APIDefaults.MaxRequestBodySize),
	}
	httpConf := conf.HTTPServerConfig
	if httpConf.Port == nil {
		httpConf.Port = ccdconf.APIDefaults.Port
	}
	r, err := router.NewRouter(ctx, "api", &httpConf)
	if err != nil {
		return nil, err
	}
	r.HandleFunc(RouteInit, s.route("init", s.encodeInit), http.MethodPost)
	r.HandleFunc(RouteUpdate, s.route("update", s.encodeUpdate), http.MethodPost)
	r.HandleFunc(RouteSchema, s.route("schema", s.describeSchema), http.MethodPost)
	r.HandleFunc(RouteType, s.route("type", s.encodeType), http.MethodPost)
	r.NotFoundHandler(s.route("not_found", func(req *http.Request) (interface{}, error) {
		return nil, i18n.NewError(req.Context(), msgs.MsgAPIRouteNotFound, req.Method, req.URL.Path)
	}))
	r.MethodNotAllowedHandler(s.route("method_not_allowed", func(req *http.Request) (interface{}, error) {
		return nil, i18n.NewError(req.Context(), msgs.MsgAPIMethodNotAllowed, req.Method, req.URL.Path)
	}))
	s.router = r
	log.L(ctx).Debugf("API max request body size: %d bytes", s.maxBodySize)
	return s, nil
}

func (s *apiServer) Start() error {
	return s.router.Start()
}

func (s *apiServer) Stop() {
	s.router.Stop()
}

func (s *apiServer) Addr() net.Addr {
	return s.router.Addr()
}

// routeHandler returns a string to be sent as plain text, or any other value to be sent as JSON
type routeHandler func(req *http.Request) (interface{}, error)

func (s *apiServer) route(name string, handler routeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		result, err := handler(req)
		var status int
		if err != nil {
			status = s.writeError(w, req, err)
		} else {
			status = s.writeResult(w, req, result)
		}
		s.metrics.RecordRequest(name, status, time.Since(start))
	}
}

func (s *apiServer) writeResult(w http.ResponseWriter, req *http.Request, result interface{}) int {
	if text, ok := result.(string); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return http.StatusOK
	}
	b, err := json.Marshal(result)
	if err != nil {
		return s.writeError(w, req, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
	return http.StatusOK
}

func (s *apiServer) writeError(w http.ResponseWriter, req *http.Request, err error) int {
	status := http.StatusInternalServerError
	var ffe i18n.FFError
	if errors.As(err, &ffe) && ffe.HTTPStatus() >= 400 {
		status = ffe.HTTPStatus()
	}
	if status >= http.StatusInternalServerError {
		log.L(req.Context()).Errorf("%s %s failed: %s", req.Method, req.URL.Path, err)
	} else {
		log.L(req.Context()).Debugf("%s %s rejected [%d]: %s", req.Method, req.URL.Path, status, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&ErrorResponse{Error: err.Error()})
	return status
}

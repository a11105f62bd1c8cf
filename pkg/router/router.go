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

package router

import (
	"context"
	"net"
	"net/http"

	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/httpserver"
	"github.com/gorilla/mux"
)

// Router binds routes to an HTTP server, so the server lifecycle and the
// handler registration share one object
type Router interface {
	httpserver.Server
	HandleFunc(path string, f http.HandlerFunc, methods ...string)
	PathPrefixHandleFunc(prefix string, f http.HandlerFunc)
	NotFoundHandler(f http.HandlerFunc)
	MethodNotAllowedHandler(f http.HandlerFunc)
}

func NewRouter(ctx context.Context, description string, conf *ccdconf.HTTPServerConfig) (Router, error) {
	r := &router{
		ctx:    ctx,
		router: mux.NewRouter(),
	}
	var err error
	if r.server, err = httpserver.NewServer(ctx, description, conf, r.router); err != nil {
		return nil, err
	}
	return r, nil
}

var _ Router = &router{}

type router struct {
	ctx    context.Context
	router *mux.Router
	server httpserver.Server
}

// HandleFunc restricts the route to the given methods, or accepts any method if none are given
func (r *router) HandleFunc(path string, f http.HandlerFunc, methods ...string) {
	route := r.router.HandleFunc(path, f)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

func (r *router) PathPrefixHandleFunc(prefix string, f http.HandlerFunc) {
	r.router.PathPrefix(prefix).HandlerFunc(f)
}

func (r *router) NotFoundHandler(f http.HandlerFunc) {
	r.router.NotFoundHandler = f
}

func (r *router) MethodNotAllowedHandler(f http.HandlerFunc) {
	r.router.MethodNotAllowedHandler = f
}

func (r *router) Addr() (a net.Addr) {
	if r.server != nil {
		a = r.server.Addr()
	}
	return a
}

func (r *router) Start() error {
	if r.server != nil {
		return r.server.Start()
	}
	return nil
}

func (r *router) Stop() {
	if r.server != nil {
		r.server.Stop()
	}
}

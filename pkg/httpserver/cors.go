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
	"net/http"

	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/bisgardo/concordium-tools/pkg/log"
	"github.com/rs/cors"
)

// CORSDefaults allow browsers on any origin to POST parameters for encoding
var CORSDefaults = &ccdconf.CORSConfig{
	AllowCredentials: confutil.P(false),
	AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders:   []string{"Content-Type", RequestTimeoutHeader},
	AllowedOrigins:   []string{"*"},
	MaxAge:           confutil.P("0"),
}

func WrapCorsIfEnabled(ctx context.Context, chain http.Handler, conf *ccdconf.CORSConfig) http.Handler {
	if !conf.Enabled {
		return chain
	}
	options := cors.Options{
		AllowedOrigins:   confutil.StringSlice(conf.AllowedOrigins, CORSDefaults.AllowedOrigins),
		AllowedMethods:   confutil.StringSlice(conf.AllowedMethods, CORSDefaults.AllowedMethods),
		AllowedHeaders:   confutil.StringSlice(conf.AllowedHeaders, CORSDefaults.AllowedHeaders),
		AllowCredentials: confutil.Bool(conf.AllowCredentials, *CORSDefaults.AllowCredentials),
		MaxAge:           int(confutil.DurationSeconds(conf.MaxAge, 0, *CORSDefaults.MaxAge)),
		Debug:            conf.Debug,
	}
	log.L(ctx).Debugf("CORS origins=%v methods=%v headers=%v creds=%t maxAge=%ds",
		options.AllowedOrigins, options.AllowedMethods, options.AllowedHeaders, options.AllowCredentials, options.MaxAge)
	return cors.New(options).Handler(chain)
}

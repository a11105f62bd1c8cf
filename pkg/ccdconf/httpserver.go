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

package ccdconf

import (
	"github.com/bisgardo/concordium-tools/pkg/confutil"
)

type HTTPServerConfig struct {
	TLS                   TLSConfig  `json:"tls"`
	CORS                  CORSConfig `json:"cors"`
	Address               *string    `json:"address"`
	Port                  *int       `json:"port"`
	DefaultRequestTimeout *string    `json:"defaultRequestTimeout"`
	MaxRequestTimeout     *string    `json:"maxRequestTimeout"`
	ReadTimeout           *string    `json:"readTimeout"`
	WriteTimeout          *string    `json:"writeTimeout"`
	ShutdownTimeout       *string    `json:"shutdownTimeout"`
}

var HTTPDefaults = &HTTPServerConfig{
	Address:               confutil.P("127.0.0.1"),
	DefaultRequestTimeout: confutil.P("2m"),
	MaxRequestTimeout:     confutil.P("10m"),
	ShutdownTimeout:       confutil.P("10s"),
}

type TLSConfig struct {
	Enabled    bool   `json:"enabled"`
	ClientAuth bool   `json:"clientAuth"`
	CAFile     string `json:"caFile"`
	CA         string `json:"ca"`
	CertFile   string `json:"certFile"`
	Cert       string `json:"cert"`
	KeyFile    string `json:"keyFile"`
	Key        string `json:"key"`

	// only honored by clients
	InsecureSkipHostVerify bool `json:"insecureSkipHostVerify"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	Debug            bool     `json:"debug"`
	AllowCredentials *bool    `json:"allowCredentials"`
	AllowedHeaders   []string `json:"allowedHeaders"`
	AllowedMethods   []string `json:"allowedMethods"`
	AllowedOrigins   []string `json:"allowedOrigins"`
	MaxAge           *string  `json:"maxAge"`
}

// APIConfig is the front door serving the encoding routes
type APIConfig struct {
	HTTPServerConfig   `json:",inline"`
	MaxRequestBodySize *string `json:"maxRequestBodySize"`
}

var APIDefaults = &APIConfig{
	HTTPServerConfig: HTTPServerConfig{
		Port: confutil.P(8000),
	},
	MaxRequestBodySize: confutil.P("1Mb"),
}

type DebugServerConfig struct {
	Enabled *bool `json:"enabled"`
	HTTPServerConfig
}

var DebugServerDefaults = &DebugServerConfig{
	Enabled: confutil.P(false),
}

type MetricsServerConfig struct {
	Enabled *bool `json:"enabled"`
	HTTPServerConfig
}

var MetricsServerDefaults = &MetricsServerConfig{
	Enabled: confutil.P(false),
}

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

import "github.com/bisgardo/concordium-tools/pkg/confutil"

// HTTPClientConfig configures a client of the encoder API
type HTTPClientConfig struct {
	URL               string                 `json:"url"`
	HTTPHeaders       map[string]interface{} `json:"httpHeaders"`
	TLS               TLSConfig              `json:"tls"`
	RequestTimeout    *string                `json:"requestTimeout,omitempty"`
	ConnectionTimeout *string                `json:"connectionTimeout,omitempty"`
}

var HTTPClientDefaults = &HTTPClientConfig{
	ConnectionTimeout: confutil.P("30s"),
	RequestTimeout:    confutil.P("30s"),
}

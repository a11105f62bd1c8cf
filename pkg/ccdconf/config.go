/*
 * Copyright © 2025 The concordium-tools Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ccdconf

import (
	"context"
	"os"

	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/hyperledger/firefly-common/pkg/i18n"

	"sigs.k8s.io/yaml" // because it supports JSON tags, so one set of tags serves both file formats
)

type EncoderConfig struct {
	Log           LogConfig           `json:"log"`
	API           APIConfig           `json:"api"`
	MetricsServer MetricsServerConfig `json:"metricsServer"`
	DebugServer   DebugServerConfig   `json:"debugServer"`
	SchemaCache   CacheConfig         `json:"schemaCache"`
	Schema        SchemaConfig        `json:"schema"`
}

type CacheConfig struct {
	Capacity *int `json:"capacity"`
}

var SchemaCacheDefaults = &CacheConfig{
	Capacity: confutil.P(100),
}

type SchemaConfig struct {
	// maximum nesting of types inside a module schema
	MaxTypeDepth *int `json:"maxTypeDepth"`
}

var SchemaDefaults = &SchemaConfig{
	MaxTypeDepth: confutil.P(64),
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	// Note we use the YAML parser (like Kubernetes) that handles json tags
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, err.Error())
	}

	return nil
}

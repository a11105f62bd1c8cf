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
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndParseYAMLFile(t *testing.T) {
	configFile := path.Join(t.TempDir(), "ccdencoder.yaml")
	err := os.WriteFile(configFile, []byte(`
log:
  level: debug
api:
  address: 0.0.0.0
  port: 9000
  maxRequestBodySize: 64Kb
  cors:
    enabled: true
metricsServer:
  enabled: true
  port: 6100
schemaCache:
  capacity: 5
schema:
  maxTypeDepth: 10
`), 0664)
	require.NoError(t, err)

	var conf EncoderConfig
	err = ReadAndParseYAMLFile(context.Background(), configFile, &conf)
	require.NoError(t, err)

	assert.Equal(t, "debug", *conf.Log.Level)
	assert.Equal(t, "0.0.0.0", *conf.API.Address)
	assert.Equal(t, 9000, *conf.API.Port)
	assert.Equal(t, "64Kb", *conf.API.MaxRequestBodySize)
	assert.True(t, conf.API.CORS.Enabled)
	assert.True(t, *conf.MetricsServer.Enabled)
	assert.Equal(t, 6100, *conf.MetricsServer.Port)
	assert.Equal(t, 5, *conf.SchemaCache.Capacity)
	assert.Equal(t, 10, *conf.Schema.MaxTypeDepth)
	assert.Nil(t, conf.DebugServer.Enabled)
}

func TestReadAndParseJSONFile(t *testing.T) {
	configFile := path.Join(t.TempDir(), "ccdencoder.json")
	err := os.WriteFile(configFile, []byte(`{"api":{"port":8123}}`), 0664)
	require.NoError(t, err)

	var conf EncoderConfig
	err = ReadAndParseYAMLFile(context.Background(), configFile, &conf)
	require.NoError(t, err)
	assert.Equal(t, 8123, *conf.API.Port)
}

func TestReadAndParseYAMLFileMissing(t *testing.T) {
	var conf EncoderConfig
	err := ReadAndParseYAMLFile(context.Background(), path.Join(t.TempDir(), "missing.yaml"), &conf)
	assert.Regexp(t, "CE010000", err)
}

func TestReadAndParseYAMLFileReadError(t *testing.T) {
	var conf EncoderConfig
	err := ReadAndParseYAMLFile(context.Background(), t.TempDir(), &conf)
	assert.Regexp(t, "CE010001", err)
}

func TestReadAndParseYAMLFileBadYAML(t *testing.T) {
	configFile := path.Join(t.TempDir(), "bad.yaml")
	err := os.WriteFile(configFile, []byte(`!badness`), 0664)
	require.NoError(t, err)

	var conf EncoderConfig
	err = ReadAndParseYAMLFile(context.Background(), configFile, &conf)
	assert.Regexp(t, "CE010002", err)
}

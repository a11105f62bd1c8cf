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

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/bisgardo/concordium-tools/internal/encoder"
	"github.com/bisgardo/concordium-tools/internal/metrics"
	"github.com/bisgardo/concordium-tools/internal/restapi"
	"github.com/bisgardo/concordium-tools/pkg/bootstrap"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/ccdschema"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubServer(t *testing.T, rc bootstrap.RC) *bootstrap.Options {
	var captured bootstrap.Options
	orig := runServer
	runServer = func(opts bootstrap.Options) bootstrap.RC {
		captured = opts
		return rc
	}
	t.Cleanup(func() { runServer = orig })
	return &captured
}

func TestRootCommandFlags(t *testing.T) {
	opts := stubServer(t, bootstrap.RC_OK)
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"-c", "conf.yaml", "--port", "9000"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "conf.yaml", opts.ConfigFile)
	assert.Equal(t, 9000, *opts.Port)
}

func TestRootCommandDefaultsKeepConfigPort(t *testing.T) {
	opts := stubServer(t, bootstrap.RC_OK)
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Empty(t, opts.ConfigFile)
	assert.Nil(t, opts.Port)
}

func TestRootCommandServerFailed(t *testing.T) {
	stubServer(t, bootstrap.RC_FAIL)
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Regexp(t, "CE010600.*1", cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := newRootCommand(out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestDescribeCommand(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewMetrics(ctx)
	s, err := restapi.NewServer(ctx, &ccdconf.APIConfig{
		HTTPServerConfig: ccdconf.HTTPServerConfig{Address: confutil.P("127.0.0.1"), Port: confutil.P(0)},
	}, encoder.NewEncoder(ctx, &ccdconf.EncoderConfig{}, m), m)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	schema, err := (&ccdschema.ModuleSchema{
		Version: ccdschema.V0,
		Contracts: map[string]*ccdschema.ContractSchema{
			"counter": {Init: &ccdschema.FunctionSchema{Parameter: ccdschema.Simple(ccdschema.KindU8)}},
		},
	}).Serialize(ctx)
	require.NoError(t, err)
	schemaFile := path.Join(t.TempDir(), "schema.bin")
	require.NoError(t, os.WriteFile(schemaFile, schema, 0664))

	out := &bytes.Buffer{}
	cmd := newRootCommand(out)
	cmd.SetArgs([]string{"describe", "--url", fmt.Sprintf("http://%s", s.Addr()), "--schema-version", "0", schemaFile})
	require.NoError(t, cmd.Execute())

	var description ccdschema.SchemaDescription
	require.NoError(t, json.Unmarshal(out.Bytes(), &description))
	assert.Equal(t, "V0", description.Version)
	assert.Equal(t, "u8", description.Contracts["counter"].Init.Parameter.Type)
}

func TestDescribeCommandErrors(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"describe", path.Join(t.TempDir(), "missing.bin")})
	assert.Regexp(t, "CE010601", cmd.Execute())

	schemaFile := path.Join(t.TempDir(), "schema.bin")
	require.NoError(t, os.WriteFile(schemaFile, []byte{0}, 0664))
	cmd = newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"describe", "--url", "not a url", schemaFile})
	assert.Regexp(t, "CE010402", cmd.Execute())
}

func TestConvertCommand(t *testing.T) {
	ctx := context.Background()
	legacy := &ccdschema.ModuleSchema{
		Version: ccdschema.V1,
		Contracts: map[string]*ccdschema.ContractSchema{
			"counter": {
				Init:    &ccdschema.FunctionSchema{Parameter: ccdschema.Simple(ccdschema.KindU8)},
				Receive: map[string]*ccdschema.FunctionSchema{"inc": {ReturnValue: ccdschema.Simple(ccdschema.KindU32)}},
			},
		},
	}
	schema, err := legacy.Serialize(ctx)
	require.NoError(t, err)
	dir := t.TempDir()
	schemaFile := path.Join(dir, "schema.bin")
	require.NoError(t, os.WriteFile(schemaFile, schema, 0664))

	// without a version the legacy layout cannot be read
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"convert", schemaFile})
	assert.Regexp(t, "CE020002", cmd.Execute())

	outFile := path.Join(dir, "versioned.bin")
	cmd = newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"convert", "--schema-version", "1", "-o", outFile, schemaFile})
	require.NoError(t, cmd.Execute())
	converted, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xff, 0xff, 0x01}, schema...), converted)

	parsed, err := ccdschema.ParseModuleSchema(ctx, converted, nil)
	require.NoError(t, err)
	assert.True(t, parsed.Versioned)
	assert.Equal(t, legacy.Contracts, parsed.Contracts)

	out := &bytes.Buffer{}
	cmd = newRootCommand(out)
	cmd.SetArgs([]string{"convert", "--schema-version", "1", "--base64", schemaFile})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, base64.StdEncoding.EncodeToString(converted)+"\n", out.String())
}

func TestConvertCommandErrors(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"convert", path.Join(t.TempDir(), "missing.bin")})
	assert.Regexp(t, "CE010601", cmd.Execute())

	schemaFile := path.Join(t.TempDir(), "schema.bin")
	require.NoError(t, os.WriteFile(schemaFile, []byte{0xff, 0xff, 0x03, 0, 0, 0, 0}, 0664))
	cmd = newRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"convert", "-o", path.Join(t.TempDir(), "missing-dir", "out.bin"), schemaFile})
	assert.Regexp(t, "CE010602", cmd.Execute())
}

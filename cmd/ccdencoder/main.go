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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/pkg/bootstrap"
	"github.com/bisgardo/concordium-tools/pkg/ccdclient"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/ccdschema"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/spf13/cobra"
)

// set at build time with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

var runServer = bootstrap.Run

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var configFile string
	var port int
	root := &cobra.Command{
		Use:          "ccdencoder",
		Short:        "HTTP service encoding Concordium smart contract parameters from JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := bootstrap.Options{ConfigFile: configFile}
			if cmd.Flags().Changed("port") {
				opts.Port = &port
			}
			if rc := runServer(opts); rc != bootstrap.RC_OK {
				return i18n.NewError(cmd.Context(), msgs.MsgCLIServerFailed, rc)
			}
			return nil
		},
	}
	root.SetOut(out)
	root.Flags().StringVarP(&configFile, "config", "c", "", "YAML or JSON config file (defaults apply when omitted)")
	root.Flags().IntVar(&port, "port", 8000, "API listen port, overriding the config file")
	root.AddCommand(newVersionCommand(), newDescribeCommand(), newConvertCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
		},
	}
}

// newDescribeCommand asks a running server to describe a binary schema file
func newDescribeCommand() *cobra.Command {
	var serverURL string
	var schemaVersion uint8
	cmd := &cobra.Command{
		Use:   "describe <schema-file>",
		Short: "Describe the contracts of a module schema using a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := os.ReadFile(args[0])
			if err != nil {
				return i18n.WrapError(ctx, err, msgs.MsgCLISchemaFileRead, args[0])
			}
			var version *ccdschema.SchemaVersion
			if cmd.Flags().Changed("schema-version") {
				v := ccdschema.SchemaVersion(schemaVersion)
				version = &v
			}
			c, err := ccdclient.New(ctx, &ccdconf.HTTPClientConfig{URL: serverURL})
			if err != nil {
				return err
			}
			description, err := c.DescribeSchema(ctx, schema, version)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(description)
		},
	}
	cmd.Flags().StringVar(&serverURL, "url", "http://127.0.0.1:8000", "Base URL of the encoder server")
	cmd.Flags().Uint8Var(&schemaVersion, "schema-version", 0, "Version of an unversioned schema")
	return cmd
}

// newConvertCommand rewrites a legacy unversioned schema file in the
// versioned layout, so it no longer needs a schema version alongside it
func newConvertCommand() *cobra.Command {
	var schemaVersion uint8
	var output string
	var asBase64 bool
	cmd := &cobra.Command{
		Use:   "convert <schema-file>",
		Short: "Convert a module schema file to the versioned schema layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return i18n.WrapError(ctx, err, msgs.MsgCLISchemaFileRead, args[0])
			}
			opts := &ccdschema.ParseOptions{}
			if cmd.Flags().Changed("schema-version") {
				v := ccdschema.SchemaVersion(schemaVersion)
				opts.FallbackVersion = &v
			}
			m, err := ccdschema.ParseModuleSchema(ctx, data, opts)
			if err != nil {
				return err
			}
			m.Versioned = true
			converted, err := m.Serialize(ctx)
			if err != nil {
				return err
			}
			if asBase64 {
				converted = []byte(base64.StdEncoding.EncodeToString(converted) + "\n")
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(converted)
				return err
			}
			if err := os.WriteFile(output, converted, 0644); err != nil {
				return i18n.WrapError(ctx, err, msgs.MsgCLISchemaFileWrite, output)
			}
			return nil
		},
	}
	cmd.Flags().Uint8Var(&schemaVersion, "schema-version", 0, "Version of an unversioned schema")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to stdout)")
	cmd.Flags().BoolVar(&asBase64, "base64", false, "Write base64 text, as taken by the API, instead of binary")
	return cmd
}

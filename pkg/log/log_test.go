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

package log

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogging(t *testing.T) {
	t.Cleanup(func() {
		InitConfig(&ccdconf.LogConfig{})
	})
}

func TestLogContext(t *testing.T) {
	ctx := WithLogField(context.Background(), "contract", "cis2_nft")
	assert.Equal(t, "cis2_nft", L(ctx).Data["contract"])
}

func TestLogContextLimited(t *testing.T) {
	ctx := WithLogField(context.Background(), "schema", "0123456789012345678901234567890123456789012345678901234567890123456789")
	assert.Equal(t, "0123456789012345678901234567890123456789012345678901234567890...", L(ctx).Data["schema"])
}

func TestRootLoggerWithoutContext(t *testing.T) {
	assert.Equal(t, rootLogger, L(context.Background()))
}

func TestSettingLevels(t *testing.T) {
	resetLogging(t)

	SetLevel("eRrOr")
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
	assert.Equal(t, "error", GetLevel())

	SetLevel("WARNING")
	assert.Equal(t, "warn", GetLevel())

	SetLevel("DEBUG")
	assert.True(t, IsDebugEnabled())
	assert.Equal(t, "debug", GetLevel())

	SetLevel("trace")
	assert.True(t, IsTraceEnabled())
	assert.Equal(t, "trace", GetLevel())

	SetLevel("something else")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.Equal(t, "info", GetLevel())
}

func TestSetFormattingUTC(t *testing.T) {
	resetLogging(t)
	InitConfig(&ccdconf.LogConfig{
		DisableColor: confutil.P(true),
		UTC:          confutil.P(true),
	})
	_, isUTC := logrus.StandardLogger().Formatter.(*utcFormat)
	assert.True(t, isUTC)
	L(context.Background()).Infof("time in UTC")
}

func TestSetFormattingStdout(t *testing.T) {
	resetLogging(t)
	InitConfig(&ccdconf.LogConfig{
		Output: confutil.P("stdout"),
	})
	assert.Equal(t, os.Stdout, logrus.StandardLogger().Out)
	L(context.Background()).Infof("to stdout")
}

func TestSetFormattingDetailed(t *testing.T) {
	resetLogging(t)
	InitConfig(&ccdconf.LogConfig{
		Format: confutil.P("detailed"),
	})
	assert.True(t, logrus.StandardLogger().ReportCaller)
	L(context.Background()).Infof("code info included")
}

func TestSetFormattingJSONEnabled(t *testing.T) {
	resetLogging(t)
	InitConfig(&ccdconf.LogConfig{
		Format: confutil.P("json"),
	})
	_, isJSON := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
	L(context.Background()).Infof("JSON logs")
}

func TestSetFormattingFile(t *testing.T) {
	resetLogging(t)
	logFile := path.Join(t.TempDir(), "ccdencoder.log")
	InitConfig(&ccdconf.LogConfig{
		Level:  confutil.P("debug"),
		Output: confutil.P("file"),
		File: ccdconf.LogFileConfig{
			Filename: confutil.P(logFile),
		},
	})
	L(context.Background()).Infof("to file")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

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

type LogConfig struct {
	// the logging level
	Level *string `json:"level"`
	// the format ('simple', 'detailed', 'json')
	Format *string `json:"format"`
	// the output location ('stdout','stderr','file')
	Output *string `json:"output"`
	// forces color to be enabled, even if we do not detect a TTY
	ForceColor *bool `json:"forceColor"`
	// forces color to be disabled, even if we detect a TTY
	DisableColor *bool `json:"disableColor"`
	// string format for timestamps
	TimeFormat *string `json:"timeFormat"`
	// sets log timestamps to the UTC timezone
	UTC *bool `json:"utc"`
	// configure file based logging
	File LogFileConfig `json:"file"`
	// configure json based logging
	JSON LogJSONConfig `json:"json"`
}

type LogFileConfig struct {
	Filename   *string `json:"filename"`
	MaxSize    *string `json:"maxSize"`
	MaxBackups *int    `json:"maxBackups"`
	MaxAge     *string `json:"maxAge"`
	Compress   *bool   `json:"compress"`
}

type LogJSONConfig struct {
	TimestampField *string `json:"timestampField"`
	LevelField     *string `json:"levelField"`
	MessageField   *string `json:"messageField"`
	FuncField      *string `json:"funcField"`
	FileField      *string `json:"fileField"`
}

var LogDefaults = &LogConfig{
	Level:        confutil.P("info"),
	Format:       confutil.P("simple"),
	Output:       confutil.P("stderr"),
	ForceColor:   confutil.P(false),
	DisableColor: confutil.P(false),
	TimeFormat:   confutil.P("2006-01-02T15:04:05.000Z07:00"),
	UTC:          confutil.P(false),
	File: LogFileConfig{
		Filename:   confutil.P("ccdencoder.log"),
		MaxSize:    confutil.P("100Mb"),
		MaxBackups: confutil.P(2),
		MaxAge:     confutil.P("24h"),
		Compress:   confutil.P(true),
	},
	JSON: LogJSONConfig{
		TimestampField: confutil.P("@timestamp"),
		LevelField:     confutil.P("level"),
		MessageField:   confutil.P("message"),
		FuncField:      confutil.P("func"),
		FileField:      confutil.P("file"),
	},
}

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
	"io"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L accesses the current logger from the context
	L = loggerFromContext

	initAtLeastOnce atomic.Bool
)

type (
	ctxLogKey struct{}
)

// maximum length of a value attached with WithLogField, beyond which it is truncated
const maxFieldValueLen = 61

var levels = map[string]logrus.Level{
	"error":   logrus.ErrorLevel,
	"warn":    logrus.WarnLevel,
	"warning": logrus.WarnLevel,
	"info":    logrus.InfoLevel,
	"debug":   logrus.DebugLevel,
	"trace":   logrus.TraceLevel,
}

func InitConfig(conf *ccdconf.LogConfig) {
	initAtLeastOnce.Store(true) // must store before SetLevel

	def := ccdconf.LogDefaults
	SetLevel(confutil.StringNotEmpty(conf.Level, *def.Level))

	if out := outputFor(conf); out != nil {
		logrus.SetOutput(out)
	}

	setFormatting(&Formatting{
		Format:             confutil.StringNotEmpty(conf.Format, *def.Format),
		DisableColor:       confutil.Bool(conf.DisableColor, *def.DisableColor),
		ForceColor:         confutil.Bool(conf.ForceColor, *def.ForceColor),
		TimestampFormat:    confutil.StringNotEmpty(conf.TimeFormat, *def.TimeFormat),
		UTC:                confutil.Bool(conf.UTC, *def.UTC),
		JSONTimestampField: confutil.StringNotEmpty(conf.JSON.TimestampField, *def.JSON.TimestampField),
		JSONLevelField:     confutil.StringNotEmpty(conf.JSON.LevelField, *def.JSON.LevelField),
		JSONMessageField:   confutil.StringNotEmpty(conf.JSON.MessageField, *def.JSON.MessageField),
		JSONFuncField:      confutil.StringNotEmpty(conf.JSON.FuncField, *def.JSON.FuncField),
		JSONFileField:      confutil.StringNotEmpty(conf.JSON.FileField, *def.JSON.FileField),
	})
}

// outputFor returns nil when the current output should be left alone
func outputFor(conf *ccdconf.LogConfig) io.Writer {
	def := ccdconf.LogDefaults
	switch confutil.StringNotEmpty(conf.Output, *def.Output) {
	case "file":
		filename := confutil.StringNotEmpty(conf.File.Filename, *def.File.Filename)
		rootLogger.Infof("Logs diverted to %s", filename)
		maxSizeBytes := confutil.ByteSize(conf.File.MaxSize, 0, *def.File.MaxSize)
		maxAge := confutil.DurationMin(conf.File.MaxAge, 0, *def.File.MaxAge)
		return &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    int(math.Ceil(float64(maxSizeBytes) / 1024 / 1024)), /* megabytes */
			MaxBackups: confutil.IntMin(conf.File.MaxBackups, 0, *def.File.MaxBackups),
			MaxAge:     int(math.Ceil(float64(maxAge) / float64(time.Hour) / 24)), /* days */
			Compress:   confutil.Bool(conf.File.Compress, *def.File.Compress),
		}
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		return nil
	}
}

func IsDebugEnabled() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}

func IsTraceEnabled() bool {
	return logrus.IsLevelEnabled(logrus.TraceLevel)
}

// EnsureInit applies the default configuration if InitConfig has never been
// called, which is the case in unit tests of packages that log.
func EnsureInit() {
	if !initAtLeastOnce.Load() {
		InitConfig(&ccdconf.LogConfig{})
	}
}

// WithLogger adds the specified logger to the context
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	EnsureInit()
	return context.WithValue(ctx, ctxLogKey{}, logger)
}

// WithLogField adds the specified field to the logger in the context
func WithLogField(ctx context.Context, key, value string) context.Context {
	if len(value) > maxFieldValueLen {
		value = value[0:maxFieldValueLen] + "..."
	}
	return WithLogger(ctx, loggerFromContext(ctx).WithField(key, value))
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(ctxLogKey{})
	if logger == nil {
		return rootLogger
	}
	return logger.(*logrus.Entry)
}

func GetLevel() string {
	switch logrus.GetLevel() {
	case logrus.ErrorLevel:
		return "error"
	case logrus.WarnLevel:
		return "warn"
	case logrus.DebugLevel:
		return "debug"
	case logrus.TraceLevel:
		return "trace"
	default:
		return "info"
	}
}

// SetLevel falls back to info for anything it does not recognize
func SetLevel(level string) {
	l, ok := levels[strings.ToLower(level)]
	if !ok {
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

type Formatting struct {
	Format             string
	DisableColor       bool
	ForceColor         bool
	TimestampFormat    string
	UTC                bool
	JSONTimestampField string
	JSONLevelField     string
	JSONMessageField   string
	JSONFuncField      string
	JSONFileField      string
}

type utcFormat struct {
	f logrus.Formatter
}

func (utc *utcFormat) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return utc.f.Format(e)
}

func newFormatter(format *Formatting) (formatter logrus.Formatter, reportCaller bool) {
	switch format.Format {
	case "json":
		formatter = &logrus.JSONFormatter{
			TimestampFormat: format.TimestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  format.JSONTimestampField,
				logrus.FieldKeyLevel: format.JSONLevelField,
				logrus.FieldKeyMsg:   format.JSONMessageField,
				logrus.FieldKeyFunc:  format.JSONFuncField,
				logrus.FieldKeyFile:  format.JSONFileField,
			},
		}
	case "detailed":
		formatter = &logrus.TextFormatter{
			DisableColors:   format.DisableColor,
			ForceColors:     format.ForceColor,
			TimestampFormat: format.TimestampFormat,
			FullTimestamp:   true,
		}
		reportCaller = true
	default:
		formatter = &prefixed.TextFormatter{
			DisableColors:   format.DisableColor,
			ForceColors:     format.ForceColor,
			TimestampFormat: format.TimestampFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
	if format.UTC {
		formatter = &utcFormat{f: formatter}
	}
	return formatter, reportCaller
}

func setFormatting(format *Formatting) {
	formatter, reportCaller := newFormatter(format)
	logrus.SetReportCaller(reportCaller)
	logrus.SetFormatter(formatter)
}

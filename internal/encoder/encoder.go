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

package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bisgardo/concordium-tools/internal/metrics"
	"github.com/bisgardo/concordium-tools/pkg/cache"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/ccdschema"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/bisgardo/concordium-tools/pkg/log"
)

// Encoder turns JSON contract parameters into their binary form, using the
// module schema supplied with each request. Parsed schemas are cached, as
// callers typically send the same schema with every request.
type Encoder interface {
	EncodeInitParameter(ctx context.Context, schema []byte, fallbackVersion *ccdschema.SchemaVersion, contractName string, param []byte) ([]byte, error)
	EncodeUpdateParameter(ctx context.Context, schema []byte, fallbackVersion *ccdschema.SchemaVersion, contractName, functionName string, param []byte) ([]byte, error)
	DescribeSchema(ctx context.Context, schema []byte, fallbackVersion *ccdschema.SchemaVersion) (*ccdschema.SchemaDescription, error)
	// EncodeTypeValue encodes against a standalone type schema, as published
	// for a single parameter rather than a whole module
	EncodeTypeValue(ctx context.Context, typeSchema []byte, value []byte) ([]byte, error)
}

type encoder struct {
	schemaCache  cache.Cache[string, *ccdschema.ModuleSchema]
	maxTypeDepth int
	metrics      metrics.Metrics
}

func NewEncoder(ctx context.Context, conf *ccdconf.EncoderConfig, m metrics.Metrics) Encoder {
	e := &encoder{
		schemaCache:  cache.NewCache[string, *ccdschema.ModuleSchema](&conf.SchemaCache, ccdconf.SchemaCacheDefaults),
		maxTypeDepth: confutil.IntMin(conf.Schema.MaxTypeDepth, 1, *ccdconf.SchemaDefaults.MaxTypeDepth),
		metrics:      m,
	}
	log.L(ctx).Debugf("Schema cache capacity=%d maxTypeDepth=%d", e.schemaCache.Capacity(), e.maxTypeDepth)
	return e
}

// schemaCacheKey identifies a schema by content. The fallback version is part
// of the key, as the same unversioned bytes parse differently under each version.
func schemaCacheKey(schema []byte, fallbackVersion *ccdschema.SchemaVersion) string {
	hash := sha256.Sum256(schema)
	version := "-"
	if fallbackVersion != nil {
		version = fallbackVersion.String()
	}
	return fmt.Sprintf("%s/%s", hex.EncodeToString(hash[:]), version)
}

func (e *encoder) moduleSchema(ctx context.Context, schema []byte, fallbackVersion *ccdschema.SchemaVersion) (*ccdschema.ModuleSchema, error) {
	m, hit, err := e.schemaCache.GetOrLoad(schemaCacheKey(schema, fallbackVersion), func() (*ccdschema.ModuleSchema, error) {
		return ccdschema.ParseModuleSchema(ctx, schema, &ccdschema.ParseOptions{
			FallbackVersion: fallbackVersion,
			MaxTypeDepth:    e.maxTypeDepth,
		})
	})
	if err != nil {
		log.L(ctx).Debugf("Invalid module schema (%d bytes): %s", len(schema), err)
		return nil, err
	}
	if hit {
		e.metrics.SchemaCacheHit()
	} else {
		e.metrics.SchemaCacheMiss()
		log.L(ctx).Debugf("Parsed %s module schema with %d contracts", m.Version, len(m.Contracts))
	}
	return m, nil
}

func (e *encoder) EncodeInitParameter(ctx context.Context, schema []byte, fallbackVersion *ccdschema.SchemaVersion, contractName string, param []byte) ([]byte, error) {
	m, err := e.moduleSchema(ctx, schema, fallbackVersion)
	if err != nil {
		return nil, err
	}
	paramType, err := m.InitParameter(ctx, contractName)
	if err != nil {
		return nil, err
	}
	return paramType.EncodeJSON(ctx, param)
}

func (e *encoder) EncodeUpdateParameter(ctx context.Context, schema []byte, fallbackVersion *ccdschema.SchemaVersion, contractName, functionName string, param []byte) ([]byte, error) {
	m, err := e.moduleSchema(ctx, schema, fallbackVersion)
	if err != nil {
		return nil, err
	}
	paramType, err := m.ReceiveParameter(ctx, contractName, functionName)
	if err != nil {
		return nil, err
	}
	return paramType.EncodeJSON(ctx, param)
}

func (e *encoder) DescribeSchema(ctx context.Context, schema []byte, fallbackVersion *ccdschema.SchemaVersion) (*ccdschema.SchemaDescription, error) {
	m, err := e.moduleSchema(ctx, schema, fallbackVersion)
	if err != nil {
		return nil, err
	}
	return m.Describe(), nil
}

func (e *encoder) EncodeTypeValue(ctx context.Context, typeSchema []byte, value []byte) ([]byte, error) {
	t, err := ccdschema.ParseType(ctx, typeSchema, e.maxTypeDepth)
	if err != nil {
		log.L(ctx).Debugf("Invalid type schema (%d bytes): %s", len(typeSchema), err)
		return nil, err
	}
	return t.EncodeJSON(ctx, value)
}

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

package restapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/pkg/ccdschema"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

const (
	QuerySchema              = "schema"
	QueryContractName        = "contract_name"
	QueryReceiveFunctionName = "receive_function_name"
	QuerySchemaVersion       = "schema_version"
)

type encodeQuery struct {
	schema        []byte
	schemaVersion *ccdschema.SchemaVersion
	contractName  string
	functionName  string
}

func (s *apiServer) encodeInit(req *http.Request) (interface{}, error) {
	ctx := req.Context()
	query := req.URL.Query()
	if query.Has(QueryReceiveFunctionName) {
		return nil, i18n.NewError(ctx, msgs.MsgAPIUnexpectedQueryParam, QueryReceiveFunctionName, RouteInit)
	}
	q, err := parseEncodeQuery(ctx, query, false)
	if err != nil {
		return nil, err
	}
	param, err := s.readBody(req)
	if err != nil {
		return nil, err
	}
	encoded, err := s.encoder.EncodeInitParameter(ctx, q.schema, q.schemaVersion, q.contractName, param)
	if err != nil {
		return nil, err
	}
	return hex.EncodeToString(encoded), nil
}

func (s *apiServer) encodeUpdate(req *http.Request) (interface{}, error) {
	ctx := req.Context()
	q, err := parseEncodeQuery(ctx, req.URL.Query(), true)
	if err != nil {
		return nil, err
	}
	param, err := s.readBody(req)
	if err != nil {
		return nil, err
	}
	encoded, err := s.encoder.EncodeUpdateParameter(ctx, q.schema, q.schemaVersion, q.contractName, q.functionName, param)
	if err != nil {
		return nil, err
	}
	return hex.EncodeToString(encoded), nil
}

// encodeType encodes the body against a type schema given in the schema
// query parameter, with no module or function lookup
func (s *apiServer) encodeType(req *http.Request) (interface{}, error) {
	ctx := req.Context()
	typeSchema, err := schemaParam(ctx, req.URL.Query())
	if err != nil {
		return nil, err
	}
	value, err := s.readBody(req)
	if err != nil {
		return nil, err
	}
	encoded, err := s.encoder.EncodeTypeValue(ctx, typeSchema, value)
	if err != nil {
		return nil, err
	}
	return hex.EncodeToString(encoded), nil
}

// describeSchema takes the base64 schema as the request body, as schemas
// embedded in larger modules can exceed sensible URL lengths
func (s *apiServer) describeSchema(req *http.Request) (interface{}, error) {
	ctx := req.Context()
	version, err := parseSchemaVersion(ctx, req.URL.Query())
	if err != nil {
		return nil, err
	}
	body, err := s.readBody(req)
	if err != nil {
		return nil, err
	}
	schema, err := decodeBase64(ctx, "body", string(bytes.TrimSpace(body)))
	if err != nil {
		return nil, err
	}
	return s.encoder.DescribeSchema(ctx, schema, version)
}

func requiredParam(ctx context.Context, query url.Values, name string) (string, error) {
	v := query.Get(name)
	if v == "" {
		return "", i18n.NewError(ctx, msgs.MsgAPIMissingQueryParam, name)
	}
	return v, nil
}

func parseEncodeQuery(ctx context.Context, query url.Values, withFunction bool) (*encodeQuery, error) {
	q := &encodeQuery{}
	var err error
	if q.schema, err = schemaParam(ctx, query); err != nil {
		return nil, err
	}
	if q.contractName, err = requiredParam(ctx, query, QueryContractName); err != nil {
		return nil, err
	}
	if withFunction {
		if q.functionName, err = requiredParam(ctx, query, QueryReceiveFunctionName); err != nil {
			return nil, err
		}
	}
	if q.schemaVersion, err = parseSchemaVersion(ctx, query); err != nil {
		return nil, err
	}
	return q, nil
}

func schemaParam(ctx context.Context, query url.Values) ([]byte, error) {
	value, err := requiredParam(ctx, query, QuerySchema)
	if err != nil {
		return nil, err
	}
	// an unescaped '+' in a query string decodes to a space
	return decodeBase64(ctx, QuerySchema, strings.ReplaceAll(value, " ", "+"))
}

// decodeBase64 only accepts the canonical encoding, so the value must survive
// a decode and re-encode unchanged
func decodeBase64(ctx context.Context, name, value string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil || base64.StdEncoding.EncodeToString(b) != value {
		return nil, i18n.NewError(ctx, msgs.MsgAPIInvalidBase64, name)
	}
	return b, nil
}

func parseSchemaVersion(ctx context.Context, query url.Values) (*ccdschema.SchemaVersion, error) {
	if !query.Has(QuerySchemaVersion) {
		return nil, nil
	}
	raw := query.Get(QuerySchemaVersion)
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgAPIInvalidSchemaVersion, raw)
	}
	version := ccdschema.SchemaVersion(v)
	return &version, nil
}

func (s *apiServer) readBody(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	// no ResponseWriter, as the wrapped writers cannot flag the connection for closing anyway
	body, err := io.ReadAll(http.MaxBytesReader(nil, req.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, i18n.NewError(ctx, msgs.MsgAPIRequestBodyTooLarge, tooLarge.Limit)
		}
		return nil, i18n.WrapError(ctx, err, msgs.MsgAPIRequestBodyRead)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, i18n.NewError(ctx, msgs.MsgAPIRequestBodyEmpty)
	}
	return body, nil
}

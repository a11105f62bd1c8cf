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

package ccdclient

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bisgardo/concordium-tools/internal/msgs"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/ccdschema"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
	"github.com/bisgardo/concordium-tools/pkg/log"
	"github.com/bisgardo/concordium-tools/pkg/tlsconf"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/sirupsen/logrus"
)

// Client calls the encoder API. Parameters are marshaled to JSON, so a
// json.RawMessage can be used to pass a pre-built document.
type Client interface {
	EncodeInit(ctx context.Context, schema []byte, schemaVersion *ccdschema.SchemaVersion, contractName string, param interface{}) ([]byte, error)
	EncodeUpdate(ctx context.Context, schema []byte, schemaVersion *ccdschema.SchemaVersion, contractName, functionName string, param interface{}) ([]byte, error)
	DescribeSchema(ctx context.Context, schema []byte, schemaVersion *ccdschema.SchemaVersion) (*ccdschema.SchemaDescription, error)
	EncodeType(ctx context.Context, typeSchema []byte, value interface{}) ([]byte, error)
}

type startTimeKey struct{}

type errorResponse struct {
	Error string `json:"error"`
}

type client struct {
	rc *resty.Client
}

func New(ctx context.Context, conf *ccdconf.HTTPClientConfig) (Client, error) {
	u, err := url.Parse(conf.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.WrapError(ctx, err, msgs.MsgClientInvalidURL, conf.URL)
	}
	tlsConf := conf.TLS
	if u.Scheme == "https" {
		tlsConf.Enabled = true
	}
	connTimeout := confutil.DurationMin(conf.ConnectionTimeout, 0, *ccdconf.HTTPClientDefaults.ConnectionTimeout)
	httpTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: connTimeout,
		}).DialContext,
		ForceAttemptHTTP2: true,
	}
	if httpTransport.TLSClientConfig, err = tlsconf.BuildTLSConfig(ctx, &tlsConf, tlsconf.ClientType); err != nil {
		return nil, err
	}

	rc := resty.NewWithClient(&http.Client{Transport: httpTransport})
	baseURL := strings.TrimSuffix(conf.URL, "/")
	rc.SetBaseURL(baseURL)
	rc.SetTimeout(confutil.DurationMin(conf.RequestTimeout, 0, *ccdconf.HTTPClientDefaults.RequestTimeout))
	for k, v := range conf.HTTPHeaders {
		if vs, ok := v.(string); ok {
			rc.SetHeader(k, vs)
		}
	}
	log.L(ctx).Debugf("Created encoder client to %s", baseURL)
	return WrapRestyClient(rc), nil
}

// WrapRestyClient adds request logging to an existing resty client
func WrapRestyClient(rc *resty.Client) Client {
	rc.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		rCtx := log.WithLogField(req.Context(), "breq", uuid.NewString()[:8])
		rCtx = context.WithValue(rCtx, startTimeKey{}, time.Now())
		req.SetContext(rCtx)
		log.L(rCtx).Debugf("==> %s %s%s", req.Method, c.BaseURL, req.URL)
		return nil
	})
	rc.OnAfterResponse(func(c *resty.Client, res *resty.Response) error {
		rCtx := res.Request.Context()
		level := logrus.DebugLevel
		if res.StatusCode() >= 300 {
			level = logrus.ErrorLevel
		}
		var elapsed time.Duration
		if start, ok := rCtx.Value(startTimeKey{}).(time.Time); ok {
			elapsed = time.Since(start)
		}
		log.L(rCtx).Logf(level, "<== %s %s [%d] (%dms)", res.Request.Method, res.Request.URL, res.StatusCode(), elapsed.Milliseconds())
		return nil
	})
	return &client{rc: rc}
}

func (c *client) EncodeInit(ctx context.Context, schema []byte, schemaVersion *ccdschema.SchemaVersion, contractName string, param interface{}) ([]byte, error) {
	return c.encode(ctx, "/init", map[string]string{
		"schema":        base64.StdEncoding.EncodeToString(schema),
		"contract_name": contractName,
	}, schemaVersion, param)
}

func (c *client) EncodeUpdate(ctx context.Context, schema []byte, schemaVersion *ccdschema.SchemaVersion, contractName, functionName string, param interface{}) ([]byte, error) {
	return c.encode(ctx, "/update", map[string]string{
		"schema":                base64.StdEncoding.EncodeToString(schema),
		"contract_name":         contractName,
		"receive_function_name": functionName,
	}, schemaVersion, param)
}

func (c *client) EncodeType(ctx context.Context, typeSchema []byte, value interface{}) ([]byte, error) {
	return c.encode(ctx, "/type", map[string]string{
		"schema": base64.StdEncoding.EncodeToString(typeSchema),
	}, nil, value)
}

func (c *client) encode(ctx context.Context, path string, query map[string]string, schemaVersion *ccdschema.SchemaVersion, param interface{}) ([]byte, error) {
	body, err := json.Marshal(param)
	if err != nil {
		return nil, err
	}
	if schemaVersion != nil {
		query["schema_version"] = strconv.Itoa(int(*schemaVersion))
	}
	res, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	if err = checkResponse(ctx, path, res, err); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(res.String())
	b, err := hex.DecodeString(text)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgClientInvalidHex, path, text)
	}
	return b, nil
}

func (c *client) DescribeSchema(ctx context.Context, schema []byte, schemaVersion *ccdschema.SchemaVersion) (*ccdschema.SchemaDescription, error) {
	var description ccdschema.SchemaDescription
	req := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(base64.StdEncoding.EncodeToString(schema)).
		SetResult(&description)
	if schemaVersion != nil {
		req.SetQueryParam("schema_version", strconv.Itoa(int(*schemaVersion)))
	}
	res, err := req.Post("/schema")
	if err = checkResponse(ctx, "/schema", res, err); err != nil {
		return nil, err
	}
	return &description, nil
}

// checkResponse turns transport failures and non-2xx responses into errors,
// carrying the server's message where it sent one
func checkResponse(ctx context.Context, path string, res *resty.Response, err error) error {
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgClientRequestError, path)
	}
	if !res.IsError() {
		return nil
	}
	message := res.String()
	var errRes errorResponse
	if json.Unmarshal(res.Body(), &errRes) == nil && errRes.Error != "" {
		message = errRes.Error
	}
	if len(message) > 256 {
		message = message[0:256] + "..."
	}
	return i18n.NewError(ctx, msgs.MsgClientRequestFailed, path, res.StatusCode(), message)
}

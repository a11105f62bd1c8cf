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

package msgs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const encoderServicePrefix = "CE01"

var registered sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registered.Do(func() {
		i18n.RegisterPrefix(encoderServicePrefix, "Concordium Parameter Encoder")
	})
	if !strings.HasPrefix(key, encoderServicePrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", encoderServicePrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Config CE0100XX
	MsgConfigFileMissing    = ffe("CE010000", "Config file not found at path: %s")
	MsgConfigFileReadError  = ffe("CE010001", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError = ffe("CE010002", "Failed to parse config file with error: %s")

	// HTTP server CE0101XX
	MsgHTTPServerStartFailed = ffe("CE010100", "Failed to start server on '%s'")
	MsgHTTPServerMissingPort = ffe("CE010101", "HTTP server port must be specified for '%s'")

	// TLS CE0102XX
	MsgTLSInvalidCAFile       = ffe("CE010200", "Invalid CA certificates file")
	MsgTLSConfigFailed        = ffe("CE010201", "Failed to initialize TLS configuration")
	MsgTLSInvalidKeyPairFiles = ffe("CE010202", "Invalid certificate and key pair files")

	// REST API CE0103XX
	MsgAPIMissingQueryParam    = ffe("CE010300", "Missing required query parameter '%s'", 400)
	MsgAPIUnexpectedQueryParam = ffe("CE010301", "Query parameter '%s' is not supported by %s", 400)
	MsgAPIInvalidBase64        = ffe("CE010302", "Value of '%s' is not valid base64", 400)
	MsgAPIInvalidSchemaVersion = ffe("CE010303", "Invalid schema_version '%s': must be an integer between 0 and 255", 400)
	MsgAPIRequestBodyRead      = ffe("CE010304", "Failed to read request body", 400)
	MsgAPIRequestBodyTooLarge  = ffe("CE010305", "Request body exceeds the maximum size of %d bytes", 413)
	MsgAPIRequestBodyEmpty     = ffe("CE010306", "Request body must not be empty", 400)
	MsgAPIRouteNotFound        = ffe("CE010307", "No route for %s %s", 404)
	MsgAPIMethodNotAllowed     = ffe("CE010308", "Method %s is not allowed for %s", 405)

	// Client CE0104XX
	MsgClientRequestFailed = ffe("CE010400", "Request to %s failed [%d]: %s")
	MsgClientInvalidHex    = ffe("CE010401", "Response from %s is not valid hex: %s")
	MsgClientInvalidURL    = ffe("CE010402", "Invalid client URL '%s'")
	MsgClientRequestError  = ffe("CE010403", "Request to %s could not be completed")

	// Bootstrap CE0105XX
	MsgBootstrapInitFailed  = ffe("CE010500", "Failed to initialize %s")
	MsgBootstrapStartFailed = ffe("CE010501", "Failed to start %s")

	// CLI CE0106XX
	MsgCLIServerFailed    = ffe("CE010600", "Server exited with code %d")
	MsgCLISchemaFileRead  = ffe("CE010601", "Failed to read schema file '%s'")
	MsgCLISchemaFileWrite = ffe("CE010602", "Failed to write schema file '%s'")
)

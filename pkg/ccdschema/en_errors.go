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

package ccdschema

import (
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

var registered sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registered.Do(func() {
		i18n.RegisterPrefix("CE02", "Concordium Contract Schema")
	})
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Schema parsing CE0200XX
	MsgSchemaUnexpectedEOF     = ffe("CE020000", "Unexpected end of schema at offset %d (needed %d bytes)", 400)
	MsgSchemaUnknownVersion    = ffe("CE020001", "Unsupported schema version %d", 400)
	MsgSchemaVersionRequired   = ffe("CE020002", "Schema is not versioned so a schema version must be supplied", 400)
	MsgSchemaUnknownTypeTag    = ffe("CE020003", "Unknown type tag %d at offset %d", 400)
	MsgSchemaUnknownSizeLength = ffe("CE020004", "Unknown size length tag %d at offset %d", 400)
	MsgSchemaUnknownFieldsTag  = ffe("CE020005", "Unknown fields tag %d at offset %d", 400)
	MsgSchemaUnknownFuncTag    = ffe("CE020006", "Unknown function schema tag %d at offset %d", 400)
	MsgSchemaInvalidOptionTag  = ffe("CE020007", "Invalid option tag %d at offset %d", 400)
	MsgSchemaInvalidUTF8       = ffe("CE020008", "Invalid UTF-8 string at offset %d", 400)
	MsgSchemaTooDeep           = ffe("CE020009", "Type nesting exceeds the maximum depth of %d", 400)
	MsgSchemaCountTooLarge     = ffe("CE020010", "Length %d at offset %d exceeds the remaining schema bytes", 400)
	MsgSchemaTrailingBytes     = ffe("CE020011", "Unexpected %d trailing bytes after schema", 400)
	MsgSchemaDuplicateEntry    = ffe("CE020012", "Duplicate entry '%s' at offset %d", 400)

	// Function lookup CE0201XX
	MsgSchemaContractNotFound   = ffe("CE020100", "Contract '%s' not found in schema", 400)
	MsgSchemaFunctionNotFound   = ffe("CE020101", "Receive function '%s' not found for contract '%s'", 400)
	MsgSchemaNoInitFunction     = ffe("CE020102", "Contract '%s' has no init function in the schema", 400)
	MsgSchemaNoParameter        = ffe("CE020103", "No parameter type in the schema for %s", 400)
	MsgSchemaFunctionNotV1Ready = ffe("CE020104", "Function %s has neither a parameter nor a return value so cannot be written in a V1 schema")

	// JSON encoding CE0202XX
	MsgEncodeInvalidJSON       = ffe("CE020200", "Invalid JSON parameter", 400)
	MsgEncodeTrailingJSON      = ffe("CE020201", "Unexpected data after the JSON parameter value", 400)
	MsgEncodeWrongJSONType     = ffe("CE020202", "%s: expected %s but found %s", 400)
	MsgEncodeInvalidInteger    = ffe("CE020203", "%s: '%s' is not a valid integer", 400)
	MsgEncodeIntegerOutOfRange = ffe("CE020204", "%s: %s is out of range for %s", 400)
	MsgEncodeArrayLength       = ffe("CE020205", "%s: expected %d elements but found %d", 400)
	MsgEncodeLengthTooLarge    = ffe("CE020206", "%s: length %d does not fit in a %s length prefix", 400)
	MsgEncodeMissingField      = ffe("CE020207", "%s: missing field '%s'", 400)
	MsgEncodeEnumSingleKey     = ffe("CE020208", "%s: an enum value must be an object with exactly one variant key (found %d)", 400)
	MsgEncodeUnknownVariant    = ffe("CE020209", "%s: unknown variant '%s'", 400)
	MsgEncodeInvalidAddress    = ffe("CE020210", "%s: invalid account address '%s': %s", 400)
	MsgEncodeInvalidTimestamp  = ffe("CE020211", "%s: invalid timestamp '%s': must be RFC3339 and not before 1970", 400)
	MsgEncodeInvalidDuration   = ffe("CE020212", "%s: invalid duration '%s': expected whitespace separated values such as '1d 2h 3m 4s 5ms'", 400)
	MsgEncodeInvalidHex        = ffe("CE020213", "%s: invalid hex string: %s", 400)
	MsgEncodeDuplicateEntry    = ffe("CE020214", "%s: duplicate entry", 400)
	MsgEncodeLeb128TooLong     = ffe("CE020215", "%s: value requires %d bytes but at most %d are allowed", 400)
	MsgEncodeInvalidName       = ffe("CE020216", "%s: invalid %s name '%s'", 400)
)

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
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// EncodeJSON encodes a JSON document into the binary layout of the type
func (t *Type) EncodeJSON(ctx context.Context, data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, i18n.WrapError(ctx, err, MsgEncodeInvalidJSON)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, i18n.NewError(ctx, MsgEncodeTrailingJSON)
	}
	return t.EncodeValue(ctx, value)
}

// EncodeValue encodes a value already decoded from JSON. Numbers may be
// json.Number (preferred, as it keeps full precision) or float64.
func (t *Type) EncodeValue(ctx context.Context, value interface{}) ([]byte, error) {
	e := &encoder{ctx: ctx}
	if err := e.encode(t, value, "$"); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type encoder struct {
	ctx context.Context
	buf []byte
}

func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func (e *encoder) wrongType(path, expected string, v interface{}) error {
	return i18n.NewError(e.ctx, MsgEncodeWrongJSONType, path, expected, jsonTypeName(v))
}

func (e *encoder) encode(t *Type, v interface{}, path string) error {
	switch t.Kind {
	case KindUnit:
		return nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return e.wrongType(path, "boolean", v)
		}
		if b {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
		return nil
	case KindU8, KindU16, KindU32, KindU64:
		return e.encodeUnsigned(t.Kind, v, path)
	case KindI8, KindI16, KindI32, KindI64:
		return e.encodeSigned(t.Kind, v, path)
	case KindU128, KindI128:
		return e.encodeInt128(t.Kind, v, path)
	case KindAmount:
		return e.encodeAmount(v, path)
	case KindAccountAddress:
		return e.encodeAccountAddress(v, path)
	case KindContractAddress:
		return e.encodeContractAddress(v, path)
	case KindTimestamp:
		s, ok := v.(string)
		if !ok {
			return e.wrongType(path, "RFC3339 timestamp string", v)
		}
		ms, err := ParseTimestampMillis(s)
		if err != nil {
			return i18n.NewError(e.ctx, MsgEncodeInvalidTimestamp, path, s)
		}
		e.buf = binary.LittleEndian.AppendUint64(e.buf, ms)
		return nil
	case KindDuration:
		s, ok := v.(string)
		if !ok {
			return e.wrongType(path, "duration string", v)
		}
		ms, err := ParseDurationMillis(s)
		if err != nil {
			return i18n.NewError(e.ctx, MsgEncodeInvalidDuration, path, s)
		}
		e.buf = binary.LittleEndian.AppendUint64(e.buf, ms)
		return nil
	case KindPair:
		items, err := e.array(v, path, 2)
		if err != nil {
			return err
		}
		if err := e.encode(t.Key, items[0], path+"[0]"); err != nil {
			return err
		}
		return e.encode(t.Value, items[1], path+"[1]")
	case KindList, KindSet:
		return e.encodeList(t, v, path)
	case KindMap:
		return e.encodeMap(t, v, path)
	case KindArray:
		items, err := e.array(v, path, int(t.Length))
		if err != nil {
			return err
		}
		for i, item := range items {
			if err := e.encode(t.Elem, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case KindStruct:
		return e.encodeFields(t.Fields, v, path)
	case KindEnum, KindTaggedEnum:
		return e.encodeEnum(t, v, path)
	case KindString:
		s, ok := v.(string)
		if !ok {
			return e.wrongType(path, "string", v)
		}
		return e.sizedBytes(t.SizeLength, []byte(s), path)
	case KindContractName:
		return e.encodeContractName(t, v, path)
	case KindReceiveName:
		return e.encodeReceiveName(t, v, path)
	case KindULeb128, KindILeb128:
		return e.encodeLeb128(t, v, path)
	case KindByteList:
		b, err := e.hexBytes(v, path)
		if err != nil {
			return err
		}
		return e.sizedBytes(t.SizeLength, b, path)
	case KindByteArray:
		b, err := e.hexBytes(v, path)
		if err != nil {
			return err
		}
		if len(b) != int(t.Length) {
			return i18n.NewError(e.ctx, MsgEncodeArrayLength, path, t.Length, len(b))
		}
		e.buf = append(e.buf, b...)
		return nil
	default:
		return i18n.NewError(e.ctx, MsgSchemaUnknownTypeTag, uint8(t.Kind), -1)
	}
}

// integerString returns the textual form of a JSON number
func integerString(v interface{}) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	default:
		return "", false
	}
}

func (e *encoder) parseError(err error, path, s string, kind TypeKind) error {
	_, isInteger := new(big.Int).SetString(s, 10)
	if errors.Is(err, strconv.ErrRange) || isInteger {
		return i18n.NewError(e.ctx, MsgEncodeIntegerOutOfRange, path, s, kind)
	}
	return i18n.NewError(e.ctx, MsgEncodeInvalidInteger, path, s)
}

var intBits = map[TypeKind]int{
	KindU8: 8, KindU16: 16, KindU32: 32, KindU64: 64,
	KindI8: 8, KindI16: 16, KindI32: 32, KindI64: 64,
}

func (e *encoder) encodeUnsigned(kind TypeKind, v interface{}, path string) error {
	s, ok := integerString(v)
	if !ok {
		return e.wrongType(path, "number", v)
	}
	size := intBits[kind]
	n, err := strconv.ParseUint(s, 10, size)
	if err != nil {
		return e.parseError(err, path, s, kind)
	}
	e.appendFixed(n, size)
	return nil
}

func (e *encoder) encodeSigned(kind TypeKind, v interface{}, path string) error {
	s, ok := integerString(v)
	if !ok {
		return e.wrongType(path, "number", v)
	}
	size := intBits[kind]
	n, err := strconv.ParseInt(s, 10, size)
	if err != nil {
		return e.parseError(err, path, s, kind)
	}
	// two's complement truncated to the width
	e.appendFixed(uint64(n), size)
	return nil
}

func (e *encoder) appendFixed(n uint64, size int) {
	switch size {
	case 8:
		e.buf = append(e.buf, byte(n))
	case 16:
		e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(n))
	case 32:
		e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(n))
	default:
		e.buf = binary.LittleEndian.AppendUint64(e.buf, n)
	}
}

func (e *encoder) bigInteger(v interface{}, path string, expected string) (*big.Int, string, error) {
	s, ok := v.(string)
	if !ok {
		return nil, "", e.wrongType(path, expected, v)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, s, i18n.NewError(e.ctx, MsgEncodeInvalidInteger, path, s)
	}
	return n, s, nil
}

func (e *encoder) encodeInt128(kind TypeKind, v interface{}, path string) error {
	n, s, err := e.bigInteger(v, path, "decimal integer string")
	if err != nil {
		return err
	}
	inRange := inUnsigned128(n)
	if kind == KindI128 {
		inRange = inSigned128(n)
	}
	if !inRange {
		return i18n.NewError(e.ctx, MsgEncodeIntegerOutOfRange, path, s, kind)
	}
	e.buf = appendInt128(e.buf, n)
	return nil
}

func (e *encoder) encodeAmount(v interface{}, path string) error {
	s, ok := v.(string)
	if !ok {
		return e.wrongType(path, "string of micro CCD", v)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return e.parseError(err, path, s, KindAmount)
	}
	e.buf = binary.LittleEndian.AppendUint64(e.buf, n)
	return nil
}

func (e *encoder) encodeAccountAddress(v interface{}, path string) error {
	s, ok := v.(string)
	if !ok {
		return e.wrongType(path, "base58 account address", v)
	}
	addr, err := DecodeAccountAddress(s)
	if err != nil {
		return i18n.NewError(e.ctx, MsgEncodeInvalidAddress, path, s, err.Error())
	}
	e.buf = append(e.buf, addr...)
	return nil
}

func (e *encoder) object(v interface{}, path, expected string) (map[string]interface{}, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, e.wrongType(path, expected, v)
	}
	return obj, nil
}

func (e *encoder) encodeContractAddress(v interface{}, path string) error {
	obj, err := e.object(v, path, `object with "index" and "subindex"`)
	if err != nil {
		return err
	}
	index, ok := obj["index"]
	if !ok {
		return i18n.NewError(e.ctx, MsgEncodeMissingField, path, "index")
	}
	if err := e.encodeUnsigned(KindU64, index, path+".index"); err != nil {
		return err
	}
	subindex, ok := obj["subindex"]
	if !ok {
		e.buf = binary.LittleEndian.AppendUint64(e.buf, 0)
		return nil
	}
	return e.encodeUnsigned(KindU64, subindex, path+".subindex")
}

func (e *encoder) array(v interface{}, path string, expectedLen int) ([]interface{}, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, e.wrongType(path, "array", v)
	}
	if expectedLen >= 0 && len(items) != expectedLen {
		return nil, i18n.NewError(e.ctx, MsgEncodeArrayLength, path, expectedLen, len(items))
	}
	return items, nil
}

func (e *encoder) appendLength(sl SizeLength, n int, path string) error {
	if uint64(n) > sl.MaxLen() {
		return i18n.NewError(e.ctx, MsgEncodeLengthTooLarge, path, n, sl)
	}
	switch sl {
	case SizeU8:
		e.appendFixed(uint64(n), 8)
	case SizeU16:
		e.appendFixed(uint64(n), 16)
	case SizeU32:
		e.appendFixed(uint64(n), 32)
	default:
		e.appendFixed(uint64(n), 64)
	}
	return nil
}

func (e *encoder) sizedBytes(sl SizeLength, b []byte, path string) error {
	if err := e.appendLength(sl, len(b), path); err != nil {
		return err
	}
	e.buf = append(e.buf, b...)
	return nil
}

// encodeElement encodes into a fresh buffer, so the caller can check
// uniqueness of the encoded form before appending it
func (e *encoder) encodeElement(t *Type, v interface{}, path string) ([]byte, error) {
	sub := &encoder{ctx: e.ctx}
	if err := sub.encode(t, v, path); err != nil {
		return nil, err
	}
	return sub.buf, nil
}

func (e *encoder) encodeList(t *Type, v interface{}, path string) error {
	items, err := e.array(v, path, -1)
	if err != nil {
		return err
	}
	if err := e.appendLength(t.SizeLength, len(items), path); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		b, err := e.encodeElement(t.Elem, item, itemPath)
		if err != nil {
			return err
		}
		if t.Kind == KindSet {
			if seen[string(b)] {
				return i18n.NewError(e.ctx, MsgEncodeDuplicateEntry, itemPath)
			}
			seen[string(b)] = true
		}
		e.buf = append(e.buf, b...)
	}
	return nil
}

func (e *encoder) encodeMap(t *Type, v interface{}, path string) error {
	entries, err := e.array(v, path, -1)
	if err != nil {
		return err
	}
	if err := e.appendLength(t.SizeLength, len(entries), path); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i, entry := range entries {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		kv, err := e.array(entry, entryPath, 2)
		if err != nil {
			return err
		}
		k, err := e.encodeElement(t.Key, kv[0], entryPath+"[0]")
		if err != nil {
			return err
		}
		if seen[string(k)] {
			return i18n.NewError(e.ctx, MsgEncodeDuplicateEntry, entryPath)
		}
		seen[string(k)] = true
		e.buf = append(e.buf, k...)
		if err := e.encode(t.Value, kv[1], entryPath+"[1]"); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeFields(f *Fields, v interface{}, path string) error {
	if f == nil {
		return nil
	}
	switch f.Kind {
	case FieldsNamed:
		obj, err := e.object(v, path, "object")
		if err != nil {
			return err
		}
		for _, nf := range f.Named {
			fv, ok := obj[nf.Name]
			if !ok {
				return i18n.NewError(e.ctx, MsgEncodeMissingField, path, nf.Name)
			}
			if err := e.encode(nf.Type, fv, path+"."+nf.Name); err != nil {
				return err
			}
		}
	case FieldsUnnamed:
		items, err := e.array(v, path, len(f.Unnamed))
		if err != nil {
			return err
		}
		for i, ft := range f.Unnamed {
			if err := e.encode(ft, items[i], fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *encoder) encodeEnum(t *Type, v interface{}, path string) error {
	obj, err := e.object(v, path, "object with a single variant key")
	if err != nil {
		return err
	}
	if len(obj) != 1 {
		return i18n.NewError(e.ctx, MsgEncodeEnumSingleKey, path, len(obj))
	}
	var name string
	var fieldsValue interface{}
	for name, fieldsValue = range obj {
	}
	for i, variant := range t.Variants {
		if variant.Name != name {
			continue
		}
		switch {
		case t.Kind == KindTaggedEnum:
			e.buf = append(e.buf, variant.Tag)
		case len(t.Variants) <= 1<<8:
			e.buf = append(e.buf, byte(i))
		case len(t.Variants) <= 1<<16:
			e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(i))
		default:
			e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(i))
		}
		return e.encodeFields(variant.Fields, fieldsValue, path+"."+name)
	}
	return i18n.NewError(e.ctx, MsgEncodeUnknownVariant, path, name)
}

func (e *encoder) stringField(obj map[string]interface{}, field, path string) (string, error) {
	fv, ok := obj[field]
	if !ok {
		return "", i18n.NewError(e.ctx, MsgEncodeMissingField, path, field)
	}
	s, ok := fv.(string)
	if !ok {
		return "", e.wrongType(path+"."+field, "string", fv)
	}
	return s, nil
}

func (e *encoder) encodeContractName(t *Type, v interface{}, path string) error {
	obj, err := e.object(v, path, `object with "contract"`)
	if err != nil {
		return err
	}
	contract, err := e.stringField(obj, "contract", path)
	if err != nil {
		return err
	}
	full, ok := ContractInitName(contract)
	if !ok {
		return i18n.NewError(e.ctx, MsgEncodeInvalidName, path, "contract", contract)
	}
	return e.sizedBytes(t.SizeLength, []byte(full), path)
}

func (e *encoder) encodeReceiveName(t *Type, v interface{}, path string) error {
	obj, err := e.object(v, path, `object with "contract" and "func"`)
	if err != nil {
		return err
	}
	contract, err := e.stringField(obj, "contract", path)
	if err != nil {
		return err
	}
	function, err := e.stringField(obj, "func", path)
	if err != nil {
		return err
	}
	full, ok := ReceiveFunctionName(contract, function)
	if !ok {
		return i18n.NewError(e.ctx, MsgEncodeInvalidName, path, "receive", contract+"."+function)
	}
	return e.sizedBytes(t.SizeLength, []byte(full), path)
}

func (e *encoder) encodeLeb128(t *Type, v interface{}, path string) error {
	n, s, err := e.bigInteger(v, path, "decimal integer string")
	if err != nil {
		return err
	}
	var encoded []byte
	if t.Kind == KindULeb128 {
		if n.Sign() < 0 {
			return i18n.NewError(e.ctx, MsgEncodeIntegerOutOfRange, path, s, t.Kind)
		}
		encoded = uleb128(n)
	} else {
		encoded = sleb128(n)
	}
	if len(encoded) > int(t.Length) {
		return i18n.NewError(e.ctx, MsgEncodeLeb128TooLong, path, len(encoded), t.Length)
	}
	e.buf = append(e.buf, encoded...)
	return nil
}

func (e *encoder) hexBytes(v interface{}, path string) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, e.wrongType(path, "hex string", v)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, i18n.NewError(e.ctx, MsgEncodeInvalidHex, path, err.Error())
	}
	return b, nil
}

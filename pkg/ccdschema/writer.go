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
	"context"
	"encoding/binary"

	"github.com/hyperledger/firefly-common/pkg/i18n"
)

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendOptionalType(buf []byte, t *Type) []byte {
	if t == nil {
		return append(buf, 0)
	}
	return t.appendTo(append(buf, 1))
}

// Serialize writes the type in schema form, as read back by ParseType
func (t *Type) Serialize() []byte {
	return t.appendTo(nil)
}

func (t *Type) appendTo(buf []byte) []byte {
	buf = append(buf, byte(t.Kind))
	switch t.Kind {
	case KindPair:
		buf = t.Key.appendTo(buf)
		buf = t.Value.appendTo(buf)
	case KindList, KindSet:
		buf = append(buf, byte(t.SizeLength))
		buf = t.Elem.appendTo(buf)
	case KindMap:
		buf = append(buf, byte(t.SizeLength))
		buf = t.Key.appendTo(buf)
		buf = t.Value.appendTo(buf)
	case KindArray:
		buf = binary.LittleEndian.AppendUint32(buf, t.Length)
		buf = t.Elem.appendTo(buf)
	case KindStruct:
		buf = t.Fields.appendTo(buf)
	case KindEnum, KindTaggedEnum:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Variants)))
		for _, v := range t.Variants {
			if t.Kind == KindTaggedEnum {
				buf = append(buf, v.Tag)
			}
			buf = appendString(buf, v.Name)
			buf = v.Fields.appendTo(buf)
		}
	case KindString, KindContractName, KindReceiveName, KindByteList:
		buf = append(buf, byte(t.SizeLength))
	case KindULeb128, KindILeb128, KindByteArray:
		buf = binary.LittleEndian.AppendUint32(buf, t.Length)
	}
	return buf
}

func (f *Fields) appendTo(buf []byte) []byte {
	if f == nil {
		return append(buf, byte(FieldsNone))
	}
	buf = append(buf, byte(f.Kind))
	switch f.Kind {
	case FieldsNamed:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f.Named)))
		for _, nf := range f.Named {
			buf = appendString(buf, nf.Name)
			buf = nf.Type.appendTo(buf)
		}
	case FieldsUnnamed:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f.Unnamed)))
		for _, t := range f.Unnamed {
			buf = t.appendTo(buf)
		}
	}
	return buf
}

// Serialize writes the module schema in its versioned form, unless it was
// parsed from a legacy unversioned schema in which case that form is kept.
func (m *ModuleSchema) Serialize(ctx context.Context) ([]byte, error) {
	var buf []byte
	if m.Versioned {
		buf = append(buf, versionedSchemaMagic...)
		buf = append(buf, byte(m.Version))
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(m.Contracts)))
	var err error
	for _, name := range m.ContractNames() {
		buf = appendString(buf, name)
		if buf, err = m.Contracts[name].appendTo(ctx, buf, name, m.Version); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (c *ContractSchema) appendTo(ctx context.Context, buf []byte, contractName string, version SchemaVersion) ([]byte, error) {
	if version == V0 {
		buf = appendOptionalType(buf, c.State)
		var initType *Type
		if c.Init != nil {
			initType = c.Init.Parameter
		}
		buf = appendOptionalType(buf, initType)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Receive)))
		for _, name := range c.ReceiveNames() {
			buf = appendString(buf, name)
			buf = appendOptionalParameter(buf, c.Receive[name])
		}
		return buf, nil
	}

	appendFn := func(buf []byte, label string, fn *FunctionSchema) ([]byte, error) {
		if version == V1 {
			return fn.appendV1(ctx, buf, label)
		}
		return fn.appendV2(buf), nil
	}
	var err error
	if c.Init == nil {
		buf = append(buf, 0)
	} else if buf, err = appendFn(append(buf, 1), "init_"+contractName, c.Init); err != nil {
		return nil, err
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Receive)))
	for _, name := range c.ReceiveNames() {
		buf = appendString(buf, name)
		if buf, err = appendFn(buf, contractName+"."+name, c.Receive[name]); err != nil {
			return nil, err
		}
	}
	if version == V3 {
		buf = appendOptionalType(buf, c.Event)
	}
	return buf, nil
}

// V0 receive functions always carry a type, so a missing parameter is written as unit
func appendOptionalParameter(buf []byte, fn *FunctionSchema) []byte {
	if fn == nil || fn.Parameter == nil {
		return Simple(KindUnit).appendTo(buf)
	}
	return fn.Parameter.appendTo(buf)
}

func (fn *FunctionSchema) appendV1(ctx context.Context, buf []byte, label string) ([]byte, error) {
	switch {
	case fn.Parameter != nil && fn.ReturnValue != nil:
		buf = fn.Parameter.appendTo(append(buf, 2))
		return fn.ReturnValue.appendTo(buf), nil
	case fn.Parameter != nil:
		return fn.Parameter.appendTo(append(buf, 0)), nil
	case fn.ReturnValue != nil:
		return fn.ReturnValue.appendTo(append(buf, 1)), nil
	default:
		return nil, i18n.NewError(ctx, MsgSchemaFunctionNotV1Ready, label)
	}
}

func (fn *FunctionSchema) appendV2(buf []byte) []byte {
	var present byte
	if fn.Parameter != nil {
		present |= fnV2HasParam
	}
	if fn.ReturnValue != nil {
		present |= fnV2HasReturn
	}
	if fn.Error != nil {
		present |= fnV2HasError
	}
	buf = append(buf, (present+7)&7)
	for _, t := range []*Type{fn.Parameter, fn.ReturnValue, fn.Error} {
		if t != nil {
			buf = t.appendTo(buf)
		}
	}
	return buf
}

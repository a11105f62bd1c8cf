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
	"fmt"
	"math"
)

// TypeKind is the tag byte that introduces a type in a serialized schema
type TypeKind uint8

const (
	KindUnit            TypeKind = 0
	KindBool            TypeKind = 1
	KindU8              TypeKind = 2
	KindU16             TypeKind = 3
	KindU32             TypeKind = 4
	KindU64             TypeKind = 5
	KindI8              TypeKind = 6
	KindI16             TypeKind = 7
	KindI32             TypeKind = 8
	KindI64             TypeKind = 9
	KindAmount          TypeKind = 10
	KindAccountAddress  TypeKind = 11
	KindContractAddress TypeKind = 12
	KindTimestamp       TypeKind = 13
	KindDuration        TypeKind = 14
	KindPair            TypeKind = 15
	KindList            TypeKind = 16
	KindSet             TypeKind = 17
	KindMap             TypeKind = 18
	KindArray           TypeKind = 19
	KindStruct          TypeKind = 20
	KindEnum            TypeKind = 21
	KindString          TypeKind = 22
	KindU128            TypeKind = 23
	KindI128            TypeKind = 24
	KindContractName    TypeKind = 25
	KindReceiveName     TypeKind = 26
	KindULeb128         TypeKind = 27
	KindILeb128         TypeKind = 28
	KindByteList        TypeKind = 29
	KindByteArray       TypeKind = 30
	KindTaggedEnum      TypeKind = 31
)

var kindNames = map[TypeKind]string{
	KindUnit:            "unit",
	KindBool:            "bool",
	KindU8:              "u8",
	KindU16:             "u16",
	KindU32:             "u32",
	KindU64:             "u64",
	KindI8:              "i8",
	KindI16:             "i16",
	KindI32:             "i32",
	KindI64:             "i64",
	KindAmount:          "amount",
	KindAccountAddress:  "account_address",
	KindContractAddress: "contract_address",
	KindTimestamp:       "timestamp",
	KindDuration:        "duration",
	KindPair:            "pair",
	KindList:            "list",
	KindSet:             "set",
	KindMap:             "map",
	KindArray:           "array",
	KindStruct:          "struct",
	KindEnum:            "enum",
	KindString:          "string",
	KindU128:            "u128",
	KindI128:            "i128",
	KindContractName:    "contract_name",
	KindReceiveName:     "receive_name",
	KindULeb128:         "uleb128",
	KindILeb128:         "ileb128",
	KindByteList:        "byte_list",
	KindByteArray:       "byte_array",
	KindTaggedEnum:      "tagged_enum",
}

func (k TypeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// SizeLength is the width of the length prefix written before variable sized values
type SizeLength uint8

const (
	SizeU8  SizeLength = 0
	SizeU16 SizeLength = 1
	SizeU32 SizeLength = 2
	SizeU64 SizeLength = 3
)

func (sl SizeLength) String() string {
	switch sl {
	case SizeU8:
		return "u8"
	case SizeU16:
		return "u16"
	case SizeU32:
		return "u32"
	case SizeU64:
		return "u64"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(sl))
	}
}

// MaxLen is the largest length representable by the prefix
func (sl SizeLength) MaxLen() uint64 {
	switch sl {
	case SizeU8:
		return math.MaxUint8
	case SizeU16:
		return math.MaxUint16
	case SizeU32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

type FieldsKind uint8

const (
	FieldsNamed   FieldsKind = 0
	FieldsUnnamed FieldsKind = 1
	FieldsNone    FieldsKind = 2
)

// Type is a node in a schema type tree. Which of the detail fields are
// populated depends on Kind:
//
//   - SizeLength: List, Set, Map, String, ContractName, ReceiveName, ByteList
//   - Length: Array and ByteArray (element count), ULeb128 and ILeb128 (max bytes)
//   - Elem: List, Set, Array
//   - Key/Value: Map, and the left/right halves of a Pair
//   - Fields: Struct
//   - Variants: Enum and TaggedEnum
type Type struct {
	Kind       TypeKind
	SizeLength SizeLength
	Length     uint32
	Elem       *Type
	Key        *Type
	Value      *Type
	Fields     *Fields
	Variants   []*Variant
}

type Fields struct {
	Kind    FieldsKind
	Named   []*NamedField
	Unnamed []*Type
}

type NamedField struct {
	Name string
	Type *Type
}

// Variant of an Enum or TaggedEnum. Tag is only meaningful for a TaggedEnum,
// where it is written explicitly. Enum tags are the variant's position.
type Variant struct {
	Tag    uint8
	Name   string
	Fields *Fields
}

func Simple(kind TypeKind) *Type { return &Type{Kind: kind} }

func Pair(left, right *Type) *Type { return &Type{Kind: KindPair, Key: left, Value: right} }

func List(sl SizeLength, elem *Type) *Type {
	return &Type{Kind: KindList, SizeLength: sl, Elem: elem}
}

func Set(sl SizeLength, elem *Type) *Type {
	return &Type{Kind: KindSet, SizeLength: sl, Elem: elem}
}

func Map(sl SizeLength, key, value *Type) *Type {
	return &Type{Kind: KindMap, SizeLength: sl, Key: key, Value: value}
}

func Array(n uint32, elem *Type) *Type {
	return &Type{Kind: KindArray, Length: n, Elem: elem}
}

func Struct(fields *Fields) *Type { return &Type{Kind: KindStruct, Fields: fields} }

func Enum(variants ...*Variant) *Type { return &Type{Kind: KindEnum, Variants: variants} }

func TaggedEnum(variants ...*Variant) *Type {
	return &Type{Kind: KindTaggedEnum, Variants: variants}
}

func String(sl SizeLength) *Type { return &Type{Kind: KindString, SizeLength: sl} }

func ContractName(sl SizeLength) *Type { return &Type{Kind: KindContractName, SizeLength: sl} }

func ReceiveName(sl SizeLength) *Type { return &Type{Kind: KindReceiveName, SizeLength: sl} }

func ULeb128(maxBytes uint32) *Type { return &Type{Kind: KindULeb128, Length: maxBytes} }

func ILeb128(maxBytes uint32) *Type { return &Type{Kind: KindILeb128, Length: maxBytes} }

func ByteList(sl SizeLength) *Type { return &Type{Kind: KindByteList, SizeLength: sl} }

func ByteArray(n uint32) *Type { return &Type{Kind: KindByteArray, Length: n} }

func NamedFields(fields ...*NamedField) *Fields {
	return &Fields{Kind: FieldsNamed, Named: fields}
}

func UnnamedFields(types ...*Type) *Fields {
	return &Fields{Kind: FieldsUnnamed, Unnamed: types}
}

func NoFields() *Fields { return &Fields{Kind: FieldsNone} }

func Field(name string, t *Type) *NamedField { return &NamedField{Name: name, Type: t} }

func NewVariant(name string, fields *Fields) *Variant {
	return &Variant{Name: name, Fields: fields}
}

func NewTaggedVariant(tag uint8, name string, fields *Fields) *Variant {
	return &Variant{Tag: tag, Name: name, Fields: fields}
}

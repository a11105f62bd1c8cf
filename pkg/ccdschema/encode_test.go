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
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccountAddress    = "3kBx2h5Y2veb4hZgAJWPrr8RyQESKm5TjzF3ti1QQ4VSYLwK1G"
	testAccountAddressHex = "69752406cc939fc90ca6a73b57cee109963547f942006d219144924f8485fb0d"
)

type encodeCase struct {
	name     string
	typ      *Type
	json     string
	hex      string
	errRegex string
}

func runEncodeCases(t *testing.T, cases []encodeCase) {
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.typ.EncodeJSON(context.Background(), []byte(tc.json))
			if tc.errRegex != "" {
				assert.Regexp(t, tc.errRegex, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.hex, hex.EncodeToString(b))
		})
	}
}

func TestEncodeScalars(t *testing.T) {
	runEncodeCases(t, []encodeCase{
		{name: "unit", typ: Simple(KindUnit), json: `{"anything":true}`, hex: ""},
		{name: "bool true", typ: Simple(KindBool), json: `true`, hex: "01"},
		{name: "bool false", typ: Simple(KindBool), json: `false`, hex: "00"},
		{name: "bool wrong type", typ: Simple(KindBool), json: `1`, errRegex: "CE020202.*boolean.*number"},
		{name: "u8 max", typ: Simple(KindU8), json: `255`, hex: "ff"},
		{name: "u8 overflow", typ: Simple(KindU8), json: `256`, errRegex: "CE020204.*u8"},
		{name: "u8 negative", typ: Simple(KindU8), json: `-1`, errRegex: "CE020204"},
		{name: "u8 fraction", typ: Simple(KindU8), json: `1.5`, errRegex: "CE020203"},
		{name: "u8 string", typ: Simple(KindU8), json: `"1"`, errRegex: "CE020202.*string"},
		{name: "u16", typ: Simple(KindU16), json: `258`, hex: "0201"},
		{name: "u32", typ: Simple(KindU32), json: `1`, hex: "01000000"},
		{name: "u64 max", typ: Simple(KindU64), json: `18446744073709551615`, hex: "ffffffffffffffff"},
		{name: "i8", typ: Simple(KindI8), json: `-1`, hex: "ff"},
		{name: "i8 underflow", typ: Simple(KindI8), json: `-129`, errRegex: "CE020204.*i8"},
		{name: "i16", typ: Simple(KindI16), json: `-2`, hex: "feff"},
		{name: "i32", typ: Simple(KindI32), json: `-1`, hex: "ffffffff"},
		{name: "i64", typ: Simple(KindI64), json: `-1`, hex: "ffffffffffffffff"},
		{name: "u128", typ: Simple(KindU128), json: `"1"`, hex: "01" + strings.Repeat("00", 15)},
		{name: "u128 overflow", typ: Simple(KindU128), json: `"340282366920938463463374607431768211456"`, errRegex: "CE020204"},
		{name: "u128 number", typ: Simple(KindU128), json: `1`, errRegex: "CE020202"},
		{name: "u128 garbage", typ: Simple(KindU128), json: `"0x1"`, errRegex: "CE020203"},
		{name: "i128 minus one", typ: Simple(KindI128), json: `"-1"`, hex: strings.Repeat("ff", 16)},
		{name: "i128 min", typ: Simple(KindI128), json: `"-170141183460469231731687303715884105728"`, hex: strings.Repeat("00", 15) + "80"},
		{name: "i128 overflow", typ: Simple(KindI128), json: `"170141183460469231731687303715884105728"`, errRegex: "CE020204"},
		{name: "amount", typ: Simple(KindAmount), json: `"1000000"`, hex: "40420f0000000000"},
		{name: "amount number", typ: Simple(KindAmount), json: `1000000`, errRegex: "CE020202"},
		{name: "account", typ: Simple(KindAccountAddress), json: `"` + testAccountAddress + `"`, hex: testAccountAddressHex},
		{name: "account bad checksum", typ: Simple(KindAccountAddress), json: `"3kBx2h5Y2veb4hZgAJWPrr8RyQESKm5TjzF3ti1QQ4VSYLwK1H"`, errRegex: "CE020210"},
		{name: "contract address", typ: Simple(KindContractAddress), json: `{"index":5,"subindex":1}`, hex: "0500000000000000" + "0100000000000000"},
		{name: "contract address default subindex", typ: Simple(KindContractAddress), json: `{"index":5}`, hex: "0500000000000000" + "0000000000000000"},
		{name: "contract address no index", typ: Simple(KindContractAddress), json: `{"subindex":5}`, errRegex: "CE020207.*index"},
		{name: "timestamp", typ: Simple(KindTimestamp), json: `"1970-01-01T00:00:01Z"`, hex: "e803000000000000"},
		{name: "timestamp before epoch", typ: Simple(KindTimestamp), json: `"1969-12-31T23:59:59Z"`, errRegex: "CE020211"},
		{name: "duration", typ: Simple(KindDuration), json: `"1s 5ms"`, hex: "ed03000000000000"},
		{name: "duration day", typ: Simple(KindDuration), json: `"1d"`, hex: "005c260500000000"},
		{name: "duration bad unit", typ: Simple(KindDuration), json: `"5x"`, errRegex: "CE020212"},
	})
}

func TestEncodeCollections(t *testing.T) {
	u8 := Simple(KindU8)
	runEncodeCases(t, []encodeCase{
		{name: "pair", typ: Pair(u8, u8), json: `[1,2]`, hex: "0102"},
		{name: "pair short", typ: Pair(u8, u8), json: `[1]`, errRegex: "CE020205"},
		{name: "list", typ: List(SizeU8, u8), json: `[1,2,3]`, hex: "03010203"},
		{name: "list u32 prefix", typ: List(SizeU32, u8), json: `[]`, hex: "00000000"},
		{name: "list not array", typ: List(SizeU8, u8), json: `{}`, errRegex: "CE020202.*array.*object"},
		{name: "list too long", typ: List(SizeU8, Simple(KindUnit)), json: "[" + strings.Repeat("0,", 255) + "0]", errRegex: "CE020206.*256"},
		{name: "set", typ: Set(SizeU16, u8), json: `[2,1]`, hex: "02000201"},
		{name: "set duplicate", typ: Set(SizeU8, u8), json: `[1,1]`, errRegex: `CE020214.*\$\[1\]`},
		{name: "map", typ: Map(SizeU8, String(SizeU8), u8), json: `[["a",1]]`, hex: "01" + "0161" + "01"},
		{name: "map duplicate key", typ: Map(SizeU8, String(SizeU8), u8), json: `[["a",1],["a",2]]`, errRegex: `CE020214.*\$\[1\]`},
		{name: "map bad entry", typ: Map(SizeU8, u8, u8), json: `[[1]]`, errRegex: `CE020205.*\$\[0\]`},
		{name: "array", typ: Array(2, u8), json: `[1,2]`, hex: "0102"},
		{name: "array wrong length", typ: Array(2, u8), json: `[1]`, errRegex: "CE020205.*2.*1"},
		{name: "string", typ: String(SizeU8), json: `"hi"`, hex: "026869"},
		{name: "string too long", typ: String(SizeU8), json: `"` + strings.Repeat("a", 256) + `"`, errRegex: "CE020206"},
		{name: "byte list", typ: ByteList(SizeU8), json: `"0a0b"`, hex: "020a0b"},
		{name: "byte list bad hex", typ: ByteList(SizeU8), json: `"zz"`, errRegex: "CE020213"},
		{name: "byte array", typ: ByteArray(2), json: `"0a0b"`, hex: "0a0b"},
		{name: "byte array short", typ: ByteArray(2), json: `"0a"`, errRegex: "CE020205"},
	})
}

func TestEncodeStructsAndEnums(t *testing.T) {
	u8 := Simple(KindU8)
	named := Struct(NamedFields(Field("a", u8), Field("b", Simple(KindBool))))
	enum := Enum(NewVariant("A", NoFields()), NewVariant("B", UnnamedFields(u8)))
	runEncodeCases(t, []encodeCase{
		{name: "named struct ignores extra", typ: named, json: `{"b":true,"a":1,"extra":9}`, hex: "0101"},
		{name: "named struct missing", typ: named, json: `{"a":1}`, errRegex: "CE020207.*'b'"},
		{name: "unnamed struct", typ: Struct(UnnamedFields(u8, Simple(KindBool))), json: `[1,true]`, hex: "0101"},
		{name: "empty struct", typ: Struct(NoFields()), json: `{}`, hex: ""},
		{name: "enum with fields", typ: enum, json: `{"B":[5]}`, hex: "0105"},
		{name: "enum without fields", typ: enum, json: `{"A":[]}`, hex: "00"},
		{name: "enum unknown", typ: enum, json: `{"C":{}}`, errRegex: "CE020209.*'C'"},
		{name: "enum two keys", typ: enum, json: `{"A":{},"B":[1]}`, errRegex: "CE020208"},
		{name: "tagged enum", typ: TaggedEnum(NewTaggedVariant(7, "X", NoFields())), json: `{"X":{}}`, hex: "07"},
		{name: "nested path", typ: Struct(NamedFields(Field("owner", List(SizeU8, u8)))), json: `{"owner":[1,2,"x"]}`, errRegex: `CE020202.*\$\.owner\[2\]`},
		{name: "enum path", typ: enum, json: `{"B":["x"]}`, errRegex: `\$\.B\[0\]`},
	})
}

func enumOf(n int) *Type {
	variants := make([]*Variant, n)
	for i := range variants {
		variants[i] = NewVariant(fmt.Sprintf("V%d", i), NoFields())
	}
	return Enum(variants...)
}

func TestEncodeEnumTagWidth(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		variants int
		json     string
		hex      string
	}{
		{256, `{"V255":{}}`, "ff"},
		{257, `{"V256":{}}`, "0001"},
		{300, `{"V299":{}}`, "2b01"},
		{1 << 16, `{"V65535":{}}`, "ffff"},
		{1<<16 + 1, `{"V65536":{}}`, "00000100"},
	} {
		b, err := enumOf(tc.variants).EncodeJSON(ctx, []byte(tc.json))
		require.NoError(t, err)
		assert.Equal(t, tc.hex, hex.EncodeToString(b), "%d variants", tc.variants)
	}
}

func TestEncodeNames(t *testing.T) {
	runEncodeCases(t, []encodeCase{
		{name: "contract name", typ: ContractName(SizeU16), json: `{"contract":"foo"}`, hex: "0800" + hex.EncodeToString([]byte("init_foo"))},
		{name: "contract name with dot", typ: ContractName(SizeU16), json: `{"contract":"a.b"}`, errRegex: "CE020216"},
		{name: "contract name missing", typ: ContractName(SizeU16), json: `{}`, errRegex: "CE020207.*contract"},
		{name: "receive name", typ: ReceiveName(SizeU16), json: `{"contract":"foo","func":"bar"}`, hex: "0700" + hex.EncodeToString([]byte("foo.bar"))},
		{name: "receive name func type", typ: ReceiveName(SizeU16), json: `{"contract":"foo","func":1}`, errRegex: `CE020202.*\$\.func`},
	})
}

func TestEncodeLeb128(t *testing.T) {
	runEncodeCases(t, []encodeCase{
		{name: "uleb zero", typ: ULeb128(2), json: `"0"`, hex: "00"},
		{name: "uleb 300", typ: ULeb128(2), json: `"300"`, hex: "ac02"},
		{name: "uleb too long", typ: ULeb128(2), json: `"16384"`, errRegex: "CE020215.*3.*2"},
		{name: "uleb negative", typ: ULeb128(2), json: `"-1"`, errRegex: "CE020204"},
		{name: "ileb minus one", typ: ILeb128(2), json: `"-1"`, hex: "7f"},
		{name: "ileb minus 128", typ: ILeb128(2), json: `"-128"`, hex: "807f"},
		{name: "ileb 64", typ: ILeb128(2), json: `"64"`, hex: "c000"},
	})
}

func TestEncodeJSONDocumentErrors(t *testing.T) {
	u8 := Simple(KindU8)
	_, err := u8.EncodeJSON(context.Background(), []byte(`{`))
	assert.Regexp(t, "CE020200", err)

	_, err = u8.EncodeJSON(context.Background(), []byte(`1 2`))
	assert.Regexp(t, "CE020201", err)

	_, err = u8.EncodeJSON(context.Background(), []byte(``))
	assert.Regexp(t, "CE020200", err)
}

func TestEncodeValueFloat(t *testing.T) {
	b, err := Struct(NamedFields(Field("n", Simple(KindU16)))).EncodeValue(context.Background(), map[string]interface{}{"n": float64(258)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01}, b)
}

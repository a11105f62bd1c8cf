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
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	accountAddressVersion = 1
	AccountAddressLength  = 32

	// maximum length of a full contract or receive name, including the init_ prefix
	maxFuncNameLength = 100
)

// DecodeAccountAddress decodes the base58check form of an account address,
// which carries a version byte of 1 ahead of the 32 address bytes.
func DecodeAccountAddress(s string) ([]byte, error) {
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if version != accountAddressVersion {
		return nil, fmt.Errorf("unexpected version byte %d", version)
	}
	if len(payload) != AccountAddressLength {
		return nil, fmt.Errorf("expected %d bytes but found %d", AccountAddressLength, len(payload))
	}
	return payload, nil
}

func EncodeAccountAddress(addr []byte) string {
	return base58.CheckEncode(addr, accountAddressVersion)
}

var durationUnits = map[string]uint64{
	"ms": 1,
	"s":  1000,
	"m":  60 * 1000,
	"h":  60 * 60 * 1000,
	"d":  24 * 60 * 60 * 1000,
}

// ParseDurationMillis parses durations of the form "1d 2h 3m 4s 5ms".
// Units may repeat and appear in any order.
func ParseDurationMillis(s string) (uint64, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return 0, errors.New("empty duration")
	}
	var total uint64
	for _, token := range tokens {
		split := strings.IndexFunc(token, func(r rune) bool { return r < '0' || r > '9' })
		if split <= 0 {
			return 0, fmt.Errorf("invalid duration component %q", token)
		}
		n, err := strconv.ParseUint(token[:split], 10, 64)
		if err != nil {
			return 0, err
		}
		unit, ok := durationUnits[token[split:]]
		if !ok {
			return 0, fmt.Errorf("unknown duration unit in %q", token)
		}
		hi, ms := bits.Mul64(n, unit)
		var carry uint64
		total, carry = bits.Add64(total, ms, 0)
		if hi != 0 || carry != 0 {
			return 0, fmt.Errorf("duration %q overflows", s)
		}
	}
	return total, nil
}

// ParseTimestampMillis parses an RFC3339 timestamp into milliseconds since the unix epoch
func ParseTimestampMillis(s string) (uint64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, err
	}
	ms := t.UnixMilli()
	if ms < 0 {
		return 0, errors.New("timestamp before the unix epoch")
	}
	return uint64(ms), nil
}

func isValidNameChar(c byte) bool {
	// ASCII alphanumerics and punctuation
	return c > 0x20 && c < 0x7f
}

// ContractInitName validates a contract name and returns the init_ prefixed
// form in which it is serialized
func ContractInitName(contract string) (string, bool) {
	full := "init_" + contract
	if contract == "" || len(full) > maxFuncNameLength {
		return "", false
	}
	for i := 0; i < len(contract); i++ {
		if contract[i] == '.' || !isValidNameChar(contract[i]) {
			return "", false
		}
	}
	return full, true
}

// ReceiveFunctionName validates the parts of a receive name, returning the
// dot separated form in which it is serialized
func ReceiveFunctionName(contract, function string) (string, bool) {
	full := contract + "." + function
	if contract == "" || len(full) > maxFuncNameLength {
		return "", false
	}
	for i := 0; i < len(contract); i++ {
		if contract[i] == '.' || !isValidNameChar(contract[i]) {
			return "", false
		}
	}
	for i := 0; i < len(function); i++ {
		if !isValidNameChar(function[i]) {
			return "", false
		}
	}
	return full, true
}

var (
	two128   = new(big.Int).Lsh(big.NewInt(1), 128)
	two127   = new(big.Int).Lsh(big.NewInt(1), 127)
	minus127 = new(big.Int).Neg(two127)
)

// appendInt128 writes v as 16 little endian bytes, two's complement if signed.
// Range must be checked by the caller.
func appendInt128(buf []byte, v *big.Int) []byte {
	u := v
	if v.Sign() < 0 {
		u = new(big.Int).Add(v, two128)
	}
	be := u.FillBytes(make([]byte, 16))
	for i := len(be) - 1; i >= 0; i-- {
		buf = append(buf, be[i])
	}
	return buf
}

func inUnsigned128(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(two128) < 0
}

func inSigned128(v *big.Int) bool {
	return v.Cmp(minus127) >= 0 && v.Cmp(two127) < 0
}

// uleb128 encodes a non-negative integer as unsigned LEB128
func uleb128(v *big.Int) []byte {
	rest := new(big.Int).Set(v)
	low := new(big.Int)
	mask := big.NewInt(0x7f)
	var out []byte
	for {
		b := byte(low.And(rest, mask).Uint64())
		rest.Rsh(rest, 7)
		if rest.Sign() == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// sleb128 encodes an integer as signed LEB128
func sleb128(v *big.Int) []byte {
	rest := new(big.Int).Set(v)
	low := new(big.Int)
	mask := big.NewInt(0x7f)
	minusOne := big.NewInt(-1)
	var out []byte
	for {
		// And and Rsh both follow two's complement semantics for negative values
		b := byte(low.And(rest, mask).Uint64())
		rest.Rsh(rest, 7)
		signBitSet := b&0x40 != 0
		if (rest.Sign() == 0 && !signBitSet) || (rest.Cmp(minusOne) == 0 && signBitSet) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

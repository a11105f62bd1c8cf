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
	"unicode/utf8"

	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// reader consumes a serialized schema. All multi-byte integers are little endian.
type reader struct {
	ctx      context.Context
	data     []byte
	pos      int
	depth    int
	maxDepth int
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, i18n.NewError(r.ctx, MsgSchemaUnexpectedEOF, r.pos, n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// count reads a u32 collection length, and rejects it early if the remaining
// input could not possibly hold that many entries of at least minEntrySize bytes.
func (r *reader) count(minEntrySize int) (int, error) {
	offset := r.pos
	n, err := r.u32()
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(minEntrySize) > uint64(r.remaining()) {
		return 0, i18n.NewError(r.ctx, MsgSchemaCountTooLarge, n, offset)
	}
	return int(n), nil
}

func (r *reader) str() (string, error) {
	offset := r.pos
	n, err := r.count(1)
	if err != nil {
		return "", err
	}
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", i18n.NewError(r.ctx, MsgSchemaInvalidUTF8, offset)
	}
	return string(b), nil
}

// option reads the presence byte of an optional value
func (r *reader) option() (bool, error) {
	offset := r.pos
	tag, err := r.u8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, i18n.NewError(r.ctx, MsgSchemaInvalidOptionTag, tag, offset)
	}
}

func (r *reader) enter() error {
	r.depth++
	if r.depth > r.maxDepth {
		return i18n.NewError(r.ctx, MsgSchemaTooDeep, r.maxDepth)
	}
	return nil
}

func (r *reader) leave() {
	r.depth--
}

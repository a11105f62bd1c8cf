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
	"strconv"

	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Versioned module schemas always start with two fully set bytes, which is how
// they are told apart from legacy unversioned ones.
var versionedSchemaMagic = []byte{0xff, 0xff}

const DefaultMaxTypeDepth = 64

type ParseOptions struct {
	// FallbackVersion is the layout used when the schema is not versioned.
	// It is ignored for versioned schemas.
	FallbackVersion *SchemaVersion
	// MaxTypeDepth bounds type nesting. Zero means DefaultMaxTypeDepth.
	MaxTypeDepth int
}

func newReader(ctx context.Context, data []byte, maxDepth int) *reader {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxTypeDepth
	}
	return &reader{ctx: ctx, data: data, maxDepth: maxDepth}
}

// ParseModuleSchema parses the schema embedded in (or published alongside)
// a smart contract module.
func ParseModuleSchema(ctx context.Context, data []byte, opts *ParseOptions) (*ModuleSchema, error) {
	if opts == nil {
		opts = &ParseOptions{}
	}
	r := newReader(ctx, data, opts.MaxTypeDepth)
	m := &ModuleSchema{}
	if bytes.HasPrefix(data, versionedSchemaMagic) {
		r.pos = len(versionedSchemaMagic)
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		m.Version = SchemaVersion(v)
		m.Versioned = true
	} else {
		if opts.FallbackVersion == nil {
			return nil, i18n.NewError(ctx, MsgSchemaVersionRequired)
		}
		m.Version = *opts.FallbackVersion
	}
	if !m.Version.valid() {
		return nil, i18n.NewError(ctx, MsgSchemaUnknownVersion, uint8(m.Version))
	}

	var err error
	if m.Contracts, err = r.contracts(m.Version); err != nil {
		return nil, err
	}
	if r.remaining() > 0 {
		return nil, i18n.NewError(ctx, MsgSchemaTrailingBytes, r.remaining())
	}
	return m, nil
}

// ParseType parses a schema describing a single type, such as the
// parameter schema of one function.
func ParseType(ctx context.Context, data []byte, maxTypeDepth int) (*Type, error) {
	r := newReader(ctx, data, maxTypeDepth)
	t, err := r.typ()
	if err != nil {
		return nil, err
	}
	if r.remaining() > 0 {
		return nil, i18n.NewError(ctx, MsgSchemaTrailingBytes, r.remaining())
	}
	return t, nil
}

func (r *reader) contracts(version SchemaVersion) (map[string]*ContractSchema, error) {
	// every contract entry is at least a name length plus a few option/count bytes
	n, err := r.count(5)
	if err != nil {
		return nil, err
	}
	contracts := make(map[string]*ContractSchema, n)
	for i := 0; i < n; i++ {
		offset := r.pos
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		if _, dup := contracts[name]; dup {
			return nil, i18n.NewError(r.ctx, MsgSchemaDuplicateEntry, name, offset)
		}
		var c *ContractSchema
		if version == V0 {
			c, err = r.contractV0()
		} else {
			c, err = r.contract(version)
		}
		if err != nil {
			return nil, err
		}
		contracts[name] = c
	}
	return contracts, nil
}

func (r *reader) optionalType() (*Type, error) {
	present, err := r.option()
	if err != nil || !present {
		return nil, err
	}
	return r.typ()
}

func (r *reader) contractV0() (*ContractSchema, error) {
	c := &ContractSchema{}
	var err error
	if c.State, err = r.optionalType(); err != nil {
		return nil, err
	}
	initType, err := r.optionalType()
	if err != nil {
		return nil, err
	}
	if initType != nil {
		c.Init = &FunctionSchema{Parameter: initType}
	}
	c.Receive, err = r.receiveFunctions(func() (*FunctionSchema, error) {
		t, err := r.typ()
		if err != nil {
			return nil, err
		}
		return &FunctionSchema{Parameter: t}, nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// contract reads the V1, V2 and V3 layouts, which differ only in the function
// encoding and the trailing event type of V3
func (r *reader) contract(version SchemaVersion) (*ContractSchema, error) {
	readFn := r.functionV2
	if version == V1 {
		readFn = r.functionV1
	}
	c := &ContractSchema{}
	present, err := r.option()
	if err != nil {
		return nil, err
	}
	if present {
		if c.Init, err = readFn(); err != nil {
			return nil, err
		}
	}
	if c.Receive, err = r.receiveFunctions(readFn); err != nil {
		return nil, err
	}
	if version == V3 {
		if c.Event, err = r.optionalType(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *reader) receiveFunctions(readFn func() (*FunctionSchema, error)) (map[string]*FunctionSchema, error) {
	n, err := r.count(5)
	if err != nil {
		return nil, err
	}
	fns := make(map[string]*FunctionSchema, n)
	for i := 0; i < n; i++ {
		offset := r.pos
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		if _, dup := fns[name]; dup {
			return nil, i18n.NewError(r.ctx, MsgSchemaDuplicateEntry, name, offset)
		}
		if fns[name], err = readFn(); err != nil {
			return nil, err
		}
	}
	return fns, nil
}

func (r *reader) functionV1() (*FunctionSchema, error) {
	offset := r.pos
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	fn := &FunctionSchema{}
	switch tag {
	case 0:
		fn.Parameter, err = r.typ()
	case 1:
		fn.ReturnValue, err = r.typ()
	case 2:
		if fn.Parameter, err = r.typ(); err == nil {
			fn.ReturnValue, err = r.typ()
		}
	default:
		return nil, i18n.NewError(r.ctx, MsgSchemaUnknownFuncTag, tag, offset)
	}
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// A V2 function tag plus one, modulo eight, is a bit set of the types present.
// Tag 7 therefore means none of them.
const (
	fnV2HasParam  = 1 << 0
	fnV2HasReturn = 1 << 1
	fnV2HasError  = 1 << 2
)

func (r *reader) functionV2() (*FunctionSchema, error) {
	offset := r.pos
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	if tag > 7 {
		return nil, i18n.NewError(r.ctx, MsgSchemaUnknownFuncTag, tag, offset)
	}
	present := (tag + 1) & 7
	fn := &FunctionSchema{}
	if present&fnV2HasParam != 0 {
		if fn.Parameter, err = r.typ(); err != nil {
			return nil, err
		}
	}
	if present&fnV2HasReturn != 0 {
		if fn.ReturnValue, err = r.typ(); err != nil {
			return nil, err
		}
	}
	if present&fnV2HasError != 0 {
		if fn.Error, err = r.typ(); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

func (r *reader) sizeLength() (SizeLength, error) {
	offset := r.pos
	b, err := r.u8()
	if err != nil {
		return 0, err
	}
	if b > uint8(SizeU64) {
		return 0, i18n.NewError(r.ctx, MsgSchemaUnknownSizeLength, b, offset)
	}
	return SizeLength(b), nil
}

func (r *reader) typ() (*Type, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	offset := r.pos
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	t := &Type{Kind: TypeKind(tag)}
	switch t.Kind {
	case KindUnit, KindBool,
		KindU8, KindU16, KindU32, KindU64, KindU128,
		KindI8, KindI16, KindI32, KindI64, KindI128,
		KindAmount, KindAccountAddress, KindContractAddress,
		KindTimestamp, KindDuration:
		// no further detail
	case KindPair:
		if t.Key, err = r.typ(); err == nil {
			t.Value, err = r.typ()
		}
	case KindList, KindSet:
		if t.SizeLength, err = r.sizeLength(); err == nil {
			t.Elem, err = r.typ()
		}
	case KindMap:
		if t.SizeLength, err = r.sizeLength(); err == nil {
			if t.Key, err = r.typ(); err == nil {
				t.Value, err = r.typ()
			}
		}
	case KindArray:
		if t.Length, err = r.u32(); err == nil {
			t.Elem, err = r.typ()
		}
	case KindStruct:
		t.Fields, err = r.fields()
	case KindEnum:
		t.Variants, err = r.variants(false)
	case KindTaggedEnum:
		t.Variants, err = r.variants(true)
	case KindString, KindContractName, KindReceiveName, KindByteList:
		t.SizeLength, err = r.sizeLength()
	case KindULeb128, KindILeb128, KindByteArray:
		t.Length, err = r.u32()
	default:
		return nil, i18n.NewError(r.ctx, MsgSchemaUnknownTypeTag, tag, offset)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *reader) fields() (*Fields, error) {
	offset := r.pos
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	f := &Fields{Kind: FieldsKind(tag)}
	switch f.Kind {
	case FieldsNamed:
		n, err := r.count(5)
		if err != nil {
			return nil, err
		}
		f.Named = make([]*NamedField, n)
		for i := range f.Named {
			nf := &NamedField{}
			if nf.Name, err = r.str(); err != nil {
				return nil, err
			}
			if nf.Type, err = r.typ(); err != nil {
				return nil, err
			}
			f.Named[i] = nf
		}
	case FieldsUnnamed:
		n, err := r.count(1)
		if err != nil {
			return nil, err
		}
		f.Unnamed = make([]*Type, n)
		for i := range f.Unnamed {
			if f.Unnamed[i], err = r.typ(); err != nil {
				return nil, err
			}
		}
	case FieldsNone:
	default:
		return nil, i18n.NewError(r.ctx, MsgSchemaUnknownFieldsTag, tag, offset)
	}
	return f, nil
}

func (r *reader) variants(tagged bool) ([]*Variant, error) {
	minSize := 5
	if tagged {
		minSize++
	}
	n, err := r.count(minSize)
	if err != nil {
		return nil, err
	}
	variants := make([]*Variant, n)
	seenTags := make(map[uint8]bool, n)
	for i := range variants {
		v := &Variant{}
		if tagged {
			offset := r.pos
			if v.Tag, err = r.u8(); err != nil {
				return nil, err
			}
			if seenTags[v.Tag] {
				return nil, i18n.NewError(r.ctx, MsgSchemaDuplicateEntry, strconv.Itoa(int(v.Tag)), offset)
			}
			seenTags[v.Tag] = true
		}
		if v.Name, err = r.str(); err != nil {
			return nil, err
		}
		if v.Fields, err = r.fields(); err != nil {
			return nil, err
		}
		variants[i] = v
	}
	return variants, nil
}

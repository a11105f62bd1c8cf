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

// SchemaDescription is the JSON rendering of a parsed module schema
type SchemaDescription struct {
	Version   string                          `json:"version"`
	Contracts map[string]*ContractDescription `json:"contracts"`
}

type ContractDescription struct {
	Init        *FunctionDescription            `json:"init,omitempty"`
	Entrypoints map[string]*FunctionDescription `json:"entrypoints"`
	State       *TypeDescription                `json:"state,omitempty"`
	Event       *TypeDescription                `json:"event,omitempty"`
}

type FunctionDescription struct {
	Parameter   *TypeDescription `json:"parameter,omitempty"`
	ReturnValue *TypeDescription `json:"returnValue,omitempty"`
	Error       *TypeDescription `json:"error,omitempty"`
}

type TypeDescription struct {
	Type       string               `json:"type"`
	SizeLength string               `json:"sizeLength,omitempty"`
	Length     *uint32              `json:"length,omitempty"`
	MaxBytes   *uint32              `json:"maxBytes,omitempty"`
	Item       *TypeDescription     `json:"item,omitempty"`
	Left       *TypeDescription     `json:"left,omitempty"`
	Right      *TypeDescription     `json:"right,omitempty"`
	Key        *TypeDescription     `json:"key,omitempty"`
	Value      *TypeDescription     `json:"value,omitempty"`
	Fields     *FieldsDescription   `json:"fields,omitempty"`
	Variants   []VariantDescription `json:"variants,omitempty"`
}

type FieldsDescription struct {
	Kind    string                  `json:"kind"`
	Named   []NamedFieldDescription `json:"named,omitempty"`
	Unnamed []*TypeDescription      `json:"unnamed,omitempty"`
}

type NamedFieldDescription struct {
	Name string           `json:"name"`
	Type *TypeDescription `json:"type"`
}

type VariantDescription struct {
	Name   string             `json:"name"`
	Tag    *uint8             `json:"tag,omitempty"`
	Fields *FieldsDescription `json:"fields"`
}

func (m *ModuleSchema) Describe() *SchemaDescription {
	d := &SchemaDescription{
		Version:   m.Version.String(),
		Contracts: make(map[string]*ContractDescription, len(m.Contracts)),
	}
	for name, c := range m.Contracts {
		cd := &ContractDescription{
			Init:        c.Init.describe(),
			Entrypoints: make(map[string]*FunctionDescription, len(c.Receive)),
			State:       c.State.Describe(),
			Event:       c.Event.Describe(),
		}
		for fnName, fn := range c.Receive {
			cd.Entrypoints[fnName] = fn.describe()
		}
		d.Contracts[name] = cd
	}
	return d
}

func (fn *FunctionSchema) describe() *FunctionDescription {
	if fn == nil {
		return nil
	}
	return &FunctionDescription{
		Parameter:   fn.Parameter.Describe(),
		ReturnValue: fn.ReturnValue.Describe(),
		Error:       fn.Error.Describe(),
	}
}

// Describe renders the type tree. A nil type describes as nil.
func (t *Type) Describe() *TypeDescription {
	if t == nil {
		return nil
	}
	d := &TypeDescription{Type: t.Kind.String()}
	switch t.Kind {
	case KindPair:
		d.Left, d.Right = t.Key.Describe(), t.Value.Describe()
	case KindList, KindSet:
		d.SizeLength = t.SizeLength.String()
		d.Item = t.Elem.Describe()
	case KindMap:
		d.SizeLength = t.SizeLength.String()
		d.Key, d.Value = t.Key.Describe(), t.Value.Describe()
	case KindArray:
		d.Length = &t.Length
		d.Item = t.Elem.Describe()
	case KindByteArray:
		d.Length = &t.Length
	case KindULeb128, KindILeb128:
		d.MaxBytes = &t.Length
	case KindString, KindContractName, KindReceiveName, KindByteList:
		d.SizeLength = t.SizeLength.String()
	case KindStruct:
		d.Fields = t.Fields.describe()
	case KindEnum, KindTaggedEnum:
		d.Variants = make([]VariantDescription, len(t.Variants))
		for i, v := range t.Variants {
			d.Variants[i] = VariantDescription{Name: v.Name, Fields: v.Fields.describe()}
			if t.Kind == KindTaggedEnum {
				tag := v.Tag
				d.Variants[i].Tag = &tag
			}
		}
	}
	return d
}

func (f *Fields) describe() *FieldsDescription {
	if f == nil || f.Kind == FieldsNone {
		return &FieldsDescription{Kind: "none"}
	}
	if f.Kind == FieldsUnnamed {
		d := &FieldsDescription{Kind: "unnamed", Unnamed: make([]*TypeDescription, len(f.Unnamed))}
		for i, t := range f.Unnamed {
			d.Unnamed[i] = t.Describe()
		}
		return d
	}
	d := &FieldsDescription{Kind: "named", Named: make([]NamedFieldDescription, len(f.Named))}
	for i, nf := range f.Named {
		d.Named[i] = NamedFieldDescription{Name: nf.Name, Type: nf.Type.Describe()}
	}
	return d
}

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
	"fmt"
	"sort"

	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// SchemaVersion selects the layout of the contracts inside a module schema
type SchemaVersion uint8

const (
	// V0 schemas describe contracts deployed as wasm V0 modules (init, receive and state types)
	V0 SchemaVersion = 0
	// V1 schemas add return values
	V1 SchemaVersion = 1
	// V2 schemas add error types
	V2 SchemaVersion = 2
	// V3 schemas add an event type per contract
	V3 SchemaVersion = 3
)

func (v SchemaVersion) String() string {
	return fmt.Sprintf("V%d", uint8(v))
}

func (v SchemaVersion) valid() bool {
	return v <= V3
}

// ModuleSchema is the unified in-memory form of all four schema versions.
// Fields a version does not carry are left nil.
type ModuleSchema struct {
	Version   SchemaVersion
	Versioned bool
	Contracts map[string]*ContractSchema
}

type ContractSchema struct {
	Init    *FunctionSchema
	Receive map[string]*FunctionSchema
	// State is only present in V0 schemas
	State *Type
	// Event is only present in V3 schemas
	Event *Type
}

type FunctionSchema struct {
	Parameter   *Type
	ReturnValue *Type
	Error       *Type
}

func (m *ModuleSchema) ContractNames() []string {
	return sortedKeys(m.Contracts)
}

func (c *ContractSchema) ReceiveNames() []string {
	return sortedKeys(c.Receive)
}

func (m *ModuleSchema) contract(ctx context.Context, contractName string) (*ContractSchema, error) {
	c := m.Contracts[contractName]
	if c == nil {
		return nil, i18n.NewError(ctx, MsgSchemaContractNotFound, contractName)
	}
	return c, nil
}

// InitParameter returns the type of the parameter passed to the contract's init function
func (m *ModuleSchema) InitParameter(ctx context.Context, contractName string) (*Type, error) {
	c, err := m.contract(ctx, contractName)
	if err != nil {
		return nil, err
	}
	if c.Init == nil {
		return nil, i18n.NewError(ctx, MsgSchemaNoInitFunction, contractName)
	}
	if c.Init.Parameter == nil {
		return nil, i18n.NewError(ctx, MsgSchemaNoParameter, fmt.Sprintf("init_%s", contractName))
	}
	return c.Init.Parameter, nil
}

// ReceiveParameter returns the type of the parameter passed to an update of the contract
func (m *ModuleSchema) ReceiveParameter(ctx context.Context, contractName, functionName string) (*Type, error) {
	c, err := m.contract(ctx, contractName)
	if err != nil {
		return nil, err
	}
	fn := c.Receive[functionName]
	if fn == nil {
		return nil, i18n.NewError(ctx, MsgSchemaFunctionNotFound, functionName, contractName)
	}
	if fn.Parameter == nil {
		return nil, i18n.NewError(ctx, MsgSchemaNoParameter, fmt.Sprintf("%s.%s", contractName, functionName))
	}
	return fn.Parameter, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// byte-wise order, matching the ordered maps the schema is written from
	sort.Strings(keys)
	return keys
}

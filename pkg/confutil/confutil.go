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

package confutil

import (
	"cmp"
	"math"
	"time"

	"github.com/docker/go-units"
)

// Value dereferences an optional setting, falling back to the default when unset
func Value[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func IntMin(iVal *int, min int, def int) int {
	if iVal == nil || *iVal < min {
		return def
	}
	return *iVal
}

func Bool(bVal *bool, def bool) bool {
	return Value(bVal, def)
}

func StringNotEmpty(sVal *string, def string) string {
	if sVal == nil || *sVal == "" {
		return def
	}
	return *sVal
}

func StringSlice(sVal []string, def []string) []string {
	if sVal == nil {
		return def
	}
	return sVal
}

// parseMin applies the parser to the setting, using the default when the
// setting is unset, unparsable or below the minimum. The default must parse.
func parseMin[T cmp.Ordered](sVal *string, parse func(string) (T, error), min T, def string) T {
	if sVal != nil {
		if v, err := parse(*sVal); err == nil && v >= min {
			return v
		}
	}
	v, _ := parse(def)
	return v
}

func DurationMin(sVal *string, min time.Duration, def string) time.Duration {
	return parseMin(sVal, time.ParseDuration, min, def)
}

func DurationSeconds(sVal *string, min time.Duration, def string) int64 {
	return int64(math.Ceil(DurationMin(sVal, min, def).Seconds()))
}

// ByteSize accepts human readable sizes such as "16Kb" or "1Mb"
func ByteSize(sVal *string, min int64, def string) int64 {
	return parseMin(sVal, units.RAMInBytes, min, def)
}

func P[T any](v T) *T {
	return &v
}

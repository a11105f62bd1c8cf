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

package cache

import (
	"sync/atomic"

	cacheimpl "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/bisgardo/concordium-tools/pkg/ccdconf"
	"github.com/bisgardo/concordium-tools/pkg/confutil"
)

type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, val V)
	// GetOrLoad returns the cached value, or calls load and caches its result.
	// The boolean reports whether the value came from the cache.
	// Failed loads are not cached.
	GetOrLoad(key K, load func() (V, error)) (V, bool, error)
	Delete(key K)
	Len() int
	Capacity() int
	Clear()
}

type lruCache[K comparable, V any] struct {
	entries  atomic.Pointer[cacheimpl.Cache[K, V]]
	capacity int
}

func NewCache[K comparable, V any](conf *ccdconf.CacheConfig, defs *ccdconf.CacheConfig) Cache[K, V] {
	c := &lruCache[K, V]{
		capacity: confutil.IntMin(conf.Capacity, 1, *defs.Capacity),
	}
	// the underlying cache is safe for concurrent use, but has no way to be
	// emptied, so Clear swaps in a fresh instance
	c.Clear()
	return c
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	return c.entries.Load().Get(key)
}

func (c *lruCache[K, V]) Set(key K, val V) {
	c.entries.Load().Set(key, val)
}

func (c *lruCache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	// concurrent misses on the same key may both load, and the last one wins
	v, err := load()
	if err != nil {
		return v, false, err
	}
	c.Set(key, v)
	return v, false, nil
}

func (c *lruCache[K, V]) Delete(key K) {
	c.entries.Load().Delete(key)
}

func (c *lruCache[K, V]) Len() int {
	return len(c.entries.Load().Keys())
}

func (c *lruCache[K, V]) Clear() {
	c.entries.Store(cacheimpl.New(cacheimpl.AsLRU[K, V](
		lru.WithCapacity(c.capacity),
	)))
}

func (c *lruCache[K, V]) Capacity() int {
	return c.capacity
}

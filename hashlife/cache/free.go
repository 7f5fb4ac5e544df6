/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package cache

import (
	"github.com/coocood/freecache"
)

// FreeCache is a memory bounded cache with near zero GC overhead.
type FreeCache struct {
	cached *freecache.Cache
}

// NewFreeCache funtion returns a new cache with a parametrized size.
func NewFreeCache(initialSize int) *FreeCache {
	cache := freecache.NewCache(initialSize)
	return &FreeCache{cached: cache}
}

// Get function returns the value of a given key in cache, and a boolean showing if
// the key is or is not present.
func (c FreeCache) Get(key []byte) ([]byte, bool) {
	value, err := c.cached.Get(key)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Put function adds a new key/value pair to the cache.
func (c *FreeCache) Put(key []byte, value []byte) {
	_ = c.cached.Set(key, value, 0)
}

// Size function returns the number of items currently in the cache.
func (c FreeCache) Size() int {
	return int(c.cached.EntryCount())
}

// Reset drops every entry.
func (c *FreeCache) Reset() {
	c.cached.Clear()
}

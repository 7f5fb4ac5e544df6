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

// SimpleCache is an unbounded in-memory map of fixed size keys to values.
// It never evicts, so it is the only backend that guarantees a result is
// computed once per session.
type SimpleCache struct {
	cached map[[KeySize]byte][]byte
}

// NewSimpleCache returns an empty SimpleCache of 'initialSize' size.
func NewSimpleCache(initialSize uint64) *SimpleCache {
	return &SimpleCache{make(map[[KeySize]byte][]byte, initialSize)}
}

// Get function returns the value of a given key in cache, and a boolean showing if
// the key is or is not present.
func (c SimpleCache) Get(key []byte) ([]byte, bool) {
	var k [KeySize]byte
	copy(k[:], key)
	value, ok := c.cached[k]
	return value, ok
}

// Put function adds a key/value element to the SimpleCache.
func (c *SimpleCache) Put(key []byte, value []byte) {
	var k [KeySize]byte
	copy(k[:], key)
	c.cached[k] = value
}

// Size function returns the number of items currently in the cache.
func (c SimpleCache) Size() int {
	return len(c.cached)
}

// Reset drops every entry.
func (c *SimpleCache) Reset() {
	c.cached = make(map[[KeySize]byte][]byte)
}

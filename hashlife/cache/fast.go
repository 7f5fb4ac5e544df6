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
	"github.com/VictoriaMetrics/fastcache"
)

// FastCache is a memory bounded cache. Old entries are evicted once the
// budget is exhausted; an evicted result is simply recomputed.
type FastCache struct {
	cached *fastcache.Cache
}

func NewFastCache(maxBytes int64) *FastCache {
	cache := fastcache.New(int(maxBytes))
	return &FastCache{cached: cache}
}

func (c FastCache) Get(key []byte) ([]byte, bool) {
	value := c.cached.Get(nil, key)
	if value == nil {
		return nil, false
	}
	return value, true
}

func (c *FastCache) Put(key []byte, value []byte) {
	c.cached.Set(key, value)
}

func (c FastCache) Size() int {
	var s fastcache.Stats
	c.cached.UpdateStats(&s)
	return int(s.EntriesCount)
}

func (c *FastCache) Reset() {
	c.cached.Reset()
}

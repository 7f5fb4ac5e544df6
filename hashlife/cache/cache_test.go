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
	"testing"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Cache {
	caches := make(map[string]Cache)
	for _, name := range []string{SimpleBackend, FastBackend, FreeBackend} {
		c, err := New(name, 1<<20)
		require.NoError(t, err)
		caches[name] = c
	}
	return caches
}

func TestCacheBackends(t *testing.T) {

	testCases := []struct {
		key    []byte
		value  Entry
		cached bool
	}{
		{Key(Center, 1, 0), Entry{ID: 7, DX: 1, DY: 1}, true},
		{Key(Full, 1, 0), Entry{ID: 9, DX: -12, DY: -12}, true},
		{Key(Stepped, 1, 3), Entry{ID: 11, DX: 4, DY: 4}, true},
		{Key(Stepped, 1, 4), Entry{}, false},
		{Key(Center, 2, 0), Entry{}, false},
	}

	for name, cache := range backends(t) {
		for i, c := range testCases {
			if c.cached {
				cache.Put(c.key, c.value.Bytes())
			}

			cachedValue, ok := cache.Get(c.key)

			if c.cached {
				require.Truef(t, ok, "The key should exist in %s cache in test case %d", name, i)
				entry, err := ParseEntry(cachedValue)
				require.NoError(t, err)
				require.Equalf(t, c.value, entry, "The cached value should be equal to stored value in %s test case %d", name, i)
			} else {
				require.Falsef(t, ok, "The key should not exist in %s cache in test case %d", name, i)
			}
		}

		require.Equalf(t, 3, cache.Size(), "Wrong size for %s cache", name)
		cache.Reset()
		require.Equalf(t, 0, cache.Size(), "The %s cache should be empty after reset", name)
		_, ok := cache.Get(testCases[0].key)
		require.Falsef(t, ok, "The %s cache should not answer after reset", name)
	}
}

func TestUnknownBackend(t *testing.T) {
	_, err := New("redis", 1024)
	require.Error(t, err)
}

func TestParseEntryRejectsShortValues(t *testing.T) {
	_, err := ParseEntry([]byte{0x1, 0x2})
	require.Error(t, err)
}

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

package hashlife

import (
	"github.com/bbva/hashlife/hashlife/cache"
)

type Config struct {
	// Largest tree level the driver accepts before giving up. A level k
	// tree spans 2^k cells per side.
	MaxLevel uint `desc:"Largest quadtree level accepted before reporting resource exhaustion" mapstructure:"max-level"`

	// Largest number of canonical nodes kept per session.
	MaxNodes uint64 `desc:"Largest number of canonical nodes kept before reporting resource exhaustion" mapstructure:"max-nodes"`

	// Pad the tree so that every driver iteration takes the largest
	// power-of-two leap that fits in the remaining generations.
	GreedyLeaps bool `desc:"Pad the tree to take the largest power-of-two leap available" mapstructure:"greedy-leaps"`

	// Result cache backend: simple|fast|free.
	CacheBackend string `desc:"Result cache backend (simple|fast|free)" mapstructure:"cache-backend"`

	// Initial entries (simple) or memory budget in bytes (fast, free).
	CacheSize int `desc:"Result cache size: initial entries (simple) or bytes (fast|free)" mapstructure:"cache-size"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxLevel:     48,
		MaxNodes:     1 << 24,
		GreedyLeaps:  false,
		CacheBackend: cache.SimpleBackend,
		CacheSize:    1 << 16,
	}
}

// maxSupportedLevel bounds MaxLevel: full advances pad the tree three
// levels up and offsets must stay within int64.
const maxSupportedLevel = 58

func (c *Config) validate() error {
	if c.MaxLevel == 0 || c.MaxLevel > maxSupportedLevel {
		return invalid("config", "max level must be in [1, %d], got %d", maxSupportedLevel, c.MaxLevel)
	}
	if c.MaxNodes == 0 {
		return invalid("config", "max nodes must be positive")
	}
	if c.CacheSize < 0 {
		return invalid("config", "cache size must not be negative")
	}
	return nil
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbva/hashlife/hashlife/cache"
	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/testutils/patterns"
)

func newTestEngine(t *testing.T, opts ...func(*Config)) *Engine {
	conf := DefaultConfig()
	for _, o := range opts {
		o(conf)
	}
	e, err := NewEngine(conf, log.New(&log.LoggerOptions{Name: "test", Level: log.Off}))
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {

	testCases := []struct {
		name  string
		conf  func(*Config)
		valid bool
	}{
		{"defaults", func(*Config) {}, true},
		{"fast cache", func(c *Config) { c.CacheBackend = cache.FastBackend }, true},
		{"free cache", func(c *Config) { c.CacheBackend = cache.FreeBackend }, true},
		{"zero max level", func(c *Config) { c.MaxLevel = 0 }, false},
		{"max level too high", func(c *Config) { c.MaxLevel = 59 }, false},
		{"zero max nodes", func(c *Config) { c.MaxNodes = 0 }, false},
		{"negative cache size", func(c *Config) { c.CacheSize = -1 }, false},
		{"unknown backend", func(c *Config) { c.CacheBackend = "redis" }, false},
	}

	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			conf := DefaultConfig()
			c.conf(conf)
			e, err := NewEngine(conf, nil)
			if !c.valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, Stats{}, e.Stats())
		})
	}

	e, err := NewEngine(nil, nil)
	require.NoError(t, err)
	require.Equal(t, *DefaultConfig(), e.Config())
}

func TestCanonicalNodes(t *testing.T) {
	e := newTestEngine(t)

	on, err := e.Leaf(true)
	require.NoError(t, err)
	off, err := e.Leaf(false)
	require.NoError(t, err)
	again, err := e.Leaf(true)
	require.NoError(t, err)
	require.True(t, on == again, "leaves must be shared")
	require.NotEqual(t, on.ID(), off.ID())

	a, err := e.Internal(on, off, off, on)
	require.NoError(t, err)
	b, err := e.Internal(on, off, off, on)
	require.NoError(t, err)
	require.True(t, a == b, "equal structure must give the same node")
	require.Equal(t, uint(1), a.Level())
	require.Equal(t, int64(2), a.Population())
	require.Equal(t, int64(2), a.Size())
	require.Equal(t, "L1:1,2,2,1", a.Key())

	z, err := e.Empty(3)
	require.NoError(t, err)
	require.Equal(t, uint(3), z.Level())
	require.Equal(t, int64(0), z.Population())
	require.True(t, z.NW() == z.SE())

	_, err = e.Empty(49)
	require.True(t, IsResourceExhaustion(err))

	block, err := e.BuildTree(in(patterns.Block), 0)
	require.NoError(t, err)
	moved, err := e.BuildTree(in(patterns.Block.Translate(5, -7)), 0)
	require.NoError(t, err)
	require.True(t, block.Node == moved.Node, "translated copies share the node")
	require.Equal(t, int64(5), moved.X)
	require.Equal(t, int64(-7), moved.Y)

	// two separated gliders in one tree share their quadrant
	pair := append(append(patterns.Cells{}, patterns.Glider...), patterns.Glider.Translate(32, 32)...)
	both, err := e.BuildTree(in(pair), 0)
	require.NoError(t, err)
	require.Equal(t, uint(6), both.Node.Level())
	first := both.Node.NW().NW().NW().NW()
	second := both.Node.SE().NW().NW().NW()
	require.Equal(t, uint(2), first.Level())
	require.Equal(t, int64(5), first.Population())
	require.Equal(t, first.ID(), second.ID())
	require.Equal(t, first.Key(), second.Key())
	lone, err := e.BuildTree(in(patterns.Glider), 0)
	require.NoError(t, err)
	require.True(t, lone.Node == first, "a lone glider is the same node")

	// ids are dense and creation ordered
	for id := uint64(1); id <= uint64(e.Stats().Nodes); id++ {
		require.Equal(t, id, e.nodes.byID(id).ID())
	}
}

func TestMixedLevelsPanic(t *testing.T) {
	e := newTestEngine(t)
	leaf, _ := e.Leaf(true)
	pair, _ := e.Internal(leaf, leaf, leaf, leaf)

	assert.Panics(t, func() {
		_, _ = e.Internal(pair, leaf, leaf, leaf)
	})
}

func TestForeignNodePanics(t *testing.T) {
	e1 := newTestEngine(t)
	e2 := newTestEngine(t)
	for i := 0; i < 4; i++ {
		_, _ = e2.Empty(uint(i))
	}
	foreign, _ := e2.Empty(2)

	assert.Panics(t, func() {
		_, _ = e1.Internal(foreign, foreign, foreign, foreign)
	})
}

func TestClearCache(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Advance(ctx(), in(patterns.Acorn), 200)
	require.NoError(t, err)
	before := e.Stats()
	require.True(t, before.Nodes > 0)
	require.True(t, before.CacheEntries > 0)
	require.True(t, before.Misses > 0)

	e.ClearCache()
	after := e.Stats()
	require.Equal(t, 0, after.Nodes)
	require.Equal(t, 0, after.CacheEntries)
	require.Equal(t, uint64(1), after.Clears)

	leaf, err := e.Leaf(false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), leaf.ID(), "ids restart after a clear")

	res, err := e.Advance(ctx(), in(patterns.Acorn), 200)
	require.NoError(t, err)
	require.Equal(t, patterns.Run(patterns.Acorn, 200), fromCells(res.Cells))
}

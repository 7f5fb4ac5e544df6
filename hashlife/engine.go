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

// Package hashlife implements a HashLife evaluator for Conway's Game of
// Life (B3/S23). Patterns are stored as canonical, hash-consed quadtrees
// and results are memoized by node identity, so any sub-pattern seen
// before, anywhere in the grid, is advanced at the cost of a lookup.
//
// An Engine owns the node table and the result cache of one simulation
// session. It is not safe for concurrent use; see package worker for a
// serialized front end.
package hashlife

import (
	"github.com/pkg/errors"

	"github.com/bbva/hashlife/hashlife/cache"
	"github.com/bbva/hashlife/log"
	"github.com/bbva/hashlife/metrics"
)

// Stats is a snapshot of the engine caches.
type Stats struct {
	Nodes        int    `json:"nodes" codec:"nodes"`
	CacheEntries int    `json:"cacheEntries" codec:"cacheEntries"`
	Hits         uint64 `json:"hits" codec:"hits"`
	Misses       uint64 `json:"misses" codec:"misses"`
	Clears       uint64 `json:"clears" codec:"clears"`
}

type Engine struct {
	conf    Config
	log     log.Logger
	nodes   *store
	results cache.Cache
	stats   Stats
}

// NewEngine returns an engine with empty caches. A nil config means
// DefaultConfig and a nil logger means the process default one.
func NewEngine(conf *Config, logger log.Logger) (*Engine, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	results, err := cache.New(conf.CacheBackend, conf.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create result cache")
	}
	if logger == nil {
		logger = log.L()
	}

	nodes := newStore(conf.MaxNodes)
	nodes.onCreate = metrics.HashlifeNodesCreatedTotal.Inc

	return &Engine{
		conf:    *conf,
		log:     logger.Named("engine"),
		nodes:   nodes,
		results: results,
	}, nil
}

func (e *Engine) Config() Config {
	return e.conf
}

// ClearCache empties the node table and the result cache and restarts
// ids. Nodes obtained before the call must not be passed back to the
// engine afterwards.
func (e *Engine) ClearCache() {
	e.log.Debugf("clearing %d nodes and %d results", e.nodes.size(), e.results.Size())
	e.nodes.reset()
	e.results.Reset()
	e.stats.Clears++
	metrics.HashlifeCacheClearsTotal.Inc()
}

func (e *Engine) Stats() Stats {
	s := e.stats
	s.Nodes = e.nodes.size()
	s.CacheEntries = e.results.Size()
	return s
}

// Leaf returns the canonical single cell node.
func (e *Engine) Leaf(alive bool) (n *Node, err error) {
	defer guard(&err)
	return e.nodes.leaf(alive), nil
}

// Empty returns the canonical dead node of the given level.
func (e *Engine) Empty(level uint) (n *Node, err error) {
	if level > e.conf.MaxLevel {
		return nil, &ResourceExhaustion{Resource: "level", Limit: int64(e.conf.MaxLevel), Value: int64(level)}
	}
	defer guard(&err)
	return e.nodes.empty(level), nil
}

// Internal returns the canonical node with the given children. Children
// must share a level and belong to this engine; anything else is an
// invariant violation and panics.
func (e *Engine) Internal(nw, ne, sw, se *Node) (n *Node, err error) {
	defer guard(&err)
	return e.nodes.internal(nw, ne, sw, se), nil
}

// BuildTree normalizes input and builds the canonical tree holding it,
// padded to at least minLevel. The frame origin is the minimum corner of
// the bounding box.
func (e *Engine) BuildTree(input interface{}, minLevel uint) (f Frame, err error) {
	cells, err := Normalize(input)
	if err != nil {
		return Frame{}, err
	}
	defer guard(&err)
	return e.buildTree(cells, minLevel), nil
}

// Extract returns the level node covering the square at x,y of frame f.
// Area outside the frame reads as dead.
func (e *Engine) Extract(f Frame, level uint, x, y int64) (n *Node, err error) {
	defer guard(&err)
	return e.extract(f, level, x, y), nil
}

// guard turns resource exhaustion raised deep in the recursion into an
// error. Invariant violations keep unwinding.
func guard(err *error) {
	if r := recover(); r != nil {
		if re, ok := r.(*ResourceExhaustion); ok {
			*err = re
			return
		}
		panic(r)
	}
}

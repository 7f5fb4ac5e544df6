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
	"github.com/bbva/hashlife/metrics"
)

func (e *Engine) lookup(f cache.Family, n *Node, step uint8) (cache.Entry, bool) {
	value, ok := e.results.Get(cache.Key(f, n.id, step))
	if !ok {
		e.stats.Misses++
		metrics.HashlifeResultCacheMissesTotal.WithLabelValues(string(f)).Inc()
		return cache.Entry{}, false
	}
	entry, err := cache.ParseEntry(value)
	if err != nil {
		violation("corrupt %c result for %s: %v", f, n.Key(), err)
	}
	e.stats.Hits++
	metrics.HashlifeResultCacheHitsTotal.WithLabelValues(string(f)).Inc()
	return entry, true
}

func (e *Engine) memoize(f cache.Family, n *Node, step uint8, entry cache.Entry) {
	e.results.Put(cache.Key(f, n.id, step), entry.Bytes())
}

// windows returns the nine overlapping level-(k-1) sub-squares of a level
// k node, row by row, each offset by a quarter of the node side from its
// neighbours.
func (e *Engine) windows(n *Node) [9]*Node {
	s := e.nodes
	return [9]*Node{
		n.nw,
		s.internal(n.nw.ne, n.ne.nw, n.nw.se, n.ne.sw),
		n.ne,
		s.internal(n.nw.sw, n.nw.se, n.sw.nw, n.sw.ne),
		s.internal(n.nw.se, n.ne.sw, n.sw.ne, n.se.nw),
		s.internal(n.ne.sw, n.ne.se, n.se.nw, n.se.ne),
		n.sw,
		s.internal(n.sw.ne, n.se.nw, n.sw.se, n.se.sw),
		n.se,
	}
}

// centered returns the level-(k-1) square in the middle of a level k node,
// without advancing time.
func (e *Engine) centered(n *Node) *Node {
	return e.nodes.internal(n.nw.se, n.ne.sw, n.sw.ne, n.se.nw)
}

// combine regroups nine level-(k-2) partial results into four overlapping
// level-(k-1) squares, advances each with step and joins the four
// level-(k-2) answers into the final level-(k-1) node.
func (e *Engine) combine(r [9]*Node, step func(*Node) *Node) *Node {
	s := e.nodes
	return s.internal(
		step(s.internal(r[0], r[1], r[3], r[4])),
		step(s.internal(r[1], r[2], r[4], r[5])),
		step(s.internal(r[3], r[4], r[6], r[7])),
		step(s.internal(r[4], r[5], r[7], r[8])),
	)
}

// centerAdvance returns the centered level-(k-1) square of a level k node
// (k >= 2) advanced 2^(k-2) generations. The square sits at the node
// origin plus 2^(k-2) on both axes.
func (e *Engine) centerAdvance(n *Node) *Node {
	k := n.Level()
	if k < 2 {
		violation("center advance needs level >= 2, got %d", k)
	}
	if n.Population() == 0 {
		return e.nodes.empty(k - 1)
	}
	if entry, ok := e.lookup(cache.Center, n, 0); ok {
		return e.nodes.byID(entry.ID)
	}

	var result *Node
	if k == 2 {
		next := AdvanceBrute(NodeToCells(Frame{Node: n}), 1)
		region := Frame{Node: e.buildRegion(next, k, 0, 0)}
		result = e.extract(region, k-1, 1, 1)
	} else {
		w := e.windows(n)
		var r [9]*Node
		for i := range w {
			r[i] = e.centerAdvance(w[i])
		}
		result = e.combine(r, e.centerAdvance)
	}

	q := int64(1) << (k - 2)
	e.memoize(cache.Center, n, 0, cache.Entry{ID: result.id, DX: q, DY: q})
	return result
}

// centerStep is centerAdvance for a shorter time step: the centered
// level-(k-1) square advanced 2^j generations, j <= k-2.
func (e *Engine) centerStep(n *Node, j uint) *Node {
	k := n.Level()
	if k < 2 || j > k-2 {
		violation("center step of 2^%d generations needs level >= %d, got %d", j, j+2, k)
	}
	if j == k-2 {
		return e.centerAdvance(n)
	}
	if n.Population() == 0 {
		return e.nodes.empty(k - 1)
	}
	if entry, ok := e.lookup(cache.Stepped, n, uint8(j)); ok {
		return e.nodes.byID(entry.ID)
	}

	w := e.windows(n)
	var r [9]*Node
	for i := range w {
		r[i] = e.centered(w[i])
	}
	result := e.combine(r, func(m *Node) *Node { return e.centerStep(m, j) })

	q := int64(1) << (k - 2)
	e.memoize(cache.Stepped, n, uint8(j), cache.Entry{ID: result.id, DX: q, DY: q})
	return result
}

// expand wraps a node of level k >= 1 in an empty node of level k+1 with
// the original in the middle, shifting the origin by 2^(k-1) outwards.
func (e *Engine) expand(n *Node) *Node {
	s := e.nodes
	z := s.empty(n.Level() - 1)
	return s.internal(
		s.internal(z, z, z, n.nw),
		s.internal(z, z, n.ne, z),
		s.internal(z, n.sw, z, z),
		s.internal(n.se, z, z, z),
	)
}

// fullAdvance returns the whole frame advanced 2^k generations, k being
// the node level. The answer may be larger than the input: it covers
// every cell the pattern can reach in that time.
func (e *Engine) fullAdvance(f Frame) Frame {
	n := f.Node
	if n.Population() == 0 {
		return f
	}
	if entry, ok := e.lookup(cache.Full, n, 0); ok {
		return Frame{Node: e.nodes.byID(entry.ID), X: f.X + entry.DX, Y: f.Y + entry.DY}
	}

	k := n.Level()
	var entry cache.Entry
	if k <= 2 {
		next := AdvanceBrute(NodeToCells(Frame{Node: n}), int64(1)<<k)
		t := e.buildTree(next, 0)
		entry = cache.Entry{ID: t.Node.id, DX: t.X, DY: t.Y}
	} else {
		// After three wraps the centered result of the level k+3 node
		// reaches 3*2^(k-1) cells past the original on every side, more
		// than the 2^k cells a signal travels in 2^k generations.
		big := n
		for i := 0; i < 3; i++ {
			big = e.expand(big)
		}
		result := e.centerStep(big, k)
		shift := -3 * (int64(1) << (k - 1))
		entry = cache.Entry{ID: result.id, DX: shift, DY: shift}
	}

	e.memoize(cache.Full, n, 0, entry)
	return Frame{Node: e.nodes.byID(entry.ID), X: f.X + entry.DX, Y: f.Y + entry.DY}
}

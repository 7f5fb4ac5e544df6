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
	"fmt"
)

// Node is a canonical quadtree node covering a 2^level square. Level 0
// nodes are single cells. Nodes carry no position: two regions with the
// same content anywhere in the grid share one Node.
type Node struct {
	id    uint64
	level uint8
	alive bool

	nw, ne, sw, se *Node

	population int64
	counted    bool
}

// ID returns the identity assigned when the node was first built. Ids are
// never reused until the owning engine clears its caches.
func (n *Node) ID() uint64 { return n.id }

// Level returns the node level; the node spans 2^level cells per side.
func (n *Node) Level() uint { return uint(n.level) }

// Size returns the side length of the node.
func (n *Node) Size() int64 { return int64(1) << n.level }

// Alive tells if a leaf is a live cell. Always false for inner nodes.
func (n *Node) Alive() bool { return n.alive }

func (n *Node) NW() *Node { return n.nw }
func (n *Node) NE() *Node { return n.ne }
func (n *Node) SW() *Node { return n.sw }
func (n *Node) SE() *Node { return n.se }

// Population returns the number of live cells below the node. It is
// computed on first request and cached on the node.
func (n *Node) Population() int64 {
	if n.counted {
		return n.population
	}
	if n.level == 0 {
		if n.alive {
			n.population = 1
		}
	} else {
		n.population = n.nw.Population() + n.ne.Population() + n.sw.Population() + n.se.Population()
	}
	n.counted = true
	return n.population
}

// Key returns the content derived identity of the node built from its
// level and the ids of its children.
func (n *Node) Key() string {
	if n.level == 0 {
		if n.alive {
			return "L0:1"
		}
		return "L0:0"
	}
	return fmt.Sprintf("L%d:%d,%d,%d,%d", n.level, n.nw.id, n.ne.id, n.sw.id, n.se.id)
}

func (n *Node) String() string {
	return fmt.Sprintf("node(%d %s pop=%d)", n.id, n.Key(), n.Population())
}

// nodeKey is the structural identity used by the canonical table. Leaves
// store their state in nw.
type nodeKey struct {
	level          uint8
	nw, ne, sw, se uint64
}

// store is the hash-consing table plus the id arena.
type store struct {
	table    map[nodeKey]*Node
	arena    []*Node // arena[id-1]
	empties  []*Node
	maxNodes uint64
	onCreate func()
}

func newStore(maxNodes uint64) *store {
	s := &store{maxNodes: maxNodes}
	s.reset()
	return s
}

func (s *store) reset() {
	s.table = make(map[nodeKey]*Node)
	s.arena = nil
	s.empties = nil
}

func (s *store) size() int {
	return len(s.arena)
}

func (s *store) intern(k nodeKey, build func() *Node) *Node {
	if n, ok := s.table[k]; ok {
		return n
	}
	if uint64(len(s.arena)) >= s.maxNodes {
		panic(&ResourceExhaustion{Resource: "nodes", Limit: int64(s.maxNodes), Value: int64(len(s.arena)) + 1})
	}
	n := build()
	n.id = uint64(len(s.arena)) + 1
	s.arena = append(s.arena, n)
	s.table[k] = n
	if s.onCreate != nil {
		s.onCreate()
	}
	return n
}

// byID resolves an arena id back into its node.
func (s *store) byID(id uint64) *Node {
	if id == 0 || id > uint64(len(s.arena)) {
		violation("unknown node id %d (arena holds %d nodes)", id, len(s.arena))
	}
	return s.arena[id-1]
}

// owns tells if n was built by this store since the last reset.
func (s *store) owns(n *Node) bool {
	return n != nil && n.id > 0 && n.id <= uint64(len(s.arena)) && s.arena[n.id-1] == n
}

func (s *store) leaf(alive bool) *Node {
	k := nodeKey{}
	if alive {
		k.nw = 1
	}
	return s.intern(k, func() *Node {
		return &Node{alive: alive}
	})
}

func (s *store) internal(nw, ne, sw, se *Node) *Node {
	for _, c := range [4]*Node{nw, ne, sw, se} {
		if !s.owns(c) {
			violation("child %v does not belong to this session", c)
		}
	}
	level := nw.level
	if ne.level != level || sw.level != level || se.level != level {
		violation("children levels differ: %d %d %d %d", nw.level, ne.level, sw.level, se.level)
	}
	k := nodeKey{level: level + 1, nw: nw.id, ne: ne.id, sw: sw.id, se: se.id}
	return s.intern(k, func() *Node {
		return &Node{level: level + 1, nw: nw, ne: ne, sw: sw, se: se}
	})
}

func (s *store) empty(level uint) *Node {
	for uint(len(s.empties)) <= level {
		k := len(s.empties)
		if k == 0 {
			s.empties = append(s.empties, s.leaf(false))
			continue
		}
		e := s.empties[k-1]
		s.empties = append(s.empties, s.internal(e, e, e, e))
	}
	return s.empties[level]
}

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

// Frame places a canonical node at an absolute origin (its north-west
// corner). Origins always travel next to nodes, never inside them.
type Frame struct {
	Node *Node
	X, Y int64
}

// coordinateLimit bounds how far a pattern may drift before the padded
// frames built around it could overflow.
const coordinateLimit = int64(1) << 61

// buildTree builds a canonical node of at least minLevel whose origin is
// the minimum corner of the cells bounding box. An empty list yields an
// empty node at 0,0.
func (e *Engine) buildTree(cells []Cell, minLevel uint) Frame {
	box := BoundingBox(cells)
	if box == nil {
		return Frame{Node: e.nodes.empty(minLevel)}
	}
	for _, v := range []int64{box.MinX, box.MinY, box.MaxX, box.MaxY} {
		if v > coordinateLimit || v < -coordinateLimit {
			panic(&ResourceExhaustion{Resource: "coordinate", Limit: coordinateLimit, Value: v})
		}
	}
	k := LevelForBounds(box)
	if k < minLevel {
		k = minLevel
	}
	if k > e.conf.MaxLevel {
		panic(&ResourceExhaustion{Resource: "level", Limit: int64(e.conf.MaxLevel), Value: int64(k)})
	}
	return Frame{
		Node: e.build(k, box.MinX, box.MinY, cells),
		X:    box.MinX,
		Y:    box.MinY,
	}
}

// buildRegion builds the level node covering the square at x,y from the
// cells that fall inside it; the rest are ignored.
func (e *Engine) buildRegion(cells []Cell, level uint, x, y int64) *Node {
	size := int64(1) << level
	inside := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if c.X >= x && c.X < x+size && c.Y >= y && c.Y < y+size {
			inside = append(inside, c)
		}
	}
	return e.build(level, x, y, inside)
}

// build partitions cells (all inside the square) among the four
// quadrants, so the cost depends on the population, not on the area.
func (e *Engine) build(level uint, x, y int64, cells []Cell) *Node {
	if len(cells) == 0 {
		return e.nodes.empty(level)
	}
	if level == 0 {
		return e.nodes.leaf(true)
	}
	half := int64(1) << (level - 1)
	var nw, ne, sw, se []Cell
	for _, c := range cells {
		west := c.X < x+half
		north := c.Y < y+half
		switch {
		case north && west:
			nw = append(nw, c)
		case north:
			ne = append(ne, c)
		case west:
			sw = append(sw, c)
		default:
			se = append(se, c)
		}
	}
	return e.nodes.internal(
		e.build(level-1, x, y, nw),
		e.build(level-1, x+half, y, ne),
		e.build(level-1, x, y+half, sw),
		e.build(level-1, x+half, y+half, se),
	)
}

// NodeToCells lists the live cells of a frame depth first, NW, NE, SW, SE.
// Empty subtrees are skipped using their cached population.
func NodeToCells(f Frame) []Cell {
	out := make([]Cell, 0, f.Node.Population())
	var walk func(n *Node, x, y int64)
	walk = func(n *Node, x, y int64) {
		if n.Population() == 0 {
			return
		}
		if n.level == 0 {
			out = append(out, Cell{x, y})
			return
		}
		half := int64(1) << (n.level - 1)
		walk(n.nw, x, y)
		walk(n.ne, x+half, y)
		walk(n.sw, x, y+half)
		walk(n.se, x+half, y+half)
	}
	walk(f.Node, f.X, f.Y)
	return out
}

// extract returns the level node covering the square at tx,ty as seen in
// frame f. It descends into the child holding the whole target; targets
// straddling child boundaries are assembled from their four quadrants.
// Area outside the frame reads as dead.
func (e *Engine) extract(f Frame, level uint, tx, ty int64) *Node {
	n := f.Node
	nsize := n.Size()
	tsize := int64(1) << level
	if tx >= f.X+nsize || ty >= f.Y+nsize || tx+tsize <= f.X || ty+tsize <= f.Y || n.Population() == 0 {
		return e.nodes.empty(level)
	}
	if n.Level() == level && tx == f.X && ty == f.Y {
		return n
	}
	if level < n.Level() {
		half := nsize / 2
		for _, c := range [4]Frame{
			{n.nw, f.X, f.Y},
			{n.ne, f.X + half, f.Y},
			{n.sw, f.X, f.Y + half},
			{n.se, f.X + half, f.Y + half},
		} {
			if tx >= c.X && ty >= c.Y && tx+tsize <= c.X+half && ty+tsize <= c.Y+half {
				return e.extract(c, level, tx, ty)
			}
		}
	}
	q := tsize / 2
	return e.nodes.internal(
		e.extract(f, level-1, tx, ty),
		e.extract(f, level-1, tx+q, ty),
		e.extract(f, level-1, tx, ty+q),
		e.extract(f, level-1, tx+q, ty+q),
	)
}

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
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/btree"
)

// MaxCoordinate bounds the absolute value of accepted coordinates. It keeps
// every coordinate exactly representable as a float64 and leaves room for
// the padding added while advancing.
const MaxCoordinate = int64(1) << 52

// Cell is a live cell position on the infinite grid.
type Cell struct {
	X int64 `json:"x" codec:"x"`
	Y int64 `json:"y" codec:"y"`
}

// Less orders cells by row, then column.
func (c Cell) Less(than btree.Item) bool {
	o := than.(Cell)
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

func (c Cell) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// cellSet is the internal sparse representation of a generation.
type cellSet map[Cell]struct{}

func newCellSet(cells []Cell) cellSet {
	s := make(cellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

// ordered returns the cells of s sorted by row, then column.
func (s cellSet) ordered() []Cell {
	tree := btree.New(32)
	for c := range s {
		tree.ReplaceOrInsert(c)
	}
	return ascend(tree)
}

func ascend(tree *btree.BTree) []Cell {
	out := make([]Cell, 0, tree.Len())
	tree.Ascend(func(i btree.Item) bool {
		out = append(out, i.(Cell))
		return true
	})
	return out
}

// Normalize converts any of the accepted cell shapes into a de-duplicated,
// ordered list of cells. Accepted shapes:
//
//	[]Cell, [][2]int64, map[Cell]bool
//	flat interleaved []int, []int64, []float64 (x0, y0, x1, y1, ...)
//	[]string, map[string]bool, map[string]struct{} of "x,y" keys
//	[]interface{} as produced by JSON or msgpack decoders, holding
//	{x, y} objects, [x, y] pairs, interleaved numbers or "x,y" strings
//
// Any other shape, as well as non integral, non finite or out of range
// coordinates, fails with a ValidationError.
func Normalize(input interface{}) ([]Cell, error) {
	tree := btree.New(32)
	add := func(x, y int64) error {
		if x > MaxCoordinate || x < -MaxCoordinate || y > MaxCoordinate || y < -MaxCoordinate {
			return invalid("cells", "coordinate (%d,%d) out of range", x, y)
		}
		tree.ReplaceOrInsert(Cell{x, y})
		return nil
	}

	var err error
	switch v := input.(type) {
	case nil:
	case []Cell:
		for _, c := range v {
			if err = add(c.X, c.Y); err != nil {
				return nil, err
			}
		}
	case [][2]int64:
		for _, p := range v {
			if err = add(p[0], p[1]); err != nil {
				return nil, err
			}
		}
	case map[Cell]bool:
		for c, alive := range v {
			if !alive {
				continue
			}
			if err = add(c.X, c.Y); err != nil {
				return nil, err
			}
		}
	case []int:
		if len(v)%2 != 0 {
			return nil, invalid("cells", "flat coordinate list has odd length %d", len(v))
		}
		for i := 0; i < len(v); i += 2 {
			if err = add(int64(v[i]), int64(v[i+1])); err != nil {
				return nil, err
			}
		}
	case []int64:
		if len(v)%2 != 0 {
			return nil, invalid("cells", "flat coordinate list has odd length %d", len(v))
		}
		for i := 0; i < len(v); i += 2 {
			if err = add(v[i], v[i+1]); err != nil {
				return nil, err
			}
		}
	case []float64:
		if len(v)%2 != 0 {
			return nil, invalid("cells", "flat coordinate list has odd length %d", len(v))
		}
		for i := 0; i < len(v); i += 2 {
			x, err := toCoordinate(v[i])
			if err != nil {
				return nil, err
			}
			y, err := toCoordinate(v[i+1])
			if err != nil {
				return nil, err
			}
			if err = add(x, y); err != nil {
				return nil, err
			}
		}
	case []string:
		for _, s := range v {
			x, y, err := parseCellKey(s)
			if err != nil {
				return nil, err
			}
			if err = add(x, y); err != nil {
				return nil, err
			}
		}
	case map[string]bool:
		for s, alive := range v {
			if !alive {
				continue
			}
			x, y, err := parseCellKey(s)
			if err != nil {
				return nil, err
			}
			if err = add(x, y); err != nil {
				return nil, err
			}
		}
	case map[string]struct{}:
		for s := range v {
			x, y, err := parseCellKey(s)
			if err != nil {
				return nil, err
			}
			if err = add(x, y); err != nil {
				return nil, err
			}
		}
	case []interface{}:
		if err = addGeneric(v, add); err != nil {
			return nil, err
		}
	default:
		return nil, invalid("cells", "unsupported cell list type %T", input)
	}

	return ascend(tree), nil
}

// addGeneric handles decoded JSON/msgpack arrays. The first element
// decides the shape of the whole list.
func addGeneric(v []interface{}, add func(x, y int64) error) error {
	if len(v) == 0 {
		return nil
	}
	if _, err := toCoordinate(v[0]); err == nil {
		if len(v)%2 != 0 {
			return invalid("cells", "flat coordinate list has odd length %d", len(v))
		}
		for i := 0; i < len(v); i += 2 {
			x, err := toCoordinate(v[i])
			if err != nil {
				return err
			}
			y, err := toCoordinate(v[i+1])
			if err != nil {
				return err
			}
			if err := add(x, y); err != nil {
				return err
			}
		}
		return nil
	}

	for i, e := range v {
		var x, y int64
		var err error
		switch p := e.(type) {
		case string:
			x, y, err = parseCellKey(p)
		case map[string]interface{}:
			x, y, err = objectCoordinates(p["x"], p["y"])
		case map[interface{}]interface{}:
			x, y, err = objectCoordinates(p["x"], p["y"])
		case []interface{}:
			if len(p) != 2 {
				return invalid("cells", "pair %d has %d elements", i, len(p))
			}
			x, y, err = objectCoordinates(p[0], p[1])
		default:
			return invalid("cells", "element %d has unsupported type %T", i, e)
		}
		if err != nil {
			return err
		}
		if err := add(x, y); err != nil {
			return err
		}
	}
	return nil
}

func objectCoordinates(xv, yv interface{}) (int64, int64, error) {
	if xv == nil || yv == nil {
		return 0, 0, invalid("cells", "cell object requires both x and y")
	}
	x, err := toCoordinate(xv)
	if err != nil {
		return 0, 0, err
	}
	y, err := toCoordinate(yv)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func toCoordinate(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > uint64(MaxCoordinate) {
			return 0, invalid("cells", "coordinate %d out of range", n)
		}
		return int64(n), nil
	case float32:
		return floatCoordinate(float64(n))
	case float64:
		return floatCoordinate(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, invalid("cells", "malformed number %q", n.String())
		}
		return floatCoordinate(f)
	default:
		return 0, invalid("cells", "coordinate has unsupported type %T", v)
	}
}

func floatCoordinate(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid("cells", "coordinate %v is not finite", f)
	}
	if f != math.Trunc(f) {
		return 0, invalid("cells", "coordinate %v is not an integer", f)
	}
	if math.Abs(f) > float64(MaxCoordinate) {
		return 0, invalid("cells", "coordinate %v out of range", f)
	}
	return int64(f), nil
}

func parseCellKey(s string) (int64, int64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, invalid("cells", "malformed cell key %q", s)
	}
	x, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, invalid("cells", "malformed cell key %q", s)
	}
	y, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, invalid("cells", "malformed cell key %q", s)
	}
	return x, y, nil
}

// Box is an inclusive integer bounding rectangle.
type Box struct {
	MinX, MinY, MaxX, MaxY int64
}

func (b Box) Width() int64  { return b.MaxX - b.MinX + 1 }
func (b Box) Height() int64 { return b.MaxY - b.MinY + 1 }

// BoundingBox returns the tight bounding box of cells, or nil when there
// are none.
func BoundingBox(cells []Cell) *Box {
	if len(cells) == 0 {
		return nil
	}
	b := Box{cells[0].X, cells[0].Y, cells[0].X, cells[0].Y}
	for _, c := range cells[1:] {
		if c.X < b.MinX {
			b.MinX = c.X
		}
		if c.X > b.MaxX {
			b.MaxX = c.X
		}
		if c.Y < b.MinY {
			b.MinY = c.Y
		}
		if c.Y > b.MaxY {
			b.MaxY = c.Y
		}
	}
	return &b
}

// LevelForBounds returns the smallest k such that 2^k covers both sides of
// the box, 0 for an absent box.
func LevelForBounds(b *Box) uint {
	if b == nil {
		return 0
	}
	size := b.Width()
	if b.Height() > size {
		size = b.Height()
	}
	var k uint
	for int64(1)<<k < size {
		k++
	}
	return k
}

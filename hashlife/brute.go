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

// bruteStep applies one B3/S23 generation to a sparse set of live cells:
// a live cell survives with 2 or 3 live neighbours, a dead one is born
// with exactly 3.
func bruteStep(live cellSet) cellSet {
	counts := make(map[Cell]int, len(live)*4)
	for c := range live {
		for dy := int64(-1); dy <= 1; dy++ {
			for dx := int64(-1); dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				counts[Cell{c.X + dx, c.Y + dy}]++
			}
		}
	}
	next := make(cellSet, len(live))
	for c, n := range counts {
		if n == 3 {
			next[c] = struct{}{}
			continue
		}
		if n == 2 {
			if _, alive := live[c]; alive {
				next[c] = struct{}{}
			}
		}
	}
	return next
}

// BruteStep advances cells one generation without touching any cache.
func BruteStep(cells []Cell) []Cell {
	return bruteStep(newCellSet(cells)).ordered()
}

// AdvanceBrute applies n generations one after the other. It is linear
// in n and in the population and it is the fallback for regions too small
// to benefit from the quadtree and for remainders below the next leap.
func AdvanceBrute(cells []Cell, n int64) []Cell {
	live := newCellSet(cells)
	for i := int64(0); i < n && len(live) > 0; i++ {
		live = bruteStep(live)
	}
	return live.ordered()
}

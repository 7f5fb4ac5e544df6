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

// Package patterns holds well known Life patterns and a naive reference
// simulator used as an oracle by tests. Cells are plain coordinate pairs
// so the package does not depend on the engine it checks.
package patterns

import (
	"sort"
)

type Cells [][2]int64

var (
	Block   = Cells{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	Blinker = Cells{{0, 1}, {1, 1}, {2, 1}}
	Beehive = Cells{{1, 0}, {2, 0}, {0, 1}, {3, 1}, {1, 2}, {2, 2}}
	Toad    = Cells{{1, 0}, {2, 0}, {3, 0}, {0, 1}, {1, 1}, {2, 1}}
	// Glider moves one cell south east every four generations.
	Glider = Cells{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}
	// LWSS moves two cells west every four generations.
	LWSS        = Cells{{1, 0}, {4, 0}, {0, 1}, {0, 2}, {4, 2}, {0, 3}, {1, 3}, {2, 3}, {3, 3}}
	RPentomino  = Cells{{1, 0}, {2, 0}, {0, 1}, {1, 1}, {1, 2}}
	Acorn       = Cells{{1, 0}, {3, 1}, {0, 2}, {1, 2}, {4, 2}, {5, 2}, {6, 2}}
	Diehard     = Cells{{6, 0}, {0, 1}, {1, 1}, {1, 2}, {5, 2}, {6, 2}, {7, 2}}
	GosperGun   = Cells{
		{24, 0},
		{22, 1}, {24, 1},
		{12, 2}, {13, 2}, {20, 2}, {21, 2}, {34, 2}, {35, 2},
		{11, 3}, {15, 3}, {20, 3}, {21, 3}, {34, 3}, {35, 3},
		{0, 4}, {1, 4}, {10, 4}, {16, 4}, {20, 4}, {21, 4},
		{0, 5}, {1, 5}, {10, 5}, {14, 5}, {16, 5}, {17, 5}, {22, 5}, {24, 5},
		{10, 6}, {16, 6}, {24, 6},
		{11, 7}, {15, 7},
		{12, 8}, {13, 8},
	}
)

// Translate returns a copy of c moved by dx, dy.
func (c Cells) Translate(dx, dy int64) Cells {
	out := make(Cells, len(c))
	for i, p := range c {
		out[i] = [2]int64{p[0] + dx, p[1] + dy}
	}
	return out
}

// Sorted returns a copy of c ordered by row, then column.
func (c Cells) Sorted() Cells {
	out := append(Cells{}, c...)
	sort.Slice(out, func(i, j int) bool {
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][0] < out[j][0]
	})
	return out
}

// Step applies one B3/S23 generation.
func Step(c Cells) Cells {
	live := make(map[[2]int64]bool, len(c))
	for _, p := range c {
		live[p] = true
	}
	counts := make(map[[2]int64]int, 9*len(live))
	for p := range live {
		for dy := int64(-1); dy <= 1; dy++ {
			for dx := int64(-1); dx <= 1; dx++ {
				if dx != 0 || dy != 0 {
					counts[[2]int64{p[0] + dx, p[1] + dy}]++
				}
			}
		}
	}
	out := make(Cells, 0, len(live))
	for p, n := range counts {
		if n == 3 || (n == 2 && live[p]) {
			out = append(out, p)
		}
	}
	return out.Sorted()
}

// Run applies n generations.
func Run(c Cells, n int) Cells {
	out := c.Sorted()
	for i := 0; i < n && len(out) > 0; i++ {
		out = Step(out)
	}
	return out
}

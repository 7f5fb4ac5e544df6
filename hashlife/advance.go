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
	"context"
	"math/bits"
	"time"

	"github.com/pkg/errors"

	"github.com/bbva/hashlife/metrics"
)

// Result is the outcome of an advance.
type Result struct {
	// Tree is the canonical tree of the final generation, placed at
	// OriginX, OriginY.
	Tree             *Node
	OriginX, OriginY int64
	Cells            []Cell
	Generations      int64
}

// Advance moves the input pattern n generations forward. The count is
// decomposed into power-of-two leaps, each one the natural step of the
// tree rebuilt from the current cells, plus a brute force remainder.
//
// The context is only checked between leaps.
func (e *Engine) Advance(ctx context.Context, input interface{}, n int64) (res *Result, err error) {
	if n < 0 {
		return nil, invalid("generations", "must not be negative, got %d", n)
	}
	cells, err := Normalize(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer guard(&err)

	cells, err = e.advance(ctx, cells, n)
	if err != nil {
		return nil, err
	}
	final := e.buildTree(cells, 0)

	metrics.HashlifeAdvanceTotal.Inc()
	metrics.HashlifeGenerationsTotal.Add(float64(n))
	metrics.HashlifeAdvanceDurationSeconds.Observe(time.Since(start).Seconds())

	return &Result{
		Tree:        final.Node,
		OriginX:     final.X,
		OriginY:     final.Y,
		Cells:       NodeToCells(final),
		Generations: n,
	}, nil
}

func (e *Engine) advance(ctx context.Context, cells []Cell, n int64) ([]Cell, error) {
	remaining := n
	for remaining > 0 && len(cells) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "advance interrupted with %d generations left", remaining)
		}

		t := e.buildTree(cells, 0)
		if e.conf.GreedyLeaps {
			leap := floorLog2(remaining)
			if leap > e.conf.MaxLevel {
				leap = e.conf.MaxLevel
			}
			if leap > t.Node.Level() {
				t = e.buildTree(cells, leap)
			}
		}

		level := t.Node.Level()
		top := int64(1) << level
		if top <= remaining {
			e.log.Debugf("leap of %d generations at level %d, %d remaining, population %d",
				top, level, remaining, t.Node.Population())
			cells = NodeToCells(e.fullAdvance(t))
			remaining -= top
			metrics.HashlifeLeapsTotal.Inc()
		} else {
			e.log.Debugf("brute force %d generations, population %d", remaining, len(cells))
			cells = AdvanceBrute(cells, remaining)
			metrics.HashlifeBruteGenerationsTotal.Add(float64(remaining))
			remaining = 0
		}
	}
	return cells, nil
}

func floorLog2(n int64) uint {
	return uint(63 - bits.LeadingZeros64(uint64(n)))
}

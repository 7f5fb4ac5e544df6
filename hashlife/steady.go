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
)

// Mode classifies a pattern that reached a repeating state.
type Mode string

const (
	ModeEmpty      Mode = "empty"
	ModeStillLife  Mode = "still-life"
	ModeOscillator Mode = "oscillator"
	ModeSpaceship  Mode = "spaceship"
)

// Steady is the outcome of RunUntilSteady.
type Steady struct {
	Steady bool `json:"steady"`
	Mode   Mode `json:"mode,omitempty"`
	// Steps is the number of steps taken, each one step generations long.
	Steps int `json:"steps"`
	// Period is measured in steps. DX and DY are the displacement over
	// one period.
	Period int `json:"period,omitempty"`
	// Cycle is the period in generations. It is shorter than Period*step
	// when the shape also recurs between two samples.
	Cycle       int64  `json:"cycle,omitempty"`
	DX          int64  `json:"dx"`
	DY          int64  `json:"dy"`
	Generations int64  `json:"generations"`
	Cells       []Cell `json:"cells"`
}

type sighting struct {
	step int
	x, y int64
}

// RunUntilSteady advances the input by step generations at a time until
// a shape seen before comes back, possibly somewhere else, or maxSteps is
// reached. Trees are anchored at the bounding box corner, so translated
// copies of a shape share the canonical node.
func (e *Engine) RunUntilSteady(ctx context.Context, input interface{}, step int64, maxSteps int) (res *Steady, err error) {
	if step <= 0 {
		return nil, invalid("step", "must be positive, got %d", step)
	}
	if maxSteps <= 0 {
		return nil, invalid("maxSteps", "must be positive, got %d", maxSteps)
	}
	cells, err := Normalize(input)
	if err != nil {
		return nil, err
	}
	defer guard(&err)

	current := e.buildTree(cells, 0)
	seen := map[uint64]sighting{current.Node.id: {0, current.X, current.Y}}
	res = &Steady{}

	for res.Steps < maxSteps {
		cells, err = e.advance(ctx, cells, step)
		if err != nil {
			return nil, err
		}
		res.Steps++
		current = e.buildTree(cells, 0)

		if prev, ok := seen[current.Node.id]; ok {
			res.Steady = true
			res.Period = res.Steps - prev.step
			res.DX = current.X - prev.x
			res.DY = current.Y - prev.y
			if current.Node.Population() > 0 {
				res.Cycle, err = e.cycleLength(ctx, cells, current.Node.id, int64(res.Period)*step)
				if err != nil {
					return nil, err
				}
			}
			res.Mode = classify(current.Node, res.Cycle, res.DX, res.DY)
			break
		}
		seen[current.Node.id] = sighting{res.Steps, current.X, current.Y}
	}

	e.log.Debugf("run until steady: steady=%v mode=%q steps=%d period=%d", res.Steady, res.Mode, res.Steps, res.Period)
	res.Generations = int64(res.Steps) * step
	res.Cells = NodeToCells(current)
	return res, nil
}

// cycleLength returns the smallest number of generations after which the
// shape of cells, canonical node id, comes back, knowing that it does
// after total generations. Recurrence times are the multiples of the
// cycle, so total is divided by each of its prime factors while the
// shape still recurs.
func (e *Engine) cycleLength(ctx context.Context, cells []Cell, id uint64, total int64) (int64, error) {
	cycle := total
	for _, q := range primeFactors(total) {
		for cycle%q == 0 {
			next, err := e.advance(ctx, cells, cycle/q)
			if err != nil {
				return 0, err
			}
			if e.buildTree(next, 0).Node.id != id {
				break
			}
			cycle /= q
		}
	}
	return cycle, nil
}

// trialLimit bounds the trial division in primeFactors. What is left
// above it is taken as a single factor.
const trialLimit = 1 << 20

// primeFactors returns the distinct prime factors of n > 0 in ascending
// order.
func primeFactors(n int64) []int64 {
	var factors []int64
	for d := int64(2); d <= trialLimit && d*d <= n; d++ {
		if n%d != 0 {
			continue
		}
		factors = append(factors, d)
		for n%d == 0 {
			n /= d
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}

func classify(n *Node, cycle int64, dx, dy int64) Mode {
	switch {
	case n.Population() == 0:
		return ModeEmpty
	case dx != 0 || dy != 0:
		return ModeSpaceship
	case cycle == 1:
		return ModeStillLife
	default:
		return ModeOscillator
	}
}

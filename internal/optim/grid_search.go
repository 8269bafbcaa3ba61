package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/swingsim/internal/dynamo"
)

var ErrNoFeasiblePoint = errors.New("optim: no grid point was feasible")

// Objective scores one grid point; lower is better. ok=false drops the
// point, e.g. for a delivery that left the pitch.
type Objective func(values map[string]float64) (score float64, ok bool)

type Point struct {
	Values map[string]float64
	Score  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of points in the grid.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// point decodes a flat grid index, the last parameter varying fastest.
func (g *GridSearch) point(idx int) map[string]float64 {
	values := make(map[string]float64, len(g.paramNames))
	for d := len(g.ranges) - 1; d >= 0; d-- {
		r := g.ranges[d]
		values[g.paramNames[d]] = r[idx%len(r)]
		idx /= len(r)
	}
	return values
}

// Search evaluates the objective at every grid point in parallel and returns
// the lowest score. Ties go to the earliest point, so results do not depend
// on scheduling.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("%d names for %d ranges: %w", len(g.paramNames), len(g.ranges), dynamo.ErrDimensionMismatch)
	}

	var (
		mu      sync.Mutex
		bestIdx = -1
		best    = math.Inf(1)
	)

	dynamo.ParallelFor(g.Size(), 4, func(start, end int) {
		localIdx, local := -1, math.Inf(1)
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return
			}
			score, ok := objective(g.point(i))
			if !ok || math.IsNaN(score) {
				continue
			}
			if score < local {
				localIdx, local = i, score
			}
		}
		if localIdx < 0 {
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if local < best || (local == best && localIdx < bestIdx) {
			bestIdx, best = localIdx, local
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bestIdx < 0 {
		return nil, ErrNoFeasiblePoint
	}
	return &Point{Values: g.point(bestIdx), Score: best}, nil
}

// Linspace returns n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out
}

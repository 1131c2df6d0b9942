package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultGridBudget caps the number of grid points evaluated.
const DefaultGridBudget = 1_000_000

var ErrGridTooLarge = errors.New("optim: grid exceeds evaluation budget")

// GridSearch evaluates every point of a regular grid over [Lo, Hi] in each
// dimension and returns the best. It is exhaustive, so only useful for a
// handful of parameters or as a coarse scan before a local optimiser.
type GridSearch struct {
	points int
	lo, hi float64
	// Budget is the largest grid Minimize accepts.
	Budget int
}

func NewGridSearch(points int, lo, hi float64) *GridSearch {
	if points < 2 {
		points = 2
	}
	return &GridSearch{points: points, lo: lo, hi: hi, Budget: DefaultGridBudget}
}

// size returns points^dim, or false once it passes the budget.
func (g *GridSearch) size(dim int) (int, bool) {
	n := 1
	for i := 0; i < dim; i++ {
		if n > g.Budget/g.points {
			return 0, false
		}
		n *= g.points
	}
	return n, n <= g.Budget
}

func (g *GridSearch) Name() string { return "GRID" }

func (g *GridSearch) values() []float64 {
	out := make([]float64, g.points)
	step := (g.hi - g.lo) / float64(g.points-1)
	for i := range out {
		out[i] = g.lo + float64(i)*step
	}
	return out
}

// Minimize ignores x0 except for its length. Grids larger than Budget are
// rejected before any evaluation.
func (g *GridSearch) Minimize(ctx context.Context, f Func, x0 []float64) (*Result, error) {
	if _, ok := g.size(len(x0)); !ok {
		return nil, fmt.Errorf("%w: %d points in %d dimensions, budget %d", ErrGridTooLarge, g.points, len(x0), g.Budget)
	}
	start := time.Now()
	c := newCounter(ctx, f)
	best := math.Inf(1)
	bestX := append([]float64(nil), x0...)

	err := g.searchRecursive(0, make([]float64, len(x0)), g.values(), c, &best, &bestX)
	if err != nil {
		x, fx := c.best(x0)
		return &Result{X: x, F: fx, Evaluations: c.evals, Status: "aborted", Runtime: time.Since(start)}, err
	}
	return &Result{
		X:           bestX,
		F:           best,
		Evaluations: c.evals,
		Iterations:  1,
		Status:      "GridExhausted",
		Runtime:     time.Since(start),
	}, nil
}

func (g *GridSearch) searchRecursive(
	depth int,
	current []float64,
	values []float64,
	c *counter,
	best *float64,
	bestX *[]float64,
) error {
	if depth == len(current) {
		v, err := c.eval(current)
		if err != nil {
			return err
		}
		if v < *best {
			*best = v
			*bestX = append((*bestX)[:0], current...)
		}
		return nil
	}

	for _, val := range values {
		current[depth] = val
		if err := g.searchRecursive(depth+1, current, values, c, best, bestX); err != nil {
			return err
		}
	}
	return nil
}

// Package optim provides the classical optimisers driving VQE.
//
// Every optimiser minimises a Func that may fail or be cancelled through
// its context; the first error aborts the run and is returned together
// with the best point seen so far.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

var ErrUnsupportedOptimizer = errors.New("Unsupported optimizer")

// Func is an objective evaluated at x.
type Func func(ctx context.Context, x []float64) (float64, error)

// Result is the outcome of a minimisation.
type Result struct {
	X           []float64
	F           float64
	Evaluations int
	Iterations  int
	Status      string
	Runtime     time.Duration
}

type Optimizer interface {
	Name() string
	Minimize(ctx context.Context, f Func, x0 []float64) (*Result, error)
}

var registry = map[string]func() Optimizer{
	"SLSQP":       func() Optimizer { return NewQuasiNewton("SLSQP", 1000) },
	"BFGS":        func() Optimizer { return NewQuasiNewton("BFGS", 1000) },
	"L_BFGS_B":    func() Optimizer { return NewLBFGS(1000) },
	"COBYLA":      func() Optimizer { return NewNelderMead("COBYLA", 1000) },
	"NELDER_MEAD": func() Optimizer { return NewNelderMead("NELDER_MEAD", 1000) },
	"SPSA":        func() Optimizer { return NewSPSA(DefaultSPSAConfig()) },
	"GRID":        func() Optimizer { return NewGridSearch(9, -math.Pi, math.Pi) },
}

// Get returns a fresh optimiser by name, ignoring case and '-' vs '_'.
func Get(name string) (Optimizer, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOptimizer, name)
	}
	return f(), nil
}

// EvaluationBudget is the nominal number of objective evaluations o makes
// on dim parameters, or 0 when it cannot be told in advance. For gonum
// methods it assumes one gradient per iteration.
func EvaluationBudget(o Optimizer, dim int) int {
	switch o := o.(type) {
	case *SPSA:
		return o.evaluations()
	case *GridSearch:
		n, _ := o.size(dim)
		return n
	case *Gonum:
		per := 1
		if o.gradient {
			per = 2*dim + 1
		}
		return o.MaxIter * per
	}
	return 0
}

// Names lists the registered optimisers.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// counter wraps f, counting calls and keeping the first error and the
// best point.
type counter struct {
	ctx   context.Context
	f     Func
	evals int
	err   error
	bestX []float64
	bestF float64
	seen  bool
}

func newCounter(ctx context.Context, f Func) *counter {
	return &counter{ctx: ctx, f: f}
}

func (c *counter) eval(x []float64) (float64, error) {
	if c.err != nil {
		return 0, c.err
	}
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return 0, err
	}
	v, err := c.f(c.ctx, x)
	if err != nil {
		c.err = err
		return 0, err
	}
	c.evals++
	if !c.seen || v < c.bestF {
		c.bestX = append(c.bestX[:0], x...)
		c.bestF = v
		c.seen = true
	}
	return v, nil
}

func (c *counter) best(x0 []float64) ([]float64, float64) {
	if !c.seen {
		return append([]float64(nil), x0...), 0
	}
	return append([]float64(nil), c.bestX...), c.bestF
}

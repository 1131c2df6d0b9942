package optim

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// Gonum adapts a gonum/optimize method. Gradient-based methods get a
// central finite-difference gradient.
type Gonum struct {
	name     string
	method   func() optimize.Method
	gradient bool

	MaxIter int
	// FTol stops when F improves by less than FTol over StallIters iterations.
	FTol       float64
	StallIters int
	GradTol    float64
	Logger     *slog.Logger
}

// NewQuasiNewton is BFGS with numerical gradients. It stands in for SLSQP
// on unconstrained problems.
func NewQuasiNewton(name string, maxIter int) *Gonum {
	return &Gonum{
		name:       name,
		method:     func() optimize.Method { return &optimize.BFGS{GradStopThreshold: 1e-9} },
		gradient:   true,
		MaxIter:    maxIter,
		FTol:       1e-12,
		StallIters: 10,
		GradTol:    1e-9,
	}
}

func NewLBFGS(maxIter int) *Gonum {
	return &Gonum{
		name:       "L_BFGS_B",
		method:     func() optimize.Method { return &optimize.LBFGS{GradStopThreshold: 1e-9} },
		gradient:   true,
		MaxIter:    maxIter,
		FTol:       1e-12,
		StallIters: 10,
		GradTol:    1e-9,
	}
}

// NewNelderMead is the derivative-free simplex method, used for COBYLA.
func NewNelderMead(name string, maxIter int) *Gonum {
	return &Gonum{
		name:       name,
		method:     func() optimize.Method { return &optimize.NelderMead{SimplexSize: 0.5} },
		MaxIter:    maxIter,
		FTol:       1e-10,
		StallIters: 50,
	}
}

func (g *Gonum) Name() string { return g.name }

func (g *Gonum) Minimize(ctx context.Context, f Func, x0 []float64) (*Result, error) {
	start := time.Now()
	log := g.Logger
	if log == nil {
		log = slog.Default()
	}

	var mu sync.Mutex
	c := newCounter(ctx, f)
	eval := func(x []float64) float64 {
		mu.Lock()
		defer mu.Unlock()
		v, err := c.eval(x)
		if err != nil {
			return math.Inf(1)
		}
		return v
	}

	p := optimize.Problem{
		Func: eval,
		Status: func() (optimize.Status, error) {
			mu.Lock()
			defer mu.Unlock()
			if c.err != nil {
				return optimize.Failure, c.err
			}
			return optimize.NotTerminated, nil
		},
	}
	if g.gradient {
		p.Grad = func(grad, x []float64) {
			fd.Gradient(grad, eval, x, &fd.Settings{Formula: fd.Central})
		}
	}

	settings := &optimize.Settings{
		MajorIterations:   g.MaxIter,
		GradientThreshold: g.GradTol,
		Converger: &optimize.FunctionConverge{
			Absolute:   g.FTol,
			Iterations: g.StallIters,
		},
	}

	res, err := optimize.Minimize(p, x0, settings, g.method())

	mu.Lock()
	defer mu.Unlock()
	if c.err != nil {
		x, fx := c.best(x0)
		return &Result{X: x, F: fx, Evaluations: c.evals, Status: "aborted", Runtime: time.Since(start)}, c.err
	}

	x, fx := c.best(x0)
	out := &Result{X: x, F: fx, Evaluations: c.evals, Runtime: time.Since(start)}
	if res != nil {
		out.Iterations = res.MajorIterations
		out.Status = res.Status.String()
		if res.F <= fx {
			out.X = append([]float64(nil), res.X...)
			out.F = res.F
		}
	}
	if err != nil {
		// Line search failures near a flat minimum still leave a usable point.
		log.Debug("optimizer stopped early", "optimizer", g.name, "err", err, "f", out.F)
		if out.Status == "" || out.Status == optimize.NotTerminated.String() {
			out.Status = "stopped: " + err.Error()
		}
	}
	return out, nil
}

// Package vqe runs the variational quantum eigensolver loop: an optimiser
// proposes ansatz parameters and an estimator returns the energy.
package vqe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/vqelab/internal/circuit"
	"github.com/san-kum/vqelab/internal/estimator"
	"github.com/san-kum/vqelab/internal/optim"
	"github.com/san-kum/vqelab/internal/pauli"
)

var ErrNoRestarts = errors.New("vqe: at least one restart is required")

// Result of one VQE run. Energy is the minimum eigenvalue estimate of the
// operator passed in, without any constant shift.
type Result struct {
	Energy            float64       `json:"energy"`
	OptimalParameters []float64     `json:"optimal_parameters"`
	InitialPoint      []float64     `json:"initial_point"`
	Evaluations       int           `json:"eval_count"`
	WallTime          time.Duration `json:"walltime"`
	Trace             []float64     `json:"trace,omitempty"`
	Optimizer         string        `json:"optimizer"`
	Status            string        `json:"status"`
}

// Callback observes every energy evaluation.
type Callback func(eval int, params []float64, energy float64)

type Options struct {
	// Seed drives the random initial point when none is given.
	Seed     int64
	Callback Callback
	// KeepTrace stores every evaluated energy in Result.Trace.
	KeepTrace bool
	Logger    *slog.Logger
}

// Seeder is implemented by stochastic optimisers.
type Seeder interface {
	Seed(int64)
}

// RandomPoint draws n parameters uniformly from [-2π, 2π].
func RandomPoint(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := range x {
		x[i] = (2*rng.Float64() - 1) * 2 * math.Pi
	}
	return x
}

// Run minimises <ψ(θ)|op|ψ(θ)> over the parameters of c. A nil initial
// point is replaced by RandomPoint(c.NumParams, opts.Seed).
func Run(ctx context.Context, op *pauli.Op, c *circuit.Circuit, initialPoint []float64,
	opt optim.Optimizer, est estimator.Estimator, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if initialPoint == nil {
		initialPoint = RandomPoint(c.NumParams, opts.Seed)
	}
	if len(initialPoint) != c.NumParams {
		return nil, fmt.Errorf("vqe: initial point has %d values, ansatz has %d parameters", len(initialPoint), c.NumParams)
	}

	start := time.Now()
	res := &Result{
		InitialPoint: append([]float64(nil), initialPoint...),
		Optimizer:    opt.Name(),
	}
	evals := 0
	objective := func(ctx context.Context, x []float64) (float64, error) {
		e, err := est.Estimate(ctx, c, x, op)
		if err != nil {
			return 0, err
		}
		evals++
		if opts.KeepTrace {
			res.Trace = append(res.Trace, e)
		}
		if opts.Callback != nil {
			opts.Callback(evals, x, e)
		}
		return e, nil
	}

	out, err := opt.Minimize(ctx, objective, initialPoint)
	res.WallTime = time.Since(start)
	res.Evaluations = evals
	if out != nil {
		res.Energy = out.F
		res.OptimalParameters = out.X
		res.Status = out.Status
	}
	if err != nil {
		return res, fmt.Errorf("vqe: %s: %w", opt.Name(), err)
	}
	log.Debug("vqe finished", "optimizer", opt.Name(), "energy", res.Energy, "evals", evals, "wall", res.WallTime)
	return res, nil
}

// Restarts collects independent runs; Best indexes the lowest energy.
type Restarts struct {
	Runs []*Result
	Best int
}

func (r *Restarts) BestResult() *Result { return r.Runs[r.Best] }

// RunRestarts performs n runs from random initial points seeded
// opts.Seed+k. newOpt must return a fresh optimiser per run; stochastic
// optimisers are reseeded the same way.
func RunRestarts(ctx context.Context, n int, op *pauli.Op, c *circuit.Circuit,
	newOpt func() (optim.Optimizer, error), est estimator.Estimator, opts Options,
	onRun func(k int, r *Result)) (*Restarts, error) {
	if n < 1 {
		return nil, ErrNoRestarts
	}
	out := &Restarts{}
	for k := 0; k < n; k++ {
		opt, err := newOpt()
		if err != nil {
			return nil, err
		}
		runOpts := opts
		runOpts.Seed = opts.Seed + int64(k)
		if s, ok := opt.(Seeder); ok {
			s.Seed(runOpts.Seed)
		}
		r, err := Run(ctx, op, c, nil, opt, est, runOpts)
		if err != nil {
			return out, fmt.Errorf("restart %d: %w", k+1, err)
		}
		out.Runs = append(out.Runs, r)
		if r.Energy < out.Runs[out.Best].Energy {
			out.Best = len(out.Runs) - 1
		}
		if onRun != nil {
			onRun(k, r)
		}
	}
	return out, nil
}

package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/vqelab/internal/estimator"
	"github.com/san-kum/vqelab/internal/optim"
	"github.com/san-kum/vqelab/internal/problem"
	"github.com/san-kum/vqelab/internal/vqe"
)

// NoisyActive is the active space used for every noisy run.
var NoisyActive = problem.ActiveSpace{Electrons: 2, Orbitals: 2}

const (
	DefaultRestarts       = 3
	DefaultNoisyOptimizer = "SPSA"
)

type NoisyConfig struct {
	Molecule  string
	Basis     string
	R         float64
	Mapping   string
	Optimizer string
	Restarts  int
	ExactMode string
	Total     bool
	Backend   BackendConfig
	Seed      int64
	Logger    *slog.Logger
}

// Restart is one noisy VQE run. Energies include the constant shift only
// for totals.
type Restart struct {
	Index       int
	R           float64
	Shots       int
	Energy      float64
	Exact       float64
	Delta       float64
	Evaluations int
	WallTime    time.Duration
	Parameters  []float64
}

func (r Restart) String() string {
	return fmt.Sprintf("energy = %.6f Ha (wall %.1fs)", r.Energy, r.WallTime.Seconds())
}

type NoisyResult struct {
	Meta          problem.Meta
	Optimizer     string
	NumQubits     int
	NumParameters int
	Groups        int
	Restarts      []Restart
	Best          int
}

func (n *NoisyResult) BestRestart() Restart { return n.Restarts[n.Best] }

// RunNoisy repeats shot-based VQE from random initial points and keeps the
// lowest energy. LiH freezes its core; both molecules are reduced to two
// electrons in two orbitals.
func RunNoisy(ctx context.Context, cfg NoisyConfig, registry *Registry, onRestart func(Restart)) (*NoisyResult, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Restarts == 0 {
		cfg.Restarts = DefaultRestarts
	}
	if cfg.Restarts < 0 {
		return nil, fmt.Errorf("restarts must be positive, got %d", cfg.Restarts)
	}
	if cfg.Optimizer == "" {
		cfg.Optimizer = DefaultNoisyOptimizer
	}
	if _, err := registry.GetOptimizer(cfg.Optimizer); err != nil {
		return nil, err
	}

	if cfg.R <= 0 {
		return nil, fmt.Errorf("bond length must be positive, got %g", cfg.R)
	}
	mol, err := registry.GetMolecule(cfg.Molecule)
	if err != nil {
		return nil, err
	}
	active := NoisyActive
	exp, err := New(Config{
		Molecule:    mol,
		Basis:       cfg.Basis,
		BondLengths: []float64{cfg.R},
		FreezeCore:  mol == "LiH",
		Active:      &active,
		Mapping:     cfg.Mapping,
		Ansatz:      "uccsd",
		Optimizer:   cfg.Optimizer,
		Backend:     BackendIdeal,
		ExactMode:   cfg.ExactMode,
		Logger:      log,
	}, registry)
	if err != nil {
		return nil, err
	}

	s, err := exp.Prepare(cfg.R)
	if err != nil {
		return nil, err
	}
	ex, err := exp.ExactEnergy(s)
	if err != nil {
		return nil, err
	}
	shift := s.Shift(cfg.Total)

	bcfg := cfg.Backend
	bcfg.Seed = cfg.Seed
	est, err := registry.GetBackend(BackendNoisy, bcfg)
	if err != nil {
		return nil, err
	}

	out := &NoisyResult{
		Meta:          s.Problem.Meta,
		Optimizer:     cfg.Optimizer,
		NumQubits:     s.Operator.NumQubits,
		NumParameters: s.Ansatz.NumParameters(),
	}
	if sampler, ok := est.(*estimator.Sampler); ok {
		out.Groups = sampler.NumGroups(s.Operator)
	}

	newOpt := func() (optim.Optimizer, error) { return registry.GetOptimizer(cfg.Optimizer) }
	runs, err := vqe.RunRestarts(ctx, cfg.Restarts, s.Operator, s.Ansatz.Circuit, newOpt, est,
		vqe.Options{Seed: cfg.Seed, Logger: log},
		func(k int, r *vqe.Result) {
			rs := Restart{
				Index:       k + 1,
				R:           cfg.R,
				Shots:       bcfg.Shots,
				Energy:      r.Energy + shift,
				Exact:       ex + shift,
				Delta:       r.Energy - ex,
				Evaluations: r.Evaluations,
				WallTime:    r.WallTime,
				Parameters:  r.OptimalParameters,
			}
			out.Restarts = append(out.Restarts, rs)
			if onRestart != nil {
				onRestart(rs)
			}
		})
	if err != nil {
		return out, err
	}
	out.Best = runs.Best
	return out, nil
}

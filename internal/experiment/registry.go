package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/vqelab/internal/ansatz"
	"github.com/san-kum/vqelab/internal/chem"
	"github.com/san-kum/vqelab/internal/estimator"
	"github.com/san-kum/vqelab/internal/mapping"
	"github.com/san-kum/vqelab/internal/metrics"
	"github.com/san-kum/vqelab/internal/noise"
	"github.com/san-kum/vqelab/internal/optim"
)

const (
	BackendIdeal = "ideal"
	BackendShots = "shots"
	BackendNoisy = "noisy"

	DefaultShots = 8192
)

// BackendConfig parameterises the sampling backends.
type BackendConfig struct {
	Shots        int
	Trajectories int
	Noise        string
	P1           float64
	P2           float64
	Seed         int64
}

// DefaultBackendConfig is the generic noise model at 8192 shots.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Shots:        DefaultShots,
		Trajectories: noise.DefaultTrajectories,
		Noise:        "generic",
		P1:           noise.DefaultP1,
		P2:           noise.DefaultP2,
	}
}

type Registry struct {
	molecules map[string]string
	ansatzes  map[string]string
	backends  map[string]func(BackendConfig) (estimator.Estimator, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		molecules: map[string]string{"h2": "H2", "lih": "LiH"},
		ansatzes:  map[string]string{"uccsd": "uccsd"},
		backends:  make(map[string]func(BackendConfig) (estimator.Estimator, error)),
	}

	r.backends[BackendIdeal] = func(BackendConfig) (estimator.Estimator, error) {
		return estimator.NewStatevector(), nil
	}
	r.backends[BackendShots] = func(cfg BackendConfig) (estimator.Estimator, error) {
		if cfg.Shots <= 0 {
			return nil, fmt.Errorf("shots must be positive, got %d", cfg.Shots)
		}
		return estimator.NewSampler(cfg.Shots, nil, 1, cfg.Seed), nil
	}
	r.backends[BackendNoisy] = func(cfg BackendConfig) (estimator.Estimator, error) {
		if cfg.Shots <= 0 {
			return nil, fmt.Errorf("shots must be positive, got %d", cfg.Shots)
		}
		name := cfg.Noise
		if name == "" {
			name = "generic"
		}
		model, err := noise.Get(name, cfg.P1, cfg.P2)
		if err != nil {
			return nil, err
		}
		traj := cfg.Trajectories
		if traj <= 0 {
			traj = noise.DefaultTrajectories
		}
		return estimator.NewSampler(cfg.Shots, model, traj, cfg.Seed), nil
	}

	return r
}

// GetMolecule returns the canonical spelling of a supported molecule.
func (r *Registry) GetMolecule(name string) (string, error) {
	canonical, ok := r.molecules[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %s", chem.ErrUnsupportedMolecule, name)
	}
	return canonical, nil
}

func (r *Registry) GetMapper(name string) (mapping.Mapper, error) {
	return mapping.Get(name)
}

func (r *Registry) GetAnsatz(name string) (string, error) {
	a, ok := r.ansatzes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", ansatz.ErrUnsupportedAnsatz
	}
	return a, nil
}

func (r *Registry) GetOptimizer(name string) (optim.Optimizer, error) {
	return optim.Get(name)
}

func (r *Registry) GetBackend(name string, cfg BackendConfig) (estimator.Estimator, error) {
	fn, ok := r.backends[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return fn(cfg)
}

func (r *Registry) ListMolecules() []string { return sortedValues(r.molecules) }

func (r *Registry) ListBackends() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListMappings() []string   { return mapping.Names() }
func (r *Registry) ListOptimizers() []string { return optim.Names() }

func (r *Registry) DefaultMetrics() []metrics.Metric {
	return metrics.Defaults()
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

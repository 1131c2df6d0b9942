package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBasis        = "sto3g"
	DefaultMapping      = "jw"
	DefaultAnsatz       = "uccsd"
	DefaultBackend      = "ideal"
	DefaultOptimizer    = "SLSQP"
	DefaultRStep        = 0.1
	DefaultShots        = 8192
	DefaultNoiseModel   = "generic"
	DefaultP1           = 0.001
	DefaultP2           = 0.01
	DefaultTrajectories = 32
	DefaultRestarts     = 3
	DefaultJobs         = 1
	DefaultExactMode    = "full"
)

// Config describes a sweep or a noisy run. Pointer fields are unset when
// absent from the file. Optimizer stays empty unless set, so each command
// picks its own default: SLSQP for sweeps, SPSA for noisy runs.
type Config struct {
	Molecule   string      `yaml:"molecule"`
	Basis      string      `yaml:"basis"`
	R          *float64    `yaml:"r,omitempty"`
	RMin       *float64    `yaml:"r_min,omitempty"`
	RMax       *float64    `yaml:"r_max,omitempty"`
	RStep      float64     `yaml:"r_step"`
	FreezeCore bool        `yaml:"freeze_core"`
	Active     string      `yaml:"active,omitempty"`
	Mapping    string      `yaml:"mapping"`
	Ansatz     string      `yaml:"ansatz"`
	Backend    string      `yaml:"backend"`
	Optimizer  string      `yaml:"optimizer"`
	Seed       int64       `yaml:"seed"`
	Jobs       int         `yaml:"jobs"`
	ExactMode  string      `yaml:"exact_mode,omitempty"`
	Total      bool        `yaml:"total,omitempty"`
	Noise      NoiseConfig `yaml:"noise"`
}

type NoiseConfig struct {
	Model        string  `yaml:"model"`
	P1           float64 `yaml:"p1"`
	P2           float64 `yaml:"p2"`
	Shots        int     `yaml:"shots"`
	Trajectories int     `yaml:"trajectories"`
	Restarts     int     `yaml:"restarts"`
}

func DefaultConfig() *Config {
	return &Config{
		Basis:     DefaultBasis,
		RStep:     DefaultRStep,
		Mapping:   DefaultMapping,
		Ansatz:    DefaultAnsatz,
		Backend:   DefaultBackend,
		Jobs:      DefaultJobs,
		ExactMode: DefaultExactMode,
		Noise: NoiseConfig{
			Model:        DefaultNoiseModel,
			P1:           DefaultP1,
			P2:           DefaultP2,
			Shots:        DefaultShots,
			Trajectories: DefaultTrajectories,
			Restarts:     DefaultRestarts,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets are never mutated by flag overrides.
func (c *Config) Clone() *Config {
	out := *c
	out.R = clonePtr(c.R)
	out.RMin = clonePtr(c.RMin)
	out.RMax = clonePtr(c.RMax)
	return &out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

func Float(v float64) *float64 { return &v }

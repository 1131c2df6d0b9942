package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	KindSweep = "sweep"
	KindNoisy = "noisy"

	metadataFile = "metadata.json"
	curveFile    = "curve.csv"
	noisyFile    = "noisy.csv"
)

// Store archives runs as <baseDir>/<run id>/{metadata.json,curve.csv|noisy.csv}.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Timestamp   time.Time          `json:"timestamp"`
	Molecule    string             `json:"molecule"`
	Basis       string             `json:"basis"`
	Mapping     string             `json:"mapping"`
	Ansatz      string             `json:"ansatz,omitempty"`
	Optimizer   string             `json:"optimizer"`
	Backend     string             `json:"backend"`
	FreezeCore  bool               `json:"freeze_core"`
	Active      string             `json:"active,omitempty"`
	Seed        int64              `json:"seed"`
	Points      int                `json:"points"`
	Shots       int                `json:"shots,omitempty"`
	Noise       string             `json:"noise,omitempty"`
	Output      string             `json:"output,omitempty"`
	WallTime    float64            `json:"walltime_sec"`
	Metrics     map[string]float64 `json:"metrics"`
	Description string             `json:"description,omitempty"`
}

func newRunID(molecule string) string {
	return fmt.Sprintf("%s_%s", strings.ToLower(molecule), uuid.NewString()[:8])
}

func (s *Store) writeMeta(runDir string, meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) prepare(meta *RunMetadata, kind string) (string, error) {
	meta.ID = newRunID(meta.Molecule)
	meta.Kind = kind
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	return runDir, s.writeMeta(runDir, meta)
}

// Save archives a sweep and returns its run id.
func (s *Store) Save(meta *RunMetadata, rows []CurveRow) (string, error) {
	meta.Points = len(rows)
	runDir, err := s.prepare(meta, KindSweep)
	if err != nil {
		return "", err
	}
	if err := WriteCurve(filepath.Join(runDir, curveFile), rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveNoisy archives the restarts of a noisy run.
func (s *Store) SaveNoisy(meta *RunMetadata, rows []NoisyRow) (string, error) {
	meta.Points = len(rows)
	runDir, err := s.prepare(meta, KindNoisy)
	if err != nil {
		return "", err
	}
	if err := WriteNoisy(filepath.Join(runDir, noisyFile), rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns archived runs, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadCurve(runID string) ([]CurveRow, error) {
	return ReadCurve(s.CurvePath(runID))
}

func (s *Store) LoadNoisy(runID string) ([]NoisyRow, error) {
	return ReadNoisy(filepath.Join(s.baseDir, runID, noisyFile))
}

// CurvePath is where the curve CSV of runID lives.
func (s *Store) CurvePath(runID string) string {
	return filepath.Join(s.baseDir, runID, curveFile)
}

package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Column names of the curve CSV.
const (
	ColBondLength = "bond_length_angstrom"
	ColVQE        = "vqe_energy_ha"
	ColExact      = "exact_energy_ha"
	ColDelta      = "delta_ha"
)

var (
	CurveHeader = []string{ColBondLength, ColVQE, ColExact, ColDelta}
	NoisyHeader = []string{"restart", "R_angstrom", "shots", "energy_ha", "exact_energy_ha", "delta_ha", "walltime_sec"}

	ErrMissingBondLength = errors.New("CSV needs 'bond_length_angstrom' column")
	ErrMissingVQE        = errors.New("CSV needs 'vqe_energy_ha' column")
)

// CurveRow is one bond length of a potential-energy curve.
type CurveRow struct {
	R        float64 `json:"bond_length_angstrom"`
	VQE      float64 `json:"vqe_energy_ha"`
	Exact    float64 `json:"exact_energy_ha"`
	HasExact bool    `json:"-"`
}

func (r CurveRow) Delta() float64 { return r.VQE - r.Exact }

// NoisyRow is one restart of a noisy run.
type NoisyRow struct {
	Restart  int           `json:"restart"`
	R        float64       `json:"r_angstrom"`
	Shots    int           `json:"shots"`
	Energy   float64       `json:"energy_ha"`
	Exact    float64       `json:"exact_energy_ha"`
	WallTime time.Duration `json:"walltime"`
}

func (r NoisyRow) Delta() float64 { return r.Energy - r.Exact }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// WriteCurve writes rows to path, creating parent directories.
func WriteCurve(path string, rows []CurveRow) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := EncodeCurve(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func EncodeCurve(out io.Writer, rows []CurveRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(CurveHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{formatFloat(r.R), formatFloat(r.VQE), formatFloat(r.Exact), formatFloat(r.Delta())}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCurve parses a curve CSV. Only bond_length_angstrom and
// vqe_energy_ha are required; columns may appear in any order.
func ReadCurve(path string) ([]CurveRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeCurve(f)
}

func DecodeCurve(in io.Reader) ([]CurveRow, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrMissingBondLength
	}

	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[name] = i
	}
	rIdx, ok := cols[ColBondLength]
	if !ok {
		return nil, ErrMissingBondLength
	}
	vIdx, ok := cols[ColVQE]
	if !ok {
		return nil, ErrMissingVQE
	}
	eIdx, hasExact := cols[ColExact]

	rows := make([]CurveRow, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		field := func(idx int, name string) (float64, error) {
			if idx >= len(rec) {
				return 0, fmt.Errorf("line %d: missing %s", line+2, name)
			}
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return 0, fmt.Errorf("line %d: %s: %w", line+2, name, err)
			}
			return v, nil
		}
		row := CurveRow{HasExact: hasExact}
		if row.R, err = field(rIdx, ColBondLength); err != nil {
			return nil, err
		}
		if row.VQE, err = field(vIdx, ColVQE); err != nil {
			return nil, err
		}
		if hasExact {
			if row.Exact, err = field(eIdx, ColExact); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteNoisy writes restart rows to path, creating parent directories.
func WriteNoisy(path string, rows []NoisyRow) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(NoisyHeader); err != nil {
		f.Close()
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Restart),
			formatFloat(r.R),
			strconv.Itoa(r.Shots),
			formatFloat(r.Energy),
			formatFloat(r.Exact),
			formatFloat(r.Delta()),
			formatFloat(r.WallTime.Seconds()),
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadNoisy parses a file written by WriteNoisy.
func ReadNoisy(path string) ([]NoisyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rows := make([]NoisyRow, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) != len(NoisyHeader) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line+2, len(NoisyHeader), len(rec))
		}
		var row NoisyRow
		var wall float64
		if row.Restart, err = strconv.Atoi(rec[0]); err != nil {
			return nil, fmt.Errorf("line %d: restart: %w", line+2, err)
		}
		if row.Shots, err = strconv.Atoi(rec[2]); err != nil {
			return nil, fmt.Errorf("line %d: shots: %w", line+2, err)
		}
		floats := []*float64{&row.R, &row.Energy, &row.Exact, &wall}
		for k, idx := range []int{1, 3, 4, 6} {
			if *floats[k], err = strconv.ParseFloat(rec[idx], 64); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line+2, NoisyHeader[idx], err)
			}
		}
		row.WallTime = time.Duration(wall * float64(time.Second))
		rows = append(rows, row)
	}
	return rows, nil
}

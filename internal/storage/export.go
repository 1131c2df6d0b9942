package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run      RunMetadata `json:"run"`
	Curve    []CurveRow  `json:"curve,omitempty"`
	Restarts []NoisyRow  `json:"restarts,omitempty"`
}

// Export gathers a run and its data rows.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Run: *meta}
	switch meta.Kind {
	case KindNoisy:
		data.Restarts, err = s.LoadNoisy(runID)
	default:
		data.Curve, err = s.LoadCurve(runID)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := create(path)
	if err != nil {
		return err
	}
	if err := EncodeJSON(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportJSONStdout(data *ExportData) error {
	return EncodeJSON(os.Stdout, data)
}

func EncodeJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

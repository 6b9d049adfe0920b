package boxfit

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings is the resolved run configuration consumed by the CLI and
// other callers.
type Settings struct {
	Bounds        Bounds
	Zeta          float64
	Particles     int
	PointsPerEdge int
	TopK          int
	Seed          uint64
	Workers       int
}

// DefaultSettings returns the demo defaults: unit-cube center bounds,
// the sigma prior from the reference scenario, and a particle budget
// that runs in well under a second.
func DefaultSettings() Settings {
	return Settings{
		Bounds: Bounds{
			XMin: 0, XMax: 1,
			YMin: 0, YMax: 1,
			ZMin: 0, ZMax: 1,
			SigmaMin: 0.01, SigmaMax: 0.1,
		},
		Zeta:          0.1,
		Particles:     1000,
		PointsPerEdge: 10,
		TopK:          5,
		Seed:          1,
		Workers:       0,
	}
}

// TuningConfig mirrors the CLI flags so a single JSON file can drive
// repeated runs. Pointer fields distinguish "absent" from zero; absent
// fields leave the current setting untouched.
type TuningConfig struct {
	XMin *float64 `json:"x_min,omitempty"`
	XMax *float64 `json:"x_max,omitempty"`
	YMin *float64 `json:"y_min,omitempty"`
	YMax *float64 `json:"y_max,omitempty"`
	ZMin *float64 `json:"z_min,omitempty"`
	ZMax *float64 `json:"z_max,omitempty"`

	SigmaMin *float64 `json:"sigma_min,omitempty"`
	SigmaMax *float64 `json:"sigma_max,omitempty"`

	Zeta          *float64 `json:"zeta,omitempty"`
	Particles     *int     `json:"particles,omitempty"`
	PointsPerEdge *int     `json:"points_per_edge,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	Seed          *uint64  `json:"seed,omitempty"`
	Workers       *int     `json:"workers,omitempty"`
}

// LoadTuningConfig reads a tuning file from disk.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning config: %w", err)
	}
	var cfg TuningConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tuning config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply overlays the config's present fields onto s.
func (c *TuningConfig) Apply(s *Settings) {
	if c == nil {
		return
	}
	if c.XMin != nil {
		s.Bounds.XMin = *c.XMin
	}
	if c.XMax != nil {
		s.Bounds.XMax = *c.XMax
	}
	if c.YMin != nil {
		s.Bounds.YMin = *c.YMin
	}
	if c.YMax != nil {
		s.Bounds.YMax = *c.YMax
	}
	if c.ZMin != nil {
		s.Bounds.ZMin = *c.ZMin
	}
	if c.ZMax != nil {
		s.Bounds.ZMax = *c.ZMax
	}
	if c.SigmaMin != nil {
		s.Bounds.SigmaMin = *c.SigmaMin
	}
	if c.SigmaMax != nil {
		s.Bounds.SigmaMax = *c.SigmaMax
	}
	if c.Zeta != nil {
		s.Zeta = *c.Zeta
	}
	if c.Particles != nil {
		s.Particles = *c.Particles
	}
	if c.PointsPerEdge != nil {
		s.PointsPerEdge = *c.PointsPerEdge
	}
	if c.TopK != nil {
		s.TopK = *c.TopK
	}
	if c.Seed != nil {
		s.Seed = *c.Seed
	}
	if c.Workers != nil {
		s.Workers = *c.Workers
	}
}

// Validate checks the resolved settings the same way Infer would, so the
// CLI can fail before loading data.
func (s Settings) Validate() error {
	if err := s.Bounds.Validate(); err != nil {
		return err
	}
	if s.Zeta <= 0 {
		return fmt.Errorf("settings: zeta must be positive, got %g", s.Zeta)
	}
	if s.Particles <= 0 {
		return fmt.Errorf("settings: particles must be positive, got %d", s.Particles)
	}
	if s.PointsPerEdge <= 0 {
		return fmt.Errorf("settings: points per edge must be positive, got %d", s.PointsPerEdge)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("settings: top k must be positive, got %d", s.TopK)
	}
	return nil
}

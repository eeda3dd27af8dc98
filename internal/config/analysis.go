// Package config loads analysis configuration for the reduction pipeline.
// Files are JSON; fields omitted from a file keep their defaults, so
// partial per-campaign configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
)

// Ion species presets selectable by name instead of a raw mass.
var ionMasses = map[string]float64{
	"carbon":    spectroscopy.CarbonIonMass,
	"hydrogen":  1 / 6.02e23,
	"deuterium": 2 / 6.02e23,
	"helium":    4 / 6.02e23,
}

// AnalysisConfig is the root configuration for one reduction run. Pointer
// fields distinguish "omitted" from zero; the Get* accessors supply
// defaults.
type AnalysisConfig struct {
	// Spatial macro-pixel bin edges, in pairs of [lower, upper) rows.
	BinEdges []int `json:"bin_edges,omitempty"`

	// Peak search params
	Prominence *float64 `json:"prominence,omitempty"`
	RelHeight  *float64 `json:"rel_height,omitempty"`
	// Relative height at which ROI window edges are measured.
	WidthRelHeight *float64 `json:"width_rel_height,omitempty"`

	// Ion species: either a preset name or an explicit mass in kg.
	// IonMassKg wins when both are set.
	Ion       *string  `json:"ion,omitempty"`
	IonMassKg *float64 `json:"ion_mass_kg,omitempty"`

	// Output params
	DatabasePath *string `json:"database_path,omitempty"`
	ReportDir    *string `json:"report_dir,omitempty"`
}

// Load reads an AnalysisConfig from a JSON file and validates it.
func Load(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &AnalysisConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *AnalysisConfig) Validate() error {
	if len(c.BinEdges) > 0 {
		for i := 0; i+1 < len(c.BinEdges); i += 2 {
			lo, hi := c.BinEdges[i], c.BinEdges[i+1]
			if lo < 0 || lo >= hi {
				return fmt.Errorf("bin_edges pair %d is [%d, %d); want 0 <= lower < upper", i/2, lo, hi)
			}
		}
	}
	if c.RelHeight != nil && (*c.RelHeight < 0 || *c.RelHeight > 1) {
		return fmt.Errorf("rel_height must be between 0 and 1, got %f", *c.RelHeight)
	}
	if c.WidthRelHeight != nil && (*c.WidthRelHeight <= 0 || *c.WidthRelHeight > 1) {
		return fmt.Errorf("width_rel_height must be in (0, 1], got %f", *c.WidthRelHeight)
	}
	if c.Prominence != nil && *c.Prominence < 0 {
		return fmt.Errorf("prominence must be non-negative, got %f", *c.Prominence)
	}
	if c.IonMassKg != nil && *c.IonMassKg <= 0 {
		return fmt.Errorf("ion_mass_kg must be positive, got %g", *c.IonMassKg)
	}
	if c.Ion != nil {
		if _, ok := ionMasses[*c.Ion]; !ok {
			return fmt.Errorf("unknown ion preset %q", *c.Ion)
		}
	}
	return nil
}

// GetProminence returns the prominence threshold or the default.
func (c *AnalysisConfig) GetProminence() float64 {
	if c.Prominence == nil {
		return 50
	}
	return *c.Prominence
}

// GetRelHeight returns the peak-search relative height or the default.
func (c *AnalysisConfig) GetRelHeight() float64 {
	if c.RelHeight == nil {
		return 0.5
	}
	return *c.RelHeight
}

// GetWidthRelHeight returns the window measurement height or the default.
func (c *AnalysisConfig) GetWidthRelHeight() float64 {
	if c.WidthRelHeight == nil {
		return spectroscopy.DefaultWidthRelHeight
	}
	return *c.WidthRelHeight
}

// GetIonMass returns the configured ion mass in kg, preferring an explicit
// mass over a preset, defaulting to carbon-12.
func (c *AnalysisConfig) GetIonMass() float64 {
	if c.IonMassKg != nil {
		return *c.IonMassKg
	}
	if c.Ion != nil {
		return ionMasses[*c.Ion]
	}
	return spectroscopy.CarbonIonMass
}

// GetDatabasePath returns the results database path; empty disables
// persistence.
func (c *AnalysisConfig) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return ""
	}
	return *c.DatabasePath
}

// GetReportDir returns the report output directory; empty disables reports.
func (c *AnalysisConfig) GetReportDir() string {
	if c.ReportDir == nil {
		return ""
	}
	return *c.ReportDir
}

// Analyzer builds the pipeline analyzer this configuration describes.
func (c *AnalysisConfig) Analyzer() spectroscopy.Analyzer {
	constants := spectroscopy.DefaultConstants()
	constants.IonMass = c.GetIonMass()
	return spectroscopy.Analyzer{
		Constants: constants,
		Thresholds: spectroscopy.PeakThresholds{
			Prominence: c.GetProminence(),
			RelHeight:  c.GetRelHeight(),
		},
		WidthRelHeight: c.GetWidthRelHeight(),
	}
}

package workspacefinder

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/troyzx/cmat/internal/domain"
)

// LoadConfig loads cmat.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, "cmat.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.CMAT.Defaults.Confidence != nil {
		cfg.Defaults.Confidence = *y.CMAT.Defaults.Confidence
	}
	if y.CMAT.Defaults.WindowDurations != nil {
		cfg.Defaults.WindowDurations = *y.CMAT.Defaults.WindowDurations
	}
	if y.CMAT.Defaults.MinPoints != nil {
		cfg.Defaults.MinPoints = *y.CMAT.Defaults.MinPoints
	}
	if y.CMAT.Paths.TargetsDir != "" {
		cfg.Paths.TargetsDir = y.CMAT.Paths.TargetsDir
	}
	if y.CMAT.Paths.DataDir != "" {
		cfg.Paths.DataDir = y.CMAT.Paths.DataDir
	}
	if y.CMAT.Paths.ResultsDir != "" {
		cfg.Paths.ResultsDir = y.CMAT.Paths.ResultsDir
	}
	if y.CMAT.Archive.BaseURL != "" {
		cfg.Archive.BaseURL = y.CMAT.Archive.BaseURL
	}
	if y.CMAT.Archive.TimeoutSeconds != nil {
		cfg.Archive.TimeoutSeconds = *y.CMAT.Archive.TimeoutSeconds
	}
	if y.CMAT.Grid.MinPeriodRatio != nil {
		cfg.Grid.MinPeriodRatio = *y.CMAT.Grid.MinPeriodRatio
	}
	if y.CMAT.Grid.MaxPeriodRatio != nil {
		cfg.Grid.MaxPeriodRatio = *y.CMAT.Grid.MaxPeriodRatio
	}
	if y.CMAT.Grid.Steps != nil {
		cfg.Grid.Steps = *y.CMAT.Grid.Steps
	}

	return cfg, nil
}

type yamlConfig struct {
	CMAT struct {
		Defaults struct {
			Confidence      *float64 `yaml:"confidence"`
			WindowDurations *float64 `yaml:"window_durations"`
			MinPoints       *int     `yaml:"min_points"`
		} `yaml:"defaults"`

		Paths struct {
			TargetsDir string `yaml:"targets_dir"`
			DataDir    string `yaml:"data_dir"`
			ResultsDir string `yaml:"results_dir"`
		} `yaml:"paths"`

		Archive struct {
			BaseURL        string `yaml:"base_url"`
			TimeoutSeconds *int   `yaml:"timeout_seconds"`
		} `yaml:"archive"`

		Grid struct {
			MinPeriodRatio *float64 `yaml:"min_period_ratio"`
			MaxPeriodRatio *float64 `yaml:"max_period_ratio"`
			Steps          *int     `yaml:"steps"`
		} `yaml:"grid"`
	} `yaml:"cmat"`
}

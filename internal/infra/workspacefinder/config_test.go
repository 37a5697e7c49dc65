package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/troyzx/cmat/internal/domain"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "cmat.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
cmat:
  defaults:
    confidence: 0.99
    min_points: 10
  paths:
    targets_dir: objects
  archive:
    base_url: http://localhost:9999/api
    timeout_seconds: 3
  grid:
    min_period_ratio: 0.5
    max_period_ratio: 5
    steps: 15
`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if cfg.Defaults.Confidence != 0.99 {
		t.Fatalf("confidence: got %g", cfg.Defaults.Confidence)
	}
	if cfg.Defaults.MinPoints != 10 {
		t.Fatalf("min points: got %d", cfg.Defaults.MinPoints)
	}
	// Untouched fields keep their defaults.
	if cfg.Defaults.WindowDurations != domain.DefaultConfig().Defaults.WindowDurations {
		t.Fatalf("window durations should default, got %g", cfg.Defaults.WindowDurations)
	}
	if cfg.Paths.TargetsDir != "objects" {
		t.Fatalf("targets dir: got %q", cfg.Paths.TargetsDir)
	}
	if cfg.Paths.ResultsDir != "results" {
		t.Fatalf("results dir should default, got %q", cfg.Paths.ResultsDir)
	}
	if cfg.Archive.BaseURL != "http://localhost:9999/api" {
		t.Fatalf("archive url: got %q", cfg.Archive.BaseURL)
	}
	if cfg.Grid.Steps != 15 || cfg.Grid.MinPeriodRatio != 0.5 || cfg.Grid.MaxPeriodRatio != 5 {
		t.Fatalf("grid: got %+v", cfg.Grid)
	}
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadConfig(root)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
	// Defaults are still returned so callers may proceed.
	if cfg.Paths.TargetsDir != "targets" {
		t.Fatalf("expected default paths, got %+v", cfg.Paths)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "cmat: [notamap")

	_, err := LoadConfig(root)
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}

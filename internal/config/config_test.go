package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, subs, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config must not fail: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("defaults need no substitutions, got %v", subs)
	}

	if cfg.Selection.SceneLimit != 6 {
		t.Errorf("expected default scene limit 6, got %d", cfg.Selection.SceneLimit)
	}
	if cfg.Selection.MinShortLength != 15 || cfg.Selection.MaxShortLength != 179 {
		t.Errorf("unexpected default short lengths: %+v", cfg.Selection)
	}
	if cfg.Selection.MaxCombinedSceneLength != 300 {
		t.Errorf("expected default combined cap 300, got %f", cfg.Selection.MaxCombinedSceneLength)
	}
	if cfg.Audio.WindowSize != 2048 || cfg.Audio.HopSize != 1024 {
		t.Errorf("unexpected default audio analysis params: %+v", cfg.Audio)
	}
}

func TestLoadReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
selection:
  scene_limit: 3
  min_short_length: 10
  max_short_length: 60
output_dir: ./out
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, subs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("valid config must not be substituted: %v", subs)
	}
	if cfg.Selection.SceneLimit != 3 {
		t.Errorf("expected scene limit 3, got %d", cfg.Selection.SceneLimit)
	}
	if cfg.Selection.MinShortLength != 10 || cfg.Selection.MaxShortLength != 60 {
		t.Errorf("unexpected short lengths: %+v", cfg.Selection)
	}
	if cfg.OutputDir != "./out" {
		t.Errorf("expected output dir ./out, got %s", cfg.OutputDir)
	}
	// Untouched fields keep their defaults.
	if cfg.Selection.XCenter != 0.5 {
		t.Errorf("expected default x_center, got %f", cfg.Selection.XCenter)
	}
}

func TestLoadSubstitutesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
selection:
  scene_limit: -2
  x_center: 1.7
  min_short_length: -5
  scene_threshold: 3
audio:
  hop_size: -1
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, subs, err := Load(path)
	if err != nil {
		t.Fatalf("invalid values must be recovered, not fatal: %v", err)
	}
	if len(subs) != 5 {
		t.Errorf("expected 5 substitutions, got %d: %v", len(subs), subs)
	}

	if cfg.Selection.SceneLimit != 6 {
		t.Errorf("scene_limit not reset to default: %d", cfg.Selection.SceneLimit)
	}
	if cfg.Selection.XCenter != 0.5 {
		t.Errorf("x_center not reset to default: %f", cfg.Selection.XCenter)
	}
	if cfg.Selection.MinShortLength != 15 {
		t.Errorf("min_short_length not reset to default: %f", cfg.Selection.MinShortLength)
	}
	if cfg.Selection.SceneThreshold != 0.4 {
		t.Errorf("scene_threshold not reset to default: %f", cfg.Selection.SceneThreshold)
	}
	if cfg.Audio.HopSize != 1024 {
		t.Errorf("hop_size not reset to default: %d", cfg.Audio.HopSize)
	}
}

func TestLoadMaxBelowMinShortLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
selection:
  min_short_length: 100
  max_short_length: 50
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, subs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Errorf("expected 1 substitution, got %v", subs)
	}
	if cfg.Selection.MaxShortLength != 179 {
		t.Errorf("max_short_length not reset: %f", cfg.Selection.MaxShortLength)
	}
	if cfg.Selection.MinShortLength != 100 {
		t.Errorf("valid min_short_length must survive: %f", cfg.Selection.MinShortLength)
	}
}

func TestConfigContext(t *testing.T) {
	cfg := defaultConfig()
	cfg.Selection.SceneLimit = 42

	ctx := WithConfig(context.Background(), cfg)
	if got := FromContext(ctx); got.Selection.SceneLimit != 42 {
		t.Errorf("config not carried through context")
	}

	// Missing config falls back to defaults.
	if got := FromContext(context.Background()); got.Selection.SceneLimit != 6 {
		t.Errorf("expected default fallback, got %d", got.Selection.SceneLimit)
	}
}

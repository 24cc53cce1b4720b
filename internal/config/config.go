package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir   string `yaml:"work_dir"`
	OutputDir string `yaml:"output_dir"`

	// Short selection settings
	Selection SelectionConfig `yaml:"selection"`

	// Audio analysis settings
	Audio AudioConfig `yaml:"audio"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

// SelectionConfig controls scene segmentation, ranking and rendering
// geometry. Ratio and crop-center values are passed through to the
// render stage untouched and have no effect on ranking.
type SelectionConfig struct {
	TargetRatioW           int     `yaml:"target_ratio_w"`
	TargetRatioH           int     `yaml:"target_ratio_h"`
	SceneLimit             int     `yaml:"scene_limit"`
	XCenter                float64 `yaml:"x_center"`
	YCenter                float64 `yaml:"y_center"`
	MaxErrorDepth          int     `yaml:"max_error_depth"`
	MinShortLength         float64 `yaml:"min_short_length"`
	MaxShortLength         float64 `yaml:"max_short_length"`
	MaxCombinedSceneLength float64 `yaml:"max_combined_scene_length"`
	SceneThreshold         float64 `yaml:"scene_threshold"`
}

type AudioConfig struct {
	SampleRate      int `yaml:"sample_rate"`
	WindowSize      int `yaml:"window_size"`
	HopSize         int `yaml:"hop_size"`
	SmoothingWindow int `yaml:"smoothing_window"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
}

// Load reads configuration from file or returns defaults. Out-of-range
// values are replaced with their defaults, never treated as fatal; the
// substitutions are reported so the caller can log them.
func Load(path string) (*Config, []Substitution, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil, nil
		}
		return nil, nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, nil, err
	}

	subs := cfg.normalize()
	return cfg, subs, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:   "./work",
		OutputDir: "./generated",
		Selection: SelectionConfig{
			TargetRatioW:           1,
			TargetRatioH:           1,
			SceneLimit:             6,
			XCenter:                0.5,
			YCenter:                0.5,
			MaxErrorDepth:          3,
			MinShortLength:         15,
			MaxShortLength:         179,
			MaxCombinedSceneLength: 300,
			SceneThreshold:         0.4,
		},
		Audio: AudioConfig{
			SampleRate:      16000,
			WindowSize:      2048,
			HopSize:         1024,
			SmoothingWindow: 5,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
			Preset:     "medium",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".shorts-maker", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}

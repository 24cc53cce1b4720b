package config

import "fmt"

// Substitution records a config value that was out of range and was
// replaced with its default.
type Substitution struct {
	Field   string
	Value   string
	Default string
}

func (s Substitution) String() string {
	return fmt.Sprintf("%s=%s out of range, using %s", s.Field, s.Value, s.Default)
}

// normalize clamps every out-of-range field back to its default and
// returns the substitutions that were made. Configuration problems are
// recovered here, never surfaced as errors.
func (c *Config) normalize() []Substitution {
	def := defaultConfig()
	var subs []Substitution

	sub := func(field string, value, fallback any) {
		subs = append(subs, Substitution{
			Field:   field,
			Value:   fmt.Sprint(value),
			Default: fmt.Sprint(fallback),
		})
	}

	s := &c.Selection
	ds := def.Selection

	if s.TargetRatioW < 1 {
		sub("selection.target_ratio_w", s.TargetRatioW, ds.TargetRatioW)
		s.TargetRatioW = ds.TargetRatioW
	}
	if s.TargetRatioH < 1 {
		sub("selection.target_ratio_h", s.TargetRatioH, ds.TargetRatioH)
		s.TargetRatioH = ds.TargetRatioH
	}
	if s.SceneLimit < 1 {
		sub("selection.scene_limit", s.SceneLimit, ds.SceneLimit)
		s.SceneLimit = ds.SceneLimit
	}
	if s.XCenter < 0 || s.XCenter > 1 {
		sub("selection.x_center", s.XCenter, ds.XCenter)
		s.XCenter = ds.XCenter
	}
	if s.YCenter < 0 || s.YCenter > 1 {
		sub("selection.y_center", s.YCenter, ds.YCenter)
		s.YCenter = ds.YCenter
	}
	if s.MaxErrorDepth < 0 {
		sub("selection.max_error_depth", s.MaxErrorDepth, ds.MaxErrorDepth)
		s.MaxErrorDepth = ds.MaxErrorDepth
	}
	if s.MinShortLength <= 0 {
		sub("selection.min_short_length", s.MinShortLength, ds.MinShortLength)
		s.MinShortLength = ds.MinShortLength
	}
	if s.MaxShortLength <= s.MinShortLength {
		sub("selection.max_short_length", s.MaxShortLength, ds.MaxShortLength)
		s.MaxShortLength = ds.MaxShortLength
	}
	if s.MaxCombinedSceneLength <= 0 {
		sub("selection.max_combined_scene_length", s.MaxCombinedSceneLength, ds.MaxCombinedSceneLength)
		s.MaxCombinedSceneLength = ds.MaxCombinedSceneLength
	}
	if s.SceneThreshold <= 0 || s.SceneThreshold >= 1 {
		sub("selection.scene_threshold", s.SceneThreshold, ds.SceneThreshold)
		s.SceneThreshold = ds.SceneThreshold
	}

	a := &c.Audio
	da := def.Audio

	if a.SampleRate <= 0 {
		sub("audio.sample_rate", a.SampleRate, da.SampleRate)
		a.SampleRate = da.SampleRate
	}
	if a.HopSize <= 0 {
		sub("audio.hop_size", a.HopSize, da.HopSize)
		a.HopSize = da.HopSize
	}
	if a.WindowSize < a.HopSize {
		sub("audio.window_size", a.WindowSize, da.WindowSize)
		a.WindowSize = da.WindowSize
		if a.HopSize > a.WindowSize {
			sub("audio.hop_size", a.HopSize, da.HopSize)
			a.HopSize = da.HopSize
		}
	}
	if a.SmoothingWindow < 1 {
		sub("audio.smoothing_window", a.SmoothingWindow, da.SmoothingWindow)
		a.SmoothingWindow = da.SmoothingWindow
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = def.FFmpeg.BinaryPath
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = def.FFmpeg.Preset
	}
	if c.WorkDir == "" {
		c.WorkDir = def.WorkDir
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}

	return subs
}

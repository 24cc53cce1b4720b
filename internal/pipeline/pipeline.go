// Package pipeline orchestrates the short selection workflow for one
// source video: probe, detect scene boundaries, profile the audio,
// merge and rank scenes, and hand the shortlist to the render
// collaborator. Each run owns its profile and shortlist exclusively;
// there is no shared mutable state between videos.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artryazanov/shorts-maker/internal/audio"
	"github.com/artryazanov/shorts-maker/internal/config"
	"github.com/artryazanov/shorts-maker/internal/ffmpeg"
	"github.com/artryazanov/shorts-maker/internal/render"
	"github.com/artryazanov/shorts-maker/internal/scenes"
	"github.com/artryazanov/shorts-maker/pkg/util"
)

// Prober extracts source video metadata
type Prober interface {
	ProbeVideo(ctx context.Context, filePath string) (*ffmpeg.VideoInfo, error)
}

// BoundaryDetector yields chronological scene-change timestamps
type BoundaryDetector interface {
	DetectScenes(ctx context.Context, input string, threshold float64) ([]float64, error)
}

// AudioDecoder extracts the audio track to an analysis WAV
type AudioDecoder interface {
	ExtractAudio(ctx context.Context, input, output string, format ffmpeg.AudioFormat, progressFunc ffmpeg.ProgressFunc) error
}

// ActionProfiler computes the action profile of an analysis WAV
type ActionProfiler interface {
	ProfileWAV(path string) (audio.ActionProfile, error)
}

// Renderer renders a shortlist; it owns its own retry policy
type Renderer interface {
	Render(ctx context.Context, info *ffmpeg.VideoInfo, shortlist scenes.Shortlist) error
}

// Pipeline wires the profiler, segmenter and ranker for one video at
// a time.
type Pipeline struct {
	logger    zerolog.Logger
	cfg       *config.Config
	prober    Prober
	detector  BoundaryDetector
	decoder   AudioDecoder
	profiler  ActionProfiler
	renderer  Renderer
	segmenter *scenes.Segmenter
	ranker    *scenes.Ranker
}

// New creates a pipeline backed by the ffmpeg executor
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads, cfg.FFmpeg.Preset)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	return NewWithCollaborators(
		logger,
		cfg,
		exec,
		exec,
		exec,
		audio.NewProfiler(logger, cfg.Audio),
		render.New(logger, exec, cfg),
	), nil
}

// NewWithCollaborators creates a pipeline with explicit collaborators
func NewWithCollaborators(
	logger zerolog.Logger,
	cfg *config.Config,
	prober Prober,
	detector BoundaryDetector,
	decoder AudioDecoder,
	profiler ActionProfiler,
	renderer Renderer,
) *Pipeline {
	return &Pipeline{
		logger:    logger.With().Str("component", "pipeline").Logger(),
		cfg:       cfg,
		prober:    prober,
		detector:  detector,
		decoder:   decoder,
		profiler:  profiler,
		renderer:  renderer,
		segmenter: scenes.NewSegmenter(cfg.Selection.MaxCombinedSceneLength),
		ranker: scenes.NewRanker(
			cfg.Selection.MinShortLength,
			cfg.Selection.MaxShortLength,
			cfg.Selection.SceneLimit,
		),
	}
}

// Run selects and ranks the shortlist for one source video without
// rendering. An unreadable audio track surfaces as audio.DecodeError.
func (p *Pipeline) Run(ctx context.Context, videoPath string) (scenes.Shortlist, error) {
	shortlist, _, err := p.analyze(ctx, videoPath)
	return shortlist, err
}

// Process runs the full pipeline for one video and hands the shortlist
// to the render collaborator.
func (p *Pipeline) Process(ctx context.Context, videoPath string) error {
	shortlist, info, err := p.analyze(ctx, videoPath)
	if err != nil {
		return err
	}
	return p.renderer.Render(ctx, info, shortlist)
}

func (p *Pipeline) analyze(ctx context.Context, videoPath string) (scenes.Shortlist, *ffmpeg.VideoInfo, error) {
	if videoPath == "" {
		return nil, nil, fmt.Errorf("input path cannot be empty")
	}

	p.logger.Info().Str("input", videoPath).Msg("starting short selection")

	info, err := p.prober.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to probe video: %w", err)
	}

	p.logger.Info().
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Bool("has_audio", info.HasAudio).
		Msg("video metadata extracted")

	boundaries, err := p.detector.DetectScenes(ctx, videoPath, p.cfg.Selection.SceneThreshold)
	if err != nil {
		return nil, nil, fmt.Errorf("scene detection failed: %w", err)
	}

	raw := scenes.FromBoundaries(boundaries, info.Seconds())

	profile, err := p.profileAudio(ctx, videoPath, info)
	if err != nil {
		return nil, nil, err
	}

	combined := p.segmenter.Combine(raw)
	for i, scene := range combined {
		p.logger.Debug().
			Int("scene", i+1).
			Float64("start", scene.Start).
			Float64("end", scene.End).
			Float64("duration", scene.Duration()).
			Msg("combined scene")
	}

	shortlist := p.ranker.Rank(profile, combined)

	p.logger.Info().
		Int("raw_scenes", len(raw)).
		Int("combined_scenes", len(combined)).
		Int("shortlist", len(shortlist)).
		Msg("short selection complete")

	return shortlist, info, nil
}

// profileAudio extracts the audio track to a temporary analysis WAV
// and profiles it. A video whose track cannot be extracted or decoded
// yields an audio.DecodeError.
func (p *Pipeline) profileAudio(ctx context.Context, videoPath string, info *ffmpeg.VideoInfo) (audio.ActionProfile, error) {
	if !info.HasAudio {
		return nil, &audio.DecodeError{Path: videoPath, Err: fmt.Errorf("no audio track")}
	}

	if err := util.EnsureDir(p.cfg.WorkDir); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	wavPath := filepath.Join(p.cfg.WorkDir, uuid.NewString()+".wav")
	defer util.CleanupFiles(wavPath)

	format := ffmpeg.AnalysisFormat(p.cfg.Audio.SampleRate)
	if err := p.decoder.ExtractAudio(ctx, videoPath, wavPath, format, nil); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &audio.DecodeError{Path: videoPath, Err: err}
	}

	return p.profiler.ProfileWAV(wavPath)
}

// ProcessBatch walks the input path (a single file or a directory of
// videos, in lexical order) and processes each video to completion
// before the next. A video whose audio cannot be decoded is logged and
// skipped; the batch continues.
func (p *Pipeline) ProcessBatch(ctx context.Context, input string) error {
	stat, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	if !stat.IsDir() {
		return p.processOne(ctx, input)
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return fmt.Errorf("failed to read input dir: %w", err)
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processOne(ctx, filepath.Join(input, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) processOne(ctx context.Context, videoPath string) error {
	err := p.Process(ctx, videoPath)
	if err == nil {
		return nil
	}

	var decodeErr *audio.DecodeError
	if errors.As(err, &decodeErr) {
		p.logger.Warn().Err(err).Str("video", videoPath).Msg("audio not decodable, skipping video")
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	p.logger.Error().Err(err).Str("video", videoPath).Msg("processing failed, continuing batch")
	return nil
}

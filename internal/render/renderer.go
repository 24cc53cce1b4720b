// Package render is the render collaborator of the short selection
// pipeline. It owns output naming and the retry policy; the core never
// retries.
package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/artryazanov/shorts-maker/internal/config"
	"github.com/artryazanov/shorts-maker/internal/ffmpeg"
	"github.com/artryazanov/shorts-maker/internal/scenes"
	"github.com/artryazanov/shorts-maker/pkg/util"
)

// ShortRenderer executes a single short render
type ShortRenderer interface {
	RenderShort(ctx context.Context, input string, opts ffmpeg.ShortRenderOptions) error
}

// Renderer renders every shortlist entry of a video, retrying failed
// renders up to the configured depth before giving up on that clip.
type Renderer struct {
	logger    zerolog.Logger
	exec      ShortRenderer
	selection config.SelectionConfig
	outputDir string
}

// New creates a renderer writing into the configured output directory
func New(logger zerolog.Logger, exec ShortRenderer, cfg *config.Config) *Renderer {
	return &Renderer{
		logger:    logger.With().Str("component", "renderer").Logger(),
		exec:      exec,
		selection: cfg.Selection,
		outputDir: cfg.OutputDir,
	}
}

// Render writes one output file per shortlist entry, in shortlist
// order. A clip that keeps failing after all retries is logged and
// skipped; the remaining clips still render.
func (r *Renderer) Render(ctx context.Context, info *ffmpeg.VideoInfo, shortlist scenes.Shortlist) error {
	if len(shortlist) == 0 {
		r.logger.Info().Str("video", info.FilePath).Msg("empty shortlist, nothing to render")
		return nil
	}

	if err := util.EnsureDir(r.outputDir); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	ext := filepath.Ext(info.FilePath)
	if ext == "" {
		ext = ".mp4"
	}
	stem := util.Stem(info.FilePath)

	rendered := 0
	for i, ranked := range shortlist {
		output := filepath.Join(r.outputDir, fmt.Sprintf("%s scene-%d%s", stem, i, ext))

		opts := ffmpeg.ShortRenderOptions{
			Start:        ranked.Scene.Start,
			Duration:     ranked.Scene.Duration(),
			Output:       output,
			SourceWidth:  info.Width,
			SourceHeight: info.Height,
			SourceFPS:    info.FPS,
			RatioW:       r.selection.TargetRatioW,
			RatioH:       r.selection.TargetRatioH,
			XCenter:      r.selection.XCenter,
			YCenter:      r.selection.YCenter,
		}

		if err := r.renderWithRetry(ctx, info.FilePath, opts); err != nil {
			r.logger.Error().
				Err(err).
				Str("output", output).
				Int("attempts", r.selection.MaxErrorDepth+1).
				Msg("rendering failed after multiple attempts")
			continue
		}
		rendered++
	}

	r.logger.Info().
		Str("video", info.FilePath).
		Int("rendered", rendered).
		Int("shortlist", len(shortlist)).
		Msg("render stage complete")

	return nil
}

func (r *Renderer) renderWithRetry(ctx context.Context, input string, opts ffmpeg.ShortRenderOptions) error {
	var err error
	for attempt := 0; attempt <= r.selection.MaxErrorDepth; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = r.exec.RenderShort(ctx, input, opts); err == nil {
			return nil
		}
		if attempt < r.selection.MaxErrorDepth {
			r.logger.Warn().
				Err(err).
				Str("output", opts.Output).
				Int("attempt", attempt+1).
				Msg("rendering failed, retrying")
		}
	}
	return err
}

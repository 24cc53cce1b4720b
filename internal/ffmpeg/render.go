package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/artryazanov/shorts-maker/pkg/util"
)

// ShortRenderOptions configures rendering of one short clip
type ShortRenderOptions struct {
	Start    float64 // seconds into the source
	Duration float64 // clip length in seconds
	Output   string

	// Probed source geometry
	SourceWidth  int
	SourceHeight int
	SourceFPS    float64

	// Target aspect ratio and crop center, passed through from config
	RatioW  int
	RatioH  int
	XCenter float64
	YCenter float64

	ProgressFunc ProgressFunc
}

// Background blur strength for the composite
const (
	blurRadius = 16
	blurPasses = 2
)

// RenderShort renders one time range of the source as a short-format
// clip: the foreground is cropped to the target aspect ratio around
// the configured center, scaled to a background resolution tier, and,
// when the crop leaves letterbox space, composited over a blurred
// crop of the same range.
func (e *Executor) RenderShort(ctx context.Context, input string, opts ShortRenderOptions) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Duration <= 0 {
		return fmt.Errorf("invalid clip duration: %f", opts.Duration)
	}
	if opts.SourceWidth <= 0 || opts.SourceHeight <= 0 {
		return fmt.Errorf("source dimensions are required")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Float64("start", opts.Start).
		Float64("duration", opts.Duration).
		Msg("rendering short")

	graph, composite := buildShortFilter(opts)

	args := []string{
		"-ss", util.FormatSeconds(opts.Start),
		"-t", util.FormatSeconds(opts.Duration),
		"-i", input,
	}

	if composite {
		args = append(args,
			"-filter_complex", graph,
			"-map", "[outv]",
			"-map", "0:a?",
		)
	} else if graph != "" {
		args = append(args, "-vf", graph)
	}

	fps := opts.SourceFPS
	if fps <= 0 || fps > MaxOutputFPS {
		fps = MaxOutputFPS
	}

	args = append(args,
		"-c:v", DefaultVideoCodec,
		"-crf", fmt.Sprintf("%d", DefaultCRF),
		"-preset", e.renderPreset(),
		"-c:a", DefaultAudioCodec,
		"-r", fmt.Sprintf("%.2f", fps),
		"-movflags", "+faststart",
		opts.Output,
	)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("render output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("short render failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("short render completed")
	return nil
}

func (e *Executor) renderPreset() string {
	if e.preset == "" {
		return DefaultPreset
	}
	return e.preset
}

// backgroundResolution chooses the output tier from the foreground
// width after cropping.
func backgroundResolution(width int) (int, int) {
	switch {
	case width < 840:
		return 720, 1280
	case width < 1020:
		return 900, 1600
	case width < 1320:
		return 1080, 1920
	case width < 1680:
		return 1440, 2560
	case width < 2040:
		return 1800, 3200
	default:
		return 2160, 3840
	}
}

// cropForRatio computes a centered crop of the source down to the
// target aspect ratio. The crop center is expressed as fractions of
// the source dimensions and clamped so the crop stays inside the
// frame.
func cropForRatio(srcW, srcH, ratioW, ratioH int, xCenter, yCenter float64) (w, h, x, y int) {
	current := float64(srcW) / float64(srcH)
	target := float64(ratioW) / float64(ratioH)

	if current > target {
		w = int(math.Round(float64(srcH) * float64(ratioW) / float64(ratioH)))
		h = srcH
	} else {
		w = srcW
		h = int(math.Round(float64(srcW) / float64(ratioW) * float64(ratioH)))
	}
	if w > srcW {
		w = srcW
	}
	if h > srcH {
		h = srcH
	}

	x = clamp(int(math.Round(xCenter*float64(srcW)-float64(w)/2)), 0, srcW-w)
	y = clamp(int(math.Round(yCenter*float64(srcH)-float64(h)/2)), 0, srcH-h)
	return w, h, x, y
}

// buildShortFilter constructs the filter graph for one short. The
// second return value reports whether the graph is a filter_complex
// composite (blurred background) rather than a plain -vf chain.
func buildShortFilter(opts ShortRenderOptions) (string, bool) {
	srcW, srcH := opts.SourceWidth, opts.SourceHeight

	fg := NewFilterBuilder()
	fgW, fgH := srcW, srcH

	// The foreground is cropped only when the source is wider than the
	// target ratio, matching the selection behavior of the crop stage.
	if float64(srcW)/float64(srcH) > float64(opts.RatioW)/float64(opts.RatioH) {
		cw, ch, cx, cy := cropForRatio(srcW, srcH, opts.RatioW, opts.RatioH, opts.XCenter, opts.YCenter)
		fg.Crop(cw, ch, cx, cy)
		fgW, fgH = cw, ch
	}

	bgW, bgH := backgroundResolution(fgW)
	return assembleShortGraph(opts, fg, fgW, fgH, bgW, bgH)
}

// assembleShortGraph scales the foreground to the tier width and adds
// the blurred background composite when the cropped foreground shape
// calls for it. The background is always cut from the full source
// frame, not from the foreground crop.
func assembleShortGraph(opts ShortRenderOptions, fg *FilterBuilder, fgW, fgH, bgW, bgH int) (string, bool) {
	fg.Scale(bgW, -2)
	srcW, srcH := opts.SourceWidth, opts.SourceHeight

	switch {
	case fgW >= fgH:
		// Landscape foreground: square blurred canvas behind the clip.
		bg := NewFilterBuilder()
		bw, bh, bx, by := cropForRatio(srcW, srcH, 1, 1, opts.XCenter, opts.YCenter)
		bg.Crop(bw, bh, bx, by).
			Scale(720, 720).
			BoxBlur(blurRadius, blurPasses).
			Scale(bgW, bgW)
		return compositeGraph(fg, bg), true

	case float64(fgW)/9 < float64(fgH)/16:
		// Foreground taller than 9:16: fill a portrait canvas behind it.
		bg := NewFilterBuilder()
		bw, bh, bx, by := cropForRatio(srcW, srcH, 9, 16, opts.XCenter, opts.YCenter)
		bg.Crop(bw, bh, bx, by).
			Scale(720, 1280).
			BoxBlur(blurRadius, blurPasses).
			Scale(bgW, bgH)
		return compositeGraph(fg, bg), true

	default:
		return fg.Build(), false
	}
}

func compositeGraph(fg, bg *FilterBuilder) string {
	var b strings.Builder
	b.WriteString("[0:v]split=2[fgsrc][bgsrc];")
	b.WriteString("[fgsrc]" + fg.Build() + "[fg];")
	b.WriteString("[bgsrc]" + bg.Build() + "[bg];")
	b.WriteString("[bg][fg]overlay=(W-w)/2:(H-h)/2[outv]")
	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DetectScenes finds scene-change timestamps (in seconds) using the
// ffmpeg scene filter. The returned boundaries are in chronological
// order; converting them into gap-free scene ranges is the caller's
// concern.
func (e *Executor) DetectScenes(ctx context.Context, input string, threshold float64) ([]float64, error) {
	e.logger.Info().
		Str("input", input).
		Float64("threshold", threshold).
		Msg("detecting scene changes")

	var stderrBuf bytes.Buffer
	var mu sync.Mutex

	opts := RunOptions{
		Args: []string{
			"-i", input,
			"-vf", fmt.Sprintf("select='gt(scene,%f)',showinfo", threshold),
			"-f", "null",
			"-",
		},
		LogHandler: func(line string) {
			mu.Lock()
			stderrBuf.WriteString(line + "\n")
			mu.Unlock()
		},
	}

	err := e.Run(ctx, opts)

	mu.Lock()
	output := stderrBuf.String()
	mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Null-muxer runs report conversion errors even on success.
		if !strings.Contains(err.Error(), "Conversion failed") &&
			!strings.Contains(err.Error(), "Invalid return value") &&
			!strings.Contains(err.Error(), "Output file is empty") {
			return nil, fmt.Errorf("scene detection failed: %w", err)
		}
	}

	boundaries := parseSceneOutput(output)
	e.logger.Info().Int("boundaries", len(boundaries)).Msg("scene detection complete")
	return boundaries, nil
}

// parseSceneOutput extracts scene change timestamps from showinfo lines
func parseSceneOutput(output string) []float64 {
	var boundaries []float64

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "pts_time:") {
			continue
		}
		parts := strings.Split(line, "pts_time:")
		if len(parts) != 2 {
			continue
		}
		fields := strings.Fields(strings.TrimSpace(parts[1]))
		if len(fields) == 0 {
			continue
		}
		if seconds, err := strconv.ParseFloat(fields[0], 64); err == nil {
			boundaries = append(boundaries, seconds)
		}
	}

	return boundaries
}

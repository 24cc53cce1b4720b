// Package scenes implements scene segmentation, merging and
// audio-driven ranking. Everything in this package is a pure function
// of its inputs: deterministic, no I/O, no shared state.
package scenes

// TimeRange is a half-open [Start, End) interval in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

// Duration returns the range length in seconds
func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

// FromBoundaries converts scene-change timestamps into a chronological,
// non-overlapping, gap-free sequence of raw scenes covering
// [0, duration). Boundaries outside (0, duration) and out-of-order
// duplicates are ignored.
func FromBoundaries(boundaries []float64, duration float64) []TimeRange {
	if duration <= 0 {
		return nil
	}

	raw := make([]TimeRange, 0, len(boundaries)+1)
	prev := 0.0
	for _, b := range boundaries {
		if b <= prev || b >= duration {
			continue
		}
		raw = append(raw, TimeRange{Start: prev, End: b})
		prev = b
	}
	raw = append(raw, TimeRange{Start: prev, End: duration})
	return raw
}

// Segmenter merges short adjacent raw scenes into duration-bounded
// combined scenes.
type Segmenter struct {
	maxCombinedLength float64
}

// NewSegmenter creates a segmenter with the given combined-scene cap
func NewSegmenter(maxCombinedSceneLength float64) *Segmenter {
	return &Segmenter{maxCombinedLength: maxCombinedSceneLength}
}

// Combine walks raw scenes in chronological order, appending each to
// the running combination while the total stays within the cap, and
// closing the combination otherwise. The merge is greedy and
// order-preserving: scenes combine only with their immediate successor.
// A single raw scene already over the cap becomes its own over-length
// combined scene; it is never split. Downstream duration filtering
// decides whether such a scene survives.
func (s *Segmenter) Combine(raw []TimeRange) []TimeRange {
	if len(raw) == 0 {
		return nil
	}

	combined := make([]TimeRange, 0, len(raw))
	running := raw[0]

	for _, next := range raw[1:] {
		if running.Duration()+next.Duration() <= s.maxCombinedLength {
			running.End = next.End
			continue
		}
		combined = append(combined, running)
		running = next
	}

	return append(combined, running)
}

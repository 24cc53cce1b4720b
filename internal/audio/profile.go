package audio

// ActionFrame is a single sample of the action profile. RMS, Flux and
// Score are normalized to [0,1].
type ActionFrame struct {
	Timestamp float64
	RMS       float64
	Flux      float64
	Score     float64
}

// ActionProfile is the per-hop action score time series for one video,
// ordered by timestamp and spanning the whole audio track. It is
// computed once per pipeline run and never mutated afterwards.
type ActionProfile []ActionFrame

// Weights of the normalized loudness and spectral-flux signals in the
// combined action score.
const (
	rmsWeight  = 0.6
	fluxWeight = 0.4
)

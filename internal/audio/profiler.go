package audio

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/artryazanov/shorts-maker/internal/config"
)

// DecodeError indicates the audio track of a video could not be read.
// It is fatal for that video: the caller skips it, no retries.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode audio %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Profiler turns an audio track into an ActionProfile. For a fixed
// input and fixed window/hop parameters the output is bit-reproducible.
type Profiler struct {
	logger    zerolog.Logger
	window    int
	hop       int
	smoothing int
}

// NewProfiler creates a profiler with the given analysis parameters
func NewProfiler(logger zerolog.Logger, cfg config.AudioConfig) *Profiler {
	return &Profiler{
		logger:    logger.With().Str("component", "action-profiler").Logger(),
		window:    cfg.WindowSize,
		hop:       cfg.HopSize,
		smoothing: cfg.SmoothingWindow,
	}
}

// ProfileWAV decodes a PCM WAV file and computes its action profile.
// An unreadable file yields a DecodeError; silent audio yields an
// all-zero profile.
func (p *Profiler) ProfileWAV(path string) (ActionProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("not a valid wav file")}
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	samples := monoSamples(buf.Data, buf.Format.NumChannels, int(dec.BitDepth))
	profile := p.Profile(samples, buf.Format.SampleRate)

	p.logger.Debug().
		Str("path", path).
		Int("samples", len(samples)).
		Int("frames", len(profile)).
		Msg("action profile computed")

	return profile, nil
}

// Profile computes the action profile of a mono signal in [-1,1].
// A zero-length signal produces an empty profile.
func (p *Profiler) Profile(samples []float64, sampleRate int) ActionProfile {
	if len(samples) == 0 || sampleRate <= 0 {
		return ActionProfile{}
	}

	frames := 1 + (len(samples)-1)/p.hop

	rms := make([]float64, frames)
	flux := make([]float64, frames)

	fft := fourier.NewFFT(p.window)
	window := make([]float64, p.window)
	prevMag := make([]float64, p.window/2+1)
	mag := make([]float64, p.window/2+1)

	for i := 0; i < frames; i++ {
		offset := i * p.hop

		// Zero-padded analysis window, truncated at end of signal.
		n := copy(window, samples[offset:min(offset+p.window, len(samples))])
		for j := n; j < p.window; j++ {
			window[j] = 0
		}

		var sum float64
		for j := 0; j < n; j++ {
			sum += window[j] * window[j]
		}
		if n > 0 {
			rms[i] = math.Sqrt(sum / float64(n))
		}

		// Spectral flux: half-rectified frame-to-frame magnitude change.
		coeffs := fft.Coefficients(nil, window)
		for k, c := range coeffs {
			mag[k] = cmplx.Abs(c)
		}
		if i > 0 {
			var d float64
			for k := range mag {
				if diff := mag[k] - prevMag[k]; diff > 0 {
					d += diff
				}
			}
			flux[i] = d
		}
		prevMag, mag = mag, prevMag
	}

	normalize(rms)
	normalize(flux)
	smooth(rms, p.smoothing)
	smooth(flux, p.smoothing)

	profile := make(ActionProfile, frames)
	for i := 0; i < frames; i++ {
		profile[i] = ActionFrame{
			Timestamp: float64(i*p.hop) / float64(sampleRate),
			RMS:       rms[i],
			Flux:      flux[i],
			Score:     rmsWeight*rms[i] + fluxWeight*flux[i],
		}
	}

	return profile
}

// monoSamples converts interleaved integer PCM to a mono float signal
// in [-1,1], averaging channels for stereo input.
func monoSamples(data []int, channels, bitDepth int) []float64 {
	if channels < 1 {
		channels = 1
	}
	if bitDepth <= 1 || bitDepth > 32 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	out := make([]float64, 0, len(data)/channels)
	for i := 0; i+channels <= len(data); i += channels {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i+c])
		}
		out = append(out, sum/float64(channels)/scale)
	}
	return out
}

// normalize rescales values in place to [0,1] using the signal's own
// min-max range. Zero variance normalizes to a constant 0.
func normalize(values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i := range values {
		values[i] = (values[i] - lo) / (hi - lo)
	}
}

// smooth applies a centered moving average of the given width in place
// to suppress single-frame spikes. Edges use a clamped window.
func smooth(values []float64, width int) {
	if width <= 1 || len(values) == 0 {
		return
	}
	half := width / 2
	src := make([]float64, len(values))
	copy(src, values)

	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(src) {
			hi = len(src) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += src[j]
		}
		values[i] = sum / float64(hi-lo+1)
	}
}

package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"github.com/artryazanov/shorts-maker/internal/config"
)

func testProfiler() *Profiler {
	return NewProfiler(zerolog.New(os.Stderr), config.AudioConfig{
		SampleRate:      16000,
		WindowSize:      2048,
		HopSize:         1024,
		SmoothingWindow: 5,
	})
}

// sine generates a test tone with the given amplitude
func sine(freq float64, amplitude float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestProfileValuesInRange(t *testing.T) {
	p := testProfiler()

	// Quiet tone followed by a loud noisy burst.
	samples := sine(440, 0.1, 2, 16000)
	burst := sine(440, 0.9, 1, 16000)
	for i := range burst {
		if i%2 == 0 {
			burst[i] = -burst[i]
		}
	}
	samples = append(samples, burst...)

	profile := p.Profile(samples, 16000)

	if len(profile) == 0 {
		t.Fatal("expected non-empty profile")
	}
	for i, frame := range profile {
		if frame.RMS < 0 || frame.RMS > 1 {
			t.Errorf("frame %d: rms %f outside [0,1]", i, frame.RMS)
		}
		if frame.Flux < 0 || frame.Flux > 1 {
			t.Errorf("frame %d: flux %f outside [0,1]", i, frame.Flux)
		}
		if frame.Score < 0 || frame.Score > 1 {
			t.Errorf("frame %d: score %f outside [0,1]", i, frame.Score)
		}
	}
}

func TestProfileTimestampsMonotonic(t *testing.T) {
	p := testProfiler()
	profile := p.Profile(sine(440, 0.5, 3, 16000), 16000)

	for i := 1; i < len(profile); i++ {
		if profile[i].Timestamp <= profile[i-1].Timestamp {
			t.Fatalf("timestamps not increasing at frame %d", i)
		}
	}
	expectedHop := 1024.0 / 16000.0
	if math.Abs(profile[1].Timestamp-profile[0].Timestamp-expectedHop) > 1e-9 {
		t.Errorf("unexpected hop interval %f", profile[1].Timestamp-profile[0].Timestamp)
	}
}

func TestProfileSilenceIsAllZero(t *testing.T) {
	p := testProfiler()
	profile := p.Profile(make([]float64, 16000*2), 16000)

	if len(profile) == 0 {
		t.Fatal("silence must still produce a profile")
	}
	for i, frame := range profile {
		if frame.RMS != 0 || frame.Flux != 0 || frame.Score != 0 {
			t.Errorf("frame %d of silent track not zero: %+v", i, frame)
		}
	}
}

func TestProfileEmptySignal(t *testing.T) {
	p := testProfiler()

	if got := p.Profile(nil, 16000); len(got) != 0 {
		t.Errorf("expected empty profile for empty signal, got %d frames", len(got))
	}
}

func TestProfileLoudSectionScoresHigher(t *testing.T) {
	p := testProfiler()

	quiet := sine(440, 0.05, 2, 16000)
	loud := sine(440, 0.95, 2, 16000)
	profile := p.Profile(append(quiet, loud...), 16000)

	var quietSum, loudSum float64
	var quietN, loudN int
	for _, frame := range profile {
		if frame.Timestamp < 1.5 {
			quietSum += frame.Score
			quietN++
		} else if frame.Timestamp > 2.5 {
			loudSum += frame.Score
			loudN++
		}
	}
	if quietN == 0 || loudN == 0 {
		t.Fatal("profile does not span both sections")
	}
	if loudSum/float64(loudN) <= quietSum/float64(quietN) {
		t.Errorf("loud section must out-score quiet section: %f vs %f",
			loudSum/float64(loudN), quietSum/float64(quietN))
	}
}

func TestProfileDeterministic(t *testing.T) {
	p := testProfiler()
	samples := sine(330, 0.7, 2, 16000)

	first := p.Profile(samples, 16000)
	second := p.Profile(samples, 16000)

	if !reflect.DeepEqual(first, second) {
		t.Error("profile is not bit-reproducible")
	}
}

func writeTestWAV(t *testing.T, path string, samples []float64, sampleRate int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav: %v", err)
	}
	defer f.Close()

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close wav: %v", err)
	}
}

func TestProfileWAV(t *testing.T) {
	p := testProfiler()
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, sine(440, 0.5, 2, 16000), 16000)

	profile, err := p.ProfileWAV(path)
	if err != nil {
		t.Fatalf("ProfileWAV failed: %v", err)
	}
	if len(profile) == 0 {
		t.Fatal("expected non-empty profile")
	}
	last := profile[len(profile)-1]
	if last.Timestamp >= 2.0 || last.Timestamp < 1.8 {
		t.Errorf("last frame timestamp %f does not match 2s track", last.Timestamp)
	}
}

func TestProfileWAVDecodeError(t *testing.T) {
	p := testProfiler()

	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("not a wav at all"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := p.ProfileWAV(path)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for garbage input, got %T: %v", err, err)
	}

	_, err = p.ProfileWAV(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for missing file, got %T: %v", err, err)
	}
}

func TestMonoSamplesDownmix(t *testing.T) {
	// Stereo pairs average to mono.
	data := []int{16384, -16384, 32767, 32767}
	mono := monoSamples(data, 2, 16)

	if len(mono) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(mono))
	}
	if math.Abs(mono[0]) > 1e-9 {
		t.Errorf("opposite channels must cancel, got %f", mono[0])
	}
	if mono[1] < 0.99 || mono[1] > 1.01 {
		t.Errorf("full-scale pair must stay near 1, got %f", mono[1])
	}
}

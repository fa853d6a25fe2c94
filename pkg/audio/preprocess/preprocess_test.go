package preprocess

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voxauth/voxauth/pkg/audio/wav"
)

func newTestProcessor(opts Options) *Processor {
	return New(opts, zerolog.Nop())
}

// sine generates a mono sine wave at the given frequency and amplitude.
func sine(freq float64, amp float64, rate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

// rmsDiff reports the RMS of the elementwise difference between a and b.
func rmsDiff(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a)))
}

func TestRemoveDCOffset(t *testing.T) {
	samples := sine(440, 0.5, 16000, 16000)
	for i := range samples {
		samples[i] += 0.25
	}

	out := removeDCOffset(samples)

	var sum float64
	for _, s := range out {
		sum += float64(s)
	}
	mean := sum / float64(len(out))
	if math.Abs(mean) > 1e-4 {
		t.Errorf("mean after DC removal = %v, want ~0", mean)
	}
}

func TestPreEmphasis(t *testing.T) {
	in := []float32{1, 1, 1, 1}
	out := preEmphasis(in, 0.97)

	if out[0] != 1 {
		t.Errorf("y[0] = %v, want x[0] = 1", out[0])
	}
	for i := 1; i < len(out); i++ {
		want := in[i] - 0.97*in[i-1]
		if math.Abs(float64(out[i]-want)) > 1e-6 {
			t.Errorf("y[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestNormalizePeak(t *testing.T) {
	samples := sine(440, 0.3, 16000, 1600)
	out, ok := normalizePeak(samples, 0.9)
	if !ok {
		t.Fatal("normalization skipped for non-silent signal")
	}

	var peak float64
	for _, s := range out {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-0.9) > 0.01 {
		t.Errorf("peak after normalization = %v, want 0.9", peak)
	}
}

func TestNormalizePeakSilentSkips(t *testing.T) {
	silent := make([]float32, 1600)
	out, ok := normalizePeak(silent, 0.9)
	if ok {
		t.Error("normalization applied to silent signal")
	}
	for _, s := range out {
		if s != 0 {
			t.Fatal("silent signal was modified")
		}
	}
}

func TestTrimSilence(t *testing.T) {
	const rate = 16000
	lead := make([]float32, rate)  // 1s silence
	voice := sine(300, 0.8, rate, rate)
	tail := make([]float32, rate) // 1s silence

	samples := append(append(lead, voice...), tail...)
	trimmed, err := trimSilence(samples, 20)
	if err != nil {
		t.Fatal(err)
	}

	if len(trimmed) >= len(samples) {
		t.Fatalf("nothing trimmed: %d -> %d samples", len(samples), len(trimmed))
	}
	// The voiced second must survive; frame granularity allows slack of
	// one frame on each side.
	if len(trimmed) < rate-trimFrameLength || len(trimmed) > rate+2*trimFrameLength {
		t.Errorf("trimmed length = %d samples, want ~%d", len(trimmed), rate)
	}
}

func TestTrimSilenceQuietClipUntouched(t *testing.T) {
	samples := make([]float32, 16000)
	trimmed, err := trimSilence(samples, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(trimmed) != len(samples) {
		t.Errorf("silent clip was trimmed to %d samples", len(trimmed))
	}
}

func TestTrimSilenceTooShort(t *testing.T) {
	if _, err := trimSilence(make([]float32, 100), 20); err == nil {
		t.Error("expected error for clip shorter than one frame")
	}
}

func TestSpectralGateReducesNoise(t *testing.T) {
	const rate = 16000
	// Tone plus broadband noise-ish content: a weak high-frequency dither
	// approximated by a second, much quieter tone spread across the clip.
	clean := sine(300, 0.6, rate, 2*rate)
	noisy := make([]float32, len(clean))
	noise := sine(6700, 0.05, rate, len(clean))
	for i := range noisy {
		noisy[i] = clean[i] + noise[i]
	}

	out, err := spectralGate(noisy, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(noisy) {
		t.Fatalf("length changed: %d -> %d", len(noisy), len(out))
	}

	// The gated signal should deviate less from the clean tone than the
	// noisy input does.
	if e1, e0 := rmsDiff(out, clean), rmsDiff(noisy, clean); e1 >= e0 {
		t.Errorf("gate did not reduce noise: err %v -> %v", e0, e1)
	}
}

func TestSpectralGateZeroStrengthIsNoop(t *testing.T) {
	samples := sine(440, 0.5, 16000, 16000)
	out, err := spectralGate(samples, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range samples {
		if out[i] != samples[i] {
			t.Fatal("strength 0 modified the signal")
		}
	}
}

func TestSpectralGateTooShort(t *testing.T) {
	if _, err := spectralGate(make([]float32, 256), 0.8); err == nil {
		t.Error("expected error for clip shorter than one frame")
	}
}

func TestPreprocessPipeline(t *testing.T) {
	const rate = 16000
	lead := make([]float32, rate/2)
	voice := sine(250, 0.4, rate, 3*rate)
	samples := append(lead, voice...)
	for i := range samples {
		samples[i] += 0.1 // DC offset
	}

	p := newTestProcessor(DefaultOptions())
	out, outRate := p.Preprocess(samples, rate)

	if outRate != DefaultTargetRate {
		t.Errorf("output rate = %d, want %d", outRate, DefaultTargetRate)
	}
	if len(out) == 0 {
		t.Fatal("pipeline produced empty output")
	}

	var peak, sum float64
	for _, s := range out {
		f := float64(s)
		sum += f
		if a := math.Abs(f); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-0.9) > 0.02 {
		t.Errorf("peak = %v, want ~0.9 (normalized)", peak)
	}
	if mean := sum / float64(len(out)); math.Abs(mean) > 0.05 {
		t.Errorf("mean = %v, want ~0 (DC removed)", mean)
	}
}

func TestPreprocessFileMissing(t *testing.T) {
	p := newTestProcessor(DefaultOptions())
	if _, _, err := p.PreprocessFile(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("expected load error for missing file")
	}
}

func TestSaveCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "clip.wav")
	samples := sine(440, 0.5, 16000, 1600)

	if err := Save(samples, 16000, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	clip, err := wav.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != 16000 || len(clip.Samples) != 1600 {
		t.Errorf("saved clip = %d samples @ %dHz, want 1600 @ 16000Hz",
			len(clip.Samples), clip.SampleRate)
	}
}

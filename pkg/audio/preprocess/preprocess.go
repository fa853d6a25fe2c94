// Package preprocess turns an arbitrary uploaded recording into a clean
// 16kHz mono waveform suitable for signature extraction.
//
// # Pipeline
//
// Preprocess runs a fixed ordered sequence of steps:
//
//  1. Load + resample to the target rate, downmix to mono (mandatory)
//  2. DC offset removal (mandatory)
//  3. Spectral-gating noise reduction (optional, on by default)
//  4. Leading/trailing silence trim (optional, on by default)
//  5. Pre-emphasis filter (optional, off by default)
//  6. Peak normalization (optional, on by default)
//
// The optional enhancement steps are non-fatal: when one fails it logs a
// warning and passes its input through unchanged. Only loading can abort
// the pipeline.
//
// Validate checks a file against hard limits (existence, size, duration,
// silence) and reports RMS energy and zero-crossing rate as advisory
// diagnostics that warn but never reject.
package preprocess

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/voxauth/voxauth/pkg/audio/wav"
)

// DefaultTargetRate is the sample rate signature extractors expect.
const DefaultTargetRate = 16000

// ErrLoad wraps failures to read or decode an input file. These are fatal;
// the pipeline cannot proceed without a waveform.
var ErrLoad = errors.New("preprocess: audio load failed")

// Options control the optional pipeline steps. The zero value is not
// useful; start from DefaultOptions.
type Options struct {
	// TargetRate is the output sample rate in Hz.
	TargetRate int

	// NoiseReduction enables stationary spectral-gating noise suppression.
	NoiseReduction bool

	// NoiseStrength is the suppression strength in [0, 1].
	// 0 leaves the signal untouched, 1 applies the full spectral gate.
	NoiseStrength float64

	// TrimSilence enables leading/trailing silence removal.
	TrimSilence bool

	// TopDB is the threshold below peak (in dB) under which frames count
	// as silence for trimming.
	TopDB float64

	// PreEmphasis enables the first-order high-frequency boost
	// y[i] = x[i] - coef*x[i-1].
	PreEmphasis bool

	// PreEmphasisCoef is the pre-emphasis coefficient (typically 0.95-0.97).
	PreEmphasisCoef float64

	// Normalize enables peak normalization.
	Normalize bool

	// TargetLevel is the peak level normalization scales to.
	TargetLevel float64
}

// DefaultOptions returns the standard pipeline configuration.
func DefaultOptions() Options {
	return Options{
		TargetRate:      DefaultTargetRate,
		NoiseReduction:  true,
		NoiseStrength:   0.8,
		TrimSilence:     true,
		TopDB:           20,
		PreEmphasis:     false,
		PreEmphasisCoef: 0.97,
		Normalize:       true,
		TargetLevel:     0.9,
	}
}

// Processor runs the preprocessing pipeline. It holds no per-call state
// and is safe for concurrent use.
type Processor struct {
	opts Options
	log  zerolog.Logger
}

// New creates a Processor. Zero or negative option values fall back to
// their defaults so a partially filled Options struct stays usable.
func New(opts Options, log zerolog.Logger) *Processor {
	def := DefaultOptions()
	if opts.TargetRate <= 0 {
		opts.TargetRate = def.TargetRate
	}
	if opts.NoiseStrength <= 0 || opts.NoiseStrength > 1 {
		opts.NoiseStrength = def.NoiseStrength
	}
	if opts.TopDB <= 0 {
		opts.TopDB = def.TopDB
	}
	if opts.PreEmphasisCoef <= 0 || opts.PreEmphasisCoef >= 1 {
		opts.PreEmphasisCoef = def.PreEmphasisCoef
	}
	if opts.TargetLevel <= 0 || opts.TargetLevel > 1 {
		opts.TargetLevel = def.TargetLevel
	}
	return &Processor{opts: opts, log: log}
}

// Options returns the processor's effective configuration.
func (p *Processor) Options() Options { return p.opts }

// PreprocessFile loads path and runs the full pipeline.
// Returns the processed mono waveform and its sample rate.
func (p *Processor) PreprocessFile(path string) ([]float32, int, error) {
	samples, rate, err := p.load(path)
	if err != nil {
		return nil, 0, err
	}
	out, outRate := p.Preprocess(samples, rate)
	return out, outRate, nil
}

// Preprocess runs steps 2-6 on an already loaded mono waveform,
// resampling first if rate differs from the target rate.
func (p *Processor) Preprocess(samples []float32, rate int) ([]float32, int) {
	if rate != p.opts.TargetRate {
		resampled, err := resample(samples, rate, p.opts.TargetRate)
		if err != nil {
			// Resampling is part of the mandatory load step, but when the
			// caller hands us a raw waveform the extractor rate contract is
			// still better served by degraded audio than by none.
			p.log.Warn().Err(err).Int("from", rate).Int("to", p.opts.TargetRate).
				Msg("resample failed, keeping source rate")
		} else {
			samples = resampled
			rate = p.opts.TargetRate
		}
	}

	samples = removeDCOffset(samples)

	if p.opts.NoiseReduction {
		reduced, err := spectralGate(samples, p.opts.NoiseStrength)
		if err != nil {
			p.log.Warn().Err(err).Msg("noise reduction failed, using original audio")
		} else {
			samples = reduced
		}
	}

	if p.opts.TrimSilence {
		trimmed, err := trimSilence(samples, p.opts.TopDB)
		if err != nil {
			p.log.Warn().Err(err).Msg("silence trimming failed, using untrimmed audio")
		} else {
			removed := float64(len(samples)-len(trimmed)) / float64(rate)
			p.log.Debug().Float64("removed_sec", removed).Msg("silence trimmed")
			samples = trimmed
		}
	}

	if p.opts.PreEmphasis {
		samples = preEmphasis(samples, p.opts.PreEmphasisCoef)
	}

	if p.opts.Normalize {
		normalized, ok := normalizePeak(samples, p.opts.TargetLevel)
		if !ok {
			p.log.Warn().Msg("audio is silent, skipping normalization")
		} else {
			samples = normalized
		}
	}

	return samples, rate
}

// decodeMono reads a WAV file and downmixes to mono at its native rate.
func (p *Processor) decodeMono(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	clip, err := wav.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return clip.Mono(), clip.SampleRate, nil
}

// load decodes a WAV file, downmixes to mono, and resamples to the
// target rate.
func (p *Processor) load(path string) ([]float32, int, error) {
	samples, rate, err := p.decodeMono(path)
	if err != nil {
		return nil, 0, err
	}
	if rate != p.opts.TargetRate {
		samples, err = resample(samples, rate, p.opts.TargetRate)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: resample %dHz to %dHz: %v", ErrLoad, rate, p.opts.TargetRate, err)
		}
		rate = p.opts.TargetRate
	}
	return samples, rate, nil
}

// Save writes a processed waveform as 16-bit PCM WAV, creating parent
// directories as needed.
func Save(samples []float32, sampleRate int, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("preprocess: save %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preprocess: save %s: %w", path, err)
	}
	if err := wav.Encode(f, samples, sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("preprocess: save %s: %w", path, err)
	}
	return f.Close()
}

// removeDCOffset centers the waveform around zero by subtracting the mean.
func removeDCOffset(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := float32(sum / float64(len(samples)))
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s - mean
	}
	return out
}

// preEmphasis applies y[0]=x[0]; y[i] = x[i] - coef*x[i-1].
func preEmphasis(samples []float32, coef float64) []float32 {
	if len(samples) == 0 {
		return samples
	}
	out := make([]float32, len(samples))
	out[0] = samples[0]
	c := float32(coef)
	for i := 1; i < len(samples); i++ {
		out[i] = samples[i] - c*samples[i-1]
	}
	return out
}

// normalizePeak scales the waveform so its peak equals targetLevel.
// Returns ok=false when the signal is (near) silent, in which case the
// input is returned unscaled rather than dividing by zero.
func normalizePeak(samples []float32, targetLevel float64) ([]float32, bool) {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak < 1e-8 {
		return samples, false
	}
	factor := float32(targetLevel) / peak
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s * factor
	}
	return out, true
}

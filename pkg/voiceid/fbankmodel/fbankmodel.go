// Package fbankmodel provides a deterministic signature extractor built
// from log-mel filterbank statistics.
//
// It is NOT a speaker verification network: the signatures capture
// spectral texture, not speaker identity, and match quality is far below
// a trained embedding model. Its purpose is to give the CLI, the server,
// and tests a real [voiceid.Model] implementation with no inference
// runtime attached — extraction is pure Go and fully reproducible.
//
// Production deployments should wire an ONNX/NCNN speaker model behind
// the same interface.
package fbankmodel

import (
	"errors"
	"fmt"
	"math"

	"github.com/voxauth/voxauth/pkg/voiceid"
)

// Dimension of produced signatures, matching the usual ECAPA-TDNN
// embedding size so downstream storage is drop-in compatible.
const Dimension = 192

// ErrTooShort is returned when the waveform is shorter than the minimum
// needed for a meaningful statistic (two analysis frames).
var ErrTooShort = errors.New("fbankmodel: audio too short for extraction")

// Config controls the filterbank analysis.
type Config struct {
	SampleRate  int     // expected input rate (default 16000)
	NumMels     int     // mel channels; must be Dimension/3 (default 64)
	FrameLength int     // samples per frame (default 400 = 25ms @ 16kHz)
	FrameShift  int     // samples per hop (default 160 = 10ms @ 16kHz)
	EnergyFloor float64 // floor for log energies (default 1e-10)
}

// DefaultConfig returns the standard 16kHz analysis configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:  16000,
		NumMels:     Dimension / 3,
		FrameLength: 400,
		FrameShift:  160,
		EnergyFloor: 1e-10,
	}
}

// Model implements [voiceid.Model]. It is stateless after construction
// and safe for concurrent use.
type Model struct {
	cfg        Config
	window     []float64
	filterbank [][]float64
}

// New creates a Model with the given configuration. Zero-value fields
// fall back to defaults.
func New(cfg Config) *Model {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.NumMels <= 0 {
		cfg.NumMels = def.NumMels
	}
	if cfg.FrameLength <= 0 {
		cfg.FrameLength = def.FrameLength
	}
	if cfg.FrameShift <= 0 {
		cfg.FrameShift = def.FrameShift
	}
	if cfg.EnergyFloor <= 0 {
		cfg.EnergyFloor = def.EnergyFloor
	}
	fftSize := nextPow2(cfg.FrameLength)
	return &Model{
		cfg:        cfg,
		window:     hammingWindow(cfg.FrameLength),
		filterbank: melFilterbank(cfg.NumMels, fftSize, cfg.SampleRate),
	}
}

// Extract computes a signature from a mono waveform.
//
// The signature folds the per-channel log-mel statistics into a fixed
// vector: mean, standard deviation, and mean frame-to-frame delta for
// each mel channel, L2-normalized. Three stats × NumMels channels =
// Dimension.
func (m *Model) Extract(samples []float32, sampleRate int) (voiceid.Signature, error) {
	if sampleRate != m.cfg.SampleRate {
		return nil, fmt.Errorf("fbankmodel: expected %dHz input, got %dHz", m.cfg.SampleRate, sampleRate)
	}
	frames := m.fbank(samples)
	if len(frames) < 2 {
		return nil, ErrTooShort
	}

	nMels := m.cfg.NumMels
	sig := make(voiceid.Signature, 3*nMels)

	for mel := 0; mel < nMels; mel++ {
		var sum float64
		for _, f := range frames {
			sum += f[mel]
		}
		mean := sum / float64(len(frames))

		var variance, delta float64
		for i, f := range frames {
			d := f[mel] - mean
			variance += d * d
			if i > 0 {
				delta += math.Abs(f[mel] - frames[i-1][mel])
			}
		}
		variance /= float64(len(frames))
		delta /= float64(len(frames) - 1)

		sig[mel] = float32(mean)
		sig[nMels+mel] = float32(math.Sqrt(variance))
		sig[2*nMels+mel] = float32(delta)
	}

	l2Normalize(sig)
	return sig, nil
}

// Dimension returns the signature length.
func (m *Model) Dimension() int { return 3 * m.cfg.NumMels }

// Close is a no-op; the model holds no external resources.
func (m *Model) Close() error { return nil }

// l2Normalize scales the vector to unit length in place.
// A zero vector is left unchanged.
func l2Normalize(v voiceid.Signature) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	scale := float32(1.0 / norm)
	for i := range v {
		v[i] *= scale
	}
}

var _ voiceid.Model = (*Model)(nil)

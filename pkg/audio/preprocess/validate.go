package preprocess

import (
	"fmt"
	"math"
	"os"
)

// Hard limits for uploaded audio.
const (
	// MaxFileSize is the largest accepted input file (16 MiB).
	MaxFileSize = 16 << 20

	// silenceFloor is the absolute peak amplitude below which a clip is
	// considered silent and rejected.
	silenceFloor = 0.001

	// lowEnergyFloor and lowZCRFloor trigger diagnostic warnings only.
	// A false rejection here is costlier than passing borderline audio
	// on to the decision engine.
	lowEnergyFloor = 0.01
	lowZCRFloor    = 0.01
)

// Reason codes for validation failures.
type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonTooLarge   Reason = "too_large"
	ReasonUnreadable Reason = "unreadable"
	ReasonTooShort   Reason = "too_short"
	ReasonTooLong    Reason = "too_long"
	ReasonSilent     Reason = "silent"
)

// ValidationResult is the structured outcome of Validate. A failed
// validation is a value, not an error: the boundary layer renders it
// directly.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason Reason `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`

	// Diagnostics, populated when the file could be decoded.
	Duration         float64  `json:"duration,omitempty"`
	SampleRate       int      `json:"sample_rate,omitempty"`
	NumSamples       int      `json:"num_samples,omitempty"`
	Energy           float64  `json:"energy,omitempty"`
	ZeroCrossingRate float64  `json:"zero_crossing_rate,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

func invalid(reason Reason, format string, args ...any) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Validate checks an audio file against the hard limits. Duration bounds
// are inclusive: a clip exactly minDuration or maxDuration seconds long
// passes. Low RMS energy and low zero-crossing rate produce warnings,
// never rejections.
func (p *Processor) Validate(path string, minDuration, maxDuration float64) ValidationResult {
	info, err := os.Stat(path)
	if err != nil {
		return invalid(ReasonMissing, "audio file not found: %s", path)
	}
	if info.Size() > MaxFileSize {
		return invalid(ReasonTooLarge, "file too large (%.1fMB), max %dMB",
			float64(info.Size())/(1<<20), MaxFileSize>>20)
	}

	// Measure at the native rate. Resampling comes with a filter delay
	// that can shave a few samples off the tail, which must not push an
	// exact boundary-length clip out of bounds.
	samples, rate, err := p.decodeMono(path)
	if err != nil {
		return invalid(ReasonUnreadable, "cannot decode audio: %v", err)
	}

	duration := float64(len(samples)) / float64(rate)
	if duration < minDuration {
		r := invalid(ReasonTooShort, "audio too short (%.1fs), minimum %.1fs", duration, minDuration)
		r.Duration = duration
		return r
	}
	if duration > maxDuration {
		r := invalid(ReasonTooLong, "audio too long (%.1fs), maximum %.1fs", duration, maxDuration)
		r.Duration = duration
		return r
	}

	peak := 0.0
	var sumSq float64
	for _, s := range samples {
		f := float64(s)
		if a := math.Abs(f); a > peak {
			peak = a
		}
		sumSq += f * f
	}
	if peak < silenceFloor {
		return invalid(ReasonSilent, "audio appears to be silent or too quiet")
	}

	rms := math.Sqrt(sumSq / float64(len(samples)))
	zcr := zeroCrossingRate(samples)

	result := ValidationResult{
		Valid:            true,
		Duration:         duration,
		SampleRate:       rate,
		NumSamples:       len(samples),
		Energy:           rms,
		ZeroCrossingRate: zcr,
	}
	if rms < lowEnergyFloor {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("very low audio energy (%.4f); may be silence or background noise only", rms))
	}
	if zcr < lowZCRFloor {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("very low zero-crossing rate (%.4f); audio may not contain clear speech", zcr))
	}
	for _, w := range result.Warnings {
		p.log.Warn().Str("file", path).Msg(w)
	}
	return result
}

// zeroCrossingRate counts sign changes per sample.
func zeroCrossingRate(samples []float32) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	prev := sign(samples[0])
	for _, s := range samples[1:] {
		cur := sign(s)
		if cur != prev && cur != 0 && prev != 0 {
			crossings++
		}
		if cur != 0 {
			prev = cur
		}
	}
	return float64(crossings) / float64(len(samples))
}

func sign(s float32) int {
	switch {
	case s > 0:
		return 1
	case s < 0:
		return -1
	default:
		return 0
	}
}

package preprocess

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// resample converts a mono waveform from srcRate to dstRate using the
// pure Go soxr-style resampler (no CGO dependencies).
func resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate == dstRate {
		return samples, nil
	}
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", srcRate, dstRate)
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s)
	}
	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	out := make([]float32, len(output))
	for i, s := range output {
		out[i] = float32(s)
	}
	return out, nil
}

package preprocess

import "math"

// Frame geometry for the trim energy envelope. Matches the usual analysis
// defaults for 16kHz speech (128ms frames, 32ms hop).
const (
	trimFrameLength = 2048
	trimHopLength   = 512
)

// trimSilence removes leading and trailing frames whose RMS energy sits
// more than topDB below the loudest frame.
//
// The whole clip being below the threshold is not an error: a uniformly
// quiet clip is returned unchanged so the caller's validation (not the
// trimmer) decides whether it is usable.
func trimSilence(samples []float32, topDB float64) ([]float32, error) {
	if len(samples) < trimFrameLength {
		return nil, errTooShort
	}

	numFrames := (len(samples)-trimFrameLength)/trimHopLength + 1
	rms := make([]float64, numFrames)
	peak := 0.0
	for t := 0; t < numFrames; t++ {
		start := t * trimHopLength
		var sum float64
		for i := 0; i < trimFrameLength; i++ {
			s := float64(samples[start+i])
			sum += s * s
		}
		rms[t] = math.Sqrt(sum / trimFrameLength)
		if rms[t] > peak {
			peak = rms[t]
		}
	}
	if peak <= 0 {
		return samples, nil
	}

	// A frame is "loud" when its level is within topDB of the peak frame.
	first, last := -1, -1
	for t := 0; t < numFrames; t++ {
		db := 20 * math.Log10(rms[t]/peak+1e-12)
		if db > -topDB {
			if first < 0 {
				first = t
			}
			last = t
		}
	}
	if first < 0 {
		return samples, nil
	}

	start := first * trimHopLength
	end := last*trimHopLength + trimFrameLength
	if end > len(samples) {
		end = len(samples)
	}
	return samples[start:end], nil
}

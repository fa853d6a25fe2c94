package preprocess

import (
	"errors"
	"math"
	"math/cmplx"
)

// errTooShort signals that a clip is shorter than one analysis window.
// Callers treat this as a non-fatal fallback, not an abort.
var errTooShort = errors.New("clip shorter than one analysis frame")

// spectralGate applies stationary spectral-gating noise reduction.
//
// Algorithm:
//  1. STFT the signal (Hann window, 512-point FFT, hop 128)
//  2. Estimate the noise spectrum from the quietest 20% of frames
//  3. Per bin, compute a subtraction gain against the noise estimate
//     with a soft floor to avoid musical noise artifacts
//  4. Blend the gain toward unity by (1 - strength), so strength=1 is
//     the full gate and strength=0 is a no-op
//  5. Reconstruct via overlap-add
//
// The quietest-frames estimate assumes stationary background noise; it
// deliberately does not track noise over time.
func spectralGate(samples []float32, strength float64) ([]float32, error) {
	const (
		fftSize       = 512
		hopSize       = 128
		halfFFT       = fftSize/2 + 1
		overSubtract  = 2.0  // oversubtraction factor (aggressiveness)
		spectralFloor = 0.02 // minimum gain to avoid musical noise
	)

	n := len(samples)
	if n < fftSize+hopSize {
		return nil, errTooShort
	}
	if strength <= 0 {
		return samples, nil
	}
	if strength > 1 {
		strength = 1
	}

	hann := make([]float64, fftSize)
	for i := range hann {
		hann[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/float64(fftSize)))
	}

	numFrames := (n-fftSize)/hopSize + 1

	// Phase 1: per-frame power spectra and energies for the noise estimate.
	type frameSpec struct {
		energy float64
		power  []float64
	}
	specs := make([]frameSpec, numFrames)
	for t := 0; t < numFrames; t++ {
		start := t * hopSize
		re := make([]float64, fftSize)
		im := make([]float64, fftSize)
		for i := 0; i < fftSize; i++ {
			re[i] = float64(samples[start+i]) * hann[i]
		}
		fftInPlace(re, im)
		pwr := make([]float64, halfFFT)
		energy := 0.0
		for i := 0; i < halfFFT; i++ {
			p := re[i]*re[i] + im[i]*im[i]
			pwr[i] = p
			energy += p
		}
		specs[t] = frameSpec{energy: energy, power: pwr}
	}

	energies := make([]float64, numFrames)
	for i, s := range specs {
		energies[i] = s.energy
	}
	threshold := percentile(energies, 20)

	noisePower := make([]float64, halfFFT)
	noiseCount := 0
	for _, s := range specs {
		if s.energy <= threshold {
			for i, p := range s.power {
				noisePower[i] += p
			}
			noiseCount++
		}
	}
	if noiseCount == 0 {
		return samples, nil
	}
	for i := range noisePower {
		noisePower[i] /= float64(noiseCount)
	}

	// Phase 2: spectral subtraction with phase preserved.
	output := make([]float64, n)
	winSum := make([]float64, n)

	for t := 0; t < numFrames; t++ {
		start := t * hopSize
		re := make([]float64, fftSize)
		im := make([]float64, fftSize)
		for i := 0; i < fftSize; i++ {
			re[i] = float64(samples[start+i]) * hann[i]
		}
		fftInPlace(re, im)

		for i := 0; i < halfFFT; i++ {
			c := complex(re[i], im[i])
			power := re[i]*re[i] + im[i]*im[i]
			cleanPower := power - overSubtract*noisePower[i]

			gain := spectralFloor
			if power > 1e-10 {
				g := math.Sqrt(math.Max(cleanPower, 0) / power)
				if g > spectralFloor {
					gain = g
				}
			}
			// Blend toward unity: strength controls how much of the gate
			// is applied, matching a prop-decrease style suppression knob.
			gain = 1 - strength*(1-gain)

			angle := cmplx.Phase(c)
			mag := cmplx.Abs(c) * gain
			cleaned := cmplx.Rect(mag, angle)
			re[i] = real(cleaned)
			im[i] = imag(cleaned)

			// Mirror for conjugate symmetry
			if i > 0 && i < halfFFT-1 {
				re[fftSize-i] = re[i]
				im[fftSize-i] = -im[i]
			}
		}

		ifftInPlace(re, im)

		for i := 0; i < fftSize; i++ {
			idx := start + i
			if idx < n {
				output[idx] += re[i] * hann[i]
				winSum[idx] += hann[i] * hann[i]
			}
		}
	}

	out := make([]float32, n)
	for i := range output {
		if winSum[i] > 1e-8 {
			output[i] /= winSum[i]
		} else {
			// Edges not covered by a full window keep the original sample.
			output[i] = float64(samples[i])
		}
		out[i] = float32(output[i])
	}
	return out, nil
}

// percentile returns the value at the given percentile (0-100) via a
// partial selection sort. Good enough for per-clip frame counts.
func percentile(data []float64, pct int) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	n := len(sorted)
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	for i := 0; i <= idx; i++ {
		minIdx := i
		for j := i + 1; j < n; j++ {
			if sorted[j] < sorted[minIdx] {
				minIdx = j
			}
		}
		sorted[i], sorted[minIdx] = sorted[minIdx], sorted[i]
	}
	return sorted[idx]
}

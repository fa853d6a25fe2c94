package fbankmodel

import "math"

// fbank extracts log mel filterbank features from a float32 waveform.
// Returns [numFrames][NumMels] log energies, or nil when the waveform is
// shorter than one frame.
func (m *Model) fbank(samples []float32) [][]float64 {
	n := len(samples)
	if n < m.cfg.FrameLength {
		return nil
	}
	numFrames := (n-m.cfg.FrameLength)/m.cfg.FrameShift + 1

	fftSize := nextPow2(m.cfg.FrameLength)
	halfFFT := fftSize/2 + 1

	result := make([][]float64, numFrames)
	fftBuf := make([]complex128, fftSize)

	for f := 0; f < numFrames; f++ {
		offset := f * m.cfg.FrameShift

		// Window and zero-pad to FFT size.
		for i := range fftBuf {
			fftBuf[i] = 0
		}
		for i := 0; i < m.cfg.FrameLength; i++ {
			fftBuf[i] = complex(float64(samples[offset+i])*m.window[i], 0)
		}

		fft(fftBuf)

		// Power spectrum: |X[k]|^2.
		powerSpec := make([]float64, halfFFT)
		for k := 0; k < halfFFT; k++ {
			r := real(fftBuf[k])
			im := imag(fftBuf[k])
			powerSpec[k] = r*r + im*im
		}

		frame := make([]float64, m.cfg.NumMels)
		for mel := 0; mel < m.cfg.NumMels; mel++ {
			var energy float64
			for k, w := range m.filterbank[mel] {
				energy += w * powerSpec[k]
			}
			if energy < m.cfg.EnergyFloor {
				energy = m.cfg.EnergyFloor
			}
			frame[mel] = math.Log(energy)
		}
		result[f] = frame
	}
	return result
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// hammingWindow computes a Hamming window of the given length.
func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// hzToMel converts frequency in Hz to mel scale.
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// melToHz converts mel scale to frequency in Hz.
func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterbank computes triangular mel filterbank weights.
// Returns [numMels][halfFFT] weights.
func melFilterbank(numMels, fftSize, sampleRate int) [][]float64 {
	halfFFT := fftSize/2 + 1

	melLow := hzToMel(0)
	melHigh := hzToMel(float64(sampleRate) / 2)

	melPoints := make([]float64, numMels+2)
	for i := range melPoints {
		melPoints[i] = melLow + float64(i)*(melHigh-melLow)/float64(numMels+1)
	}

	binIndices := make([]int, numMels+2)
	for i := range melPoints {
		hz := melToHz(melPoints[i])
		binIndices[i] = int(math.Floor(hz * float64(fftSize) / float64(sampleRate)))
		if binIndices[i] >= halfFFT {
			binIndices[i] = halfFFT - 1
		}
	}

	fb := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		fb[m] = make([]float64, halfFFT)
		left := binIndices[m]
		center := binIndices[m+1]
		right := binIndices[m+2]

		for k := left; k <= center; k++ {
			if center > left {
				fb[m][k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right; k++ {
			if right > center {
				fb[m][k] = float64(right-k) / float64(right-center)
			}
		}
	}
	return fb
}

// fft performs an in-place radix-2 Cooley-Tukey FFT.
// The buffer length must be a power of 2.
func fft(buf []complex128) {
	n := len(buf)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 0; i < n-1; i++ {
		if i < j {
			buf[i], buf[j] = buf[j], buf[i]
		}
		k := n >> 1
		for k <= j {
			j -= k
			k >>= 1
		}
		j += k
	}

	// Cooley-Tukey butterfly
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		angle := -2.0 * math.Pi / float64(size)
		w := complex(math.Cos(angle), math.Sin(angle))

		for start := 0; start < n; start += size {
			t := complex(1, 0)
			for k := 0; k < half; k++ {
				u := start + k
				v := u + half
				tmp := t * buf[v]
				buf[v] = buf[u] - tmp
				buf[u] += tmp
				t *= w
			}
		}
	}
}

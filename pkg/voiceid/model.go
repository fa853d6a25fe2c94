package voiceid

// Model extracts a voice signature from a waveform.
//
// The input is normalized mono float32 audio at 16kHz; callers must
// resample before extraction. The output vector length is constant and
// returned by Dimension().
//
// Typical implementations run a speaker verification network
// (e.g., ECAPA-TDNN, ResNet) producing a 192-dimensional embedding.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Multiple goroutines
// may call Extract simultaneously.
type Model interface {
	// Extract computes a signature from a mono waveform at the given
	// sample rate. Fails with an extraction error on malformed or
	// unsupported audio; such errors propagate to the caller unretried.
	Extract(samples []float32, sampleRate int) (Signature, error)

	// Dimension returns the length of the vectors produced by Extract.
	Dimension() int

	// Close releases any resources held by the model (e.g., an inference
	// session).
	Close() error
}

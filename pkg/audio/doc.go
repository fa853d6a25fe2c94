// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - wav: RIFF/WAVE decoding and 16-bit mono encoding
//   - preprocess: the cleanup pipeline applied to voice recordings
//     before signature extraction (resampling, noise reduction,
//     silence trimming, normalization) plus upload validation
package audio

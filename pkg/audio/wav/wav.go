// Package wav provides WAV (RIFF) container decoding and encoding.
//
// Decoding accepts 16-bit signed PCM and 32-bit IEEE float data, mono or
// stereo, at any sample rate, and yields normalized float32 samples in
// [-1, 1]. Encoding always writes 16-bit signed PCM, which keeps saved
// clips lossless relative to the int16 dynamic range the rest of the
// pipeline operates in.
//
// Only the chunks required for audio interchange are parsed (fmt, data);
// unknown chunks are skipped.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Format codes from the WAVE specification.
const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// Decode errors.
var (
	// ErrNotRIFF is returned when the input is not a RIFF/WAVE stream.
	ErrNotRIFF = errors.New("wav: not a RIFF/WAVE stream")

	// ErrUnsupported is returned for format codes, bit depths, or channel
	// layouts the decoder does not handle.
	ErrUnsupported = errors.New("wav: unsupported format")

	// ErrNoData is returned when the stream has no data chunk.
	ErrNoData = errors.New("wav: missing data chunk")
)

// Clip is decoded audio: interleaved normalized samples plus layout info.
type Clip struct {
	// Samples are interleaved float32 samples in [-1, 1].
	Samples []float32

	// SampleRate is the sample rate in Hz.
	SampleRate int

	// Channels is the channel count (1 or 2).
	Channels int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.Channels) / float64(c.SampleRate)
}

// Mono returns the clip downmixed to a single channel by averaging.
// A mono clip is returned as-is (no copy).
func (c *Clip) Mono() []float32 {
	if c.Channels <= 1 {
		return c.Samples
	}
	frames := len(c.Samples) / c.Channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < c.Channels; ch++ {
			sum += c.Samples[i*c.Channels+ch]
		}
		out[i] = sum / float32(c.Channels)
	}
	return out
}

// Decode reads a WAV stream and returns the decoded clip.
func Decode(r io.Reader) (*Clip, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("wav: read header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ErrNotRIFF
	}

	var (
		haveFmt    bool
		formatCode uint16
		channels   int
		rate       int
		bitDepth   int
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrNoData
			}
			return nil, fmt.Errorf("wav: read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk size %d", ErrUnsupported, size)
			}
			buf, err := readChunk(r, size)
			if err != nil {
				return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			formatCode = binary.LittleEndian.Uint16(buf[0:2])
			channels = int(binary.LittleEndian.Uint16(buf[2:4]))
			rate = int(binary.LittleEndian.Uint32(buf[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(buf[14:16]))
			// WAVE_FORMAT_EXTENSIBLE carries the real code in the extension.
			if formatCode == 0xFFFE && size >= 40 {
				formatCode = binary.LittleEndian.Uint16(buf[24:26])
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("%w: data chunk before fmt", ErrUnsupported)
			}
			data, err := readChunk(r, size)
			if err != nil {
				return nil, fmt.Errorf("wav: read data chunk: %w", err)
			}
			return decodeData(data, formatCode, channels, rate, bitDepth)

		default:
			// Skip unknown chunks (LIST, fact, cue, ...). Chunks are
			// word-aligned: odd sizes carry a pad byte.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("wav: skip %s chunk: %w", id, err)
			}
		}
	}
}

// readChunk reads exactly size bytes. The allocation grows with the
// bytes actually read rather than trusting the declared chunk size, so a
// truncated stream with a lying header cannot force a huge buffer.
func readChunk(r io.Reader, size uint32) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(size)))
	if err != nil {
		return nil, err
	}
	if uint32(len(buf)) != size {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}

func decodeData(data []byte, formatCode uint16, channels, rate, bitDepth int) (*Clip, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupported, channels)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrUnsupported, rate)
	}

	var samples []float32
	switch {
	case formatCode == formatPCM && bitDepth == 16:
		n := len(data) / 2
		samples = make([]float32, n)
		for i := 0; i < n; i++ {
			s := int16(data[2*i]) | int16(data[2*i+1])<<8
			samples[i] = float32(s) / 32768.0
		}
	case formatCode == formatIEEEFloat && bitDepth == 32:
		n := len(data) / 4
		samples = make([]float32, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(data[4*i:])
			samples[i] = math.Float32frombits(bits)
		}
	default:
		return nil, fmt.Errorf("%w: format code %d, %d-bit", ErrUnsupported, formatCode, bitDepth)
	}

	// Drop a trailing partial frame if the data chunk is truncated.
	if rem := len(samples) % channels; rem != 0 {
		samples = samples[:len(samples)-rem]
	}

	return &Clip{Samples: samples, SampleRate: rate, Channels: channels}, nil
}

// Encode writes mono float32 samples as a 16-bit PCM WAV stream.
// Samples outside [-1, 1] are clipped.
func Encode(w io.Writer, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}

	const (
		channels      = 1
		bitDepth      = 16
		bytesPerFrame = channels * bitDepth / 8
	)
	dataSize := len(samples) * bytesPerFrame

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], formatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], channels)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(sampleRate*bytesPerFrame))
	binary.LittleEndian.PutUint16(hdr[32:34], bytesPerFrame)
	binary.LittleEndian.PutUint16(hdr[34:36], bitDepth)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}

	buf := make([]byte, dataSize)
	for i, s := range samples {
		// Scale by 32768 to mirror Decode's divisor, round to nearest,
		// and clamp: +1.0 would overflow to 32768 otherwise.
		v := math.Round(float64(s) * 32768.0)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		n := int16(v)
		buf[2*i] = byte(n)
		buf[2*i+1] = byte(n >> 8)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("wav: write data: %w", err)
	}
	return nil
}

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 16000))
	}

	var buf bytes.Buffer
	if err := Encode(&buf, samples, 16000); err != nil {
		t.Fatal(err)
	}

	clip, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", clip.SampleRate)
	}
	if clip.Channels != 1 {
		t.Errorf("channels = %d, want 1", clip.Channels)
	}
	if len(clip.Samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(clip.Samples), len(samples))
	}
	// PCM16 quantization error is bounded by 1/32767.
	for i := range samples {
		if diff := math.Abs(float64(clip.Samples[i] - samples[i])); diff > 1.0/32000 {
			t.Fatalf("sample %d: got %v, want %v (diff %v)", i, clip.Samples[i], samples[i], diff)
		}
	}
}

func TestEncodeClipsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, []float32{2.0, -2.0}, 8000); err != nil {
		t.Fatal(err)
	}
	clip, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if clip.Samples[0] < 0.99 {
		t.Errorf("positive overdrive decoded as %v, want ~1.0", clip.Samples[0])
	}
	if clip.Samples[1] > -0.99 {
		t.Errorf("negative overdrive decoded as %v, want ~-1.0", clip.Samples[1])
	}
}

func TestDecodeStereoDownmix(t *testing.T) {
	// Hand-build a stereo PCM16 WAV: L=+0.5, R=-0.5 for every frame.
	clip := encodeStereo(t, 8000, 100, 0.5, -0.5)

	if clip.Channels != 2 {
		t.Fatalf("channels = %d, want 2", clip.Channels)
	}
	mono := clip.Mono()
	if len(mono) != 100 {
		t.Fatalf("mono length = %d, want 100", len(mono))
	}
	for i, s := range mono {
		if math.Abs(float64(s)) > 0.001 {
			t.Fatalf("frame %d: downmix = %v, want ~0", i, s)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a wav file")))
	if !errors.Is(err, ErrNotRIFF) {
		t.Errorf("err = %v, want ErrNotRIFF", err)
	}
}

func TestDecodeMissingData(t *testing.T) {
	// RIFF/WAVE header with a fmt chunk but no data chunk.
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(4+24))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], formatPCM)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 16000)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)
	buf.Write(fmtChunk)

	_, err := Decode(&buf)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	// LIST chunk between fmt and data must be skipped.
	var data bytes.Buffer
	binary.Write(&data, binary.LittleEndian, int16(16384)) // 0.5 in PCM16

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // size unused by decoder
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], formatPCM)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 16000)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)
	buf.Write(fmtChunk)

	buf.WriteString("LIST")
	binary.Write(&buf, binary.LittleEndian, uint32(5))
	buf.Write([]byte{'I', 'N', 'F', 'O', 0, 0}) // odd size + pad byte

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	clip, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(clip.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(clip.Samples))
	}
	if math.Abs(float64(clip.Samples[0])-0.5) > 0.001 {
		t.Errorf("sample = %v, want ~0.5", clip.Samples[0])
	}
}

func TestDecodeTruncatedDataChunk(t *testing.T) {
	// A chunk header declaring far more data than the stream holds must
	// fail on the short read, not allocate the declared size up front.
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], formatPCM)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 16000)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)
	buf.Write(fmtChunk)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFF0)) // ~4 GiB claimed
	buf.Write([]byte{1, 2, 3, 4})                               // 4 bytes present

	if _, err := Decode(&buf); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDecodeFloat32(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], formatIEEEFloat)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 44100)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 32)
	buf.Write(fmtChunk)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(8))
	binary.Write(&buf, binary.LittleEndian, float32(0.25))
	binary.Write(&buf, binary.LittleEndian, float32(-0.75))

	clip, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", clip.SampleRate)
	}
	if clip.Samples[0] != 0.25 || clip.Samples[1] != -0.75 {
		t.Errorf("samples = %v, want [0.25 -0.75]", clip.Samples)
	}
}

func TestDuration(t *testing.T) {
	c := &Clip{Samples: make([]float32, 32000), SampleRate: 16000, Channels: 2}
	if d := c.Duration(); math.Abs(d-1.0) > 1e-9 {
		t.Errorf("duration = %v, want 1.0", d)
	}
}

// encodeStereo builds a stereo PCM16 clip with constant L/R values.
func encodeStereo(t *testing.T, rate, frames int, left, right float64) *Clip {
	t.Helper()

	var data bytes.Buffer
	for i := 0; i < frames; i++ {
		binary.Write(&data, binary.LittleEndian, int16(left*32767))
		binary.Write(&data, binary.LittleEndian, int16(right*32767))
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], formatPCM)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 2)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], uint32(rate))
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)
	buf.Write(fmtChunk)
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	clip, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	return clip
}

// Package wavio reads and writes the engine's audio assets. Every asset
// is a 16-bit PCM WAV file; in memory the engine works on mono float64
// buffers in [-1, 1].
package wavio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrEmptyAudio is returned when a file decodes to zero samples.
	ErrEmptyAudio = errors.New("audio file contains no samples")

	// ErrInvalidFormat is returned for files the decoder cannot parse.
	ErrInvalidFormat = errors.New("invalid or unsupported audio format")
)

// Buffer is a decoded mono audio buffer.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer's play time.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Decode reads a WAV file into a mono Buffer. Multichannel input is
// mixed down by channel average.
func Decode(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Buffer{}, fmt.Errorf("%s: %w", path, ErrInvalidFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if pcm == nil || len(pcm.Data) == 0 {
		return Buffer{}, fmt.Errorf("%s: %w", path, ErrEmptyAudio)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := sampleScale(int(dec.BitDepth))

	frames := len(pcm.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm.Data[i*channels+ch])
		}
		samples[i] = sum / float64(channels) / scale
	}

	return Buffer{Samples: samples, SampleRate: pcm.Format.SampleRate}, nil
}

// Encode writes a mono Buffer as a 16-bit PCM WAV file. Samples are
// clamped to [-1, 1] before quantization.
func Encode(path string, buf Buffer) error {
	if len(buf.Samples) == 0 {
		return ErrEmptyAudio
	}
	if buf.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, buf.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(math.Round(Clamp(s) * 32767))
	}

	enc := wav.NewEncoder(f, buf.SampleRate, 16, 1, 1)
	pcm := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:   data,
	}
	if err := enc.Write(pcm); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close wav encoder %s: %w", path, err)
	}
	return f.Close()
}

// Duration probes a WAV file's play time without decoding sample data.
func Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%s: %w", path, ErrInvalidFormat)
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return d, nil
}

// Resample converts a buffer to the target rate by linear interpolation.
// Good enough for short speech assets; no anti-aliasing pass.
func Resample(buf Buffer, rate int) Buffer {
	if rate <= 0 || buf.SampleRate == rate || len(buf.Samples) == 0 {
		return Buffer{Samples: buf.Samples, SampleRate: rate}
	}

	ratio := float64(rate) / float64(buf.SampleRate)
	out := make([]float64, int(float64(len(buf.Samples))*ratio))
	for i := range out {
		pos := float64(i) / ratio
		idx := int(pos)
		if idx >= len(buf.Samples)-1 {
			out[i] = buf.Samples[len(buf.Samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = buf.Samples[idx]*(1-frac) + buf.Samples[idx+1]*frac
	}
	return Buffer{Samples: out, SampleRate: rate}
}

// Silence returns a zero-filled buffer of the given duration.
func Silence(d time.Duration, rate int) Buffer {
	n := int(d.Seconds() * float64(rate))
	if n < 1 {
		n = 1
	}
	return Buffer{Samples: make([]float64, n), SampleRate: rate}
}

// Clamp bounds a sample to the valid amplitude range.
func Clamp(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

func sampleScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 127
	case 24:
		return 8388607
	case 32:
		return 2147483647
	default:
		return 32767
	}
}

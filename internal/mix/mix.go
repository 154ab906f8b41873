// Package mix combines a foreground speech asset with a bed asset,
// ducking the bed while speech is present.
package mix

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurkit/murmur/internal/wavio"
)

// ErrUnreadableInput is returned when either input asset cannot be
// decoded. The caller is expected to fall back to the unmixed
// foreground asset.
var ErrUnreadableInput = errors.New("mix input could not be read")

// Options tunes the mix.
type Options struct {
	// BedGain is the bed level while no speech is present.
	BedGain float64
	// DuckGain is the bed level under active speech.
	DuckGain float64
	// SpeechGain scales the foreground.
	SpeechGain float64

	// SpeechThreshold is the absolute amplitude above which a sample
	// counts as speech.
	SpeechThreshold float64
	// MaskDilation extends the speech mask in both directions to avoid
	// rapid duck/restore chatter.
	MaskDilation time.Duration
	// GainSlewPerSecond bounds how fast the bed envelope may move.
	GainSlewPerSecond float64

	// EdgeFade is the foreground fade-in/out ramp.
	EdgeFade time.Duration
}

// DefaultOptions returns the standard ducking parameters.
func DefaultOptions() Options {
	return Options{
		BedGain:           0.85,
		DuckGain:          0.35,
		SpeechGain:        1.0,
		SpeechThreshold:   0.015,
		MaskDilation:      120 * time.Millisecond,
		GainSlewPerSecond: 4.0,
		EdgeFade:          10 * time.Millisecond,
	}
}

// minForeground guards against degenerate speech assets: anything
// shorter is padded with trailing silence before masking.
const minForeground = 250 * time.Millisecond

// Combine decodes both inputs fully, mixes them at the foreground's
// sample rate and writes the result to outPath.
func Combine(fgPath, bedPath, outPath string, opts Options) error {
	fg, err := wavio.Decode(fgPath)
	if err != nil {
		return fmt.Errorf("%w: foreground %s: %v", ErrUnreadableInput, fgPath, err)
	}
	bedBuf, err := wavio.Decode(bedPath)
	if err != nil {
		return fmt.Errorf("%w: bed %s: %v", ErrUnreadableInput, bedPath, err)
	}

	rate := fg.SampleRate
	bedBuf = wavio.Resample(bedBuf, rate)

	minFrames := int(minForeground.Seconds() * float64(rate))
	for len(fg.Samples) < minFrames {
		fg.Samples = append(fg.Samples, 0)
	}

	out := combineBuffers(fg.Samples, bedBuf.Samples, rate, opts)

	if err := wavio.Encode(outPath, wavio.Buffer{Samples: out, SampleRate: rate}); err != nil {
		return fmt.Errorf("write mix: %w", err)
	}
	log.Debug("mix: combined assets",
		"foreground", fgPath, "bed", bedPath, "out", outPath,
		"frames", len(out))
	return nil
}

func combineBuffers(fg, bed []float64, rate int, opts Options) []float64 {
	n := len(fg)
	if len(bed) > n {
		n = len(bed)
	}

	mask := speechMask(fg, opts.SpeechThreshold)
	dilate(mask, int(opts.MaskDilation.Seconds()*float64(rate)))

	fadeFrames := int(opts.EdgeFade.Seconds() * float64(rate))
	slewStep := opts.GainSlewPerSecond / float64(rate)

	out := make([]float64, n)
	env := opts.BedGain
	for i := 0; i < n; i++ {
		target := opts.BedGain
		if i < len(mask) && mask[i] {
			target = opts.DuckGain
		}
		env = slew(env, target, slewStep)

		var s float64
		if i < len(bed) {
			s += bed[i] * env
		}
		if i < len(fg) {
			s += fg[i] * opts.SpeechGain * edgeFade(i, len(fg), fadeFrames)
		}
		out[i] = wavio.Clamp(s)
	}
	return out
}

// speechMask thresholds the foreground's absolute amplitude.
func speechMask(fg []float64, threshold float64) []bool {
	mask := make([]bool, len(fg))
	for i, s := range fg {
		if s < 0 {
			s = -s
		}
		mask[i] = s >= threshold
	}
	return mask
}

// dilate extends true runs of the mask by radius frames in both
// directions.
func dilate(mask []bool, radius int) {
	if radius < 1 {
		return
	}
	// Forward pass extends each active sample to the right, the reverse
	// pass extends to the left.
	carry := 0
	for i := range mask {
		if mask[i] {
			carry = radius
		} else if carry > 0 {
			mask[i] = true
			carry--
		}
	}
	carry = 0
	for i := len(mask) - 1; i >= 0; i-- {
		if mask[i] {
			carry = radius
		} else if carry > 0 {
			mask[i] = true
			carry--
		}
	}
}

func slew(current, target, step float64) float64 {
	diff := target - current
	if diff > step {
		return current + step
	}
	if diff < -step {
		return current - step
	}
	return target
}

func edgeFade(i, total, fadeFrames int) float64 {
	if fadeFrames < 1 || total <= 2*fadeFrames {
		return 1
	}
	switch {
	case i < fadeFrames:
		return float64(i) / float64(fadeFrames)
	case i >= total-fadeFrames:
		return float64(total-i) / float64(fadeFrames)
	default:
		return 1
	}
}

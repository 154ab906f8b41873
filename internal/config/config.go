// Package config holds the engine configuration: defaults, viper
// loading, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/murmurkit/murmur/internal/bed"
	"github.com/murmurkit/murmur/internal/controller"
	"github.com/murmurkit/murmur/internal/mix"
	"github.com/murmurkit/murmur/internal/synth"
)

// Config is the full engine configuration.
type Config struct {
	Engine EngineConfig
	Voice  VoiceConfig
	Source SourceConfig
	Bed    BedConfig
	Mix    MixConfig
	Loop   LoopConfig
	Player PlayerConfig
}

// EngineConfig selects and configures the synthesis engine.
type EngineConfig struct {
	// Name is "exec" or "mock".
	Name string
	// Binary is the external synthesizer command for the exec engine.
	Binary string
	// Args are passed to the binary; placeholders {output}, {lang},
	// {voice}, {rate} and {pitch} are expanded per render.
	Args []string
}

// VoiceConfig is the initial voice for a session.
type VoiceConfig struct {
	Rate         float64
	Pitch        float64
	LanguageCode string
	VoiceID      string
}

// SourceConfig tunes the text source provider.
type SourceConfig struct {
	// Locale drives the case-insensitive filename sort. "und" uses the
	// Unicode default collation.
	Locale string
}

// BedConfig tunes the ambient bed generator.
type BedConfig struct {
	// Compose layers every rendered utterance over a bed.
	Compose          bool
	SampleRate       int
	NoiseGain        float64
	Smoothing        float64
	Overlays         bool
	PhraseDir        string
	PhraseGain       float64
	MinInterval      time.Duration
	MaxInterval      time.Duration
	MaxCacheVariants int
}

// MixConfig tunes the ducking mixer.
type MixConfig struct {
	BedGain         float64
	DuckGain        float64
	SpeechGain      float64
	SpeechThreshold float64
	MaskDilation    time.Duration
	EdgeFade        time.Duration
	GainSlew        float64
}

// LoopConfig tunes session scheduling.
type LoopConfig struct {
	Lookahead int
	// GapStyle is "silence" or "bed".
	GapStyle         string
	MinGap           time.Duration
	MaxGap           time.Duration
	TrailerLength    time.Duration
	LongGapThreshold time.Duration
	AutoResume       bool
}

// PlayerConfig tunes audio output.
type PlayerConfig struct {
	SampleRate int
	ScratchDir string
}

// DefaultConfig returns the standard configuration. Section defaults
// mirror the owning packages so the two never drift.
func DefaultConfig() Config {
	b := bed.DefaultConfig()
	m := mix.DefaultOptions()
	c := controller.DefaultConfig()

	return Config{
		Engine: EngineConfig{
			Name:   "exec",
			Binary: "espeak-ng",
			Args:   []string{"-w", "{output}", "--stdin"},
		},
		Voice: VoiceConfig{
			Rate:         1.0,
			Pitch:        1.0,
			LanguageCode: "en-US",
		},
		Source: SourceConfig{Locale: "und"},
		Bed: BedConfig{
			Compose:          false,
			SampleRate:       b.SampleRate,
			NoiseGain:        b.NoiseGain,
			Smoothing:        b.Smoothing,
			Overlays:         b.OverlaysEnabled,
			PhraseDir:        b.PhraseDir,
			PhraseGain:       b.PhraseGain,
			MinInterval:      b.MinInterval,
			MaxInterval:      b.MaxInterval,
			MaxCacheVariants: b.MaxCacheVariants,
		},
		Mix: MixConfig{
			BedGain:         m.BedGain,
			DuckGain:        m.DuckGain,
			SpeechGain:      m.SpeechGain,
			SpeechThreshold: m.SpeechThreshold,
			MaskDilation:    m.MaskDilation,
			EdgeFade:        m.EdgeFade,
			GainSlew:        m.GainSlewPerSecond,
		},
		Loop: LoopConfig{
			Lookahead:        c.Lookahead,
			GapStyle:         "silence",
			MinGap:           c.MinGap,
			MaxGap:           c.MaxGap,
			TrailerLength:    c.TrailerLength,
			LongGapThreshold: c.LongGapThreshold,
			AutoResume:       c.AutoResume,
		},
		Player: PlayerConfig{
			SampleRate: 44100,
			ScratchDir: filepath.Join(os.TempDir(), "murmur-scratch"),
		},
	}
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	switch c.Engine.Name {
	case "exec":
		if c.Engine.Binary == "" {
			return errors.New("engine.binary is required for the exec engine")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown engine %q", c.Engine.Name)
	}

	if c.Voice.Rate <= 0 {
		return fmt.Errorf("voice.rate must be positive, got %v", c.Voice.Rate)
	}
	if c.Voice.Pitch <= 0 {
		return fmt.Errorf("voice.pitch must be positive, got %v", c.Voice.Pitch)
	}

	if c.Bed.SampleRate <= 0 {
		return fmt.Errorf("bed.sample_rate must be positive, got %d", c.Bed.SampleRate)
	}
	if c.Bed.NoiseGain < 0 || c.Bed.NoiseGain > 1 {
		return fmt.Errorf("bed.noise_gain must be in [0, 1], got %v", c.Bed.NoiseGain)
	}

	if c.Mix.DuckGain > c.Mix.BedGain {
		return errors.New("mix.duck_gain must not exceed mix.bed_gain")
	}

	if c.Loop.Lookahead < 1 {
		return fmt.Errorf("loop.lookahead must be at least 1, got %d", c.Loop.Lookahead)
	}
	if c.Loop.GapStyle != "silence" && c.Loop.GapStyle != "bed" {
		return fmt.Errorf("loop.gap_style must be silence or bed, got %q", c.Loop.GapStyle)
	}

	if c.Player.SampleRate != 44100 && c.Player.SampleRate != 48000 {
		return fmt.Errorf("player.sample_rate must be 44100 or 48000, got %d", c.Player.SampleRate)
	}
	if c.Player.ScratchDir == "" {
		return errors.New("player.scratch_dir is required")
	}
	return nil
}

// SynthVoice converts the voice section.
func (c Config) SynthVoice() synth.Voice {
	return synth.Voice{
		Rate:         c.Voice.Rate,
		Pitch:        c.Voice.Pitch,
		LanguageCode: c.Voice.LanguageCode,
		VoiceID:      c.Voice.VoiceID,
	}
}

// BedGenerator converts the bed section.
func (c Config) BedGenerator() bed.Config {
	b := bed.DefaultConfig()
	b.SampleRate = c.Bed.SampleRate
	b.NoiseGain = c.Bed.NoiseGain
	b.Smoothing = c.Bed.Smoothing
	b.OverlaysEnabled = c.Bed.Overlays
	b.PhraseDir = c.Bed.PhraseDir
	b.PhraseGain = c.Bed.PhraseGain
	b.MinInterval = c.Bed.MinInterval
	b.MaxInterval = c.Bed.MaxInterval
	b.MaxCacheVariants = c.Bed.MaxCacheVariants
	return b
}

// MixOptions converts the mix section.
func (c Config) MixOptions() mix.Options {
	m := mix.DefaultOptions()
	m.BedGain = c.Mix.BedGain
	m.DuckGain = c.Mix.DuckGain
	m.SpeechGain = c.Mix.SpeechGain
	m.SpeechThreshold = c.Mix.SpeechThreshold
	m.MaskDilation = c.Mix.MaskDilation
	m.EdgeFade = c.Mix.EdgeFade
	m.GainSlewPerSecond = c.Mix.GainSlew
	return m
}

// ControllerConfig converts the loop and player sections.
func (c Config) ControllerConfig() controller.Config {
	cc := controller.DefaultConfig()
	cc.ScratchDir = c.Player.ScratchDir
	cc.Lookahead = c.Loop.Lookahead
	if c.Loop.GapStyle == "bed" {
		cc.GapStyle = controller.GapBed
	} else {
		cc.GapStyle = controller.GapSilence
	}
	cc.MinGap = c.Loop.MinGap
	cc.MaxGap = c.Loop.MaxGap
	cc.TrailerLength = c.Loop.TrailerLength
	cc.LongGapThreshold = c.Loop.LongGapThreshold
	cc.AutoResume = c.Loop.AutoResume
	cc.SilenceSampleRate = c.Player.SampleRate
	return cc
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/murmurkit/murmur/internal/controller"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default configuration must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown engine", func(c *Config) { c.Engine.Name = "carrier-pigeon" }},
		{"exec without binary", func(c *Config) { c.Engine.Name = "exec"; c.Engine.Binary = "" }},
		{"zero rate", func(c *Config) { c.Voice.Rate = 0 }},
		{"negative pitch", func(c *Config) { c.Voice.Pitch = -1 }},
		{"duck above bed gain", func(c *Config) { c.Mix.DuckGain = 0.9; c.Mix.BedGain = 0.5 }},
		{"zero lookahead", func(c *Config) { c.Loop.Lookahead = 0 }},
		{"bad gap style", func(c *Config) { c.Loop.GapStyle = "confetti" }},
		{"odd sample rate", func(c *Config) { c.Player.SampleRate = 12345 }},
		{"no scratch dir", func(c *Config) { c.Player.ScratchDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromViperOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("engine.name", "mock")
	viper.Set("voice.rate", 1.4)
	viper.Set("loop.gap_style", "bed")
	viper.Set("loop.min_gap", "7s")
	viper.Set("bed.noise_gain", 0.25)

	cfg, err := LoadFromViper()
	if err != nil {
		t.Fatalf("LoadFromViper failed: %v", err)
	}
	if cfg.Engine.Name != "mock" {
		t.Errorf("engine override lost: %s", cfg.Engine.Name)
	}
	if cfg.Voice.Rate != 1.4 {
		t.Errorf("voice.rate override lost: %v", cfg.Voice.Rate)
	}
	if cfg.Loop.GapStyle != "bed" {
		t.Errorf("gap style override lost: %s", cfg.Loop.GapStyle)
	}
	if cfg.Loop.MinGap != 7*time.Second {
		t.Errorf("min gap override lost: %v", cfg.Loop.MinGap)
	}
	if cfg.Bed.NoiseGain != 0.25 {
		t.Errorf("noise gain override lost: %v", cfg.Bed.NoiseGain)
	}
}

func TestLoadFromViperRejectsInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("loop.lookahead", 0)
	if _, err := LoadFromViper(); err == nil {
		t.Error("invalid viper values must fail loading")
	}
}

func TestSectionConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bed.SampleRate = 22050
	cfg.Mix.DuckGain = 0.2
	cfg.Loop.GapStyle = "bed"
	cfg.Player.ScratchDir = "/tmp/murmur-test-scratch"

	if got := cfg.BedGenerator().SampleRate; got != 22050 {
		t.Errorf("bed conversion lost sample rate: %d", got)
	}
	if got := cfg.MixOptions().DuckGain; got != 0.2 {
		t.Errorf("mix conversion lost duck gain: %v", got)
	}
	cc := cfg.ControllerConfig()
	if cc.ScratchDir != "/tmp/murmur-test-scratch" {
		t.Errorf("controller conversion lost scratch dir: %s", cc.ScratchDir)
	}
	if cc.GapStyle != controller.GapBed {
		t.Errorf("gap style conversion wrong: %v", cc.GapStyle)
	}
	v := cfg.SynthVoice()
	if v.Rate != cfg.Voice.Rate || v.LanguageCode != cfg.Voice.LanguageCode {
		t.Errorf("voice conversion wrong: %+v", v)
	}
}

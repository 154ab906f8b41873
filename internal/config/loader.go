package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadFromViper loads the engine configuration from viper.
func LoadFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("engine.name") {
		cfg.Engine.Name = viper.GetString("engine.name")
	}
	if viper.IsSet("engine.binary") {
		cfg.Engine.Binary = viper.GetString("engine.binary")
	}
	if viper.IsSet("engine.args") {
		cfg.Engine.Args = viper.GetStringSlice("engine.args")
	}

	cfg.Voice = loadVoiceConfig(cfg.Voice)
	cfg.Source = loadSourceConfig(cfg.Source)
	cfg.Bed = loadBedConfig(cfg.Bed)
	cfg.Mix = loadMixConfig(cfg.Mix)
	cfg.Loop = loadLoopConfig(cfg.Loop)
	cfg.Player = loadPlayerConfig(cfg.Player)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadVoiceConfig(cfg VoiceConfig) VoiceConfig {
	if viper.IsSet("voice.rate") {
		cfg.Rate = viper.GetFloat64("voice.rate")
	}
	if viper.IsSet("voice.pitch") {
		cfg.Pitch = viper.GetFloat64("voice.pitch")
	}
	if viper.IsSet("voice.language_code") {
		cfg.LanguageCode = viper.GetString("voice.language_code")
	}
	if viper.IsSet("voice.voice_id") {
		cfg.VoiceID = viper.GetString("voice.voice_id")
	}
	return cfg
}

func loadSourceConfig(cfg SourceConfig) SourceConfig {
	if viper.IsSet("source.locale") {
		cfg.Locale = viper.GetString("source.locale")
	}
	return cfg
}

func loadBedConfig(cfg BedConfig) BedConfig {
	if viper.IsSet("bed.compose") {
		cfg.Compose = viper.GetBool("bed.compose")
	}
	if viper.IsSet("bed.sample_rate") {
		cfg.SampleRate = viper.GetInt("bed.sample_rate")
	}
	if viper.IsSet("bed.noise_gain") {
		cfg.NoiseGain = viper.GetFloat64("bed.noise_gain")
	}
	if viper.IsSet("bed.smoothing") {
		cfg.Smoothing = viper.GetFloat64("bed.smoothing")
	}
	if viper.IsSet("bed.overlays") {
		cfg.Overlays = viper.GetBool("bed.overlays")
	}
	if viper.IsSet("bed.phrase_dir") {
		cfg.PhraseDir = viper.GetString("bed.phrase_dir")
	}
	if viper.IsSet("bed.phrase_gain") {
		cfg.PhraseGain = viper.GetFloat64("bed.phrase_gain")
	}
	if viper.IsSet("bed.min_interval") {
		if d, err := time.ParseDuration(viper.GetString("bed.min_interval")); err == nil {
			cfg.MinInterval = d
		}
	}
	if viper.IsSet("bed.max_interval") {
		if d, err := time.ParseDuration(viper.GetString("bed.max_interval")); err == nil {
			cfg.MaxInterval = d
		}
	}
	if viper.IsSet("bed.max_cache_variants") {
		cfg.MaxCacheVariants = viper.GetInt("bed.max_cache_variants")
	}
	return cfg
}

func loadMixConfig(cfg MixConfig) MixConfig {
	if viper.IsSet("mix.bed_gain") {
		cfg.BedGain = viper.GetFloat64("mix.bed_gain")
	}
	if viper.IsSet("mix.duck_gain") {
		cfg.DuckGain = viper.GetFloat64("mix.duck_gain")
	}
	if viper.IsSet("mix.speech_gain") {
		cfg.SpeechGain = viper.GetFloat64("mix.speech_gain")
	}
	if viper.IsSet("mix.speech_threshold") {
		cfg.SpeechThreshold = viper.GetFloat64("mix.speech_threshold")
	}
	if viper.IsSet("mix.mask_dilation") {
		if d, err := time.ParseDuration(viper.GetString("mix.mask_dilation")); err == nil {
			cfg.MaskDilation = d
		}
	}
	if viper.IsSet("mix.edge_fade") {
		if d, err := time.ParseDuration(viper.GetString("mix.edge_fade")); err == nil {
			cfg.EdgeFade = d
		}
	}
	if viper.IsSet("mix.gain_slew") {
		cfg.GainSlew = viper.GetFloat64("mix.gain_slew")
	}
	return cfg
}

func loadLoopConfig(cfg LoopConfig) LoopConfig {
	if viper.IsSet("loop.lookahead") {
		cfg.Lookahead = viper.GetInt("loop.lookahead")
	}
	if viper.IsSet("loop.gap_style") {
		cfg.GapStyle = viper.GetString("loop.gap_style")
	}
	if viper.IsSet("loop.min_gap") {
		if d, err := time.ParseDuration(viper.GetString("loop.min_gap")); err == nil {
			cfg.MinGap = d
		}
	}
	if viper.IsSet("loop.max_gap") {
		if d, err := time.ParseDuration(viper.GetString("loop.max_gap")); err == nil {
			cfg.MaxGap = d
		}
	}
	if viper.IsSet("loop.trailer_length") {
		if d, err := time.ParseDuration(viper.GetString("loop.trailer_length")); err == nil {
			cfg.TrailerLength = d
		}
	}
	if viper.IsSet("loop.long_gap_threshold") {
		if d, err := time.ParseDuration(viper.GetString("loop.long_gap_threshold")); err == nil {
			cfg.LongGapThreshold = d
		}
	}
	if viper.IsSet("loop.auto_resume") {
		cfg.AutoResume = viper.GetBool("loop.auto_resume")
	}
	return cfg
}

func loadPlayerConfig(cfg PlayerConfig) PlayerConfig {
	if viper.IsSet("player.sample_rate") {
		cfg.SampleRate = viper.GetInt("player.sample_rate")
	}
	if viper.IsSet("player.scratch_dir") {
		cfg.ScratchDir = viper.GetString("player.scratch_dir")
	}
	return cfg
}

// SetDefaults registers every configuration default with viper.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("engine.name", defaults.Engine.Name)
	viper.SetDefault("engine.binary", defaults.Engine.Binary)

	viper.SetDefault("voice.rate", defaults.Voice.Rate)
	viper.SetDefault("voice.pitch", defaults.Voice.Pitch)
	viper.SetDefault("voice.language_code", defaults.Voice.LanguageCode)
	viper.SetDefault("voice.voice_id", defaults.Voice.VoiceID)

	viper.SetDefault("source.locale", defaults.Source.Locale)

	viper.SetDefault("bed.compose", defaults.Bed.Compose)
	viper.SetDefault("bed.sample_rate", defaults.Bed.SampleRate)
	viper.SetDefault("bed.noise_gain", defaults.Bed.NoiseGain)
	viper.SetDefault("bed.smoothing", defaults.Bed.Smoothing)
	viper.SetDefault("bed.overlays", defaults.Bed.Overlays)
	viper.SetDefault("bed.phrase_dir", defaults.Bed.PhraseDir)
	viper.SetDefault("bed.phrase_gain", defaults.Bed.PhraseGain)
	viper.SetDefault("bed.min_interval", defaults.Bed.MinInterval.String())
	viper.SetDefault("bed.max_interval", defaults.Bed.MaxInterval.String())
	viper.SetDefault("bed.max_cache_variants", defaults.Bed.MaxCacheVariants)

	viper.SetDefault("mix.bed_gain", defaults.Mix.BedGain)
	viper.SetDefault("mix.duck_gain", defaults.Mix.DuckGain)
	viper.SetDefault("mix.speech_gain", defaults.Mix.SpeechGain)
	viper.SetDefault("mix.speech_threshold", defaults.Mix.SpeechThreshold)
	viper.SetDefault("mix.mask_dilation", defaults.Mix.MaskDilation.String())
	viper.SetDefault("mix.edge_fade", defaults.Mix.EdgeFade.String())
	viper.SetDefault("mix.gain_slew", defaults.Mix.GainSlew)

	viper.SetDefault("loop.lookahead", defaults.Loop.Lookahead)
	viper.SetDefault("loop.gap_style", defaults.Loop.GapStyle)
	viper.SetDefault("loop.min_gap", defaults.Loop.MinGap.String())
	viper.SetDefault("loop.max_gap", defaults.Loop.MaxGap.String())
	viper.SetDefault("loop.trailer_length", defaults.Loop.TrailerLength.String())
	viper.SetDefault("loop.long_gap_threshold", defaults.Loop.LongGapThreshold.String())
	viper.SetDefault("loop.auto_resume", defaults.Loop.AutoResume)

	viper.SetDefault("player.sample_rate", defaults.Player.SampleRate)
	viper.SetDefault("player.scratch_dir", defaults.Player.ScratchDir)
}

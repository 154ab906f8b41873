package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# synthesis engine configuration
engine:
  # engine: exec or mock
  name: "exec"
  # external synthesizer command; reads text on stdin
  binary: "espeak-ng"
  # {output}, {lang}, {voice}, {rate}, {pitch} expand per render
  args: ["-w", "{output}", "--stdin"]

voice:
  rate: 1.0
  pitch: 1.0
  language_code: "en-US"
  # voice_id: "en_US-lessac-medium"

source:
  # locale for the case-insensitive filename sort
  locale: "und"

# ambient bed generation
bed:
  # layer every utterance over a generated bed
  compose: false
  sample_rate: 44100
  noise_gain: 0.18
  smoothing: 0.94
  overlays: true
  # phrase_dir: "/path/to/whisper/clips"
  phrase_gain: 0.12
  min_interval: "4s"
  max_interval: "11s"
  max_cache_variants: 4

# ducking mixer
mix:
  bed_gain: 0.85
  duck_gain: 0.35
  speech_gain: 1.0
  speech_threshold: 0.015
  mask_dilation: "120ms"
  edge_fade: "10ms"
  gain_slew: 4.0

# session scheduling
loop:
  lookahead: 2
  # gap filler: silence or bed
  gap_style: "silence"
  min_gap: "4s"
  max_gap: "12s"
  trailer_length: "1.5s"
  # gaps above this pause playback and schedule a reminder; 0 disables
  long_gap_threshold: "0s"
  auto_resume: true

player:
  sample_rate: 44100
  # scratch_dir: "/tmp/murmur-scratch"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the murmur config file",
	Long:    "Edit the murmur config file. EDITOR determines which editor to use. If the config file doesn't exist, it will be created.",
	Example: "murmur config\nmurmur config --config path/to/murmur.yaml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Murmur", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if configFile == "" {
			configFile = filepath.Join(".", "murmur.yaml")
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}

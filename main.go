// Package main provides the entry point for the murmur CLI.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize/english"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/murmurkit/murmur/internal/bed"
	"github.com/murmurkit/murmur/internal/config"
	"github.com/murmurkit/murmur/internal/controller"
	"github.com/murmurkit/murmur/internal/notify"
	"github.com/murmurkit/murmur/internal/player"
	"github.com/murmurkit/murmur/internal/prerender"
	"github.com/murmurkit/murmur/internal/source"
	"github.com/murmurkit/murmur/internal/synth"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	loopMode     bool
	engineName   string
	composeBed   bool
	startCounter int
	outDir       string

	rootCmd = &cobra.Command{
		Use:          "murmur",
		Short:        "Turn folders of text into a continuous spoken-audio stream",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initConfig()
		},
	}

	playCmd = &cobra.Command{
		Use:     "play <folder>",
		Short:   "Play a folder of text documents",
		Example: "murmur play ~/documents/stories\nmurmur play --loop ~/documents/affirmations",
		Args:    cobra.ExactArgs(1),
		RunE:    runPlay,
	}

	prerenderCmd = &cobra.Command{
		Use:     "prerender <folder>",
		Short:   "Render categorized phrase lists to individual clips",
		Example: "murmur prerender ./phrases --out ./clips",
		Args:    cobra.ExactArgs(1),
		RunE:    runPrerender,
	}

	bedCmd = &cobra.Command{
		Use:     "bed <seconds>",
		Short:   "Generate a standalone ambient bed asset",
		Example: "murmur bed 30 --out ./beds",
		Args:    cobra.ExactArgs(1),
		RunE:    runBed,
	}
)

func initConfig() error {
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	config.SetDefaults()
	viper.SetEnvPrefix("murmur")
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	scope := gap.NewScope(gap.User, "murmur")
	if dirs, err := scope.ConfigDirs(); err == nil {
		for _, d := range dirs {
			viper.AddConfigPath(d)
		}
	}
	viper.AddConfigPath(".")
	viper.SetConfigName("murmur")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func buildEngine(cfg config.Config) (synth.Engine, error) {
	switch cfg.Engine.Name {
	case "mock":
		return synth.NewMockEngine(), nil
	case "exec":
		return synth.NewExecEngine(cfg.Engine.Binary, cfg.Engine.Args...)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine.Name)
	}
}

// cliEvents bridges controller notifications to the terminal.
type cliEvents struct{}

func (cliEvents) StatusText(text string) { log.Info(text) }

func (cliEvents) Progress(processed, total int) {
	if total > 0 {
		log.Info("progress", "processed", processed, "total", total)
	}
}

func (cliEvents) NowPlaying(name string) { log.Info("now playing", "item", name) }

func (cliEvents) StateChanged(s controller.State) { log.Debug("state change", "state", s) }

func runPlay(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("engine") {
		viper.Set("engine.name", engineName)
	}
	if cmd.Flags().Changed("compose-bed") {
		viper.Set("bed.compose", composeBed)
	}

	cfg, err := config.LoadFromViper()
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var beds *bed.Generator
	if cfg.Bed.Compose || cfg.Loop.GapStyle == "bed" {
		beds = bed.New(cfg.BedGenerator())
		defer beds.Close()
	}

	acfg := synth.DefaultConfig()
	acfg.ComposeBed = cfg.Bed.Compose
	acfg.MixOptions = cfg.MixOptions()
	adapter := synth.NewAdapter(engine, beds, acfg)
	defer adapter.Close()

	q, err := player.NewOtoPlayer(cfg.Player.SampleRate)
	if err != nil {
		return err
	}
	defer q.Close()

	ctrl, err := controller.New(adapter, beds, q, notify.LogReminder{}, cliEvents{}, cfg.ControllerConfig())
	if err != nil {
		return err
	}
	defer ctrl.Close()
	ctrl.UpdateVoice(cfg.SynthVoice())

	items, err := source.Load(args[0], cfg.Source.Locale)
	if err != nil {
		return err
	}

	mode := controller.ModeSequential
	if loopMode {
		mode = controller.ModeRandomLoop
	}
	if err := ctrl.Start(items, mode); err != nil {
		return err
	}

	return waitForSession(ctrl, mode)
}

// waitForSession blocks until the session ends, watching for signals
// and simple terminal commands.
func waitForSession(ctrl *controller.Controller, mode controller.Mode) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	lines := make(chan string)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("p = pause, r = resume, q = quit")
		go func() {
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				lines <- strings.TrimSpace(sc.Text())
			}
		}()
	}

	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-sig:
			return ctrl.Stop()
		case line := <-lines:
			switch line {
			case "p":
				if err := ctrl.Pause(); err != nil {
					return err
				}
			case "r":
				if err := ctrl.Resume(); err != nil {
					return err
				}
			case "q":
				return ctrl.Stop()
			}
		case <-tick.C:
			// A sequential session reports idle once fully played out.
			if mode == controller.ModeSequential && ctrl.State() == controller.StateIdle {
				return nil
			}
		}
	}
}

func runPrerender(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("engine") {
		viper.Set("engine.name", engineName)
	}

	cfg, err := config.LoadFromViper()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	adapter := synth.NewAdapter(engine, nil, synth.DefaultConfig())
	defer adapter.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := prerender.Run(ctx, adapter, args[0], outDir, prerender.Options{
		Voice:        cfg.SynthVoice(),
		StartCounter: startCounter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("rendered %s (%d skipped, %d failed)\n",
		english.Plural(res.Rendered, "clip", ""), res.Skipped, res.Failed)
	return nil
}

func runBed(_ *cobra.Command, args []string) error {
	seconds, err := strconv.ParseFloat(args[0], 64)
	if err != nil || seconds <= 0 {
		return fmt.Errorf("invalid duration %q", args[0])
	}

	cfg, err := config.LoadFromViper()
	if err != nil {
		return err
	}

	beds := bed.New(cfg.BedGenerator())
	defer beds.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	path, err := beds.Generate(ctx, time.Duration(seconds*float64(time.Second)), outDir)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: auto-discovered murmur.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	playCmd.Flags().BoolVar(&loopMode, "loop", false, "random loop mode instead of one sequential pass")
	playCmd.Flags().StringVar(&engineName, "engine", "", "synthesis engine: exec or mock")
	playCmd.Flags().BoolVar(&composeBed, "compose-bed", false, "layer speech over a generated ambient bed")

	prerenderCmd.Flags().StringVar(&engineName, "engine", "", "synthesis engine: exec or mock")
	prerenderCmd.Flags().StringVar(&outDir, "out", "clips", "output directory for rendered clips")
	prerenderCmd.Flags().IntVar(&startCounter, "start-counter", 0, "override the persisted clip counter")

	bedCmd.Flags().StringVar(&outDir, "out", ".", "output directory for the bed asset")

	rootCmd.AddCommand(playCmd, prerenderCmd, bedCmd, configCmd)
}

package synth

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ExecEngine shells out to an external synthesizer binary (piper-style:
// text on stdin, WAV file out). Argument templates may reference
// {output}, {lang}, {voice}, {rate} and {pitch}.
type ExecEngine struct {
	Binary string
	Args   []string

	mu sync.Mutex
}

// NewExecEngine builds an engine around the given command line.
func NewExecEngine(binary string, args ...string) (*ExecEngine, error) {
	if binary == "" {
		return nil, fmt.Errorf("synthesizer binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("synthesizer binary not found: %w", err)
	}
	return &ExecEngine{Binary: binary, Args: args}, nil
}

// Name implements Engine.
func (e *ExecEngine) Name() string { return e.Binary }

// Render implements Engine. The process is given the text on stdin and
// must write a WAV file at outPath before exiting.
func (e *ExecEngine) Render(ctx context.Context, text string, voice Voice, outPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = expandArg(a, voice, outPath)
	}

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Debug("synth: invoking engine", "binary", e.Binary, "out", outPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrRenderFailed, e.Binary, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func expandArg(arg string, voice Voice, outPath string) string {
	r := strings.NewReplacer(
		"{output}", outPath,
		"{lang}", voice.LanguageCode,
		"{voice}", voice.VoiceID,
		"{rate}", strconv.FormatFloat(voice.Rate, 'f', -1, 64),
		"{pitch}", strconv.FormatFloat(voice.Pitch, 'f', -1, 64),
	)
	return r.Replace(arg)
}

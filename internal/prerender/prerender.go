// Package prerender batch-renders categorized phrase lists into
// individual WAV clips, used to seed the bed generator's phrase pool.
package prerender

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/murmurkit/murmur/internal/synth"
)

// counterFile persists the clip counter inside the output directory so
// interrupted runs resume numbering instead of overwriting clips.
const counterFile = ".counter"

const maxSlugLen = 40

// Options tunes a pre-render run.
type Options struct {
	Voice synth.Voice
	// StartCounter overrides the persisted counter when positive.
	StartCounter int
}

// Result summarizes a run.
type Result struct {
	Rendered int
	Skipped  int
	Failed   int
}

// ErrNoPhrases is returned when the source folder has no phrase lists.
var ErrNoPhrases = errors.New("no phrase lists found")

// Run walks every .txt category file under srcDir and renders each
// non-blank, non-comment line to NNN_slug.wav in outDir. Failures are
// logged and skipped; the run keeps going.
func Run(ctx context.Context, adapter *synth.Adapter, srcDir, outDir string, opts Options) (Result, error) {
	var res Result

	phrases, err := loadPhrases(srcDir)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}

	counter := opts.StartCounter
	if counter <= 0 {
		counter = readCounter(outDir)
	}

	for _, p := range phrases {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		out := filepath.Join(outDir, fmt.Sprintf("%03d_%s.wav", counter, slugify(p.text)))
		r, err := adapter.Render(ctx, synth.Request{
			Text:    p.text,
			Voice:   opts.Voice,
			OutPath: out,
		})
		switch {
		case err != nil:
			log.Warn("prerender: clip failed, skipping",
				"category", p.category, "text", p.text, "error", err)
			res.Failed++
		case r.Empty:
			res.Skipped++
		default:
			log.Debug("prerender: clip written",
				"path", out, "duration", r.Duration)
			res.Rendered++
			counter++
			writeCounter(outDir, counter)
		}
	}

	log.Info("prerender: run complete",
		"rendered", res.Rendered, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

type phrase struct {
	category string
	text     string
}

// loadPhrases reads every category file in sorted order. Blank lines
// and # comments are skipped.
func loadPhrases(srcDir string) ([]phrase, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read phrase folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPhrases, srcDir)
	}
	sort.Strings(files)

	var phrases []phrase
	for _, name := range files {
		category := strings.TrimSuffix(name, filepath.Ext(name))
		f, err := os.Open(filepath.Join(srcDir, name))
		if err != nil {
			return nil, fmt.Errorf("open category %s: %w", name, err)
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			phrases = append(phrases, phrase{category: category, text: line})
		}
		scanErr := sc.Err()
		f.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("read category %s: %w", name, scanErr)
		}
	}
	return phrases, nil
}

// slugify turns a phrase into a short filesystem-safe name.
func slugify(text string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('_')
				lastDash = true
			}
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	return strings.Trim(b.String(), "_")
}

func readCounter(outDir string) int {
	data, err := os.ReadFile(filepath.Join(outDir, counterFile))
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func writeCounter(outDir string, n int) {
	path := filepath.Join(outDir, counterFile)
	if err := os.WriteFile(path, []byte(strconv.Itoa(n)), 0o644); err != nil {
		log.Warn("prerender: could not persist counter", "error", err)
	}
}

// Package bed synthesizes ambient masking audio: colored noise with
// quietly whispered phrase clips mixed in at random intervals.
package bed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurkit/murmur/internal/wavio"
)

// ErrBadDuration is returned for non-positive bed durations.
var ErrBadDuration = errors.New("bed duration must be positive")

// Config tunes the generator.
type Config struct {
	SampleRate int

	// NoiseGain scales the colored-noise floor.
	NoiseGain float64
	// Smoothing is the one-pole coefficient that tilts white noise
	// toward pink. Closer to 1 means darker noise.
	Smoothing float64

	// OverlaysEnabled mixes whispered phrase clips into the noise.
	OverlaysEnabled bool
	PhraseDir       string
	PhraseGain      float64
	// MinInterval/MaxInterval bound the random spacing between phrase
	// insertions.
	MinInterval time.Duration
	MaxInterval time.Duration

	// MaxCacheVariants bounds how many on-disk beds are kept per
	// rounded duration.
	MaxCacheVariants int
}

// DefaultConfig returns the standard bed parameters.
func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		NoiseGain:        0.18,
		Smoothing:        0.94,
		OverlaysEnabled:  true,
		PhraseGain:       0.12,
		MinInterval:      4 * time.Second,
		MaxInterval:      11 * time.Second,
		MaxCacheVariants: 4,
	}
}

// Generator produces fixed-duration ambient bed assets with an
// in-memory phrase decode cache and a bounded on-disk output cache.
type Generator struct {
	cfg   Config
	pool  *pool
	cache *diskCache

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator. Close releases the phrase folder watcher.
func New(cfg Config) *Generator {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.MaxCacheVariants < 1 {
		cfg.MaxCacheVariants = 1
	}
	if cfg.MinInterval > cfg.MaxInterval {
		cfg.MinInterval, cfg.MaxInterval = cfg.MaxInterval, cfg.MinInterval
	}
	return &Generator{
		cfg:   cfg,
		pool:  newPool(cfg.PhraseDir, cfg.SampleRate),
		cache: &diskCache{maxVariants: cfg.MaxCacheVariants},
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Close stops the phrase folder watcher.
func (g *Generator) Close() {
	g.pool.close()
}

// InvalidatePhrases drops the in-memory phrase decode cache. The next
// generation reloads the folder.
func (g *Generator) InvalidatePhrases() {
	g.pool.invalidate()
}

// Generate returns the path of a bed asset of the requested duration in
// outDir, serving a cached variant when the cache is at capacity.
func (g *Generator) Generate(ctx context.Context, duration time.Duration, outDir string) (string, error) {
	if duration <= 0 {
		return "", ErrBadDuration
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("bed output dir: %w", err)
	}

	roundedMs := duration.Round(time.Millisecond).Milliseconds()

	g.mu.Lock()
	defer g.mu.Unlock()

	if path, ok := g.cache.lookup(outDir, roundedMs, g.rng); ok {
		log.Debug("bed: serving cached variant", "path", path, "ms", roundedMs)
		return path, nil
	}

	buf := g.render(duration)
	path := g.cache.place(outDir, roundedMs)
	if err := wavio.Encode(path, buf); err != nil {
		return "", fmt.Errorf("write bed: %w", err)
	}
	g.cache.evict(outDir, roundedMs, g.rng)

	log.Debug("bed: generated", "path", path, "duration", duration)
	return path, nil
}

// render synthesizes the bed buffer sample-by-sample.
func (g *Generator) render(duration time.Duration) wavio.Buffer {
	rate := g.cfg.SampleRate
	n := int(duration.Seconds() * float64(rate))
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)

	// White noise through a one-pole smoother approximates pink noise.
	lp := 0.0
	alpha := 1 - g.cfg.Smoothing
	for i := range out {
		white := g.rng.Float64()*2 - 1
		lp += alpha * (white - lp)
		out[i] = lp * g.cfg.NoiseGain
	}

	if g.cfg.OverlaysEnabled {
		g.overlayPhrases(out, rate)
	}
	return wavio.Buffer{Samples: out, SampleRate: rate}
}

// overlayPhrases mixes whispered clips into the noise stream at random
// offsets. Fades are measured against each phrase's full length so a
// phrase spanning several write chunks still ramps smoothly.
func (g *Generator) overlayPhrases(out []float64, rate int) {
	fadeFrames := rate * 5 / 1000 // 5ms edge fade
	next := g.nextInsertionOffset(rate)

	inserted := 0
	for next < len(out) {
		phrase, ok := g.pool.pick(g.rng)
		if !ok {
			log.Warn("bed: no phrase pool available, generating noise-only bed")
			return
		}

		for i, s := range phrase.Samples {
			pos := next + i
			if pos >= len(out) {
				break
			}
			out[pos] = wavio.Clamp(out[pos] + s*g.cfg.PhraseGain*phraseFade(i, len(phrase.Samples), fadeFrames))
		}
		inserted++
		next += len(phrase.Samples) + g.nextInsertionOffset(rate)
	}
	log.Debug("bed: overlays inserted", "count", inserted)
}

func (g *Generator) nextInsertionOffset(rate int) int {
	min := int(g.cfg.MinInterval.Seconds() * float64(rate))
	max := int(g.cfg.MaxInterval.Seconds() * float64(rate))
	if max <= min {
		return min
	}
	return min + g.rng.Intn(max-min)
}

// phraseFade returns the fade-in/out envelope at position i of a phrase
// of length total.
func phraseFade(i, total, fadeFrames int) float64 {
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

// maxAmplitude reports the buffer's peak.
func maxAmplitude(samples []float64) float64 {
	peak := 0.0
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s))
	}
	return peak
}

package bed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/murmurkit/murmur/internal/wavio"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = 8000 // keep test renders cheap
	cfg.OverlaysEnabled = false
	cfg.MaxCacheVariants = 2
	return cfg
}

func writePhrase(t *testing.T, dir, name string) {
	t.Helper()
	buf := wavio.Silence(300*time.Millisecond, 8000)
	for i := range buf.Samples {
		buf.Samples[i] = 0.4
	}
	if err := wavio.Encode(filepath.Join(dir, name), buf); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateDuration(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	out := t.TempDir()
	path, err := g.Generate(context.Background(), 2*time.Second, out)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	d, err := wavio.Duration(path)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if d < 1900*time.Millisecond || d > 2100*time.Millisecond {
		t.Errorf("expected ~2s bed, got %v", d)
	}
}

func TestGenerateRejectsBadDuration(t *testing.T) {
	g := New(testConfig())
	defer g.Close()

	if _, err := g.Generate(context.Background(), 0, t.TempDir()); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestCacheServesVariantAtCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCacheVariants = 2
	g := New(cfg)
	defer g.Close()

	out := t.TempDir()
	ctx := context.Background()

	first, err := g.Generate(ctx, time.Second, out)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Generate(ctx, time.Second, out)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("expected a second variant below capacity, got %s twice", first)
	}

	// At capacity: further requests must reuse an existing variant.
	for i := 0; i < 5; i++ {
		path, err := g.Generate(ctx, time.Second, out)
		if err != nil {
			t.Fatal(err)
		}
		if path != first && path != second {
			t.Errorf("expected cached variant, got new file %s", path)
		}
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 2 {
		t.Errorf("expected 2 files on disk, got %d", len(entries))
	}
}

func TestCacheEvictionKeepsNewest(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCacheVariants = 1
	g := New(cfg)
	defer g.Close()

	out := t.TempDir()
	ctx := context.Background()

	// Different durations are separate keys and never evict each other.
	if _, err := g.Generate(ctx, time.Second, out); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(ctx, 2*time.Second, out); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 2 {
		t.Errorf("expected one variant per duration key, got %d files", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "bed_") {
			t.Errorf("unexpected file %s", e.Name())
		}
	}
}

func TestOverlaysAddEnergy(t *testing.T) {
	phraseDir := t.TempDir()
	writePhrase(t, phraseDir, "calm.wav")

	cfg := testConfig()
	cfg.OverlaysEnabled = true
	cfg.PhraseDir = phraseDir
	cfg.NoiseGain = 0 // isolate the overlay contribution
	cfg.MinInterval = 100 * time.Millisecond
	cfg.MaxInterval = 200 * time.Millisecond
	g := New(cfg)
	defer g.Close()

	buf := g.render(2 * time.Second)
	if maxAmplitude(buf.Samples) == 0 {
		t.Error("expected phrase overlays to contribute energy to the bed")
	}
}

func TestNoiseOnlyFallbackWithoutPhrases(t *testing.T) {
	cfg := testConfig()
	cfg.OverlaysEnabled = true
	cfg.PhraseDir = t.TempDir() // empty pool
	g := New(cfg)
	defer g.Close()

	path, err := g.Generate(context.Background(), time.Second, t.TempDir())
	if err != nil {
		t.Fatalf("expected noise-only fallback, got error: %v", err)
	}
	if _, err := wavio.Decode(path); err != nil {
		t.Errorf("fallback bed not decodable: %v", err)
	}
}

func TestPhraseFadeEnvelope(t *testing.T) {
	const total, fade = 1000, 40
	if got := phraseFade(0, total, fade); got != 0 {
		t.Errorf("fade-in start should be 0, got %f", got)
	}
	if got := phraseFade(total/2, total, fade); got != 1 {
		t.Errorf("mid-phrase should be unity, got %f", got)
	}
	if got := phraseFade(total-1, total, fade); got >= 0.1 {
		t.Errorf("fade-out end should approach 0, got %f", got)
	}
	// Short phrases skip fading entirely rather than vanish.
	if got := phraseFade(5, 2*fade, fade); got != 1 {
		t.Errorf("short phrase should not fade, got %f", got)
	}
}

func TestInvalidatePhrasesReloads(t *testing.T) {
	phraseDir := t.TempDir()

	cfg := testConfig()
	cfg.OverlaysEnabled = true
	cfg.PhraseDir = phraseDir
	g := New(cfg)
	defer g.Close()

	if _, ok := g.pool.pick(g.rng); ok {
		t.Fatal("expected empty pool before any phrases exist")
	}

	writePhrase(t, phraseDir, "later.wav")
	g.InvalidatePhrases()

	if _, ok := g.pool.pick(g.rng); !ok {
		t.Error("expected pool reload to find the new phrase")
	}
}

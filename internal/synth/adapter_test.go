package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/murmurkit/murmur/internal/bed"
	"github.com/murmurkit/murmur/internal/validate"
	"github.com/murmurkit/murmur/internal/wavio"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.ValidateOptions = validate.Options{
		Attempts:    2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		MinDuration: 50 * time.Millisecond,
	}
	return cfg
}

func TestRenderProducesValidAsset(t *testing.T) {
	a := NewAdapter(NewMockEngine(), nil, fastConfig())
	defer a.Close()

	out := filepath.Join(t.TempDir(), "item.wav")
	res, err := a.Render(context.Background(), Request{
		Text: "hello continuous audio", Voice: DefaultVoice(), OutPath: out,
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if res.Empty {
		t.Fatal("unexpected empty result")
	}
	if res.Duration <= 0 {
		t.Errorf("expected positive duration, got %v", res.Duration)
	}
	if _, err := wavio.Decode(res.Path); err != nil {
		t.Errorf("asset not decodable: %v", err)
	}
}

func TestRenderEmptyTextSkipsWorker(t *testing.T) {
	a := NewAdapter(NewMockEngine(), nil, fastConfig())
	defer a.Close()

	res, err := a.Render(context.Background(), Request{
		Text: "   \n\t  ", Voice: DefaultVoice(),
		OutPath: filepath.Join(t.TempDir(), "never.wav"),
	})
	if err != nil {
		t.Fatalf("empty text must not error, got %v", err)
	}
	if !res.Empty {
		t.Error("expected Empty result for whitespace-only text")
	}
	if a.MaxObservedConcurrency() != 0 {
		t.Error("empty text must not consume a worker slot")
	}
}

func TestRenderEngineFailure(t *testing.T) {
	eng := NewMockEngine()
	boom := errors.New("voice model exploded")
	eng.FailWith("bad text", boom)

	a := NewAdapter(eng, nil, fastConfig())
	defer a.Close()

	out := filepath.Join(t.TempDir(), "bad.wav")
	_, err := a.Render(context.Background(), Request{
		Text: "bad text", Voice: DefaultVoice(), OutPath: out,
	})
	if !errors.Is(err, ErrRenderFailed) {
		t.Errorf("expected ErrRenderFailed, got %v", err)
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Error("failed render must not leave an asset behind")
	}
}

func TestRendersAreSerialized(t *testing.T) {
	eng := NewMockEngine()
	eng.Delay = 5 * time.Millisecond

	a := NewAdapter(eng, nil, fastConfig())
	defer a.Close()

	dir := t.TempDir()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := filepath.Join(dir, fmt.Sprintf("item-%d.wav", i))
			a.Render(context.Background(), Request{
				Text: "concurrent words here", Voice: DefaultVoice(), OutPath: out,
			})
		}(i)
	}
	wg.Wait()

	if got := a.MaxObservedConcurrency(); got != 1 {
		t.Errorf("serialization invariant violated: max concurrency %d", got)
	}
}

func TestComposeBedExtendsAsset(t *testing.T) {
	bedCfg := bed.DefaultConfig()
	bedCfg.SampleRate = 8000
	bedCfg.OverlaysEnabled = false
	beds := bed.New(bedCfg)
	defer beds.Close()

	cfg := fastConfig()
	cfg.ComposeBed = true
	a := NewAdapter(NewMockEngine(), beds, cfg)
	defer a.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "composed.wav")
	res, err := a.Render(context.Background(), Request{
		Text:    "ten words of speech to layer over the noise bed",
		Voice:   DefaultVoice(),
		OutPath: out,
		BedDir:  filepath.Join(dir, "beds"),
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Mixed output must cover speech plus the pad.
	soloWords := 10
	minExpected := time.Duration(soloWords)*60*time.Millisecond + 150*time.Millisecond + cfg.BedPad - 50*time.Millisecond
	if res.Duration < minExpected {
		t.Errorf("expected composed duration >= %v, got %v", minExpected, res.Duration)
	}
	if res.Path != out {
		t.Errorf("composed asset must replace the solo path, got %s", res.Path)
	}
}

// cancelingEngine renders normally, then cancels the job's context
// right before reporting success. Mimics a caller giving up while the
// engine is mid-render.
type cancelingEngine struct {
	inner  *MockEngine
	cancel context.CancelFunc
}

func (e *cancelingEngine) Name() string { return "canceling" }

func (e *cancelingEngine) Render(ctx context.Context, text string, voice Voice, outPath string) error {
	if err := e.inner.Render(ctx, text, voice, outPath); err != nil {
		return err
	}
	e.cancel()
	return nil
}

func TestCanceledJobLeavesNoOrphanAsset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := &cancelingEngine{inner: NewMockEngine(), cancel: cancel}

	a := NewAdapter(eng, nil, fastConfig())
	defer a.Close()

	out := filepath.Join(t.TempDir(), "abandoned.wav")
	_, err := a.Render(ctx, Request{
		Text: "words nobody will collect", Voice: DefaultVoice(), OutPath: out,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, statErr := os.Stat(out); os.IsNotExist(statErr) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("abandoned render must not leave an asset behind")
}

func TestRenderAfterClose(t *testing.T) {
	a := NewAdapter(NewMockEngine(), nil, fastConfig())
	a.Close()

	_, err := a.Render(context.Background(), Request{
		Text: "too late", Voice: DefaultVoice(),
		OutPath: filepath.Join(t.TempDir(), "late.wav"),
	})
	if !errors.Is(err, ErrAdapterClosed) {
		t.Errorf("expected ErrAdapterClosed, got %v", err)
	}
}

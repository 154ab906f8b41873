package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/murmurkit/murmur/internal/wavio"
)

func fastOptions() Options {
	return Options{
		Attempts:    3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		MinDuration: 50 * time.Millisecond,
	}
}

func TestCheckValidAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.wav")
	if err := wavio.Encode(path, wavio.Silence(300*time.Millisecond, 44100)); err != nil {
		t.Fatal(err)
	}

	if err := Check(context.Background(), path, fastOptions()); err != nil {
		t.Errorf("expected valid asset to pass, got %v", err)
	}
}

func TestCheckMissingFileExhaustsBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.wav")

	err := Check(context.Background(), path, fastOptions())
	if !errors.Is(err, ErrNotPlayable) {
		t.Errorf("expected ErrNotPlayable, got %v", err)
	}
}

func TestCheckTrivialDurationRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blip.wav")
	if err := wavio.Encode(path, wavio.Silence(5*time.Millisecond, 44100)); err != nil {
		t.Fatal(err)
	}

	if err := Check(context.Background(), path, fastOptions()); !errors.Is(err, ErrNotPlayable) {
		t.Errorf("expected ErrNotPlayable for near-empty asset, got %v", err)
	}
}

func TestCheckGarbageRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("RIFFnope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Check(context.Background(), path, fastOptions()); !errors.Is(err, ErrNotPlayable) {
		t.Errorf("expected ErrNotPlayable, got %v", err)
	}
}

func TestCheckHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastOptions()
	opts.BaseDelay = time.Second
	err := Check(ctx, filepath.Join(t.TempDir(), "missing.wav"), opts)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCheckRecoversLateWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.wav")

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(3 * time.Millisecond)
		wavio.Encode(path, wavio.Silence(200*time.Millisecond, 44100))
	}()

	opts := fastOptions()
	opts.Attempts = 8
	err := Check(context.Background(), path, opts)
	<-done
	if err != nil {
		t.Errorf("expected late-written asset to validate, got %v", err)
	}
}

package prerender

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/murmurkit/murmur/internal/synth"
	"github.com/murmurkit/murmur/internal/validate"
)

func writeCategory(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fastAdapter(t *testing.T, eng *synth.MockEngine) *synth.Adapter {
	t.Helper()
	cfg := synth.DefaultConfig()
	cfg.ValidateOptions = validate.Options{
		Attempts:    2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		MinDuration: 50 * time.Millisecond,
	}
	a := synth.NewAdapter(eng, nil, cfg)
	t.Cleanup(a.Close)
	return a
}

func TestRunRendersEveryPhrase(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeCategory(t, src, "calm.txt", "breathe in slowly\nlet it all go\n")
	writeCategory(t, src, "focus.txt", "# header comment\n\nstay with it\n")

	a := fastAdapter(t, synth.NewMockEngine())
	res, err := Run(context.Background(), a, src, out, Options{Voice: synth.DefaultVoice()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Rendered != 3 || res.Failed != 0 {
		t.Fatalf("expected 3 rendered clips, got %+v", res)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	var clips []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".wav" {
			clips = append(clips, e.Name())
		}
	}
	if len(clips) != 3 {
		t.Fatalf("expected 3 clips on disk, got %v", clips)
	}
	if clips[0] != "001_breathe_in_slowly.wav" {
		t.Errorf("unexpected first clip name: %s", clips[0])
	}
}

func TestRunResumesCounter(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeCategory(t, src, "a.txt", "first phrase\n")

	a := fastAdapter(t, synth.NewMockEngine())
	if _, err := Run(context.Background(), a, src, out, Options{Voice: synth.DefaultVoice()}); err != nil {
		t.Fatal(err)
	}

	writeCategory(t, src, "a.txt", "second phrase\n")
	if _, err := Run(context.Background(), a, src, out, Options{Voice: synth.DefaultVoice()}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(out, "002_second_phrase.wav")); err != nil {
		t.Errorf("counter did not resume: %v", err)
	}
}

func TestRunStartCounterOverride(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeCategory(t, src, "a.txt", "only phrase\n")

	a := fastAdapter(t, synth.NewMockEngine())
	_, err := Run(context.Background(), a, src, out, Options{
		Voice: synth.DefaultVoice(), StartCounter: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, statErr := os.Stat(filepath.Join(out, "050_only_phrase.wav")); statErr != nil {
		t.Errorf("start counter override ignored: %v", statErr)
	}
}

func TestRunSkipsFailedClips(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeCategory(t, src, "a.txt", "good line one\nbroken line\ngood line two\n")

	eng := synth.NewMockEngine()
	eng.FailWith("broken line", errors.New("engine refused"))
	a := fastAdapter(t, eng)

	res, err := Run(context.Background(), a, src, out, Options{Voice: synth.DefaultVoice()})
	if err != nil {
		t.Fatalf("Run must survive clip failures: %v", err)
	}
	if res.Rendered != 2 || res.Failed != 1 {
		t.Errorf("expected 2 rendered / 1 failed, got %+v", res)
	}
}

func TestRunEmptyFolder(t *testing.T) {
	a := fastAdapter(t, synth.NewMockEngine())
	_, err := Run(context.Background(), a, t.TempDir(), t.TempDir(), Options{})
	if !errors.Is(err, ErrNoPhrases) {
		t.Errorf("expected ErrNoPhrases, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Breathe In, Slowly!", "breathe_in_slowly"},
		{"  spaces   everywhere  ", "spaces_everywhere"},
		{"MiXeD CaSe 42", "mixed_case_42"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Errorf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	long := slugify(strings.Repeat("verylongword ", 10))
	if len(long) > maxSlugLen {
		t.Errorf("slug exceeds cap: %d chars", len(long))
	}
}

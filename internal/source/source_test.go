package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadSortsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Banana.txt": "b",
		"apple.txt":  "a",
		"Cherry.txt": "c",
	})

	items, err := Load(dir, "en")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"apple", "Banana", "Cherry"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, w := range want {
		if items[i].DisplayName != w {
			t.Errorf("position %d: expected %q, got %q", i, w, items[i].DisplayName)
		}
		if items[i].Index != i {
			t.Errorf("position %d: index %d", i, items[i].Index)
		}
	}
}

func TestLoadSkipsNonText(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"one.txt":   "hello",
		"cover.wav": "not text",
	})
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	items, err := Load(dir, "en")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 || items[0].DisplayName != "one" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestLoadKeepsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "content",
		"b.txt": "",
	})

	items, err := Load(dir, "en")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected empty file to be kept, got %d items", len(items))
	}
	if items[1].RawText != "" {
		t.Errorf("expected empty raw text, got %q", items[1].RawText)
	}
}

func TestLoadEmptyFolder(t *testing.T) {
	if _, err := Load(t.TempDir(), "en"); err == nil {
		t.Error("expected error for folder without documents")
	}
}

func TestLoadUnknownLocaleFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x", "b.txt": "y"})

	items, err := Load(dir, "not-a-locale!!")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

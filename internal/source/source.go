// Package source loads the ordered text documents a session reads from.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrNoDocuments is returned when the folder holds no .txt files.
var ErrNoDocuments = errors.New("no text documents found")

// Item is one ordered text document. Immutable once loaded.
type Item struct {
	Index       int
	DisplayName string
	RawText     string
}

// Load reads every .txt file in dir, ordered by a case-insensitive,
// locale-aware ascending sort of the display names. Empty files are
// kept; the controller treats them as skips so progress still advances.
func Load(dir, locale string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source folder %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoDocuments)
	}

	sortNames(names, locale)

	items := make([]Item, 0, len(names))
	for i, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		items = append(items, Item{
			Index:       i,
			DisplayName: strings.TrimSuffix(name, filepath.Ext(name)),
			RawText:     string(raw),
		})
	}

	log.Debug("source: loaded documents", "dir", dir, "count", len(items))
	return items, nil
}

func sortNames(names []string, locale string) {
	tag, err := language.Parse(locale)
	if err != nil {
		log.Warn("source: unknown locale, using default collation", "locale", locale)
		tag = language.Und
	}
	col := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(names, func(i, j int) bool {
		return col.CompareString(names[i], names[j]) < 0
	})
}

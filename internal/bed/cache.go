package bed

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"
)

// diskCache tracks generated bed variants on disk. Entries are keyed by
// (rounded duration ms, output directory); multiple variants per key
// avoid audible repetition across sessions. When the directory exceeds
// its bound, a random non-newest variant is evicted.
type diskCache struct {
	maxVariants int
}

var bedNamePattern = regexp.MustCompile(`^bed_(\d+)ms_(\d+)\.wav$`)

type variant struct {
	path    string
	serial  int64
	modTime int64
}

func (c *diskCache) variants(dir string, roundedMs int64) []variant {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []variant
	for _, e := range entries {
		m := bedNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ms, _ := strconv.ParseInt(m[1], 10, 64)
		if ms != roundedMs {
			continue
		}
		serial, _ := strconv.ParseInt(m[2], 10, 64)
		v := variant{path: filepath.Join(dir, e.Name()), serial: serial}
		if info, err := e.Info(); err == nil {
			v.modTime = info.ModTime().UnixNano()
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].serial < out[j].serial })
	return out
}

// lookup returns a random cached variant when the per-key set is at
// capacity, so a full cache serves existing beds instead of always
// regenerating.
func (c *diskCache) lookup(dir string, roundedMs int64, rng *rand.Rand) (string, bool) {
	vs := c.variants(dir, roundedMs)
	if len(vs) == 0 || len(vs) < c.maxVariants {
		return "", false
	}
	return vs[rng.Intn(len(vs))].path, true
}

// place returns the path a new variant should be written to.
func (c *diskCache) place(dir string, roundedMs int64) string {
	vs := c.variants(dir, roundedMs)
	var next int64
	if len(vs) > 0 {
		next = vs[len(vs)-1].serial + 1
	}
	return filepath.Join(dir, fmt.Sprintf("bed_%dms_%d.wav", roundedMs, next))
}

// evict deletes a random non-newest variant while the key is over its
// bound. The newest variant is always kept.
func (c *diskCache) evict(dir string, roundedMs int64, rng *rand.Rand) {
	for {
		vs := c.variants(dir, roundedMs)
		if len(vs) <= c.maxVariants || len(vs) < 2 {
			return
		}
		victim := vs[rng.Intn(len(vs)-1)] // exclude the newest
		if err := os.Remove(victim.path); err != nil {
			log.Warn("bed: cache eviction failed", "path", victim.path, "error", err)
			return
		}
		log.Debug("bed: evicted cached variant", "path", victim.path)
	}
}

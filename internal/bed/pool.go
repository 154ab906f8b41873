package bed

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/murmurkit/murmur/internal/wavio"
)

// Phrase is one decoded, whisper-shaped overlay clip.
type Phrase struct {
	Name    string
	Samples []float64
}

// pool holds decoded phrases, loaded once and reused across bed
// generations. A watcher on the clip folder invalidates the decode
// cache when the folder contents change.
type pool struct {
	dir  string
	rate int

	mu      sync.Mutex
	phrases []Phrase
	loaded  bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newPool(dir string, rate int) *pool {
	p := &pool{dir: dir, rate: rate, done: make(chan struct{})}
	if dir == "" {
		return p
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("bed: phrase watcher unavailable", "error", err)
		return p
	}
	if err := w.Add(dir); err != nil {
		log.Warn("bed: cannot watch phrase folder", "dir", dir, "error", err)
		w.Close()
		return p
	}
	p.watcher = w
	go p.watch()
	return p
}

func (p *pool) watch() {
	for {
		select {
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Debug("bed: phrase folder changed, invalidating pool", "event", ev.Op.String())
				p.invalidate()
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("bed: phrase watcher error", "error", err)
		case <-p.done:
			return
		}
	}
}

func (p *pool) invalidate() {
	p.mu.Lock()
	p.phrases = nil
	p.loaded = false
	p.mu.Unlock()
}

func (p *pool) close() {
	close(p.done)
	if p.watcher != nil {
		p.watcher.Close()
	}
}

// pick returns a random phrase, loading the pool on first use. Returns
// false when no phrases are available.
func (p *pool) pick(rng *rand.Rand) (Phrase, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		p.phrases = p.load()
		p.loaded = true
	}
	if len(p.phrases) == 0 {
		return Phrase{}, false
	}
	return p.phrases[rng.Intn(len(p.phrases))], true
}

func (p *pool) load() []Phrase {
	if p.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		log.Warn("bed: cannot read phrase folder", "dir", p.dir, "error", err)
		return nil
	}

	var phrases []Phrase
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		path := filepath.Join(p.dir, e.Name())
		buf, err := wavio.Decode(path)
		if err != nil {
			log.Warn("bed: skipping undecodable phrase", "path", path, "error", err)
			continue
		}
		buf = wavio.Resample(buf, p.rate)
		phrases = append(phrases, Phrase{
			Name:    e.Name(),
			Samples: whisperize(buf.Samples, p.rate),
		})
	}

	log.Debug("bed: phrase pool loaded", "dir", p.dir, "count", len(phrases))
	return phrases
}

// whisperize runs the fixed shaping chain over a phrase: high-pass,
// low-pass, high-shelf boost, then an envelope-gated noise overlay that
// gives the clip its breathy timbre.
func whisperize(samples []float64, rate int) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)

	newHighPass(rate, 180, 0.707).apply(out)
	newLowPass(rate, 6500, 0.707).apply(out)
	newHighShelf(rate, 3000, 6).apply(out)

	// Envelope follower gates white noise onto the signal so breath is
	// only added where the phrase itself has energy.
	env := 0.0
	envCoef := 1 - 1/(0.01*float64(rate)) // ~10ms follower
	rng := rand.New(rand.NewSource(int64(len(samples))))
	const whisperGain = 0.35
	for i, s := range out {
		mag := s
		if mag < 0 {
			mag = -mag
		}
		env = envCoef*env + (1-envCoef)*mag
		noise := rng.Float64()*2 - 1
		out[i] = wavio.Clamp(s + noise*env*whisperGain)
	}
	return out
}

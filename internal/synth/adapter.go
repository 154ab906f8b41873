package synth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurkit/murmur/internal/bed"
	"github.com/murmurkit/murmur/internal/mix"
	"github.com/murmurkit/murmur/internal/validate"
	"github.com/murmurkit/murmur/internal/wavio"
)

// Config tunes the adapter.
type Config struct {
	// ComposeBed layers every rendered utterance over a generated bed.
	ComposeBed bool
	// BedPad extends the bed past the speech so the stream never ends
	// mid-fade.
	BedPad time.Duration

	MixOptions      mix.Options
	ValidateOptions validate.Options
}

// DefaultConfig returns the standard adapter settings.
func DefaultConfig() Config {
	return Config{
		ComposeBed:      false,
		BedPad:          600 * time.Millisecond,
		MixOptions:      mix.DefaultOptions(),
		ValidateOptions: validate.DefaultOptions(),
	}
}

// Request is one synthesis job.
type Request struct {
	Text    string
	Voice   Voice
	OutPath string
	// BedDir receives generated bed variants when composition is on.
	BedDir string
}

// Result reports a completed render. Empty means the text had no
// speakable content; no asset was produced and no worker slot was used.
type Result struct {
	Path     string
	Empty    bool
	Duration time.Duration
}

type job struct {
	ctx  context.Context
	req  Request
	resp chan outcome
}

type outcome struct {
	res Result
	err error
}

// Adapter serializes all synthesis through a single background worker.
// The text-to-speech capability and its output files are shared mutable
// resources that must never see two overlapping renders.
type Adapter struct {
	engine Engine
	beds   *bed.Generator
	cfg    Config

	jobs      chan job
	closeOnce sync.Once
	done      chan struct{}

	// Serialization instrumentation: tests assert maxInFlight never
	// exceeds one.
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// NewAdapter creates an Adapter around engine. beds may be nil when
// composition is disabled.
func NewAdapter(engine Engine, beds *bed.Generator, cfg Config) *Adapter {
	a := &Adapter{
		engine: engine,
		beds:   beds,
		cfg:    cfg,
		jobs:   make(chan job),
		done:   make(chan struct{}),
	}
	go a.worker()
	return a
}

// Close stops the worker. In-flight renders finish first.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() { close(a.done) })
}

// MaxObservedConcurrency reports the peak number of simultaneous
// renders seen by the worker.
func (a *Adapter) MaxObservedConcurrency() int {
	return int(a.maxInFlight.Load())
}

// Render synthesizes req.Text to req.OutPath. The calling goroutine
// blocks while the job waits its turn on the worker; whitespace-only
// text returns an Empty result immediately without taking a slot.
func (a *Adapter) Render(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{Empty: true}, nil
	}

	j := job{ctx: ctx, req: req, resp: make(chan outcome, 1)}
	select {
	case a.jobs <- j:
	case <-a.done:
		return Result{}, ErrAdapterClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case out := <-j.resp:
		return out.res, out.err
	case <-ctx.Done():
		// The worker still owns the job; its result is discarded.
		return Result{}, ctx.Err()
	}
}

func (a *Adapter) worker() {
	for {
		select {
		case <-a.done:
			return
		case j := <-a.jobs:
			n := a.inFlight.Add(1)
			if n > a.maxInFlight.Load() {
				a.maxInFlight.Store(n)
			}
			res, err := a.render(j.ctx, j.req)
			a.inFlight.Add(-1)
			// The caller stops waiting once its context ends; a
			// finished asset would be orphaned on disk.
			if cerr := j.ctx.Err(); cerr != nil {
				if res.Path != "" {
					os.Remove(res.Path)
				}
				res, err = Result{}, cerr
			}
			j.resp <- outcome{res: res, err: err}
		}
	}
}

func (a *Adapter) render(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := a.engine.Render(ctx, req.Text, req.Voice, req.OutPath); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if err := validate.Check(ctx, req.OutPath, a.cfg.ValidateOptions); err != nil {
		os.Remove(req.OutPath)
		return Result{}, fmt.Errorf("rendered asset failed validation: %w", err)
	}

	d, err := assetDuration(req.OutPath)
	if err != nil {
		os.Remove(req.OutPath)
		return Result{}, err
	}

	if a.cfg.ComposeBed && a.beds != nil {
		if mixedDur, ok := a.composeOverBed(ctx, req, d); ok {
			d = mixedDur
		}
	}

	return Result{Path: req.OutPath, Duration: d}, nil
}

// composeOverBed layers the solo render over a generated bed. Any
// failure falls back to the solo asset; losing the masking layer beats
// losing the utterance.
func (a *Adapter) composeOverBed(ctx context.Context, req Request, speech time.Duration) (time.Duration, bool) {
	bedDir := req.BedDir
	if bedDir == "" {
		bedDir = os.TempDir()
	}

	bedPath, err := a.beds.Generate(ctx, speech+a.cfg.BedPad, bedDir)
	if err != nil {
		log.Warn("synth: bed generation failed, keeping solo speech", "error", err)
		return 0, false
	}

	mixedPath := req.OutPath + ".mix"
	if err := mix.Combine(req.OutPath, bedPath, mixedPath, a.cfg.MixOptions); err != nil {
		log.Warn("synth: mix failed, keeping solo speech", "error", err)
		os.Remove(mixedPath)
		return 0, false
	}
	if err := validate.Check(ctx, mixedPath, a.cfg.ValidateOptions); err != nil {
		log.Warn("synth: mixed asset failed validation, keeping solo speech", "error", err)
		os.Remove(mixedPath)
		return 0, false
	}
	if err := os.Rename(mixedPath, req.OutPath); err != nil {
		log.Warn("synth: could not swap in mixed asset", "error", err)
		os.Remove(mixedPath)
		return 0, false
	}

	d, err := assetDuration(req.OutPath)
	if err != nil {
		return 0, false
	}
	return d, true
}

func assetDuration(path string) (time.Duration, error) {
	d, err := wavio.Duration(path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return d, nil
}

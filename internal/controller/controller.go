// Package controller orchestrates the continuous delivery session: it
// owns the gapless playback queue, the sequential and random-loop
// feeders, lookahead buffering, interruption recovery, and the
// delegate notifications to the application layer.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurkit/murmur/internal/bed"
	"github.com/murmurkit/murmur/internal/notify"
	"github.com/murmurkit/murmur/internal/player"
	"github.com/murmurkit/murmur/internal/source"
	"github.com/murmurkit/murmur/internal/synth"
	"github.com/murmurkit/murmur/internal/wavio"
)

// Mode selects the delivery mode for a session.
type Mode int

const (
	// ModeSequential plays every source item once, in order, then a
	// trailing filler asset.
	ModeSequential Mode = iota
	// ModeRandomLoop plays random source items forever, separated by
	// variable-length gaps.
	ModeRandomLoop
)

// GapStyle selects what fills the space between random-loop items.
type GapStyle int

const (
	// GapSilence fills gaps with plain silence.
	GapSilence GapStyle = iota
	// GapBed fills gaps with generated ambient bed audio.
	GapBed
)

// Events is the observer interface the controller reports through.
// Implementations must not call back into the controller.
type Events interface {
	StatusText(text string)
	Progress(processed, total int)
	NowPlaying(displayName string)
	StateChanged(state State)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) StatusText(string)  {}
func (NopEvents) Progress(int, int)  {}
func (NopEvents) NowPlaying(string)  {}
func (NopEvents) StateChanged(State) {}

// Config tunes the controller.
type Config struct {
	// ScratchDir holds every transient asset. Fully owned by the
	// controller and rebuilt on start and stop.
	ScratchDir string

	// Lookahead is the random-loop buffer depth, counted in speech
	// items. Gap filler does not count.
	Lookahead int

	// GapStyle selects silence or bed filler.
	GapStyle GapStyle
	// MinGap and MaxGap bound the random gap length. A reversed range
	// is swap-normalized at scheduling time.
	MinGap time.Duration
	MaxGap time.Duration

	// TrailerLength is the filler appended after the last sequential
	// item so the stream does not end abruptly.
	TrailerLength time.Duration

	// AutoResume allows automatic resume after an OS interruption when
	// the OS signals it is appropriate.
	AutoResume bool

	// LongGapThreshold routes gaps longer than this through the
	// pause-and-remind path instead of queueing filler audio. Zero
	// disables the path.
	LongGapThreshold time.Duration

	// SilenceSampleRate is the rate for generated silence assets.
	SilenceSampleRate int

	// RetryBackoff is the wait before retrying a different pick after
	// an empty or failed random-mode synthesis.
	RetryBackoff time.Duration
	// NudgeDelay is how long after an advance the self-heal check runs.
	NudgeDelay time.Duration
}

// DefaultConfig returns the standard controller settings.
func DefaultConfig() Config {
	return Config{
		Lookahead:         2,
		GapStyle:          GapSilence,
		MinGap:            4 * time.Second,
		MaxGap:            12 * time.Second,
		TrailerLength:     1500 * time.Millisecond,
		AutoResume:        true,
		SilenceSampleRate: 44100,
		RetryBackoff:      250 * time.Millisecond,
		NudgeDelay:        200 * time.Millisecond,
	}
}

// ErrClosed is returned for operations on a closed controller.
var ErrClosed = errors.New("controller is closed")

// ErrNoItems is returned when start is given an empty source list.
var ErrNoItems = errors.New("no source items")

type inputKind int

const (
	inCommand inputKind = iota
	inSeqRender
	inTrailer
	inPairRender
	inSkip
	inPlayerEvent
	inNudge
	inResumeTimer
)

// input is one state-machine input. Everything that mutates session
// state arrives through the inputs channel and is consumed on the
// single control goroutine.
type input struct {
	kind inputKind
	gen  uint64

	item    player.Item
	empty   bool
	err     error
	gapItem player.Item
	hasGap  bool
	longGap time.Duration
	name    string

	ev player.Event

	fn  func() error
	ack chan error
}

type session struct {
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	mode   Mode

	processed int
	total     int

	// queued tracks backing paths currently in the player queue. The
	// queue never holds two items with the same path.
	queued map[string]struct{}

	speechBuffered int
	pendingDemand  int
	demand         chan struct{}

	// longGapAfter maps a speech item ID to the gap that follows it on
	// the pause-and-remind path.
	longGapAfter map[int64]time.Duration

	// gapPaused marks a pause owned by the long-gap timer. A pause the
	// user asked for clears it, so the timer never overrides them.
	gapPaused bool

	seqDone bool
}

// Controller drives one live session at a time over a gapless player.
type Controller struct {
	adapter  *synth.Adapter
	beds     *bed.Generator
	q        player.Queued
	reminder notify.Reminder
	cfg      Config
	events   Events

	inputs chan input
	root   context.Context
	cancel context.CancelFunc

	closeOnce sync.Once

	mu     sync.Mutex
	voice  synth.Voice
	minGap time.Duration
	maxGap time.Duration

	stateMu    sync.Mutex
	machine    *stateMachine
	wasPlaying bool

	// control goroutine only
	sess *session
	gen  uint64

	nextID atomic.Int64
}

// New creates a Controller. beds may be nil when GapStyle is silence
// and bed composition is off; reminder and events may be nil.
func New(adapter *synth.Adapter, beds *bed.Generator, q player.Queued, reminder notify.Reminder, events Events, cfg Config) (*Controller, error) {
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 2
	}
	if cfg.SilenceSampleRate <= 0 {
		cfg.SilenceSampleRate = 44100
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}
	if cfg.NudgeDelay <= 0 {
		cfg.NudgeDelay = 200 * time.Millisecond
	}
	if cfg.ScratchDir == "" {
		return nil, errors.New("scratch directory is required")
	}
	cfg.ScratchDir = filepath.Clean(cfg.ScratchDir)
	if err := os.MkdirAll(cfg.ScratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	if reminder == nil {
		reminder = notify.Nop{}
	}
	if events == nil {
		events = NopEvents{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		adapter:  adapter,
		beds:     beds,
		q:        q,
		reminder: reminder,
		cfg:      cfg,
		events:   events,
		inputs:   make(chan input),
		root:     ctx,
		cancel:   cancel,
		voice:    synth.DefaultVoice(),
		minGap:   cfg.MinGap,
		maxGap:   cfg.MaxGap,
		machine:  newStateMachine(),
	}
	go c.run()
	go c.pump()
	return c, nil
}

// State returns the current session state.
func (c *Controller) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.machine.state()
}

// UpdateVoice changes the voice used for future synthesis. Items
// already queued keep the voice they were rendered with.
func (c *Controller) UpdateVoice(v synth.Voice) {
	c.mu.Lock()
	c.voice = v
	c.mu.Unlock()
}

// Voice returns the voice future renders will use.
func (c *Controller) Voice() synth.Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// UpdateGapRange changes the random-loop gap bounds for future
// scheduling only.
func (c *Controller) UpdateGapRange(min, max time.Duration) {
	c.mu.Lock()
	c.minGap, c.maxGap = min, max
	c.mu.Unlock()
}

// gapRange returns the effective, swap-normalized gap bounds.
func (c *Controller) gapRange() (time.Duration, time.Duration) {
	c.mu.Lock()
	lo, hi := c.minGap, c.maxGap
	c.mu.Unlock()
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Start begins a new session, fully stopping any prior one first.
func (c *Controller) Start(items []source.Item, mode Mode) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	return c.do(func() error {
		c.stopSession()
		c.startSession(items, mode)
		return nil
	})
}

// Pause suspends delivery. The session stays live.
func (c *Controller) Pause() error {
	return c.do(func() error {
		if c.sess == nil {
			return nil
		}
		c.sess.gapPaused = false
		c.q.Pause()
		c.setState(StatePaused)
		c.events.StatusText("paused")
		return nil
	})
}

// Resume continues a paused session.
func (c *Controller) Resume() error {
	return c.do(func() error {
		if c.sess == nil {
			return nil
		}
		c.sess.gapPaused = false
		c.q.Resume()
		c.setState(StatePlaying)
		c.events.StatusText("resumed")
		return nil
	})
}

// Stop ends the session, discards the queue, and rebuilds the scratch
// directory. The scratch directory is empty when Stop returns.
func (c *Controller) Stop() error {
	return c.do(func() error {
		c.stopSession()
		return nil
	})
}

// Close stops the session and shuts the controller down.
func (c *Controller) Close() error {
	err := c.Stop()
	if errors.Is(err, ErrClosed) {
		err = nil
	}
	c.closeOnce.Do(c.cancel)
	return err
}

// do runs fn on the control goroutine and waits for it.
func (c *Controller) do(fn func() error) error {
	in := input{kind: inCommand, fn: fn, ack: make(chan error, 1)}
	select {
	case c.inputs <- in:
	case <-c.root.Done():
		return ErrClosed
	}
	select {
	case err := <-in.ack:
		return err
	case <-c.root.Done():
		return ErrClosed
	}
}

// post delivers an input to the control goroutine.
func (c *Controller) post(in input) {
	select {
	case c.inputs <- in:
	case <-c.root.Done():
	}
}

// pump forwards player notifications into the input channel.
func (c *Controller) pump() {
	for {
		select {
		case <-c.root.Done():
			return
		case ev, ok := <-c.q.Events():
			if !ok {
				return
			}
			c.post(input{kind: inPlayerEvent, ev: ev})
		}
	}
}

func (c *Controller) run() {
	for {
		select {
		case <-c.root.Done():
			return
		case in := <-c.inputs:
			c.handle(in)
		}
	}
}

func (c *Controller) setState(s State) {
	c.stateMu.Lock()
	changed := c.machine.state() != s && c.machine.transition(s)
	c.stateMu.Unlock()
	if changed {
		log.Debug("controller: state change", "state", s)
		c.events.StateChanged(s)
	}
}

func (c *Controller) stale(gen uint64) bool {
	return c.sess == nil || c.sess.gen != gen
}

func (c *Controller) startSession(items []source.Item, mode Mode) {
	c.gen++
	ctx, cancel := context.WithCancel(c.root)
	s := &session{
		gen:          c.gen,
		ctx:          ctx,
		cancel:       cancel,
		mode:         mode,
		queued:       make(map[string]struct{}),
		longGapAfter: make(map[int64]time.Duration),
	}
	if mode == ModeSequential {
		s.total = len(items)
	}
	c.sess = s

	c.setState(StateFilling)
	c.events.Progress(0, s.total)
	c.events.StatusText("preparing session")
	log.Info("controller: session started",
		"mode", mode, "items", len(items), "generation", s.gen)

	switch mode {
	case ModeSequential:
		go c.sequentialFeeder(ctx, s.gen, items)
	case ModeRandomLoop:
		s.demand = make(chan struct{}, c.cfg.Lookahead+1)
		c.topUp()
		go c.randomFeeder(ctx, s.gen, items, s.demand)
	}
}

func (c *Controller) stopSession() {
	if c.sess != nil {
		c.sess.cancel()
		c.sess = nil
	}
	c.q.Stop()

	if err := os.RemoveAll(c.cfg.ScratchDir); err != nil {
		log.Warn("controller: could not clear scratch dir", "error", err)
	}
	if err := os.MkdirAll(c.cfg.ScratchDir, 0o755); err != nil {
		log.Warn("controller: could not recreate scratch dir", "error", err)
	}

	c.setState(StateIdle)
	c.events.Progress(0, 0)
	c.events.StatusText("stopped")
}

func (c *Controller) handle(in input) {
	switch in.kind {
	case inCommand:
		in.ack <- in.fn()

	case inSeqRender:
		c.handleSeqRender(in)

	case inTrailer:
		if c.stale(in.gen) {
			c.discardAsset(in.item)
			return
		}
		if in.err != nil {
			log.Warn("controller: trailer render failed", "error", in.err)
			c.sess.seqDone = true
			c.maybeComplete()
			return
		}
		c.appendItem(in.item)
		c.sess.seqDone = true

	case inPairRender:
		c.handlePairRender(in)

	case inSkip:
		if c.stale(in.gen) {
			return
		}
		if in.err != nil {
			log.Warn("controller: pick failed, retrying another",
				"item", in.name, "error", in.err)
		}
		c.events.StatusText(fmt.Sprintf("skipped %s", in.name))

	case inPlayerEvent:
		c.handlePlayerEvent(in.ev)

	case inNudge:
		c.nudge()

	case inResumeTimer:
		if c.stale(in.gen) {
			return
		}
		// Resume only the pause the gap itself took. A pause or
		// interruption that arrived meanwhile stays in force.
		if c.State() == StatePaused && c.sess.gapPaused {
			c.sess.gapPaused = false
			c.q.Resume()
			c.setState(StatePlaying)
			c.events.StatusText("resuming after gap")
		}
	}
}

func (c *Controller) handleSeqRender(in input) {
	if c.stale(in.gen) {
		c.discardAsset(in.item)
		return
	}
	s := c.sess

	if in.err != nil || in.empty {
		// Skips still advance progress; they must never stall it.
		if in.err != nil {
			log.Warn("controller: item skipped",
				"item", in.name, "error", in.err)
		} else {
			log.Debug("controller: empty item skipped", "item", in.name)
		}
		s.processed++
		c.events.Progress(s.processed, s.total)
		c.events.StatusText(fmt.Sprintf("skipped %s", in.name))
		c.maybeComplete()
		return
	}

	c.appendItem(in.item)
	s.processed++
	c.events.Progress(s.processed, s.total)
}

func (c *Controller) handlePairRender(in input) {
	if c.stale(in.gen) {
		c.discardAsset(in.item)
		c.discardAsset(in.gapItem)
		return
	}
	s := c.sess
	if s.pendingDemand > 0 {
		s.pendingDemand--
	}

	c.appendItem(in.item)
	if in.longGap > 0 {
		s.longGapAfter[in.item.ID] = in.longGap
	} else if in.hasGap {
		c.appendItem(in.gapItem)
	}
	c.topUp()
}

// appendItem puts an item on the player queue, enforcing the unique
// backing-path invariant.
func (c *Controller) appendItem(it player.Item) {
	s := c.sess
	if _, dup := s.queued[it.Path]; dup {
		// Bed variants can be served twice from the cache. Queueing
		// the same path twice is never allowed; drop the newcomer.
		log.Debug("controller: path already queued, dropping",
			"path", it.Path, "kind", it.Kind)
		return
	}
	s.queued[it.Path] = struct{}{}
	if err := c.q.Append(it); err != nil {
		log.Warn("controller: append failed", "error", err)
		delete(s.queued, it.Path)
		return
	}
	if it.Kind == player.KindSpeech {
		s.speechBuffered++
	}
	c.scheduleNudge()
}

func (c *Controller) handlePlayerEvent(ev player.Event) {
	if c.sess == nil {
		return
	}
	s := c.sess

	switch ev.Type {
	case player.ItemStarted:
		if ev.Item.Kind == player.KindSpeech {
			c.events.NowPlaying(ev.Item.DisplayName)
			c.events.StatusText(fmt.Sprintf("playing %s", ev.Item.DisplayName))
		}
		if c.State() == StateFilling {
			c.setState(StatePlaying)
		}

	case player.ItemFinished:
		c.releaseAsset(ev.Item)
		if ev.Item.Kind == player.KindSpeech {
			s.speechBuffered--
			if s.mode == ModeRandomLoop {
				s.processed++
				c.events.Progress(s.processed, s.total)
			}
			if gap, ok := s.longGapAfter[ev.Item.ID]; ok {
				delete(s.longGapAfter, ev.Item.ID)
				c.enterLongGap(gap)
			}
		}
		c.topUp()
		c.scheduleNudge()
		c.maybeComplete()

	case player.ItemFailed:
		log.Warn("controller: playback failed, skipping",
			"item", ev.Item.DisplayName, "error", ev.Err)
		c.releaseAsset(ev.Item)
		if ev.Item.Kind == player.KindSpeech {
			s.speechBuffered--
			delete(s.longGapAfter, ev.Item.ID)
		}
		c.topUp()
		c.scheduleNudge()
		c.maybeComplete()

	case player.InterruptionBegan:
		s.gapPaused = false
		c.stateMu.Lock()
		c.wasPlaying = c.machine.state() == StatePlaying
		c.stateMu.Unlock()
		c.setState(StatePaused)
		c.events.StatusText("audio interrupted")

	case player.InterruptionEnded:
		c.stateMu.Lock()
		wasPlaying := c.wasPlaying
		c.stateMu.Unlock()
		if wasPlaying && ev.ShouldResume && c.cfg.AutoResume {
			c.q.Resume()
			c.setState(StatePlaying)
			c.events.StatusText("resumed after interruption")
		} else {
			c.events.StatusText("interruption over, waiting for resume")
		}
	}

	c.nudge()
}

// enterLongGap pauses delivery for the gap and schedules a reminder.
func (c *Controller) enterLongGap(gap time.Duration) {
	c.sess.gapPaused = true
	c.q.Pause()
	c.setState(StatePaused)
	c.events.StatusText(fmt.Sprintf("long gap, resuming in %s", gap.Round(time.Second)))
	if err := c.reminder.Schedule(gap, "delivery resumes"); err != nil {
		log.Warn("controller: reminder scheduling failed", "error", err)
	}
	gen := c.sess.gen
	time.AfterFunc(gap, func() {
		c.post(input{kind: inResumeTimer, gen: gen})
	})
}

// maybeComplete ends a sequential session once the feeder is done and
// the queue has fully drained.
func (c *Controller) maybeComplete() {
	s := c.sess
	if s == nil || s.mode != ModeSequential || !s.seqDone {
		return
	}
	if c.q.Len() > 0 || len(s.queued) > 0 {
		return
	}
	log.Info("controller: session complete", "processed", s.processed)
	c.events.StatusText("session complete")
	c.stopSession()
}

// topUp keeps the random-loop lookahead at depth: one demand token per
// missing speech item.
func (c *Controller) topUp() {
	s := c.sess
	if s == nil || s.mode != ModeRandomLoop {
		return
	}
	for s.speechBuffered+s.pendingDemand < c.cfg.Lookahead {
		select {
		case s.demand <- struct{}{}:
			s.pendingDemand++
		default:
			return
		}
	}
}

// nudge force-resumes a player that reports not-playing while items
// are queued. Render/insert races can otherwise stall the stream.
func (c *Controller) nudge() {
	if c.sess == nil || c.State() != StatePlaying {
		return
	}
	if c.q.Len() > 0 && !c.q.IsPlaying() {
		log.Debug("controller: queue stalled, nudging player")
		c.q.Resume()
	}
}

func (c *Controller) scheduleNudge() {
	if c.sess == nil {
		return
	}
	gen := c.sess.gen
	time.AfterFunc(c.cfg.NudgeDelay, func() {
		c.post(input{kind: inNudge, gen: gen})
	})
}

// releaseAsset forgets a queued path and deletes its file when it
// lives directly in the scratch directory. Bed variants live in a
// subdirectory and stay for cache reuse until stop.
func (c *Controller) releaseAsset(it player.Item) {
	if it.Path == "" {
		return
	}
	if c.sess != nil {
		delete(c.sess.queued, it.Path)
	}
	if filepath.Dir(it.Path) == c.cfg.ScratchDir {
		if err := os.Remove(it.Path); err != nil && !os.IsNotExist(err) {
			log.Debug("controller: could not remove asset", "path", it.Path, "error", err)
		}
	}
}

// discardAsset removes the file behind a render that completed after
// its session ended.
func (c *Controller) discardAsset(it player.Item) {
	if it.Path == "" {
		return
	}
	os.Remove(it.Path)
}

// sequentialFeeder renders every item in source order. The synthesis
// worker's single concurrency makes completion order match submission
// order, so items arrive at the control goroutine already ordered.
func (c *Controller) sequentialFeeder(ctx context.Context, gen uint64, items []source.Item) {
	for i, it := range items {
		if ctx.Err() != nil {
			return
		}
		out := filepath.Join(c.cfg.ScratchDir, fmt.Sprintf("speech_%d_%03d.wav", gen, i))
		res, err := c.adapter.Render(ctx, synth.Request{
			Text:    it.RawText,
			Voice:   c.Voice(),
			OutPath: out,
			BedDir:  filepath.Join(c.cfg.ScratchDir, "beds"),
		})

		in := input{kind: inSeqRender, gen: gen, name: it.DisplayName, err: err}
		if err == nil {
			if res.Empty {
				in.empty = true
			} else {
				in.item = player.Item{
					ID:          c.nextID.Add(1),
					Kind:        player.KindSpeech,
					Path:        res.Path,
					SourceIndex: it.Index,
					DisplayName: it.DisplayName,
				}
			}
		}
		c.post(in)
	}

	trailer, err := c.makeFiller(ctx, gen, c.cfg.TrailerLength,
		fmt.Sprintf("trailer_%d.wav", gen))
	c.post(input{kind: inTrailer, gen: gen, item: trailer, err: err})
}

// randomFeeder produces one speech+gap pair per demand token. Picks
// are biased against immediate repeats; empty or failed picks retry a
// different item after a short backoff instead of stalling the buffer.
func (c *Controller) randomFeeder(ctx context.Context, gen uint64, items []source.Item, demand <-chan struct{}) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(gen)))
	last := -1
	serial := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-demand:
		}

		for {
			if ctx.Err() != nil {
				return
			}
			pick := rng.Intn(len(items))
			if len(items) > 1 && pick == last {
				pick = (pick + 1 + rng.Intn(len(items)-1)) % len(items)
			}
			it := items[pick]

			serial++
			out := filepath.Join(c.cfg.ScratchDir, fmt.Sprintf("speech_%d_r%04d.wav", gen, serial))
			res, err := c.adapter.Render(ctx, synth.Request{
				Text:    it.RawText,
				Voice:   c.Voice(),
				OutPath: out,
				BedDir:  filepath.Join(c.cfg.ScratchDir, "beds"),
			})
			if err != nil || res.Empty {
				c.post(input{kind: inSkip, gen: gen, name: it.DisplayName, err: err})
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.cfg.RetryBackoff):
				}
				continue
			}
			last = pick

			speech := player.Item{
				ID:          c.nextID.Add(1),
				Kind:        player.KindSpeech,
				Path:        res.Path,
				SourceIndex: it.Index,
				DisplayName: it.DisplayName,
			}

			lo, hi := c.gapRange()
			gap := lo
			if hi > lo {
				gap = lo + time.Duration(rng.Int63n(int64(hi-lo)+1))
			}

			in := input{kind: inPairRender, gen: gen, item: speech}
			if c.cfg.LongGapThreshold > 0 && gap > c.cfg.LongGapThreshold {
				in.longGap = gap
			} else {
				gi, err := c.makeFiller(ctx, gen, gap,
					fmt.Sprintf("gap_%d_%d.wav", gen, speech.ID))
				if err != nil {
					log.Warn("controller: gap render failed, continuing without gap", "error", err)
				} else {
					in.gapItem = gi
					in.hasGap = true
				}
			}
			c.post(in)
			break
		}
	}
}

// makeFiller produces a gap or trailer asset: a bed when configured
// and available, plain silence otherwise.
func (c *Controller) makeFiller(ctx context.Context, gen uint64, d time.Duration, name string) (player.Item, error) {
	id := c.nextID.Add(1)

	if c.cfg.GapStyle == GapBed && c.beds != nil {
		p, err := c.beds.Generate(ctx, d, filepath.Join(c.cfg.ScratchDir, "beds"))
		if err == nil {
			return player.Item{ID: id, Kind: player.KindFiller, Path: p, SourceIndex: -1}, nil
		}
		log.Warn("controller: bed filler failed, using silence", "error", err)
	}

	p := filepath.Join(c.cfg.ScratchDir, name)
	if err := wavio.Encode(p, wavio.Silence(d, c.cfg.SilenceSampleRate)); err != nil {
		return player.Item{}, fmt.Errorf("write silence filler: %w", err)
	}
	return player.Item{ID: id, Kind: player.KindFiller, Path: p, SourceIndex: -1}, nil
}

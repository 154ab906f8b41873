package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/murmurkit/murmur/internal/wavio"
)

// OtoPlayer streams queued WAV assets gaplessly through a single oto
// player. Assets are decoded and resampled to the device rate on
// Append; the device reads one continuous PCM stream, so item
// boundaries cost nothing. OS interruption events are not observable
// through oto; they are surfaced by platform layers where available.
type OtoPlayer struct {
	ctx    *oto.Context
	stream *queueStream
	oto    *oto.Player

	rate   int
	events chan Event

	mu      sync.Mutex
	playing bool
	closed  bool
}

// NewOtoPlayer opens the audio device at the given sample rate.
func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	if sampleRate != 44100 && sampleRate != 48000 {
		return nil, fmt.Errorf("sample rate must be 44100 or 48000, got %d", sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	p := &OtoPlayer{
		ctx:    ctx,
		rate:   sampleRate,
		events: make(chan Event, 64),
	}
	p.stream = newQueueStream(p.emit)
	p.oto = ctx.NewPlayer(p.stream)
	return p, nil
}

func (p *OtoPlayer) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
		log.Warn("player: event channel full, dropping", "type", ev.Type)
	}
}

// Append implements Queued. The asset is decoded eagerly; an
// undecodable asset emits ItemFailed instead of entering the queue.
func (p *OtoPlayer) Append(item Item) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.mu.Unlock()

	buf, err := wavio.Decode(item.Path)
	if err != nil {
		p.emit(Event{Type: ItemFailed, Item: item, Err: err})
		return nil
	}
	buf = wavio.Resample(buf, p.rate)

	pcm := make([]byte, len(buf.Samples)*2)
	for i, s := range buf.Samples {
		v := int16(wavio.Clamp(s) * 32767)
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}

	p.stream.push(item, pcm)

	p.mu.Lock()
	if !p.playing {
		p.oto.Play()
		p.playing = true
	}
	p.mu.Unlock()
	return nil
}

// Pause implements Queued.
func (p *OtoPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		p.oto.Pause()
		p.playing = false
	}
}

// Resume implements Queued. Safe to call when already playing; this is
// the controller's nudge path.
func (p *OtoPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if !p.playing {
		p.oto.Play()
		p.playing = true
	}
}

// Stop implements Queued.
func (p *OtoPlayer) Stop() {
	p.mu.Lock()
	if p.playing {
		p.oto.Pause()
		p.playing = false
	}
	p.mu.Unlock()
	p.stream.clear()
}

// IsPlaying implements Queued.
func (p *OtoPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.oto.IsPlaying() && p.stream.len() > 0
}

// Len implements Queued.
func (p *OtoPlayer) Len() int { return p.stream.len() }

// Events implements Queued.
func (p *OtoPlayer) Events() <-chan Event { return p.events }

// Close implements Queued.
func (p *OtoPlayer) Close() error {
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.oto.Close()
}

// queueStream is the continuous PCM stream the device reads. When an
// item's bytes run out the next item begins on the very next read, and
// the finish callback fires. With an empty queue the stream yields
// silence so the device never starves.
type queueStream struct {
	mu      sync.Mutex
	current *streamItem
	pending []*streamItem
	started bool
	emit    func(Event)
}

type streamItem struct {
	item Item
	pcm  []byte
	pos  int
}

func newQueueStream(emit func(Event)) *queueStream {
	return &queueStream{emit: emit}
}

func (s *queueStream) push(item Item, pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	si := &streamItem{item: item, pcm: pcm}
	if s.current == nil {
		s.current = si
		s.started = false
	} else {
		s.pending = append(s.pending, si)
	}
}

func (s *queueStream) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.pending = nil
	s.started = false
}

func (s *queueStream) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	if s.current != nil {
		n++
	}
	return n
}

// Read implements io.Reader for the audio device. It must not block.
func (s *queueStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for n < len(p) {
		if s.current == nil {
			// Silence keeps the device fed while the queue refills.
			for i := n; i < len(p); i++ {
				p[i] = 0
			}
			return len(p), nil
		}

		if !s.started {
			s.started = true
			s.emit(Event{Type: ItemStarted, Item: s.current.item})
		}

		copied := copy(p[n:], s.current.pcm[s.current.pos:])
		n += copied
		s.current.pos += copied

		if s.current.pos >= len(s.current.pcm) {
			finished := s.current.item
			s.advance()
			s.emit(Event{Type: ItemFinished, Item: finished})
		}
	}
	return n, nil
}

func (s *queueStream) advance() {
	if len(s.pending) == 0 {
		s.current = nil
		s.started = false
		return
	}
	s.current = s.pending[0]
	s.pending = s.pending[1:]
	s.started = false
}

// Drain waits until the queue empties or the timeout elapses. Used by
// the CLI when playing a finite session to completion.
func (p *OtoPlayer) Drain(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.stream.len() == 0 {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

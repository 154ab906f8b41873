package player

import (
	"sync"
	"time"
)

// MockQueued is a scripted in-memory player for tests. Items never
// actually play; the test advances the queue explicitly with FinishHead
// and friends, or enables AutoFinish to drain items on a timer.
type MockQueued struct {
	// AutoFinish, when positive, finishes the head item this long after
	// it starts. Zero means the test drives the queue manually.
	AutoFinish time.Duration

	mu      sync.Mutex
	items   []Item
	playing bool
	paused  bool
	closed  bool
	started bool

	appended []Item
	events   chan Event
}

// NewMockQueued returns a manually driven mock.
func NewMockQueued() *MockQueued {
	return &MockQueued{events: make(chan Event, 128)}
}

func (m *MockQueued) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// Append implements Queued.
func (m *MockQueued) Append(item Item) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.items = append(m.items, item)
	m.appended = append(m.appended, item)
	startNow := !m.paused && len(m.items) == 1
	if startNow {
		m.playing = true
		m.started = true
	}
	m.mu.Unlock()

	if startNow {
		m.emit(Event{Type: ItemStarted, Item: item})
		m.maybeAutoFinish(item)
	}
	return nil
}

func (m *MockQueued) maybeAutoFinish(item Item) {
	if m.AutoFinish <= 0 {
		return
	}
	go func() {
		time.Sleep(m.AutoFinish)
		m.mu.Lock()
		ok := !m.closed && !m.paused && len(m.items) > 0 && m.items[0].ID == item.ID
		m.mu.Unlock()
		if ok {
			m.FinishHead()
		}
	}()
}

// FinishHead completes the head item and starts the next one.
func (m *MockQueued) FinishHead() {
	m.mu.Lock()
	if len(m.items) == 0 {
		m.mu.Unlock()
		return
	}
	head := m.items[0]
	m.items = m.items[1:]
	var next *Item
	if len(m.items) > 0 && !m.paused {
		n := m.items[0]
		next = &n
	} else if len(m.items) == 0 {
		m.playing = false
	}
	m.mu.Unlock()

	m.emit(Event{Type: ItemFinished, Item: head})
	if next != nil {
		m.emit(Event{Type: ItemStarted, Item: *next})
		m.maybeAutoFinish(*next)
	}
}

// FailHead drops the head item with err and starts the next one.
func (m *MockQueued) FailHead(err error) {
	m.mu.Lock()
	if len(m.items) == 0 {
		m.mu.Unlock()
		return
	}
	head := m.items[0]
	m.items = m.items[1:]
	var next *Item
	if len(m.items) > 0 && !m.paused {
		n := m.items[0]
		next = &n
	} else if len(m.items) == 0 {
		m.playing = false
	}
	m.mu.Unlock()

	m.emit(Event{Type: ItemFailed, Item: head, Err: err})
	if next != nil {
		m.emit(Event{Type: ItemStarted, Item: *next})
		m.maybeAutoFinish(*next)
	}
}

// BeginInterruption simulates the OS taking the output.
func (m *MockQueued) BeginInterruption() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	m.emit(Event{Type: InterruptionBegan})
}

// EndInterruption simulates the OS returning the output.
func (m *MockQueued) EndInterruption(shouldResume bool) {
	m.emit(Event{Type: InterruptionEnded, ShouldResume: shouldResume})
}

// Pause implements Queued.
func (m *MockQueued) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	m.playing = false
}

// Resume implements Queued.
func (m *MockQueued) Resume() {
	m.mu.Lock()
	wasPaused := m.paused
	m.paused = false
	var head *Item
	if len(m.items) > 0 {
		m.playing = true
		if wasPaused || !m.started {
			h := m.items[0]
			head = &h
			m.started = true
		}
	}
	m.mu.Unlock()

	if head != nil {
		m.maybeAutoFinish(*head)
	}
}

// Stop implements Queued.
func (m *MockQueued) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.playing = false
	m.started = false
}

// IsPlaying implements Queued.
func (m *MockQueued) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing && len(m.items) > 0
}

// Len implements Queued.
func (m *MockQueued) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Events implements Queued.
func (m *MockQueued) Events() <-chan Event { return m.events }

// Close implements Queued.
func (m *MockQueued) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.items = nil
	m.playing = false
	return nil
}

// Appended returns every item ever appended, in order.
func (m *MockQueued) Appended() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, len(m.appended))
	copy(out, m.appended)
	return out
}

// Head returns the current head item, if any.
func (m *MockQueued) Head() (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return Item{}, false
	}
	return m.items[0], true
}

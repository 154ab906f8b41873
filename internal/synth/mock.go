package synth

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/murmurkit/murmur/internal/wavio"
)

// MockEngine renders a deterministic tone whose length tracks the word
// count. Used by tests and by `--engine mock` dry runs.
type MockEngine struct {
	// SampleRate of generated assets.
	SampleRate int
	// PerWord is the simulated speech time per word.
	PerWord time.Duration
	// Delay is added before each render to simulate engine latency.
	Delay time.Duration

	mu       sync.Mutex
	failures map[string]error // text -> injected error
	renders  []string
}

// NewMockEngine returns a mock with fast defaults.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		SampleRate: 8000,
		PerWord:    60 * time.Millisecond,
		failures:   make(map[string]error),
	}
}

// FailWith injects an error for renders of exactly text.
func (m *MockEngine) FailWith(text string, err error) {
	m.mu.Lock()
	m.failures[text] = err
	m.mu.Unlock()
}

// Rendered returns the texts rendered so far, in order.
func (m *MockEngine) Rendered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.renders))
	copy(out, m.renders)
	return out
}

// Name implements Engine.
func (m *MockEngine) Name() string { return "mock" }

// Render implements Engine.
func (m *MockEngine) Render(ctx context.Context, text string, voice Voice, outPath string) error {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	m.mu.Lock()
	err := m.failures[text]
	if err == nil {
		m.renders = append(m.renders, text)
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}

	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	d := time.Duration(words)*m.PerWord + 150*time.Millisecond
	rate := voice.Rate
	if rate <= 0 {
		rate = 1
	}
	d = time.Duration(float64(d) / rate)

	buf := wavio.Silence(d, m.SampleRate)
	for i := range buf.Samples {
		buf.Samples[i] = 0.3 * math.Sin(2*math.Pi*220*voice.Pitch*float64(i)/float64(m.SampleRate))
	}
	return wavio.Encode(outPath, buf)
}

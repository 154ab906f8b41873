// Package synth wraps the external text-to-speech capability behind a
// single-concurrency adapter and optionally composes rendered speech
// over an ambient bed.
package synth

import (
	"context"
	"errors"
)

// Voice carries the caller-owned synthesis parameters. Updates apply to
// future renders only; queued assets are never re-rendered.
type Voice struct {
	Rate         float64
	Pitch        float64
	LanguageCode string
	VoiceID      string
}

// DefaultVoice returns neutral voice settings.
func DefaultVoice() Voice {
	return Voice{Rate: 1.0, Pitch: 1.0, LanguageCode: "en-US"}
}

// Engine is the black-box text-to-speech capability. Implementations
// are assumed stateful and safe for one render at a time only; the
// Adapter provides the serialization.
type Engine interface {
	// Render writes a playable audio asset for text at outPath.
	Render(ctx context.Context, text string, voice Voice, outPath string) error

	// Name identifies the engine in logs.
	Name() string
}

var (
	// ErrRenderFailed wraps engine failures.
	ErrRenderFailed = errors.New("speech render failed")

	// ErrAdapterClosed is returned for renders submitted after Close.
	ErrAdapterClosed = errors.New("synthesis adapter is closed")
)

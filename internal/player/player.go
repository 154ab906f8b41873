// Package player provides the gapless playback queue over the
// operating-system audio output. Items are appended at the tail only;
// the head advances when the device finishes an item.
package player

import "errors"

// Kind distinguishes queue entries.
type Kind int

const (
	// KindSpeech is a rendered utterance.
	KindSpeech Kind = iota
	// KindFiller is silence or bed audio between or after speech.
	KindFiller
)

// Item is one renderable unit in the queue. Ownership of the backing
// file transfers to whoever consumes the finish event.
type Item struct {
	ID          int64
	Kind        Kind
	Path        string
	SourceIndex int
	DisplayName string
}

// EventType enumerates player notifications.
type EventType int

const (
	// ItemStarted fires when an item becomes the playing head.
	ItemStarted EventType = iota
	// ItemFinished fires when the head item completes.
	ItemFinished
	// ItemFailed fires when the head item cannot be played.
	ItemFailed
	// InterruptionBegan fires when the OS takes the audio output.
	InterruptionBegan
	// InterruptionEnded fires when the OS returns it. ShouldResume
	// carries the OS hint.
	InterruptionEnded
)

// Event is one player notification.
type Event struct {
	Type         EventType
	Item         Item
	Err          error
	ShouldResume bool
}

// Queued is the gapless queue contract the controller drives.
type Queued interface {
	// Append adds an item at the tail. Playback starts as soon as the
	// queue has a playable head.
	Append(item Item) error

	Pause()
	Resume()

	// Stop halts playback and discards all queued items.
	Stop()

	IsPlaying() bool
	Len() int

	// Events delivers player notifications. The channel is never
	// closed while the player is open.
	Events() <-chan Event

	Close() error
}

// ErrClosed is returned for operations on a closed player.
var ErrClosed = errors.New("player is closed")

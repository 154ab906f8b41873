// Package validate confirms rendered audio assets are actually playable
// before they are trusted by the queue.
package validate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/murmurkit/murmur/internal/wavio"
)

// ErrNotPlayable is returned once the retry budget is exhausted. The
// caller must skip the asset rather than enqueue it.
var ErrNotPlayable = errors.New("asset never became playable")

// Options tunes the retry schedule. A freshly written file can briefly
// report missing or zero-length metadata, so a short backoff loop
// absorbs that window without retrying forever.
type Options struct {
	Attempts    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MinDuration time.Duration
}

// DefaultOptions returns the standard retry budget.
func DefaultOptions() Options {
	return Options{
		Attempts:    6,
		BaseDelay:   25 * time.Millisecond,
		MaxDelay:    400 * time.Millisecond,
		MinDuration: 50 * time.Millisecond,
	}
}

// Check confirms the asset at path decodes and has non-trivial duration,
// retrying with capped exponential backoff.
func Check(ctx context.Context, path string, opts Options) error {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	delay := opts.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		d, err := wavio.Duration(path)
		if err == nil && d >= opts.MinDuration {
			return nil
		}
		if err == nil {
			lastErr = fmt.Errorf("duration %v below minimum %v", d, opts.MinDuration)
		} else {
			lastErr = err
		}

		if attempt == opts.Attempts {
			break
		}
		log.Debug("validate: asset not ready, retrying",
			"path", path, "attempt", attempt, "error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}

	return fmt.Errorf("%w: %s: %v", ErrNotPlayable, path, lastErr)
}

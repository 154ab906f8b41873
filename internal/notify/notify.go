// Package notify is the thin boundary to the local notification
// service. The controller only needs it for the long-gap fallback path.
package notify

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Reminder schedules a local reminder to fire after a delay.
type Reminder interface {
	Schedule(after time.Duration, label string) error
}

// LogReminder records reminder requests in the log. Stands in for a
// platform notification service.
type LogReminder struct{}

// Schedule implements Reminder.
func (LogReminder) Schedule(after time.Duration, label string) error {
	log.Info("reminder scheduled",
		"label", label,
		"after", after,
		"at", humanize.Time(time.Now().Add(after)))
	return nil
}

// Nop discards reminder requests.
type Nop struct{}

// Schedule implements Reminder.
func (Nop) Schedule(time.Duration, string) error { return nil }

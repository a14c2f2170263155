package journal

import (
	"context"
	"time"
)

// Journal records control actions and launches. It never stores telemetry.
type Journal interface {
	Record(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
	Enabled() bool
}

// Repository defines the storage behind an enabled journal.
type Repository interface {
	Record(entry *Entry) error
	Recent(limit int) ([]Entry, error)
	Close() error
}

// Entry is one recorded action.
type Entry struct {
	Time     time.Time
	Action   string
	OK       bool
	Kind     string
	Message  string
	Duration time.Duration
}

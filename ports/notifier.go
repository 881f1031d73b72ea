package ports

import (
	"wavestats/domain/core"
)

// EventKind names a progress notification.
type EventKind string

const (
	EventViewStarted   EventKind = "view_started"
	EventTableSaved    EventKind = "table_saved"
	EventTableSkipped  EventKind = "table_skipped"
	EventViewCompleted EventKind = "view_completed"
	EventViewFailed    EventKind = "view_failed"
)

// Event is one progress notification from an export run.
type Event struct {
	Kind  EventKind
	RunID core.RunID
	View  string
	Table string
	Path  string
	Rows  int
	Err   error
}

// Notifier receives progress events. Implementations must be safe for
// concurrent use since views may run in parallel.
type Notifier interface {
	Notify(Event)
}

package domain

import "time"

// EventKind identifies a registry history event.
type EventKind string

const (
	// EventBadgeIssued records a badge issuance to an attendee.
	EventBadgeIssued EventKind = "badge.issued"
	// EventBadgeTransferred records a badge ownership change.
	EventBadgeTransferred EventKind = "badge.transferred"
	// EventBaseURIChanged records an administrative base URI update.
	EventBaseURIChanged EventKind = "registry.base_uri_changed"
)

// Event is one append-only registry history entry.
type Event struct {
	Seq       uint64
	Kind      EventKind
	BadgeID   uint64
	Attendee  string
	Recipient string
	CreatedAt time.Time
}

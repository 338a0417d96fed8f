// Package storage defines persistence contracts for registry state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lapelpin/lapelpin/internal/registry/domain"
)

var (
	// ErrNotFound indicates a requested badge record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyClaimed indicates the attendee's claim flag is already set.
	ErrAlreadyClaimed = errors.New("attendee already claimed a badge")
	// ErrAlreadyHeld indicates the attendee currently holds a badge even
	// though their claim flag may say otherwise.
	ErrAlreadyHeld = errors.New("attendee already holds a badge")
	// ErrNotOwner indicates a transfer attempted by a non-owner.
	ErrNotOwner = errors.New("sender does not own the badge")
)

// RegistryState stores registry-wide counters and the fallback metadata URI.
type RegistryState struct {
	TotalIssued uint64
	BaseURI     string
}

// BadgePage stores one page of badge records ordered by id.
type BadgePage struct {
	Badges        []domain.Badge
	NextPageToken string
}

// BadgeStore persists badges, attendee claim flags, and issuance history.
//
// IssueBadge and TransferBadge are atomic: either every effect of the
// operation is committed or none is. IssueBadge checks the claim flag before
// the holdings count and surfaces ErrAlreadyClaimed or ErrAlreadyHeld
// accordingly. The holdings check covers badges issued to the attendee that
// they still hold; badges transferred in from another attendee never block
// issuance.
//
// Mutations return the history event recorded in the same transaction,
// including the store-assigned sequence number, so callers can hand
// subscribers a resumable position.
type BadgeStore interface {
	IssueBadge(ctx context.Context, attendee string, issuedAt time.Time) (domain.Badge, domain.Event, error)
	TransferBadge(ctx context.Context, id uint64, from, to string, at time.Time) (domain.Badge, domain.Event, error)
	GetBadge(ctx context.Context, id uint64) (domain.Badge, error)
	ListBadges(ctx context.Context, pageSize int, pageToken string) (BadgePage, error)
	GetAttendee(ctx context.Context, address string) (domain.Attendee, error)
	SetBadgeURI(ctx context.Context, id uint64, uri string) error
}

// RegistryStore persists registry-wide state.
type RegistryStore interface {
	RegistryState(ctx context.Context) (RegistryState, error)
	SetBaseURI(ctx context.Context, baseURI string, at time.Time) (domain.Event, error)
}

// EventStore reads the append-only registry history.
// Events are appended by IssueBadge, TransferBadge, and SetBaseURI inside
// the same transaction as the state change they record.
type EventStore interface {
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error)
}

// Store bundles every registry persistence contract.
type Store interface {
	BadgeStore
	RegistryStore
	EventStore
}

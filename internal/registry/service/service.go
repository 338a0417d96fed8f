// Package service orchestrates registry operations over storage.
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/lapelpin/lapelpin/internal/metrics"
	apperrors "github.com/lapelpin/lapelpin/internal/platform/errors"
	"github.com/lapelpin/lapelpin/internal/registry/domain"
	"github.com/lapelpin/lapelpin/internal/registry/storage"
)

// Notifier receives registry events after their state change has been
// committed. Implementations must not block; the service calls them
// synchronously on the request path.
type Notifier interface {
	Notify(evt domain.Event)
}

// Service executes registry operations with domain validation, error
// mapping, and post-commit notification. All state mutations are committed
// by storage before any notifier runs, so a reentrant call triggered by a
// notification observes the finished operation.
type Service struct {
	store    storage.Store
	admin    string
	notifier Notifier
	clock    func() time.Time
}

// NewService creates a registry service backed by storage. The admin
// identity gates administrative operations; notifier may be nil.
func NewService(store storage.Store, admin string, notifier Notifier) *Service {
	return &Service{
		store:    store,
		admin:    admin,
		notifier: notifier,
		clock:    time.Now,
	}
}

// Issue issues the next badge to the attendee, enforcing the one-badge rule.
func (s *Service) Issue(ctx context.Context, attendee string) (domain.Badge, error) {
	if s == nil || s.store == nil {
		return domain.Badge{}, apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	address, err := domain.NormalizeAddress(attendee)
	if err != nil {
		return domain.Badge{}, apperrors.New(apperrors.CodeAttendeeAddressEmpty, "attendee address is required")
	}

	badge, event, err := s.store.IssueBadge(ctx, address, s.now())
	if err != nil {
		return domain.Badge{}, mapIssueError(err, address)
	}

	metrics.BadgesIssued.Inc()
	s.notify(event)
	return badge, nil
}

// Transfer moves badge ownership. The sender's claim flag is untouched.
func (s *Service) Transfer(ctx context.Context, id uint64, from, to string) (domain.Badge, error) {
	if s == nil || s.store == nil {
		return domain.Badge{}, apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	sender, err := domain.NormalizeAddress(from)
	if err != nil {
		return domain.Badge{}, apperrors.New(apperrors.CodeAttendeeAddressEmpty, "sender address is required")
	}
	recipient, err := domain.NormalizeAddress(to)
	if err != nil {
		return domain.Badge{}, apperrors.New(apperrors.CodeBadgeTransferRecipientEmpty, "transfer recipient is required")
	}

	badge, event, err := s.store.TransferBadge(ctx, id, sender, recipient, s.now())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return domain.Badge{}, apperrors.WithMetadata(apperrors.CodeNotFound, "badge not found", badgeMetadata(id))
		case errors.Is(err, storage.ErrNotOwner):
			return domain.Badge{}, apperrors.WithMetadata(apperrors.CodeBadgeTransferNotOwner, "sender does not own the badge", badgeMetadata(id))
		default:
			return domain.Badge{}, apperrors.Wrap(apperrors.CodeUnknown, "transfer badge", err)
		}
	}

	metrics.BadgesTransferred.Inc()
	s.notify(event)
	return badge, nil
}

// HasClaimed reports whether the attendee has ever been issued a badge.
func (s *Service) HasClaimed(ctx context.Context, attendee string) (bool, error) {
	if s == nil || s.store == nil {
		return false, apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	address, err := domain.NormalizeAddress(attendee)
	if err != nil {
		return false, apperrors.New(apperrors.CodeAttendeeAddressEmpty, "attendee address is required")
	}
	record, err := s.store.GetAttendee(ctx, address)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeUnknown, "read claim record", err)
	}
	return record.HasClaimed(), nil
}

// TotalIssued returns the number of badges ever issued.
func (s *Service) TotalIssued(ctx context.Context) (uint64, error) {
	state, err := s.RegistryState(ctx)
	if err != nil {
		return 0, err
	}
	return state.TotalIssued, nil
}

// RegistryState returns registry-wide counters and the base URI.
func (s *Service) RegistryState(ctx context.Context) (storage.RegistryState, error) {
	if s == nil || s.store == nil {
		return storage.RegistryState{}, apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	state, err := s.store.RegistryState(ctx)
	if err != nil {
		return storage.RegistryState{}, apperrors.Wrap(apperrors.CodeUnknown, "read registry state", err)
	}
	return state, nil
}

// GetBadge returns one badge by id.
func (s *Service) GetBadge(ctx context.Context, id uint64) (domain.Badge, error) {
	if s == nil || s.store == nil {
		return domain.Badge{}, apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	badge, err := s.store.GetBadge(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Badge{}, apperrors.WithMetadata(apperrors.CodeNotFound, "badge not found", badgeMetadata(id))
		}
		return domain.Badge{}, apperrors.Wrap(apperrors.CodeUnknown, "get badge", err)
	}
	return badge, nil
}

// ListBadges returns one page of badges ordered by id.
func (s *Service) ListBadges(ctx context.Context, pageSize int, pageToken string) (storage.BadgePage, error) {
	if s == nil || s.store == nil {
		return storage.BadgePage{}, apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	page, err := s.store.ListBadges(ctx, pageSize, pageToken)
	if err != nil {
		return storage.BadgePage{}, apperrors.Wrap(apperrors.CodeUnknown, "list badges", err)
	}
	return page, nil
}

// ListEvents returns registry history entries after the given sequence.
func (s *Service) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error) {
	if s == nil || s.store == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	events, err := s.store.ListEvents(ctx, afterSeq, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "list registry events", err)
	}
	return events, nil
}

// ResolveMetadata returns the badge's metadata pointer: the per-badge
// override when set, otherwise base URI + id.
func (s *Service) ResolveMetadata(ctx context.Context, id uint64) (string, error) {
	badge, err := s.GetBadge(ctx, id)
	if err != nil {
		return "", err
	}
	state, err := s.RegistryState(ctx)
	if err != nil {
		return "", err
	}
	return domain.ResolveURI(state.BaseURI, badge), nil
}

// SetBaseURI replaces the fallback metadata pointer. Administrator only.
func (s *Service) SetBaseURI(ctx context.Context, caller, baseURI string) error {
	if s == nil || s.store == nil {
		return apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	if err := s.authorizeAdmin(caller); err != nil {
		return err
	}
	base, err := domain.NormalizeBaseURI(baseURI)
	if err != nil {
		return apperrors.New(apperrors.CodeRegistryBaseURIEmpty, "base uri is required")
	}

	event, err := s.store.SetBaseURI(ctx, base, s.now())
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "set base uri", err)
	}
	s.notify(event)
	return nil
}

// SetBadgeURI sets or clears a per-badge metadata override. Administrator only.
func (s *Service) SetBadgeURI(ctx context.Context, caller string, id uint64, uri string) error {
	if s == nil || s.store == nil {
		return apperrors.New(apperrors.CodeUnknown, "registry store is not configured")
	}
	if err := s.authorizeAdmin(caller); err != nil {
		return err
	}
	if err := s.store.SetBadgeURI(ctx, id, uri); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.WithMetadata(apperrors.CodeNotFound, "badge not found", badgeMetadata(id))
		}
		return apperrors.Wrap(apperrors.CodeUnknown, "set badge uri", err)
	}
	return nil
}

// authorizeAdmin compares the caller identity against the stored
// administrator identity.
func (s *Service) authorizeAdmin(caller string) error {
	if s.admin == "" || caller != s.admin {
		return apperrors.New(apperrors.CodeUnauthorized, "caller is not the registry administrator")
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) notify(evt domain.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(evt)
}

func mapIssueError(err error, attendee string) error {
	switch {
	case errors.Is(err, storage.ErrAlreadyClaimed):
		metrics.IssuanceRejected.WithLabelValues("already_claimed").Inc()
		return apperrors.WithMetadata(apperrors.CodeBadgeAlreadyClaimed, "attendee already claimed a badge", map[string]string{"attendee": attendee})
	case errors.Is(err, storage.ErrAlreadyHeld):
		metrics.IssuanceRejected.WithLabelValues("already_held").Inc()
		return apperrors.WithMetadata(apperrors.CodeBadgeAlreadyHeld, "attendee already holds a badge", map[string]string{"attendee": attendee})
	default:
		return apperrors.Wrap(apperrors.CodeUnknown, "issue badge", err)
	}
}

func badgeMetadata(id uint64) map[string]string {
	return map[string]string{"badge_id": strconv.FormatUint(id, 10)}
}

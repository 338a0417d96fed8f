package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lapelpin/lapelpin/internal/registry/domain"
	"github.com/lapelpin/lapelpin/internal/registry/storage"
)

// IssueBadge issues the next badge id to the attendee. The claim flag check,
// holdings check, flag write, badge insert, counter increment, and history
// append all happen inside one transaction, so a failed precondition leaves
// no trace and a committed issuance is visible before any caller-side hook
// can run.
func (s *Store) IssueBadge(ctx context.Context, attendee string, issuedAt time.Time) (domain.Badge, domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Badge{}, domain.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("storage is not configured")
	}
	attendee = strings.TrimSpace(attendee)
	if attendee == "" {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("attendee address is required")
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("begin issue badge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Precondition order matters: the claim flag first, then the defensive
	// holdings check for state where flag and holdings diverge. The holdings
	// check only counts badges issued to the attendee that they still hold;
	// a badge transferred in from someone else does not block issuance.
	var claimed int
	err = tx.QueryRowContext(ctx, `SELECT claimed FROM attendees WHERE address = ?`, attendee).Scan(&claimed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("read claim flag: %w", err)
	}
	if claimed != 0 {
		return domain.Badge{}, domain.Event{}, storage.ErrAlreadyClaimed
	}

	var holdings int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM badges WHERE owner = ? AND issued_to = ?`, attendee, attendee).Scan(&holdings); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("count holdings: %w", err)
	}
	if holdings > 0 {
		return domain.Badge{}, domain.Event{}, storage.ErrAlreadyHeld
	}

	var nextID uint64
	if err := tx.QueryRowContext(ctx, `SELECT total_issued FROM registry WHERE id = 1`).Scan(&nextID); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("read issuance counter: %w", err)
	}

	issuedAtMillis := toMillis(issuedAt)
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO attendees (address, claimed, claimed_at) VALUES (?, 1, ?)
		 ON CONFLICT(address) DO UPDATE SET claimed = 1, claimed_at = excluded.claimed_at`,
		attendee,
		issuedAtMillis,
	); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("set claim flag: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO badges (id, owner, uri_override, issued_to, issued_at) VALUES (?, ?, '', ?, ?)`,
		nextID,
		attendee,
		attendee,
		issuedAtMillis,
	); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("insert badge: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE registry SET total_issued = total_issued + 1, updated_at = ? WHERE id = 1`,
		issuedAtMillis,
	); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("advance issuance counter: %w", err)
	}
	event, err := appendEvent(ctx, tx, eventRecord{
		kind:      string(domain.EventBadgeIssued),
		badgeID:   nextID,
		attendee:  attendee,
		createdAt: issuedAt,
	})
	if err != nil {
		return domain.Badge{}, domain.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("commit issue badge: %w", err)
	}
	return domain.Badge{
		ID:       nextID,
		Owner:    attendee,
		IssuedTo: attendee,
		IssuedAt: fromMillis(issuedAtMillis),
	}, event, nil
}

// TransferBadge moves badge ownership from the current holder to a
// recipient. Claim flags are untouched.
func (s *Store) TransferBadge(ctx context.Context, id uint64, from, to string, at time.Time) (domain.Badge, domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Badge{}, domain.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("storage is not configured")
	}
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("sender address is required")
	}
	if to == "" {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("recipient address is required")
	}
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("begin transfer badge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	badge, err := scanBadge(tx.QueryRowContext(
		ctx,
		`SELECT id, owner, uri_override, issued_to, issued_at FROM badges WHERE id = ?`,
		id,
	))
	if err != nil {
		return domain.Badge{}, domain.Event{}, scanErrNotFound(err, "get badge for transfer")
	}
	if badge.Owner != from {
		return domain.Badge{}, domain.Event{}, storage.ErrNotOwner
	}

	if _, err := tx.ExecContext(ctx, `UPDATE badges SET owner = ? WHERE id = ?`, to, id); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("transfer badge: %w", err)
	}
	event, err := appendEvent(ctx, tx, eventRecord{
		kind:      string(domain.EventBadgeTransferred),
		badgeID:   id,
		attendee:  from,
		recipient: to,
		createdAt: at,
	})
	if err != nil {
		return domain.Badge{}, domain.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Badge{}, domain.Event{}, fmt.Errorf("commit transfer badge: %w", err)
	}
	badge.Owner = to
	return badge, event, nil
}

// GetBadge returns one badge by id.
func (s *Store) GetBadge(ctx context.Context, id uint64) (domain.Badge, error) {
	if err := ctx.Err(); err != nil {
		return domain.Badge{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Badge{}, fmt.Errorf("storage is not configured")
	}

	badge, err := scanBadge(s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, owner, uri_override, issued_to, issued_at FROM badges WHERE id = ?`,
		id,
	))
	if err != nil {
		return domain.Badge{}, scanErrNotFound(err, "get badge")
	}
	return badge, nil
}

// ListBadges returns one page of badges ordered by id.
func (s *Store) ListBadges(ctx context.Context, pageSize int, pageToken string) (storage.BadgePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.BadgePage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BadgePage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.BadgePage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.BadgePage{
		Badges: make([]domain.Badge, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, owner, uri_override, issued_to, issued_at
			   FROM badges
			  ORDER BY id ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		afterID, parseErr := strconv.ParseUint(pageToken, 10, 64)
		if parseErr != nil {
			return storage.BadgePage{}, fmt.Errorf("parse page token: %w", parseErr)
		}
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, owner, uri_override, issued_to, issued_at
			   FROM badges
			  WHERE id > ?
			  ORDER BY id ASC
			  LIMIT ?`,
			afterID,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.BadgePage{}, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return storage.BadgePage{}, fmt.Errorf("list badges: %w", err)
		}
		page.Badges = append(page.Badges, badge)
	}
	if err := rows.Err(); err != nil {
		return storage.BadgePage{}, fmt.Errorf("list badges: %w", err)
	}
	if len(page.Badges) > pageSize {
		page.NextPageToken = strconv.FormatUint(page.Badges[pageSize-1].ID, 10)
		page.Badges = page.Badges[:pageSize]
	}
	return page, nil
}

// GetAttendee returns the attendee's claim record. Unknown addresses come
// back as a zero-value attendee in the not-claimed state.
func (s *Store) GetAttendee(ctx context.Context, address string) (domain.Attendee, error) {
	if err := ctx.Err(); err != nil {
		return domain.Attendee{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Attendee{}, fmt.Errorf("storage is not configured")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Attendee{}, fmt.Errorf("attendee address is required")
	}

	var claimed int
	var claimedAt int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT claimed, claimed_at FROM attendees WHERE address = ?`, address).Scan(&claimed, &claimedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Attendee{Address: address}, nil
		}
		return domain.Attendee{}, fmt.Errorf("read claim record: %w", err)
	}
	attendee := domain.Attendee{Address: address}
	if claimed != 0 {
		attendee.Status = domain.ClaimStatusClaimed
		attendee.ClaimedAt = fromMillis(claimedAt)
	}
	return attendee, nil
}

// SetBadgeURI sets or clears the per-badge metadata override.
func (s *Store) SetBadgeURI(ctx context.Context, id uint64, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE badges SET uri_override = ? WHERE id = ?`,
		strings.TrimSpace(uri),
		id,
	)
	if err != nil {
		return fmt.Errorf("set badge uri: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set badge uri: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBadge(row rowScanner) (domain.Badge, error) {
	var badge domain.Badge
	var issuedAt int64
	if err := row.Scan(&badge.ID, &badge.Owner, &badge.URIOverride, &badge.IssuedTo, &issuedAt); err != nil {
		return domain.Badge{}, err
	}
	badge.IssuedAt = fromMillis(issuedAt)
	return badge, nil
}

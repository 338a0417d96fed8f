package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lapelpin/lapelpin/internal/registry/domain"
)

type eventRecord struct {
	kind      string
	badgeID   uint64
	attendee  string
	recipient string
	createdAt time.Time
}

// appendEvent inserts one history row and returns the stored event with the
// sequence number SQLite assigned to it.
func appendEvent(ctx context.Context, tx *sql.Tx, record eventRecord) (domain.Event, error) {
	createdAtMillis := toMillis(record.createdAt)
	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO registry_events (kind, badge_id, attendee, recipient, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.kind,
		record.badgeID,
		record.attendee,
		record.recipient,
		createdAtMillis,
	)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append registry event: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return domain.Event{}, fmt.Errorf("read registry event sequence: %w", err)
	}
	return domain.Event{
		Seq:       uint64(seq),
		Kind:      domain.EventKind(record.kind),
		BadgeID:   record.badgeID,
		Attendee:  record.attendee,
		Recipient: record.recipient,
		CreatedAt: fromMillis(createdAtMillis),
	}, nil
}

// ListEvents returns up to limit history entries with seq greater than afterSeq.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, kind, badge_id, attendee, recipient, created_at
		   FROM registry_events
		  WHERE seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		afterSeq,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list registry events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var evt domain.Event
		var kind string
		var createdAt int64
		if err := rows.Scan(&evt.Seq, &kind, &evt.BadgeID, &evt.Attendee, &evt.Recipient, &createdAt); err != nil {
			return nil, fmt.Errorf("list registry events: %w", err)
		}
		evt.Kind = domain.EventKind(kind)
		evt.CreatedAt = fromMillis(createdAt)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registry events: %w", err)
	}
	return events, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reviewdesk/internal/models"
	"reviewdesk/internal/notify"
)

// HistoryStore records page status changes for audit. It satisfies
// notify.Notifier so it can sit alongside the pub/sub publisher.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// HistoryEntry is one recorded status change.
type HistoryEntry struct {
	ID         int64             `json:"id"`
	ProjectID  uuid.UUID         `json:"project_id"`
	PageID     uuid.UUID         `json:"page_id"`
	From       models.PageStatus `json:"from"`
	To         models.PageStatus `json:"to"`
	Actor      string            `json:"actor"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Notify records the event. Failures are logged, never returned.
func (s *HistoryStore) Notify(ctx context.Context, ev notify.Event) {
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO page_events (project_id, page_id, from_status, to_status, actor, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.ProjectID, ev.PageID, ev.From, ev.To, ev.Actor, at)
	if err != nil {
		slog.Warn("failed to record page event",
			"page_id", ev.PageID,
			"from", ev.From,
			"to", ev.To,
			"error", err,
		)
	}
}

// ForPage returns the most recent status changes of a page, newest first.
func (s *HistoryStore) ForPage(ctx context.Context, pageID uuid.UUID, limit int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, page_id, from_status, to_status, actor, occurred_at
		FROM page_events
		WHERE page_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`, pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("list page events: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.PageID, &e.From, &e.To, &e.Actor, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan page event: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

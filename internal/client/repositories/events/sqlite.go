package events

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/client/models"
	"github.com/dmitrijs2005/gophcheck/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, prefix, result, label, location, source, occurred_at, sent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Prefix, e.Result, e.Label, e.Location, e.Source, e.OccurredAt.UTC(), e.Sent)
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
	}
	return nil
}

// ListPending returns unsent events, oldest first. limit <= 0 means no limit.
func (r *SQLiteRepository) ListPending(ctx context.Context, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, prefix, result, label, location, source, occurred_at
		FROM events
		WHERE sent = FALSE
		ORDER BY occurred_at, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending events: %w", err)
	}
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		var e models.Event
		var at time.Time
		if err := rows.Scan(&e.ID, &e.Prefix, &e.Result, &e.Label, &e.Location, &e.Source, &at); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.OccurredAt = at.UTC()
		result = append(result, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE events SET sent = TRUE WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark event %s sent: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteSent(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE sent = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sent events: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE sent = FALSE`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending events: %w", err)
	}
	return n, nil
}

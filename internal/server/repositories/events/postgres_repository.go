package events

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcheck/internal/dbx"
	"github.com/dmitrijs2005/gophcheck/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, e *models.Event) (bool, error) {
	query :=
		`INSERT INTO events (id, prefix, result, label, location, source, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.Prefix, e.Result, e.Label, e.Location, e.Source, e.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) CountByResult(ctx context.Context) (map[string]int64, error) {
	query :=
		`SELECT result, COUNT(*) FROM events
		 GROUP BY result`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			result string
			n      int64
		)
		if err := rows.Scan(&result, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		counts[result] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return counts, nil
}

// Package events stores ingested analytics events in PostgreSQL.
package events

import (
	"context"

	"github.com/dmitrijs2005/gophcheck/internal/server/models"
)

type Repository interface {
	// Insert stores e. A replayed ID is not an error; inserted reports
	// whether a new row was written.
	Insert(ctx context.Context, e *models.Event) (inserted bool, err error)
	CountByResult(ctx context.Context) (map[string]int64, error)
}

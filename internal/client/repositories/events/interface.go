package events

import (
	"context"

	"github.com/dmitrijs2005/gophcheck/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, e *models.Event) error
	ListPending(ctx context.Context, limit int) ([]*models.Event, error)
	MarkSent(ctx context.Context, id string) error
	DeleteSent(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int, error)
}

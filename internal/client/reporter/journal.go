package reporter

import (
	"context"

	"github.com/dmitrijs2005/gophcheck/internal/client/models"
	"github.com/dmitrijs2005/gophcheck/internal/client/repositories/events"
)

// JournalSink appends events to the local journal for later forwarding.
type JournalSink struct {
	repo events.Repository
}

func NewJournalSink(repo events.Repository) *JournalSink {
	return &JournalSink{repo: repo}
}

func (s *JournalSink) Record(ctx context.Context, e *models.Event) error {
	return s.repo.Insert(ctx, e)
}

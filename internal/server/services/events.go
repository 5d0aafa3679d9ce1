// Package services holds the artifact server's business logic.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/barcode"
	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/rpc"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"github.com/dmitrijs2005/gophcheck/internal/server/models"
	"github.com/dmitrijs2005/gophcheck/internal/server/repositories/repomanager"
)

// maxPrefixLen bounds what a client may send: never more than the code prefix.
const maxPrefixLen = barcode.PrefixLength

// nowFn is a seam for tests.
var nowFn = time.Now

type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Metrics
	logger      logging.Logger
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager, mt *metrics.Metrics, l logging.Logger) *EventService {
	return &EventService{
		db:          db,
		repomanager: m,
		metrics:     mt,
		logger:      l.With("module", "event_service"),
	}
}

// Ingest validates e and stores it. Replayed IDs are accepted silently so
// that a client retrying a partially delivered batch does not fail.
func (s *EventService) Ingest(ctx context.Context, e rpc.Event) error {
	if err := validate(e); err != nil {
		s.metrics.IncEventRejected()
		return err
	}

	m := &models.Event{
		ID:         e.ID,
		Prefix:     e.Prefix,
		Result:     e.Result,
		Label:      e.Label,
		Location:   e.Location,
		Source:     e.Source,
		OccurredAt: e.OccurredAt,
		ReceivedAt: nowFn().UTC(),
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = m.ReceivedAt
	}

	inserted, err := s.repomanager.Events(s.db).Insert(ctx, m)
	if err != nil {
		return fmt.Errorf("error storing event: %w", err)
	}

	if inserted {
		s.metrics.IncEventIngested(m.Result)
	} else {
		s.logger.Debug(ctx, "duplicate event ignored", "id", m.ID)
	}

	return nil
}

// Summary returns stored event counts keyed by result label.
func (s *EventService) Summary(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repomanager.Events(s.db).CountByResult(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting events: %w", err)
	}
	return counts, nil
}

func validate(e rpc.Event) error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing event id", common.ErrorValidation)
	}
	if len(e.Prefix) > maxPrefixLen {
		return fmt.Errorf("%w: prefix longer than %d characters", common.ErrorValidation, maxPrefixLen)
	}
	if _, ok := barcode.ParseKind(e.Result); !ok {
		return fmt.Errorf("%w: unknown result %q", common.ErrorValidation, e.Result)
	}
	return nil
}

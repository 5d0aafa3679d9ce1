package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/dbx"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/rpc"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"github.com/dmitrijs2005/gophcheck/internal/server/models"
	"github.com/dmitrijs2005/gophcheck/internal/server/repositories/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventsRepo struct {
	seen      map[string]bool
	stored    []*models.Event
	insertErr error
	counts    map[string]int64
	countErr  error
}

func (f *fakeEventsRepo) Insert(ctx context.Context, e *models.Event) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[e.ID] {
		return false, nil
	}
	f.seen[e.ID] = true
	f.stored = append(f.stored, e)
	return true, nil
}

func (f *fakeEventsRepo) CountByResult(ctx context.Context) (map[string]int64, error) {
	return f.counts, f.countErr
}

type fakeRepoManager struct {
	repo *fakeEventsRepo
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Events(dbx.DBTX) events.Repository            { return f.repo }

func newService(t *testing.T, repo *fakeEventsRepo) (*EventService, *metrics.Metrics) {
	t.Helper()
	mt := metrics.New()
	return NewEventService(nil, &fakeRepoManager{repo: repo}, mt, logging.Discard()), mt
}

func ingestedCount(t *testing.T, mt *metrics.Metrics, result string) float64 {
	t.Helper()
	families, err := mt.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "gophcheck_events_ingested_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "result" && lp.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestIngest_Stores(t *testing.T) {
	repo := &fakeEventsRepo{}
	svc, mt := newService(t, repo)

	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	err := svc.Ingest(context.Background(), rpc.Event{
		ID: "e-1", Prefix: "7561097010000002", Result: "genuine", Label: "Type-2",
		Location: "shop-1", Source: "scanner", OccurredAt: at,
	})
	require.NoError(t, err)

	require.Len(t, repo.stored, 1)
	got := repo.stored[0]
	assert.Equal(t, "7561097010000002", got.Prefix)
	assert.Equal(t, at, got.OccurredAt)
	assert.False(t, got.ReceivedAt.IsZero())
	assert.Equal(t, 1.0, ingestedCount(t, mt, "genuine"))
}

func TestIngest_DefaultsOccurredAt(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := nowFn
	nowFn = func() time.Time { return fixed }
	t.Cleanup(func() { nowFn = orig })

	repo := &fakeEventsRepo{}
	svc, _ := newService(t, repo)

	require.NoError(t, svc.Ingest(context.Background(), rpc.Event{ID: "e-1", Result: "counterfeit"}))
	assert.Equal(t, fixed, repo.stored[0].OccurredAt)
}

func TestIngest_DuplicateIsNotCounted(t *testing.T) {
	repo := &fakeEventsRepo{}
	svc, mt := newService(t, repo)

	e := rpc.Event{ID: "e-1", Result: "format-invalid"}
	require.NoError(t, svc.Ingest(context.Background(), e))
	require.NoError(t, svc.Ingest(context.Background(), e))

	assert.Len(t, repo.stored, 1)
	assert.Equal(t, 1.0, ingestedCount(t, mt, "format-invalid"))
}

func TestIngest_Validation(t *testing.T) {
	tests := []struct {
		name string
		ev   rpc.Event
	}{
		{"missing id", rpc.Event{Result: "genuine"}},
		{"full code leaked", rpc.Event{ID: "x", Result: "genuine", Prefix: "7561097010000002abcdef123456"}},
		{"unknown result", rpc.Event{ID: "x", Result: "maybe"}},
		{"empty result", rpc.Event{ID: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEventsRepo{}
			svc, _ := newService(t, repo)

			err := svc.Ingest(context.Background(), tt.ev)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Empty(t, repo.stored)
		})
	}
}

func TestIngest_PrefixAtLimit(t *testing.T) {
	repo := &fakeEventsRepo{}
	svc, _ := newService(t, repo)

	err := svc.Ingest(context.Background(), rpc.Event{ID: "x", Result: "not-ready", Prefix: strings.Repeat("7", 16)})
	require.NoError(t, err)
}

func TestIngest_RepoError(t *testing.T) {
	svc, _ := newService(t, &fakeEventsRepo{insertErr: errors.New("db down")})

	err := svc.Ingest(context.Background(), rpc.Event{ID: "x", Result: "genuine"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestSummary(t *testing.T) {
	svc, _ := newService(t, &fakeEventsRepo{counts: map[string]int64{"genuine": 2}})

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"genuine": 2}, got)

	svc, _ = newService(t, &fakeEventsRepo{countErr: errors.New("db down")})
	_, err = svc.Summary(context.Background())
	require.Error(t, err)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/client/client"
	"github.com/dmitrijs2005/gophcheck/internal/client/repositories/events"
	"github.com/dmitrijs2005/gophcheck/internal/dbx"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/rpc"
)

// EventSender delivers one event to the analytics server.
type EventSender interface {
	Report(ctx context.Context, e rpc.Event) error
}

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Forwarder drains the local journal to the analytics server.
type Forwarder struct {
	db      *sql.DB
	sender  EventSender
	log     logging.Logger
	batch   int
	timeout time.Duration

	mu   sync.Mutex
	mode Mode
}

func NewForwarder(db *sql.DB, sender EventSender, log logging.Logger) *Forwarder {
	return &Forwarder{
		db:      db,
		sender:  sender,
		log:     log,
		batch:   100,
		timeout: 3 * time.Second,
		mode:    ModeOffline,
	}
}

func (f *Forwarder) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *Forwarder) setMode(ctx context.Context, mode Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != mode {
		f.mode = mode
		f.log.Info(ctx, "analytics forwarding switched", "mode", mode)
	}
}

// Flush sends up to one batch of pending events, oldest first, and marks the
// delivered ones sent. An event the server can never accept is dropped the
// same way. Delivery stops at the first other failure; the rest stay pending
// for the next round. The count covers delivered events only.
func (f *Forwarder) Flush(ctx context.Context) (int, error) {
	pending, err := events.NewSQLiteRepository(f.db).ListPending(ctx, f.batch)
	if err != nil {
		return 0, err
	}

	var sent []string
	var sendErr error
	delivered := 0
	for _, e := range pending {
		if err := f.sender.Report(ctx, e.ToRPC()); err != nil {
			if errors.Is(err, client.ErrRejected) {
				f.log.Warn(ctx, "analytics event discarded", "id", e.ID, "error", err)
				sent = append(sent, e.ID)
				continue
			}
			sendErr = fmt.Errorf("report %s: %w", e.ID, err)
			break
		}
		sent = append(sent, e.ID)
		delivered++
	}

	if len(sent) > 0 {
		err := dbx.WithTx(ctx, f.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := events.NewSQLiteRepository(tx)
			for _, id := range sent {
				if err := repo.MarkSent(ctx, id); err != nil {
					return err
				}
			}
			_, err := repo.DeleteSent(ctx)
			return err
		})
		if err != nil {
			return 0, err
		}
	}

	return delivered, sendErr
}

// Run flushes on every tick until ctx is done.
func (f *Forwarder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tctx, cancel := context.WithTimeout(ctx, f.timeout)
			n, err := f.Flush(tctx)
			cancel()

			if err != nil {
				f.log.Debug(ctx, "analytics flush failed", "sent", n, "error", err)
				f.setMode(ctx, ModeOffline)
			} else {
				f.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// Package server wires the artifact server: the artifact store and its file
// watcher, the gRPC Artifacts service, the HTTP endpoints and, when a
// database is configured, analytics ingestion.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/server/artifacts"
	"github.com/dmitrijs2005/gophcheck/internal/server/config"
	"github.com/dmitrijs2005/gophcheck/internal/server/httpapi"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"github.com/dmitrijs2005/gophcheck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophcheck/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophcheck/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	metrics *metrics.Metrics
	store   *artifacts.Store
	db      *sql.DB
	events  *services.EventService
}

// NewApp prepares every component. A missing or invalid artifact is not
// fatal: the server answers "unavailable" until a valid file appears.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	m := metrics.New()

	store, err := artifacts.NewStore(c.ArtifactPath, c.ReloadDebounce, m, l)
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		l.Warn(ctx, "artifact not loaded yet", "path", store.Path(), "error", err)
	}

	app := &App{config: c, logger: l, metrics: m, store: store}

	if c.DatabaseDSN != "" {
		rm := repomanager.NewPostgresRepositoryManager()
		db, err := repomanager.Open(ctx, rm, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.events = services.NewEventService(db, rm, m, l)
	} else {
		l.Info(ctx, "no database configured, analytics ingestion disabled")
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) (stop func()) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run serves until ctx is cancelled, a signal arrives or a component fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stop := app.initSignalHandler(cancelFunc)
	defer stop()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	// A nil *EventService must not become a non-nil interface.
	var ingester gs.EventIngester
	var summary httpapi.EventSummary
	if app.events != nil {
		ingester = app.events
		summary = app.events
	}

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.metrics, app.store, ingester)
	handler := httpapi.New(app.store, summary, app.metrics, app.logger)
	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, handler.Router(), app.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	g.Go(func() error { return app.store.Watch(ctx) })

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

// Close releases the database connection, if any.
func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
		app.db = nil
	}
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/gophcheck/internal/barcode"
	"github.com/dmitrijs2005/gophcheck/internal/client/client"
	"github.com/dmitrijs2005/gophcheck/internal/client/config"
	"github.com/dmitrijs2005/gophcheck/internal/client/controller"
	"github.com/dmitrijs2005/gophcheck/internal/client/loader"
	"github.com/dmitrijs2005/gophcheck/internal/client/reporter"
	"github.com/dmitrijs2005/gophcheck/internal/client/repositories/events"
	"github.com/dmitrijs2005/gophcheck/internal/client/scanner"
	"github.com/dmitrijs2005/gophcheck/internal/client/services"
	"github.com/dmitrijs2005/gophcheck/internal/filex"
	"github.com/dmitrijs2005/gophcheck/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	svc       *services.AuthenticationService
	forwarder *services.Forwarder
	scanner   *scanner.Source
	journal   *sql.DB
	closers   []func() error
	in        io.Reader
}

// NewApp wires every component from c. It prompts for the key when c.Key is
// empty and the artifact is encrypted.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (_ *App, err error) {
	a := &App{config: c, log: log, in: os.Stdin}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if c.DebounceWindow <= 0 {
		return nil, fmt.Errorf("debounce window must be positive, got %s", c.DebounceWindow)
	}
	if c.ForwardInterval <= 0 {
		return nil, fmt.Errorf("forward interval must be positive, got %s", c.ForwardInterval)
	}

	prefixes, err := barcode.ParsePrefixes(c.Prefixes)
	if err != nil {
		return nil, fmt.Errorf("prefixes: %w", err)
	}

	fetcher, closeFetcher, err := client.NewFetcher(c.Source, client.Options{
		HTTPClient: &http.Client{Timeout: c.HTTPTimeout},
		S3: client.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
		},
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeFetcher)

	var l loader.Loader
	switch c.Format {
	case config.FormatEncrypted:
		key := c.Key
		if key == "" {
			if key, err = GetKey(os.Stdout); err != nil {
				return nil, fmt.Errorf("read key: %w", err)
			}
		}
		l = loader.NewEncryptedLoader(fetcher, key, c.Salt, log)
	case config.FormatPlaintext:
		l = loader.NewPlaintextLoader(fetcher, log)
	default:
		return nil, fmt.Errorf("unknown artifact format %q", c.Format)
	}

	var sink reporter.Sink
	if c.JournalPath != "" {
		if _, err := filex.EnsureParentDir(c.JournalPath); err != nil {
			return nil, err
		}
		a.journal, err = client.InitDatabase(ctx, c.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		a.closers = append(a.closers, a.journal.Close)
		sink = reporter.NewJournalSink(events.NewSQLiteRepository(a.journal))
	}

	if c.ServerAddr != "" && a.journal != nil {
		gc, err := client.NewGRPCClient(c.ServerAddr)
		if err != nil {
			return nil, fmt.Errorf("analytics client: %w", err)
		}
		a.closers = append(a.closers, gc.Close)
		a.forwarder = services.NewForwarder(a.journal, gc, log)
	}

	if c.ScannerPath != "" {
		a.scanner, err = scanner.Open(c.ScannerPath, c.ScannerCooldown, log)
		if err != nil {
			return nil, fmt.Errorf("scanner: %w", err)
		}
	}

	a.svc = services.NewAuthenticationService(l, prefixes,
		services.WithLogger(log),
		services.WithReporter(reporter.New(sink, c.Location, log)),
		services.WithPresenter(present),
		services.WithControllerOptions(controller.WithDebounceWindow(c.DebounceWindow)),
	)

	return a, nil
}

// Run loads the database in the background, starts the forwarder and the
// scanner, and runs the REPL until EOF, :quit or ctx cancellation.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	printlnFn("gophcheck (type :help for commands)")
	a.svc.LoadAsync(ctx)

	var wg sync.WaitGroup
	if a.forwarder != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.forwarder.Run(ctx, a.config.ForwardInterval)
		}()
	}
	if a.scanner != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := a.scanner.Run(ctx, func(code string) {
				a.svc.Check(code, reporter.SourceScanner)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error(ctx, "scanner stopped", "error", err)
			}
		}()
	}

	// The REPL blocks on input, so it must not hold up shutdown.
	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		runREPL(ctx, a.svc, a.status, bufio.NewScanner(a.in))
	}()

	select {
	case <-replDone:
	case <-ctx.Done():
	}

	cancel()
	a.svc.CancelPending()
	wg.Wait()
}

func (a *App) status() string {
	s := a.svc.Status().State.String()
	if a.forwarder != nil {
		s += " " + string(a.forwarder.Mode())
	}
	return s
}

// Close releases the journal and connections. It is safe to call twice.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Debug(context.Background(), "close", "error", err)
		}
	}
	a.closers = nil
}

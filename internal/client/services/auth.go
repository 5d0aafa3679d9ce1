// Package services contains application services for the gophcheck client.
// This file defines the authentication service: it owns the genuine-code
// database, the query controller and the reporter, and exposes the check
// operations used by the terminal client and the scanner.
package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophcheck/internal/barcode"
	"github.com/dmitrijs2005/gophcheck/internal/client/controller"
	"github.com/dmitrijs2005/gophcheck/internal/client/loader"
	"github.com/dmitrijs2005/gophcheck/internal/client/models"
	"github.com/dmitrijs2005/gophcheck/internal/client/reporter"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
)

type LoadState int

const (
	Loading LoadState = iota
	Ready
	Unavailable
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the database lifecycle.
type Status struct {
	State LoadState
	Count int
	Stats loader.Stats
	Err   error
}

func (s Status) String() string {
	switch s.State {
	case Ready:
		return fmt.Sprintf("ready (%d codes, %d invalid records)", s.Count, s.Stats.Invalid)
	case Unavailable:
		return fmt.Sprintf("unavailable: %v", s.Err)
	default:
		return s.State.String()
	}
}

// Outcome is one presented resolution.
type Outcome struct {
	Result  controller.Result
	Display reporter.Display
	Event   *models.Event
}

// Presenter receives every outcome, including automatic ones fired by the
// debounce timer.
type Presenter func(Outcome)

// Reporter is the part of *reporter.Reporter the service uses.
type Reporter interface {
	Report(ctx context.Context, r reporter.Result) (reporter.Display, *models.Event)
}

type Option func(*AuthenticationService)

func WithControllerOptions(opts ...controller.Option) Option {
	return func(s *AuthenticationService) { s.ctrlOpts = append(s.ctrlOpts, opts...) }
}

func WithPresenter(p Presenter) Option {
	return func(s *AuthenticationService) { s.present = p }
}

func WithReporter(r Reporter) Option {
	return func(s *AuthenticationService) { s.reporter = r }
}

func WithLogger(l logging.Logger) Option {
	return func(s *AuthenticationService) { s.log = l }
}

// AuthenticationService answers "is this code genuine?". The database is
// loaded once and published atomically; until then every check resolves to
// NotReady.
type AuthenticationService struct {
	loader   loader.Loader
	prefixes barcode.PrefixSet
	reporter Reporter
	present  Presenter
	log      logging.Logger
	ctrlOpts []controller.Option
	ctrl     *controller.Controller

	db      atomic.Pointer[barcode.Database]
	once    sync.Once
	done    chan struct{}
	loadErr error
	stats   loader.Stats

	// checkMu serializes explicit triggers so the handler can attribute a
	// non-automatic result to the caller's source.
	checkMu sync.Mutex
	source  atomic.Value

	lastMu sync.Mutex
	last   *Outcome
}

func NewAuthenticationService(l loader.Loader, prefixes barcode.PrefixSet, opts ...Option) *AuthenticationService {
	s := &AuthenticationService{
		loader:   l,
		prefixes: prefixes,
		log:      logging.Discard(),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.reporter == nil {
		s.reporter = reporter.New(nil, "", s.log)
	}
	s.source.Store(reporter.SourceManual)

	opts2 := append([]controller.Option{controller.WithResultHandler(s.handle)}, s.ctrlOpts...)
	s.ctrl = controller.New(controller.EvaluatorFunc(s.Evaluate), opts2...)
	return s
}

// Load builds the database. Only the first call does any work; later calls
// wait for it and return its result.
func (s *AuthenticationService) Load(ctx context.Context) error {
	s.once.Do(func() {
		defer close(s.done)

		db, stats, err := s.loader.Load(ctx)
		if err != nil {
			s.loadErr = err
			s.log.Error(ctx, "database unavailable", "error", err)
			return
		}
		s.stats = stats
		s.db.Store(db)
	})

	<-s.done
	return s.loadErr
}

// LoadAsync starts Load in the background. The returned channel is closed
// when loading has finished, successfully or not.
func (s *AuthenticationService) LoadAsync(ctx context.Context) <-chan struct{} {
	go func() { _ = s.Load(ctx) }()
	return s.done
}

// Done is closed once loading has finished.
func (s *AuthenticationService) Done() <-chan struct{} {
	return s.done
}

func (s *AuthenticationService) Status() Status {
	if db := s.db.Load(); db != nil {
		return Status{State: Ready, Count: db.Len(), Stats: s.stats}
	}
	select {
	case <-s.done:
		return Status{State: Unavailable, Err: s.loadErr}
	default:
		return Status{State: Loading}
	}
}

// Evaluate classifies a canonical code against the current database.
func (s *AuthenticationService) Evaluate(code string) barcode.Classification {
	return barcode.Classify(s.prefixes, s.db.Load(), code)
}

// Check runs an explicit check of code on behalf of src. The previous result
// is discarded first, so checking the same code twice reports twice. ok is
// false for empty input.
func (s *AuthenticationService) Check(code string, src reporter.Source) (Outcome, bool) {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	s.source.Store(src)
	defer s.source.Store(reporter.SourceManual)

	s.ctrl.Clear()
	s.ctrl.Input(code)
	if _, ok := s.ctrl.Submit(); !ok {
		return Outcome{}, false
	}
	return s.Last()
}

// Input forwards a manual input change; a complete code is checked once the
// debounce window passes.
func (s *AuthenticationService) Input(value string) {
	s.ctrl.Input(value)
}

// Submit checks the current input now.
func (s *AuthenticationService) Submit() (Outcome, bool) {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	if _, ok := s.ctrl.Submit(); !ok {
		return Outcome{}, false
	}
	return s.Last()
}

func (s *AuthenticationService) Clear() {
	s.ctrl.Clear()
	s.lastMu.Lock()
	s.last = nil
	s.lastMu.Unlock()
}

func (s *AuthenticationService) CancelPending() {
	s.ctrl.CancelPending()
}

// State is the controller state.
func (s *AuthenticationService) State() controller.State {
	return s.ctrl.State()
}

// Last returns the most recent outcome.
func (s *AuthenticationService) Last() (Outcome, bool) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	if s.last == nil {
		return Outcome{}, false
	}
	return *s.last, true
}

func (s *AuthenticationService) handle(res controller.Result) {
	src := reporter.SourceManual
	if !res.Auto {
		src = s.source.Load().(reporter.Source)
	}

	unavailable := false
	select {
	case <-s.done:
		unavailable = s.loadErr != nil
	default:
	}

	ctx := context.Background()
	d, e := s.reporter.Report(ctx, reporter.Result{
		Input:          res.Input,
		Classification: res.Classification,
		Source:         src,
		Unavailable:    unavailable,
	})

	out := Outcome{Result: res, Display: d, Event: e}
	s.lastMu.Lock()
	s.last = &out
	s.lastMu.Unlock()

	if s.present != nil {
		s.present(out)
	}
}

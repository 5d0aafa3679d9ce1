// Package reporter turns a classification into what the operator sees and
// what the analytics journal records.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/barcode"
	"github.com/dmitrijs2005/gophcheck/internal/client/models"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/google/uuid"
)

const (
	MsgGenuine       = "GENUINE ✓"
	MsgCounterfeit   = "COUNTERFEIT ✗"
	MsgFormatInvalid = "COUNTERFEIT ✗ — format invalid"
	MsgNotReady      = "NOT READY — database loading"
	MsgUnavailable   = "DATABASE UNAVAILABLE"
)

type Level string

const (
	LevelOK   Level = "ok"
	LevelBad  Level = "bad"
	LevelWait Level = "wait"
)

// Source tells where the checked code came from.
type Source string

const (
	SourceManual  Source = "manual"
	SourceScanner Source = "scanner"
)

// Result is what the reporter is asked to present.
type Result struct {
	Input          string
	Classification barcode.Classification
	Source         Source
	// Unavailable marks a NotReady caused by a failed load rather than one
	// still in progress.
	Unavailable bool
}

// Display is the operator-facing outcome.
type Display struct {
	Message string
	Genuine bool
	Level   Level
}

// Sink stores analytics events.
type Sink interface {
	Record(ctx context.Context, e *models.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e *models.Event) error

func (f SinkFunc) Record(ctx context.Context, e *models.Event) error { return f(ctx, e) }

// MultiSink records to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, e *models.Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Test seams.
var (
	nowFn   = time.Now
	newIDFn = uuid.NewString
)

type Reporter struct {
	sink     Sink
	location string
	log      logging.Logger
}

// New returns a Reporter. sink may be nil.
func New(sink Sink, location string, log logging.Logger) *Reporter {
	return &Reporter{sink: sink, location: location, log: log}
}

// Report renders r and records it. Sink failures are logged and dropped.
func (rp *Reporter) Report(ctx context.Context, r Result) (Display, *models.Event) {
	d := Render(r)

	e := &models.Event{
		ID:         newIDFn(),
		Prefix:     barcode.PrefixOf(barcode.Canonicalize(r.Input)),
		Result:     r.Classification.Kind.String(),
		Label:      r.Classification.Prefix.Label,
		Location:   rp.location,
		Source:     string(r.Source),
		OccurredAt: nowFn().UTC(),
	}

	if err := rp.record(ctx, e); err != nil {
		rp.log.Warn(ctx, "analytics event dropped", "id", e.ID, "error", err)
	}

	return d, e
}

// record hands e to the sink. A panicking sink is reported as an error so a
// broken analytics backend never aborts the check.
func (rp *Reporter) record(ctx context.Context, e *models.Event) (err error) {
	if rp.sink == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analytics sink panic: %v", r)
		}
	}()
	return rp.sink.Record(ctx, e)
}

// Render maps a result to its display.
func Render(r Result) Display {
	switch r.Classification.Kind {
	case barcode.Genuine:
		msg := MsgGenuine
		if l := r.Classification.Prefix.Label; l != "" {
			msg += " (" + l + ")"
		}
		return Display{Message: msg, Genuine: true, Level: LevelOK}
	case barcode.Counterfeit:
		return Display{Message: MsgCounterfeit, Level: LevelBad}
	case barcode.FormatInvalid:
		return Display{Message: MsgFormatInvalid, Level: LevelBad}
	default:
		if r.Unavailable {
			return Display{Message: MsgUnavailable, Level: LevelBad}
		}
		return Display{Message: MsgNotReady, Level: LevelWait}
	}
}

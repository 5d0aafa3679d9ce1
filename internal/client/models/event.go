// Package models defines the records kept in the checker's local journal.
package models

import (
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/rpc"
)

// Event is one authentication outcome. Prefix holds the 16-character code
// prefix only; full codes are never journaled.
type Event struct {
	ID         string
	Prefix     string
	Result     string
	Label      string
	Location   string
	Source     string
	OccurredAt time.Time
	Sent       bool
}

// ToRPC converts e to its wire form.
func (e *Event) ToRPC() rpc.Event {
	return rpc.Event{
		ID:         e.ID,
		Prefix:     e.Prefix,
		Result:     e.Result,
		Label:      e.Label,
		Location:   e.Location,
		Source:     e.Source,
		OccurredAt: e.OccurredAt,
	}
}

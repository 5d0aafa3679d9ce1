// Package models holds the records persisted by the artifact server.
package models

import "time"

// Event is one ingested check outcome. Prefix carries at most the
// 16-character code prefix; full codes never reach the server.
type Event struct {
	ID         string
	Prefix     string
	Result     string
	Label      string
	Location   string
	Source     string
	OccurredAt time.Time
	ReceivedAt time.Time
}

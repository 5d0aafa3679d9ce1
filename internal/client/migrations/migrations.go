// Package migrations embeds the SQLite schema of the local analytics journal.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophcheck/internal/dbx"
	"github.com/dmitrijs2005/gophcheck/internal/server/repositories/events"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Events(db dbx.DBTX) events.Repository
}

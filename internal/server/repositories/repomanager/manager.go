package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/icarus/internal/dbx"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/projects"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/segments"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so that services can
// use the same repositories on a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Segments(db dbx.DBTX) segments.Repository
}

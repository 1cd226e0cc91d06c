package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/orgchat/internal/dbx"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/files"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or an open
// transaction, so services can run several repositories inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Files(db dbx.DBTX) files.Repository
}

// Package repomanager wires concrete repositories to database handles and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/chatapp/internal/dbx"
	"github.com/dmitrijs2005/chatapp/internal/userservice/repositories/refreshtokens"
	"github.com/dmitrijs2005/chatapp/internal/userservice/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// use the same repository type inside and outside transactions.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

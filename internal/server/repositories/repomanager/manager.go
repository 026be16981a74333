package repomanager

import (
	"context"
	"database/sql"

	"github.com/skomarov/boardkeeper/internal/dbx"
	"github.com/skomarov/boardkeeper/internal/server/repositories/rooms"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Rooms(db dbx.DBTX) rooms.Repository
}

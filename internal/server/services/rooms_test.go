package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/dbx"
	"github.com/skomarov/boardkeeper/internal/server/models"
	"github.com/skomarov/boardkeeper/internal/server/repositories/rooms"
)

// sqliteManager vends the production repository over an in-memory sqlite
// database. The repository SQL is portable between pgx and sqlite, which
// keeps these tests running without a PostgreSQL instance.
type sqliteManager struct{}

func (sqliteManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			scene_version INTEGER NOT NULL,
			iv BLOB NOT NULL,
			ciphertext BLOB NOT NULL,
			updated_at_ms INTEGER NOT NULL
		)`)
	return err
}

func (sqliteManager) Rooms(db dbx.DBTX) rooms.Repository {
	return rooms.NewPostgresRepository(db)
}

func setupRoomService(t *testing.T) *RoomService {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	rm := sqliteManager{}
	require.NoError(t, rm.RunMigrations(context.Background(), db))
	return NewRoomService(db, rm)
}

func TestRoomService_GetMissingIsNotFound(t *testing.T) {
	svc := setupRoomService(t)

	// A nonexistent room must be a distinct NotFound, never an
	// empty-but-successful payload.
	_, err := svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRoomService_SaveThenGet(t *testing.T) {
	svc := setupRoomService(t)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, &models.Room{
		ID:           "r1",
		SceneVersion: 1,
		IV:           []byte("nonce-1"),
		Ciphertext:   []byte("ct-1"),
	}))

	room, err := svc.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), room.SceneVersion)
	assert.Equal(t, []byte("ct-1"), room.Ciphertext)
	assert.False(t, room.UpdatedAt.IsZero())
}

func TestRoomService_SaveReplacesAllFields(t *testing.T) {
	svc := setupRoomService(t)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, &models.Room{
		ID: "r1", SceneVersion: 1, IV: []byte("iv-1"), Ciphertext: []byte("ct-1"),
	}))
	require.NoError(t, svc.Save(ctx, &models.Room{
		ID: "r1", SceneVersion: 5, IV: []byte("iv-2"), Ciphertext: []byte("ct-2"),
	}))

	room, err := svc.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), room.SceneVersion)
	assert.Equal(t, []byte("iv-2"), room.IV)
	assert.Equal(t, []byte("ct-2"), room.Ciphertext)
}

func TestRoomService_Validation(t *testing.T) {
	svc := setupRoomService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		room *models.Room
	}{
		{"empty id", &models.Room{ID: "", SceneVersion: 1, IV: []byte("iv"), Ciphertext: []byte("ct")}},
		{"slash in id", &models.Room{ID: "a/b", SceneVersion: 1, IV: []byte("iv"), Ciphertext: []byte("ct")}},
		{"negative version", &models.Room{ID: "r1", SceneVersion: -1, IV: []byte("iv"), Ciphertext: []byte("ct")}},
		{"empty iv", &models.Room{ID: "r1", SceneVersion: 1, Ciphertext: []byte("ct")}},
		{"empty ciphertext", &models.Room{ID: "r1", SceneVersion: 1, IV: []byte("iv")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Save(ctx, tt.room), common.ErrInvalidPayload)
		})
	}

	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, common.ErrInvalidPayload)
}

package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/logging"
	"github.com/skomarov/boardkeeper/internal/server/models"
	"github.com/skomarov/boardkeeper/internal/server/repositories/blobs"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	db, err := sql.Open("sqlite", "file:retention_test?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	rm := sqliteManager{}
	require.NoError(t, rm.RunMigrations(ctx, db))

	repo := rm.Rooms(db)
	require.NoError(t, repo.Upsert(ctx, &models.Room{
		ID: "old", SceneVersion: 1, IV: []byte("iv"), Ciphertext: []byte("ct"),
		UpdatedAt: base.Add(-72 * time.Hour),
	}))
	require.NoError(t, repo.Upsert(ctx, &models.Room{
		ID: "live", SceneVersion: 1, IV: []byte("iv"), Ciphertext: []byte("ct"),
		UpdatedAt: base,
	}))

	store := blobs.NewMemoryStore()
	putAt := func(key string, at time.Time) {
		store.SetClock(func() time.Time { return at })
		require.NoError(t, store.Put(ctx, key, []byte("blob")))
	}
	putAt("assets/old/img", base.Add(-72*time.Hour))
	putAt("assets/live/img", base)
	putAt("assets/ghost/img", base.Add(-48*time.Hour))
	putAt("assets/fresh-orphan/img", base)
	putAt("snapshots/stale", base.Add(-100*time.Hour))
	putAt("snapshots/recent", base)

	sweeper := NewSweeper(db, rm, store, RetentionConfig{
		Interval:    time.Minute,
		RoomTTL:     48 * time.Hour,
		AssetTTL:    168 * time.Hour,
		SnapshotTTL: 72 * time.Hour,
		OrphanGrace: 24 * time.Hour,
	}, discardLogger())
	sweeper.SetClock(func() time.Time { return base })

	sweeper.SweepOnce(ctx)

	// Idle room gone, active room kept.
	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = repo.Get(ctx, "live")
	assert.NoError(t, err)

	// The deleted room's assets went with it.
	_, err = store.Get(ctx, "assets/old/img")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Orphan past the grace period is swept; a fresh orphan survives so
	// an upload racing the room's first save is not lost.
	_, err = store.Get(ctx, "assets/ghost/img")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.Get(ctx, "assets/fresh-orphan/img")
	assert.NoError(t, err)

	// Live room's asset untouched.
	_, err = store.Get(ctx, "assets/live/img")
	assert.NoError(t, err)

	// Snapshots age out independently.
	_, err = store.Get(ctx, "snapshots/stale")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.Get(ctx, "snapshots/recent")
	assert.NoError(t, err)
}

func TestSweeper_AssetTTLAppliesEvenWithLiveRoom(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	db, err := sql.Open("sqlite", "file:retention_ttl_test?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	rm := sqliteManager{}
	require.NoError(t, rm.RunMigrations(ctx, db))
	require.NoError(t, rm.Rooms(db).Upsert(ctx, &models.Room{
		ID: "r1", SceneVersion: 1, IV: []byte("iv"), Ciphertext: []byte("ct"),
		UpdatedAt: base,
	}))

	store := blobs.NewMemoryStore()
	store.SetClock(func() time.Time { return base.Add(-200 * time.Hour) })
	require.NoError(t, store.Put(ctx, "assets/r1/ancient", []byte("blob")))

	sweeper := NewSweeper(db, rm, store, RetentionConfig{
		Interval:    time.Minute,
		RoomTTL:     1000 * time.Hour,
		AssetTTL:    168 * time.Hour,
		SnapshotTTL: 1000 * time.Hour,
		OrphanGrace: 24 * time.Hour,
	}, discardLogger())
	sweeper.SetClock(func() time.Time { return base })

	sweeper.SweepOnce(ctx)

	_, err = store.Get(ctx, "assets/r1/ancient")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/skomarov/boardkeeper/internal/dbx"
	"github.com/skomarov/boardkeeper/internal/logging"
	"github.com/skomarov/boardkeeper/internal/server/repositories/blobs"
	"github.com/skomarov/boardkeeper/internal/server/repositories/repomanager"
)

// RetentionConfig sets the per-class ages after which records are swept.
type RetentionConfig struct {
	// Interval between sweep passes.
	Interval time.Duration
	// RoomTTL: rooms not saved to for this long are deleted together
	// with their assets.
	RoomTTL time.Duration
	// AssetTTL / SnapshotTTL: blob ages after which objects are deleted.
	AssetTTL    time.Duration
	SnapshotTTL time.Duration
	// OrphanGrace: an asset whose room does not exist is only deleted
	// once it is older than this, so uploads that precede a room's
	// first save are not swept out from under the client.
	OrphanGrace time.Duration
}

// Sweeper periodically deletes expired rooms, assets and snapshots, plus
// assets whose owning room no longer exists.
type Sweeper struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	store  blobs.Store
	cfg    RetentionConfig
	logger logging.Logger

	now func() time.Time
}

func NewSweeper(db *sql.DB, rm repomanager.RepositoryManager, store blobs.Store, cfg RetentionConfig, logger logging.Logger) *Sweeper {
	return &Sweeper{
		db:     db,
		rm:     rm,
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "retention"),
		now:    time.Now,
	}
}

// SetClock replaces the time source. Test use only.
func (s *Sweeper) SetClock(now func() time.Time) { s.now = now }

// Run sweeps on the configured interval until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "retention sweep stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs one full pass. Failures in one class are logged and do not
// stop the others.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	if err := s.sweepRooms(ctx); err != nil {
		s.logger.Error(ctx, "room sweep failed", "error", err.Error())
	}
	if err := s.sweepAssets(ctx); err != nil {
		s.logger.Error(ctx, "asset sweep failed", "error", err.Error())
	}
	if err := s.sweepSnapshots(ctx); err != nil {
		s.logger.Error(ctx, "snapshot sweep failed", "error", err.Error())
	}
}

// sweepRooms deletes rooms idle past RoomTTL, selecting and deleting in one
// transaction so a save between the two statements cannot resurrect a row
// half-deleted. The rooms' assets are removed afterwards; if that trails
// behind, the orphan rule picks the leftovers up on a later pass.
func (s *Sweeper) sweepRooms(ctx context.Context) error {
	cutoff := s.now().Add(-s.cfg.RoomTTL)

	var expired []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Rooms(tx)
		ids, err := repo.SelectIdleSince(ctx, cutoff)
		if err != nil {
			return err
		}
		if _, err := repo.Delete(ctx, ids); err != nil {
			return err
		}
		expired = ids
		return nil
	})
	if err != nil {
		return err
	}

	for _, roomID := range expired {
		if err := s.deleteRoomAssets(ctx, roomID); err != nil {
			s.logger.Warn(ctx, "failed to delete room assets", "room_id", roomID, "error", err.Error())
		}
	}
	if len(expired) > 0 {
		s.logger.Info(ctx, "expired rooms deleted", "count", len(expired))
	}
	return nil
}

func (s *Sweeper) deleteRoomAssets(ctx context.Context, roomID string) error {
	objects, err := s.store.List(ctx, assetPrefix+roomID+"/")
	if err != nil {
		return err
	}
	for _, obj := range objects {
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return err
		}
	}
	return nil
}

// sweepAssets deletes assets past AssetTTL and orphaned assets (owning room
// gone) past OrphanGrace.
func (s *Sweeper) sweepAssets(ctx context.Context) error {
	objects, err := s.store.List(ctx, assetPrefix)
	if err != nil {
		return err
	}

	repo := s.rm.Rooms(s.db)
	now := s.now()
	deleted := 0

	for _, obj := range objects {
		age := now.Sub(obj.LastModified)

		remove := age > s.cfg.AssetTTL
		if !remove && age > s.cfg.OrphanGrace {
			exists, err := repo.Exists(ctx, OwnerRoom(obj.Key))
			if err != nil {
				return err
			}
			remove = !exists
		}
		if !remove {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return err
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info(ctx, "expired assets deleted", "count", deleted)
	}
	return nil
}

func (s *Sweeper) sweepSnapshots(ctx context.Context) error {
	objects, err := s.store.List(ctx, snapshotPrefix)
	if err != nil {
		return err
	}

	now := s.now()
	deleted := 0
	for _, obj := range objects {
		if now.Sub(obj.LastModified) <= s.cfg.SnapshotTTL {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return err
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info(ctx, "expired snapshots deleted", "count", deleted)
	}
	return nil
}

// Package services implements the server-side application logic over the
// repositories: room persistence, asset and snapshot storage, and the
// retention sweep.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/server/models"
	"github.com/skomarov/boardkeeper/internal/server/repositories/repomanager"
)

const maxRoomIDLength = 128

// RoomService stores and serves encrypted room payloads. The service never
// inspects ciphertext: reconciliation happens in the client data layer,
// which is the only place the room key exists.
type RoomService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewRoomService(db *sql.DB, rm repomanager.RepositoryManager) *RoomService {
	return &RoomService{db: db, rm: rm}
}

// Get returns the stored room or common.ErrNotFound. Callers must keep the
// two outcomes distinct: "no room yet" is not an error condition, while a
// backend fault must never read as an empty room.
func (s *RoomService) Get(ctx context.Context, roomID string) (*models.Room, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	return s.rm.Rooms(s.db).Get(ctx, roomID)
}

// Save upserts the full (scene_version, iv, ciphertext) triple. The room is
// created implicitly on first save; all three fields are replaced together.
func (s *RoomService) Save(ctx context.Context, room *models.Room) error {
	if err := validateRoomID(room.ID); err != nil {
		return err
	}
	if room.SceneVersion < 0 {
		return fmt.Errorf("%w: negative scene version", common.ErrInvalidPayload)
	}
	if len(room.IV) == 0 || len(room.Ciphertext) == 0 {
		return fmt.Errorf("%w: empty iv or ciphertext", common.ErrInvalidPayload)
	}
	return s.rm.Rooms(s.db).Upsert(ctx, room)
}

func validateRoomID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty room id", common.ErrInvalidPayload)
	}
	if len(id) > maxRoomIDLength {
		return fmt.Errorf("%w: room id too long", common.ErrInvalidPayload)
	}
	if strings.ContainsAny(id, "/ ") {
		return fmt.Errorf("%w: room id contains invalid characters", common.ErrInvalidPayload)
	}
	return nil
}

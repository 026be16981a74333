package rooms

import (
	"context"
	"time"

	"github.com/skomarov/boardkeeper/internal/server/models"
)

type Repository interface {
	// Get returns the stored room or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Room, error)

	// Upsert inserts the room or replaces scene_version, iv and
	// ciphertext together. The single-statement upsert is what makes a
	// save atomic at the storage layer.
	Upsert(ctx context.Context, room *models.Room) error

	// Exists reports whether a room row is present.
	Exists(ctx context.Context, id string) (bool, error)

	// SelectIdleSince returns ids of rooms not saved to since cutoff.
	SelectIdleSince(ctx context.Context, cutoff time.Time) ([]string, error)

	// Delete removes the given rooms. Missing ids are not an error.
	Delete(ctx context.Context, ids []string) (int64, error)
}

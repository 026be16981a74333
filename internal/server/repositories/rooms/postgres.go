// Package rooms provides the PostgreSQL-backed repository for encrypted
// room rows.
package rooms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/dbx"
	"github.com/skomarov/boardkeeper/internal/server/models"
)

// PostgresRepository implements room storage over a dbx.DBTX (*sql.DB or
// *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the room row for id, or common.ErrNotFound. A missing room is
// an expected outcome and must stay distinguishable from a backend failure:
// callers treat the former as "no room yet" and the latter as a fault.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Room, error) {
	query := `
		SELECT id, scene_version, iv, ciphertext, updated_at_ms FROM rooms
		WHERE id = $1
	`
	room := &models.Room{}
	var updatedAtMs int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID, &room.SceneVersion, &room.IV, &room.Ciphertext, &updatedAtMs)
	if err == nil {
		room.UpdatedAt = time.UnixMilli(updatedAtMs)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select room: %v", common.ErrStorage, err)
	}
	return room, nil
}

// Upsert inserts the room or overwrites scene_version, iv and ciphertext in
// one statement. Exactly one row must be affected.
func (r *PostgresRepository) Upsert(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (id, scene_version, iv, ciphertext, updated_at_ms)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			scene_version = EXCLUDED.scene_version,
			iv = EXCLUDED.iv,
			ciphertext = EXCLUDED.ciphertext,
			updated_at_ms = EXCLUDED.updated_at_ms;
	`
	updatedAt := room.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, query, room.ID, room.SceneVersion, room.IV, room.Ciphertext, updatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: upsert room: %v", common.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", common.ErrStorage, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: unexpected rows affected: %d", common.ErrStorage, n)
	}
	return nil
}

// Exists reports whether the room row is present.
func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: room exists: %v", common.ErrStorage, err)
	}
	return exists, nil
}

// SelectIdleSince returns ids of rooms whose last save predates cutoff.
func (r *PostgresRepository) SelectIdleSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `SELECT id FROM rooms WHERE updated_at_ms < $1`
	rows, err := r.db.QueryContext(ctx, query, cutoff.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: select idle rooms: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan room id: %v", common.ErrStorage, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rooms: %v", common.ErrStorage, err)
	}
	return ids, nil
}

// Delete removes the given room rows. Ids already gone are not an error.
func (r *PostgresRepository) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`DELETE FROM rooms WHERE id IN (%s)`, strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: delete rooms: %v", common.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", common.ErrStorage, err)
	}
	return n, nil
}

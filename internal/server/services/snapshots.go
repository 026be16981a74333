package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/server/repositories/blobs"
)

// snapshotPrefix namespaces exported-scene objects inside the blob bucket.
const snapshotPrefix = "snapshots/"

// SnapshotService stores one-shot exported scenes. Unlike assets, ids are
// server-issued; an explicit re-export under an existing id is an upsert.
type SnapshotService struct {
	store blobs.Store

	// newID is a seam so tests get predictable ids.
	newID func() string
}

func NewSnapshotService(store blobs.Store) *SnapshotService {
	return &SnapshotService{store: store, newID: uuid.NewString}
}

func (s *SnapshotService) Get(ctx context.Context, id string) ([]byte, error) {
	if err := validateSnapshotID(id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, snapshotPrefix+id)
}

func (s *SnapshotService) Put(ctx context.Context, id string, data []byte) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty snapshot body", common.ErrInvalidPayload)
	}
	return s.store.Put(ctx, snapshotPrefix+id, data)
}

// Create stores the payload under a freshly issued id and returns the id.
func (s *SnapshotService) Create(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty snapshot body", common.ErrInvalidPayload)
	}
	id := s.newID()
	if err := s.store.Put(ctx, snapshotPrefix+id, data); err != nil {
		return "", err
	}
	return id, nil
}

func validateSnapshotID(id string) error {
	if id == "" || id == "new" {
		return fmt.Errorf("%w: invalid snapshot id", common.ErrInvalidPayload)
	}
	if strings.ContainsAny(id, "/ ") {
		return fmt.Errorf("%w: snapshot id contains invalid characters", common.ErrInvalidPayload)
	}
	return nil
}

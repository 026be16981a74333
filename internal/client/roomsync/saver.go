package roomsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/cryptox"
	"github.com/skomarov/boardkeeper/internal/logging"
	"github.com/skomarov/boardkeeper/internal/scene"
)

// Saver runs the optimistic save cycle for one client. Concurrent editors
// are reconciled rather than locked out: the last writer to the server wins
// the race on bytes, but carries the merged scene, so no one's elements are
// lost.
type Saver struct {
	api    *Client
	cache  *VersionCache
	logger logging.Logger
}

func NewSaver(api *Client, cache *VersionCache, logger logging.Logger) *Saver {
	return &Saver{
		api:    api,
		cache:  cache,
		logger: logger.With("component", "roomsync"),
	}
}

// Save persists the local scene to the room, merging with whatever is stored
// remotely, and returns the merged scene the caller should adopt.
//
// Steps: version-cache check (a hit means nothing changed since the last
// save; return the local scene with no I/O), fetch, decrypt, reconcile,
// encrypt, upsert, cache update. A room that does not exist yet reconciles
// against the empty scene.
//
// A decryption failure aborts the save: the key is wrong or the stored
// payload corrupt, and treating either as an empty room would overwrite
// other clients' work on the next write.
func (s *Saver) Save(ctx context.Context, connID, roomID string, key []byte, local []scene.Element) ([]scene.Element, error) {
	if err := scene.Validate(local); err != nil {
		return nil, err
	}

	localVersion := scene.Version(local)
	if cached, ok := s.cache.Get(connID); ok && cached == localVersion {
		s.logger.Debug(ctx, "scene version unchanged, skipping save",
			"room_id", roomID, "scene_version", localVersion)
		return local, nil
	}

	var remoteElements []scene.Element
	remote, err := s.api.GetRoom(ctx, roomID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		// First save for this room.
	case err != nil:
		return nil, err
	default:
		plaintext, err := cryptox.Open(remote.IV, remote.Ciphertext, key)
		if err != nil {
			return nil, fmt.Errorf("open remote scene: %w", err)
		}
		remoteElements, err = scene.DecodeElements(plaintext)
		if err != nil {
			return nil, fmt.Errorf("decode remote scene: %w", err)
		}
	}

	merged, err := scene.Reconcile(local, remoteElements)
	if err != nil {
		return nil, err
	}

	plaintext, err := scene.EncodeElements(merged)
	if err != nil {
		return nil, err
	}
	iv, ciphertext, err := cryptox.Seal(key, plaintext)
	if err != nil {
		return nil, err
	}

	mergedVersion := scene.Version(merged)
	err = s.api.PutRoom(ctx, roomID, &RemoteRoom{
		SceneVersion: mergedVersion,
		IV:           iv,
		Ciphertext:   ciphertext,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(connID, merged)
	s.logger.Debug(ctx, "scene saved",
		"room_id", roomID, "scene_version", mergedVersion, "elements", len(merged))
	return merged, nil
}

// Load fetches and decrypts the room's scene. A room that has never been
// saved returns common.ErrNotFound.
func (s *Saver) Load(ctx context.Context, roomID string, key []byte) ([]scene.Element, error) {
	remote, err := s.api.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	plaintext, err := cryptox.Open(remote.IV, remote.Ciphertext, key)
	if err != nil {
		return nil, fmt.Errorf("open remote scene: %w", err)
	}
	return scene.DecodeElements(plaintext)
}

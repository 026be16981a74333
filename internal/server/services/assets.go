package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/server/repositories/blobs"
)

// assetPrefix namespaces asset objects inside the shared blob bucket.
const assetPrefix = "assets/"

const maxAssetKeyLength = 512

// AssetService stores binary blobs attached to rooms (images, export
// bundles). Keys are caller-supplied, path-like, with the owning room id as
// the first segment; payloads are already encrypted client-side and are
// stored verbatim. Re-uploads under the same key overwrite silently:
// callers derive keys from content identity, so a collision means the same
// bytes.
type AssetService struct {
	store blobs.Store
}

func NewAssetService(store blobs.Store) *AssetService {
	return &AssetService{store: store}
}

func (s *AssetService) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateAssetKey(key); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, assetPrefix+key)
}

func (s *AssetService) Put(ctx context.Context, key string, data []byte) error {
	if err := validateAssetKey(key); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty asset body", common.ErrInvalidPayload)
	}
	return s.store.Put(ctx, assetPrefix+key, data)
}

// OwnerRoom extracts the room id encoded as the first segment of an asset
// key. The retention sweep uses it to find assets whose room is gone.
func OwnerRoom(key string) string {
	key = strings.TrimPrefix(key, assetPrefix)
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return key
}

func validateAssetKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty asset key", common.ErrInvalidPayload)
	}
	if len(key) > maxAssetKeyLength {
		return fmt.Errorf("%w: asset key too long", common.ErrInvalidPayload)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: asset key %q not allowed", common.ErrInvalidPayload, key)
	}
	return nil
}

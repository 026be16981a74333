package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/server/repositories/blobs"
)

func TestAssetService_PutGetRoundTrip(t *testing.T) {
	svc := NewAssetService(blobs.NewMemoryStore())
	ctx := context.Background()

	payload := []byte("pre-encrypted image bytes")
	require.NoError(t, svc.Put(ctx, "room1/img1", payload))

	got, err := svc.Get(ctx, "room1/img1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestAssetService_GetMissing(t *testing.T) {
	svc := NewAssetService(blobs.NewMemoryStore())

	_, err := svc.Get(context.Background(), "room1/absent")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAssetService_PutOverwritesSilently(t *testing.T) {
	svc := NewAssetService(blobs.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, "room1/img1", []byte("v1")))
	require.NoError(t, svc.Put(ctx, "room1/img1", []byte("v2")))

	got, err := svc.Get(ctx, "room1/img1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestAssetService_KeyValidation(t *testing.T) {
	svc := NewAssetService(blobs.NewMemoryStore())
	ctx := context.Background()

	for _, key := range []string{"", "/leading", "a/../b"} {
		assert.ErrorIs(t, svc.Put(ctx, key, []byte("x")), common.ErrInvalidPayload, "key %q", key)
	}
	assert.ErrorIs(t, svc.Put(ctx, "room1/img1", nil), common.ErrInvalidPayload)
}

func TestOwnerRoom(t *testing.T) {
	assert.Equal(t, "room1", OwnerRoom("room1/img1"))
	assert.Equal(t, "room1", OwnerRoom("assets/room1/img1"))
	assert.Equal(t, "solo", OwnerRoom("solo"))
}

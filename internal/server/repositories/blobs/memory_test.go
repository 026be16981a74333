package blobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skomarov/boardkeeper/internal/common"
)

func TestMemoryStore_PutGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	payload := []byte{0x00, 0x01, 0xff}
	require.NoError(t, s.Put(ctx, "rooms/r1/img1", payload))

	got, err := s.Get(ctx, "rooms/r1/img1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v1")))
	require.NoError(t, s.Put(ctx, "k", []byte("v2")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestMemoryStore_DeleteMissingIsNoop(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Delete(context.Background(), "nope"))
}

func TestMemoryStore_ListByPrefix(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return base })

	require.NoError(t, s.Put(ctx, "assets/r1/a", []byte("1")))
	require.NoError(t, s.Put(ctx, "assets/r2/b", []byte("22")))
	require.NoError(t, s.Put(ctx, "snapshots/s1", []byte("333")))

	objects, err := s.List(ctx, "assets/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "assets/r1/a", objects[0].Key)
	assert.Equal(t, int64(1), objects[0].Size)
	assert.Equal(t, base, objects[0].LastModified)
	assert.Equal(t, "assets/r2/b", objects[1].Key)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("abc")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

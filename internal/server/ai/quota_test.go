package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skomarov/boardkeeper/internal/common"
)

func TestDailyQuota_AllowsUpToLimit(t *testing.T) {
	q := NewDailyQuota(2)

	require.NoError(t, q.Allow("1.2.3.4"))
	require.NoError(t, q.Allow("1.2.3.4"))
	assert.ErrorIs(t, q.Allow("1.2.3.4"), common.ErrQuotaExceeded)
}

func TestDailyQuota_CallersAreIndependent(t *testing.T) {
	q := NewDailyQuota(1)

	require.NoError(t, q.Allow("a"))
	require.NoError(t, q.Allow("b"))
	assert.ErrorIs(t, q.Allow("a"), common.ErrQuotaExceeded)
}

func TestDailyQuota_ResetsNextDay(t *testing.T) {
	q := NewDailyQuota(1)
	day1 := time.Date(2026, 8, 1, 23, 59, 0, 0, time.UTC)
	q.SetClock(func() time.Time { return day1 })

	require.NoError(t, q.Allow("a"))
	assert.ErrorIs(t, q.Allow("a"), common.ErrQuotaExceeded)

	q.SetClock(func() time.Time { return day1.Add(2 * time.Minute) })
	assert.NoError(t, q.Allow("a"), "counter must reset at UTC midnight")
}

package ai

import (
	"fmt"
	"sync"
	"time"

	"github.com/skomarov/boardkeeper/internal/common"
)

// DailyQuota counts requests per caller identity per calendar day (UTC) and
// rejects callers over the limit. Counters live in process memory only; a
// restart resets them, which is acceptable for an abuse brake.
type DailyQuota struct {
	mu     sync.Mutex
	limit  int
	day    string
	counts map[string]int

	now func() time.Time
}

func NewDailyQuota(limit int) *DailyQuota {
	return &DailyQuota{
		limit:  limit,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// SetClock replaces the time source. Test use only.
func (q *DailyQuota) SetClock(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
}

// Allow consumes one unit for caller, or returns common.ErrQuotaExceeded.
func (q *DailyQuota) Allow(caller string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	day := q.now().UTC().Format("2006-01-02")
	if day != q.day {
		q.day = day
		q.counts = make(map[string]int)
	}

	if q.counts[caller] >= q.limit {
		return fmt.Errorf("%w: %d requests today", common.ErrQuotaExceeded, q.counts[caller])
	}
	q.counts[caller]++
	return nil
}

// internal/app/idempotency_cache.go
package app

import (
	"sync"

	"retail_reminder_bot/internal/domain/reminder"
)

type sentRecord struct {
	key    reminder.IdempotencyKey
	period reminder.PeriodTag
}

// IdempotencyCache remembers which deliveries succeeded in the current period.
// It lives in process memory only and is empty after a restart.
// It is safe for concurrent use.
type IdempotencyCache struct {
	mu   sync.Mutex
	sent map[sentRecord]struct{}
}

func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{sent: make(map[sentRecord]struct{})}
}

// IsSent reports whether key already had a successful delivery in period.
func (c *IdempotencyCache) IsSent(key reminder.IdempotencyKey, period reminder.PeriodTag) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sent[sentRecord{key: key, period: period}]
	return ok
}

// MarkSent records a successful delivery of key in period.
func (c *IdempotencyCache) MarkSent(key reminder.IdempotencyKey, period reminder.PeriodTag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent[sentRecord{key: key, period: period}] = struct{}{}
}

// EvictStale drops every record whose period falls on another date than
// current and returns how many were dropped. Records of other hour buckets of
// the same date are kept.
func (c *IdempotencyCache) EvictStale(current reminder.PeriodTag) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := current.Date()
	evicted := 0
	for rec := range c.sent {
		if rec.period.Date() != today {
			delete(c.sent, rec)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of records held.
func (c *IdempotencyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/store"
)

// RateLimiter enforces a trailing-window ceiling per user and action on top
// of the persisted RateLimitWindow record.
type RateLimiter struct {
	store store.Store
	now   func() time.Time
}

func NewRateLimiter(st store.Store) *RateLimiter {
	return &RateLimiter{store: st, now: time.Now}
}

// Allow checks the window and records the attempt. The read and the write
// are separate store calls, not one atomic unit: two concurrent attempts at
// the ceiling boundary can both pass the check and admit one extra request.
func (l *RateLimiter) Allow(userID uuid.UUID, action string, ceiling int, window time.Duration) error {
	w, err := l.store.GetRateWindow(userID, action)
	if err != nil {
		return err
	}

	now := l.now()
	w.Prune(now.Add(-window))

	if len(w.Attempts) >= ceiling {
		return ErrRateLimitExceeded
	}

	w.Attempts = append(w.Attempts, now.UnixMilli())
	w.LastUpdated = now
	return l.store.SaveRateWindow(w)
}

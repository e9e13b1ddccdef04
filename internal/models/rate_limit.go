package models

import (
	"time"

	"github.com/google/uuid"
)

// RateLimitWindow is the trailing window of attempt timestamps for one user
// and action, created lazily on the first rate-limited attempt. Attempts
// holds epoch-millisecond timestamps; entries older than the window are
// dropped on each check.
type RateLimitWindow struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rate_windows_user_action" json:"user_id"`
	Action      string    `gorm:"size:50;not null;uniqueIndex:idx_rate_windows_user_action" json:"action"`
	Attempts    []int64   `gorm:"type:jsonb;serializer:json;default:'[]'" json:"attempts"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
}

func (RateLimitWindow) TableName() string {
	return "rate_limit_windows"
}

// Prune discards attempts at or before the cutoff.
func (w *RateLimitWindow) Prune(cutoff time.Time) {
	cutoffMs := cutoff.UnixMilli()
	kept := w.Attempts[:0]
	for _, ts := range w.Attempts {
		if ts > cutoffMs {
			kept = append(kept, ts)
		}
	}
	w.Attempts = kept
}

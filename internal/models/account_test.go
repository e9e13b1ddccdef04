package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePremium(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		acct UserAccount
		want bool
	}{
		{"premium with future expiry", UserAccount{IsPremium: true, SubscriptionExpires: &future}, true},
		{"premium with past expiry", UserAccount{IsPremium: true, SubscriptionExpires: &past}, false},
		{"premium without expiry", UserAccount{IsPremium: true}, false},
		{"free tier", UserAccount{SubscriptionExpires: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.acct.EffectivePremium(now))
		})
	}
}

func TestRateLimitWindowPrune(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-time.Hour)

	w := RateLimitWindow{Attempts: []int64{
		now.Add(-2 * time.Hour).UnixMilli(),
		now.Add(-61 * time.Minute).UnixMilli(),
		now.Add(-59 * time.Minute).UnixMilli(),
		now.Add(-time.Minute).UnixMilli(),
	}}

	w.Prune(cutoff)

	assert.Equal(t, []int64{
		now.Add(-59 * time.Minute).UnixMilli(),
		now.Add(-time.Minute).UnixMilli(),
	}, w.Attempts)
}

func TestRateLimitWindowPruneEmpty(t *testing.T) {
	w := RateLimitWindow{Attempts: []int64{}}
	w.Prune(time.Now())
	assert.Empty(t, w.Attempts)
}

package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/models"
	"github.com/smartscanner/scanner-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOCRFixture(t *testing.T, acct models.UserAccount, now time.Time) (*OCRService, uuid.UUID) {
	t.Helper()
	st := store.NewMemory()
	userID := seedAccount(t, st, acct)

	limiter := NewRateLimiter(st)
	limiter.now = fixedClock(now)

	svc := NewOCRService(st, limiter)
	svc.now = fixedClock(now)
	return svc, userID
}

func TestPerformOCRPremium(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	expires := now.Add(24 * time.Hour)

	svc, userID := newOCRFixture(t, models.UserAccount{
		ScanLimit:           10,
		IsPremium:           true,
		SubscriptionExpires: &expires,
	}, now)

	resp, err := svc.PerformOCR(userID, &dto.OCRRequest{ImageURL: "https://cdn.example.com/doc.jpg"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "OCR text will be here", resp.Text)
}

func TestPerformOCRDeniedForFreeTier(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	svc, userID := newOCRFixture(t, models.UserAccount{ScanLimit: 10}, now)

	_, err := svc.PerformOCR(userID, &dto.OCRRequest{ImageURL: "https://cdn.example.com/doc.jpg"})
	assert.ErrorIs(t, err, ErrPremiumRequired)
}

func TestPerformOCRDeniedWhenSubscriptionLapsed(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)

	// Still flagged premium; the daily sweep has not run yet.
	svc, userID := newOCRFixture(t, models.UserAccount{
		ScanLimit:           10,
		IsPremium:           true,
		SubscriptionExpires: &expired,
	}, now)

	_, err := svc.PerformOCR(userID, &dto.OCRRequest{ImageURL: "https://cdn.example.com/doc.jpg"})
	assert.ErrorIs(t, err, ErrPremiumRequired)
}

func TestPerformOCRRateLimited(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	expires := now.Add(24 * time.Hour)

	svc, userID := newOCRFixture(t, models.UserAccount{
		ScanLimit:           10,
		IsPremium:           true,
		SubscriptionExpires: &expires,
	}, now)

	req := &dto.OCRRequest{ImageURL: "https://cdn.example.com/doc.jpg"}
	for i := 0; i < 50; i++ {
		_, err := svc.PerformOCR(userID, req)
		require.NoError(t, err)
	}

	_, err := svc.PerformOCR(userID, req)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
}

func TestPerformOCRUnknownAccount(t *testing.T) {
	st := store.NewMemory()
	svc := NewOCRService(st, NewRateLimiter(st))

	_, err := svc.PerformOCR(uuid.New(), &dto.OCRRequest{})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

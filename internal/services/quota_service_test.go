package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/models"
	"github.com/smartscanner/scanner-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, st *store.Memory, acct models.UserAccount) uuid.UUID {
	t.Helper()
	if acct.UserID == uuid.Nil {
		acct.UserID = uuid.New()
	}
	created, err := st.CreateAccountIfAbsent(&acct)
	require.NoError(t, err)
	require.True(t, created)
	return acct.UserID
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestRecordScanDecrementsAllowance(t *testing.T) {
	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{ScanLimit: 10})

	svc := NewQuotaService(st)

	for i := 1; i <= 3; i++ {
		result, err := svc.RecordScan(userID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Unlimited)
		assert.Equal(t, 10-i, result.ScansRemaining)
	}

	acct, err := st.GetAccount(userID)
	require.NoError(t, err)
	assert.Equal(t, 3, acct.ScansThisMonth)
	require.NotNil(t, acct.LastScanDate)
}

func TestRecordScanRejectsAtLimit(t *testing.T) {
	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{ScanLimit: 10, ScansThisMonth: 10})

	svc := NewQuotaService(st)

	result, err := svc.RecordScan(userID)
	assert.ErrorIs(t, err, ErrScanLimitReached)
	assert.Nil(t, result)

	// A rejected scan must not touch the counter.
	acct, err := st.GetAccount(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, acct.ScansThisMonth)
	assert.Nil(t, acct.LastScanDate)
}

func TestRecordScanPremiumUnlimited(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	expires := now.Add(20 * 24 * time.Hour)

	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{
		ScanLimit:           10,
		ScansThisMonth:      10,
		IsPremium:           true,
		SubscriptionExpires: &expires,
	})

	svc := NewQuotaService(st)
	svc.now = fixedClock(now)

	result, err := svc.RecordScan(userID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Unlimited)
	assert.Equal(t, -1, result.ScansRemaining)

	// Premium scans are not counted.
	acct, err := st.GetAccount(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, acct.ScansThisMonth)
}

func TestRecordScanLapsedPremiumCountsAgainstQuota(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)

	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{
		ScanLimit:           10,
		IsPremium:           true,
		SubscriptionExpires: &expired,
	})

	svc := NewQuotaService(st)
	svc.now = fixedClock(now)

	result, err := svc.RecordScan(userID)
	require.NoError(t, err)
	assert.False(t, result.Unlimited)
	assert.Equal(t, 9, result.ScansRemaining)
}

func TestRecordScanUnknownAccount(t *testing.T) {
	svc := NewQuotaService(store.NewMemory())

	_, err := svc.RecordScan(uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRecordScanConcurrentNeverExceedsLimit(t *testing.T) {
	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{ScanLimit: 10, ScansThisMonth: 5})

	svc := NewQuotaService(st)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordScan(userID); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, admitted)

	acct, err := st.GetAccount(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, acct.ScansThisMonth)
}

func TestAllowanceReporting(t *testing.T) {
	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{ScanLimit: 10, ScansThisMonth: 7})

	svc := NewQuotaService(st)

	allowance, err := svc.Allowance(userID)
	require.NoError(t, err)
	assert.True(t, allowance.CanScan)
	assert.Equal(t, 3, allowance.Remaining)
	assert.False(t, allowance.Unlimited)

	// Reading the allowance consumes nothing.
	acct, err := st.GetAccount(userID)
	require.NoError(t, err)
	assert.Equal(t, 7, acct.ScansThisMonth)
}

func TestAllowanceExhausted(t *testing.T) {
	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{ScanLimit: 10, ScansThisMonth: 10})

	svc := NewQuotaService(st)

	allowance, err := svc.Allowance(userID)
	require.NoError(t, err)
	assert.False(t, allowance.CanScan)
	assert.Equal(t, 0, allowance.Remaining)
}

func TestAllowancePremium(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)

	st := store.NewMemory()
	userID := seedAccount(t, st, models.UserAccount{
		ScanLimit:           10,
		ScansThisMonth:      10,
		IsPremium:           true,
		SubscriptionExpires: &expires,
	})

	svc := NewQuotaService(st)
	svc.now = fixedClock(now)

	allowance, err := svc.Allowance(userID)
	require.NoError(t, err)
	assert.True(t, allowance.CanScan)
	assert.True(t, allowance.Unlimited)
	assert.Equal(t, -1, allowance.Remaining)
}

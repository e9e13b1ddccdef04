package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/models"
)

// Memory is a mutex-serialized in-memory Store. It backs the service tests
// and mirrors the transactional behavior of the Postgres implementation:
// RunAtomic callbacks run one at a time, and an error from the callback
// leaves the stored account untouched.
type Memory struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]models.UserAccount
	windows  map[string]models.RateLimitWindow
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[uuid.UUID]models.UserAccount),
		windows:  make(map[string]models.RateLimitWindow),
	}
}

func (s *Memory) GetAccount(userID uuid.UUID) (*models.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := acct
	return &copied, nil
}

func (s *Memory) CreateAccountIfAbsent(acct *models.UserAccount) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acct.UserID]; ok {
		return false, nil
	}
	s.accounts[acct.UserID] = *acct
	return true, nil
}

func (s *Memory) RunAtomic(userID uuid.UUID, fn func(acct *models.UserAccount) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}
	working := acct
	mutated, err := fn(&working)
	if err != nil {
		return err
	}
	if mutated {
		working.UpdatedAt = time.Now()
		s.accounts[userID] = working
	}
	return nil
}

func (s *Memory) ActivateSubscription(userID uuid.UUID, upd SubscriptionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}
	expires := upd.ExpiresAt
	verified := upd.VerifiedAt
	acct.IsPremium = true
	acct.SubscriptionExpires = &expires
	acct.SubscriptionPlatform = upd.Platform
	acct.SubscriptionProductID = upd.ProductID
	acct.SubscriptionVerifiedAt = &verified
	acct.UpdatedAt = time.Now()
	s.accounts[userID] = acct
	return nil
}

func (s *Memory) GetRateWindow(userID uuid.UUID, action string) (*models.RateLimitWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	window, ok := s.windows[windowKey(userID, action)]
	if !ok {
		return &models.RateLimitWindow{
			UserID:   userID,
			Action:   action,
			Attempts: []int64{},
		}, nil
	}
	copied := window
	copied.Attempts = append([]int64(nil), window.Attempts...)
	return &copied, nil
}

func (s *Memory) SaveRateWindow(w *models.RateLimitWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	copied := *w
	copied.Attempts = append([]int64(nil), w.Attempts...)
	s.windows[windowKey(w.UserID, w.Action)] = copied
	return nil
}

func (s *Memory) ResetAllScans(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var touched int64
	for id, acct := range s.accounts {
		acct.ScansThisMonth = 0
		acct.LastScanReset = now
		acct.UpdatedAt = now
		s.accounts[id] = acct
		touched++
	}
	return touched, nil
}

func (s *Memory) DemoteExpired(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var touched int64
	for id, acct := range s.accounts {
		if acct.IsPremium && acct.SubscriptionExpires != nil && acct.SubscriptionExpires.Before(now) {
			acct.IsPremium = false
			acct.UpdatedAt = now
			s.accounts[id] = acct
			touched++
		}
	}
	return touched, nil
}

func windowKey(userID uuid.UUID, action string) string {
	return userID.String() + "|" + action
}

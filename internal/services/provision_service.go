package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/models"
	"github.com/smartscanner/scanner-backend/internal/store"
)

const defaultScanLimit = 10

// ProvisionService creates the default quota record when a new identity is
// established.
type ProvisionService struct {
	store store.Store
	now   func() time.Time
}

func NewProvisionService(st store.Store) *ProvisionService {
	return &ProvisionService{store: st, now: time.Now}
}

// ProvisionAccount creates the UserAccount for a newly registered user with
// the free-tier defaults. Timestamps are server-assigned. Creation is
// conditional: a duplicate event for the same user leaves the existing
// record untouched.
func (s *ProvisionService) ProvisionAccount(userID uuid.UUID) error {
	now := s.now()
	created, err := s.store.CreateAccountIfAbsent(&models.UserAccount{
		UserID:         userID,
		IsPremium:      false,
		ScansThisMonth: 0,
		ScanLimit:      defaultScanLimit,
		LastScanReset:  now,
		CreatedAt:      now,
	})
	if err != nil {
		return err
	}
	if created {
		slog.Info("user account initialized", "user_id", userID)
	}
	return nil
}

// ProvisionAsync runs ProvisionAccount in the background. Failures are
// logged and never surfaced; the registration flow must not block on
// provisioning.
func (s *ProvisionService) ProvisionAsync(userID uuid.UUID) {
	go func() {
		if err := s.ProvisionAccount(userID); err != nil {
			slog.Error("account provisioning failed", "user_id", userID, "error", err)
		}
	}()
}

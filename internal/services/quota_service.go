package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/models"
	"github.com/smartscanner/scanner-backend/internal/store"
)

// QuotaService is the scan ledger: it checks and consumes the monthly scan
// allowance.
type QuotaService struct {
	store store.Store
	now   func() time.Time
}

func NewQuotaService(st store.Store) *QuotaService {
	return &QuotaService{store: st, now: time.Now}
}

// RecordScan consumes one scan from the caller's monthly allowance.
//
// The premium check, the limit check and the increment all run inside one
// row-locked transaction, so concurrent calls for the same account cannot
// both observe "under limit" and push the counter past it. Premium accounts
// with an unexpired subscription pass through with no mutation.
func (s *QuotaService) RecordScan(userID uuid.UUID) (*dto.ScanResult, error) {
	var result *dto.ScanResult
	err := s.store.RunAtomic(userID, func(acct *models.UserAccount) (bool, error) {
		now := s.now()

		if acct.EffectivePremium(now) {
			result = &dto.ScanResult{Success: true, Unlimited: true, ScansRemaining: -1}
			return false, nil
		}

		if acct.ScansThisMonth >= acct.ScanLimit {
			return false, ErrScanLimitReached
		}

		acct.ScansThisMonth++
		acct.LastScanDate = &now
		result = &dto.ScanResult{
			Success:        true,
			Unlimited:      false,
			ScansRemaining: acct.ScanLimit - acct.ScansThisMonth,
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Allowance reports the remaining allowance without consuming a scan.
func (s *QuotaService) Allowance(userID uuid.UUID) (*dto.ScanAllowance, error) {
	acct, err := s.store.GetAccount(userID)
	if err != nil {
		return nil, err
	}

	if acct.EffectivePremium(s.now()) {
		return &dto.ScanAllowance{CanScan: true, Remaining: -1, Unlimited: true}, nil
	}

	remaining := acct.ScanLimit - acct.ScansThisMonth
	if remaining < 0 {
		remaining = 0
	}
	return &dto.ScanAllowance{CanScan: remaining > 0, Remaining: remaining}, nil
}

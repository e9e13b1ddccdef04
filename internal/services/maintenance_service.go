package services

import (
	"log/slog"
	"time"

	"github.com/smartscanner/scanner-backend/internal/store"
)

// MaintenanceService owns the periodic sweeps. Each sweep is one idempotent
// bulk write that either fully commits or fully fails; a failed run leaves
// state stale until the next trigger.
type MaintenanceService struct {
	store store.Store
	now   func() time.Time
}

func NewMaintenanceService(st store.Store) *MaintenanceService {
	return &MaintenanceService{store: st, now: time.Now}
}

// ResetMonthlyScans zeroes every account's monthly counter and stamps the
// reset time. Safe to re-run; a second run in the same period only churns
// timestamps.
func (s *MaintenanceService) ResetMonthlyScans() (int64, error) {
	n, err := s.store.ResetAllScans(s.now())
	if err != nil {
		slog.Error("monthly scan reset failed", "error", err)
		return 0, err
	}
	slog.Info("monthly scan counts reset", "accounts", n)
	return n, nil
}

// CheckExpiredSubscriptions demotes premium accounts whose subscription
// expiry has passed. Monotonic: it never re-promotes.
func (s *MaintenanceService) CheckExpiredSubscriptions() (int64, error) {
	n, err := s.store.DemoteExpired(s.now())
	if err != nil {
		slog.Error("subscription expiry sweep failed", "error", err)
		return 0, err
	}
	slog.Info("expired subscriptions demoted", "accounts", n)
	return n, nil
}

// Package scheduler drives the periodic maintenance sweeps: the daily
// subscription-expiry check and the monthly scan counter reset.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/smartscanner/scanner-backend/internal/services"
)

type Scheduler struct {
	maintenance *services.MaintenanceService

	lastExpirySweep  time.Time
	lastMonthlyReset time.Time

	now func() time.Time
}

func New(maintenance *services.MaintenanceService) *Scheduler {
	return &Scheduler{
		maintenance: maintenance,
		now:         time.Now,
	}
}

// Start runs the sweep loop until done is closed. An initial tick fires
// immediately so a restart never skips an overdue sweep.
func (s *Scheduler) Start(done chan struct{}) {
	go func() {
		s.tick()
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-done:
				slog.Info("scheduler stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) tick() {
	now := s.now().UTC()

	if !sameDay(s.lastExpirySweep, now) {
		if _, err := s.maintenance.CheckExpiredSubscriptions(); err == nil {
			s.lastExpirySweep = now
		}
	}

	if now.Day() == 1 && !sameMonth(s.lastMonthlyReset, now) {
		if _, err := s.maintenance.ResetMonthlyScans(); err == nil {
			s.lastMonthlyReset = now
		}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

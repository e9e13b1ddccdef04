// Package store is the persistence port for quota and subscription state.
// Services depend only on the Store interface; the production implementation
// sits on GORM/Postgres and an in-memory implementation backs the tests.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/models"
)

var ErrAccountNotFound = errors.New("user account not found")

// SubscriptionUpdate carries the fields written after a verified purchase.
type SubscriptionUpdate struct {
	ExpiresAt  time.Time
	Platform   string
	ProductID  string
	VerifiedAt time.Time
}

// Store persists user accounts and rate-limit windows.
//
// RunAtomic is the only serialized primitive: its callback observes and
// mutates a single account under a row lock. Everything else is a plain
// read or a last-write-wins update.
type Store interface {
	GetAccount(userID uuid.UUID) (*models.UserAccount, error)

	// CreateAccountIfAbsent inserts the account only when no row exists for
	// the user. A duplicate provisioning event must not clobber live quota
	// state. Reports whether a row was created.
	CreateAccountIfAbsent(acct *models.UserAccount) (bool, error)

	// RunAtomic loads the account under a row lock, applies fn, and persists
	// the account when fn reports a mutation. An error from fn aborts the
	// transaction with no partial write.
	RunAtomic(userID uuid.UUID, fn func(acct *models.UserAccount) (mutated bool, err error)) error

	// ActivateSubscription marks the account premium and records the
	// purchase provenance. Plain update; not serialized against RunAtomic.
	ActivateSubscription(userID uuid.UUID, upd SubscriptionUpdate) error

	// GetRateWindow returns the window for the user and action, or a fresh
	// empty window when none is stored yet.
	GetRateWindow(userID uuid.UUID, action string) (*models.RateLimitWindow, error)

	// SaveRateWindow persists the window. The get/save pair is deliberately
	// two calls: concurrent attempts may interleave and admit one extra
	// request over the ceiling.
	SaveRateWindow(w *models.RateLimitWindow) error

	// ResetAllScans zeroes every account's monthly counter and stamps the
	// reset time, in one bulk write. Returns the number of rows touched.
	ResetAllScans(now time.Time) (int64, error)

	// DemoteExpired clears the premium flag on accounts whose subscription
	// expiry has passed, in one bulk write. Returns the number of rows
	// touched.
	DemoteExpired(now time.Time) (int64, error)
}

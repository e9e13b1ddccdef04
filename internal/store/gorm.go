package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the Postgres-backed Store.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) GetAccount(userID uuid.UUID) (*models.UserAccount, error) {
	var acct models.UserAccount
	if err := s.db.First(&acct, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

func (s *Gorm) CreateAccountIfAbsent(acct *models.UserAccount) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(acct)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RunAtomic serializes concurrent check-and-mutate sequences on the same
// account with SELECT ... FOR UPDATE inside a transaction.
func (s *Gorm) RunAtomic(userID uuid.UUID, fn func(acct *models.UserAccount) (bool, error)) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var acct models.UserAccount
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&acct, "user_id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		mutated, err := fn(&acct)
		if err != nil {
			return err
		}
		if !mutated {
			return nil
		}
		return tx.Save(&acct).Error
	})
}

func (s *Gorm) ActivateSubscription(userID uuid.UUID, upd SubscriptionUpdate) error {
	result := s.db.Model(&models.UserAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"is_premium":               true,
			"subscription_expires":     upd.ExpiresAt,
			"subscription_platform":    upd.Platform,
			"subscription_product_id":  upd.ProductID,
			"subscription_verified_at": upd.VerifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *Gorm) GetRateWindow(userID uuid.UUID, action string) (*models.RateLimitWindow, error) {
	var window models.RateLimitWindow
	err := s.db.Where("user_id = ? AND action = ?", userID, action).First(&window).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.RateLimitWindow{
			UserID:   userID,
			Action:   action,
			Attempts: []int64{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func (s *Gorm) SaveRateWindow(w *models.RateLimitWindow) error {
	if w.ID != uuid.Nil {
		return s.db.Save(w).Error
	}
	w.ID = uuid.New()
	// First attempt for this user+action; a racing insert wins last-write.
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "action"}},
		DoUpdates: clause.AssignmentColumns([]string{"attempts", "last_updated"}),
	}).Create(w).Error
}

func (s *Gorm) ResetAllScans(now time.Time) (int64, error) {
	result := s.db.Model(&models.UserAccount{}).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Updates(map[string]interface{}{
			"scans_this_month": 0,
			"last_scan_reset":  now,
		})
	return result.RowsAffected, result.Error
}

func (s *Gorm) DemoteExpired(now time.Time) (int64, error) {
	result := s.db.Model(&models.UserAccount{}).
		Where("is_premium = ? AND subscription_expires < ?", true, now).
		Update("is_premium", false)
	return result.RowsAffected, result.Error
}

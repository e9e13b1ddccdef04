package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAccount holds the scan quota and subscription state for one user.
// One row per identity: created by the provisioner when the identity is
// established, mutated by scan, subscription and maintenance operations,
// never deleted.
//
// IsPremium alone is not authoritative. The daily sweep demotes lapsed
// subscriptions asynchronously, so the flag may briefly outlive
// SubscriptionExpires; callers that gate features must use
// EffectivePremium instead.
type UserAccount struct {
	UserID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	IsPremium              bool       `gorm:"not null;default:false;index" json:"is_premium"`
	ScansThisMonth         int        `gorm:"not null;default:0;check:scans_this_month >= 0" json:"scans_this_month"`
	ScanLimit              int        `gorm:"not null;default:10" json:"scan_limit"`
	LastScanReset          time.Time  `gorm:"not null" json:"last_scan_reset"`
	LastScanDate           *time.Time `json:"last_scan_date,omitempty"`
	SubscriptionExpires    *time.Time `gorm:"index" json:"subscription_expires,omitempty"`
	SubscriptionPlatform   string     `gorm:"size:20" json:"subscription_platform,omitempty"`
	SubscriptionProductID  string     `gorm:"size:255" json:"subscription_product_id,omitempty"`
	SubscriptionVerifiedAt *time.Time `json:"subscription_verified_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

// EffectivePremium re-derives premium status from both fields: the stored
// flag must be set and the expiry must still be strictly in the future.
func (a *UserAccount) EffectivePremium(now time.Time) bool {
	return a.IsPremium && a.SubscriptionExpires != nil && a.SubscriptionExpires.After(now)
}

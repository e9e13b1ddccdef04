package services

import (
	"errors"

	"github.com/smartscanner/scanner-backend/internal/store"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrAccountNotFound   = store.ErrAccountNotFound
	ErrScanLimitReached  = errors.New("scan limit reached, upgrade to premium")
	ErrRateLimitExceeded = errors.New("rate limit exceeded, try again later")
	ErrPremiumRequired   = errors.New("premium subscription required")
)

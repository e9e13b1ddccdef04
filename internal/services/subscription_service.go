package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/store"
)

// SubscriptionService verifies purchase receipts with the payment platforms
// and writes the resulting subscription state to the user's account.
type SubscriptionService struct {
	store     store.Store
	verifiers map[string]ReceiptVerifier
	now       func() time.Time
}

func NewSubscriptionService(st store.Store, apple, google ReceiptVerifier) *SubscriptionService {
	return &SubscriptionService{
		store: st,
		verifiers: map[string]ReceiptVerifier{
			PlatformIOS:     apple,
			PlatformAndroid: google,
		},
		now: time.Now,
	}
}

// VerifySubscription dispatches the receipt to the platform's verifier and,
// on a valid receipt with a resolved expiry, activates the subscription on
// the account. An invalid receipt (including an unknown platform) is a
// normal Success=false response. A verifier fault is logged and returned as
// an error carrying the underlying message.
//
// The account write is a plain update, not part of any scan transaction;
// ordering against concurrent scans is last-write-wins on the same row.
func (s *SubscriptionService) VerifySubscription(userID uuid.UUID, req *dto.VerifySubscriptionRequest) (*dto.VerifySubscriptionResponse, error) {
	verifier := s.verifiers[req.Platform]
	if verifier == nil {
		return &dto.VerifySubscriptionResponse{Success: false, Error: "Invalid receipt"}, nil
	}

	status, err := verifier.Verify(req.ReceiptData, req.ProductID)
	if err != nil {
		slog.Error("receipt verification failed",
			"user_id", userID, "platform", req.Platform, "product_id", req.ProductID, "error", err)
		return nil, fmt.Errorf("receipt verification failed: %w", err)
	}

	if !status.Valid || status.ExpiresAt.IsZero() {
		return &dto.VerifySubscriptionResponse{Success: false, Error: "Invalid receipt"}, nil
	}

	err = s.store.ActivateSubscription(userID, store.SubscriptionUpdate{
		ExpiresAt:  status.ExpiresAt,
		Platform:   req.Platform,
		ProductID:  req.ProductID,
		VerifiedAt: s.now(),
	})
	if err != nil {
		slog.Error("failed to store subscription", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to store subscription: %w", err)
	}

	slog.Info("subscription verified",
		"user_id", userID, "platform", req.Platform, "expires_at", status.ExpiresAt)

	return &dto.VerifySubscriptionResponse{
		Success:   true,
		ExpiresAt: status.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

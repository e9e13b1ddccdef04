package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/store"
)

const (
	ocrAction        = "ocr"
	ocrHourlyCeiling = 50
	ocrWindow        = time.Hour
)

// OCRService gates the OCR engine behind a premium check and an hourly rate
// limit.
type OCRService struct {
	store   store.Store
	limiter *RateLimiter
	now     func() time.Time
}

func NewOCRService(st store.Store, limiter *RateLimiter) *OCRService {
	return &OCRService{store: st, limiter: limiter, now: time.Now}
}

// PerformOCR runs text extraction for a premium caller. Premium status is
// re-derived from a fresh account read on every call rather than trusting
// the stored flag, so a lapsed subscription is denied even before the daily
// sweep demotes it.
func (s *OCRService) PerformOCR(userID uuid.UUID, req *dto.OCRRequest) (*dto.OCRResponse, error) {
	acct, err := s.store.GetAccount(userID)
	if err != nil {
		return nil, err
	}

	if !acct.EffectivePremium(s.now()) {
		return nil, ErrPremiumRequired
	}

	if err := s.limiter.Allow(userID, ocrAction, ocrHourlyCeiling, ocrWindow); err != nil {
		return nil, err
	}

	text, err := s.extractText(req.ImageURL)
	if err != nil {
		slog.Error("ocr extraction failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ocr failed: %w", err)
	}

	slog.Info("ocr performed", "user_id", userID)
	return &dto.OCRResponse{Success: true, Text: text}, nil
}

// extractText is a placeholder for the external OCR engine.
// TODO: wire the Cloud Vision text-detection call once the engine account exists.
func (s *OCRService) extractText(_ string) (string, error) {
	return "OCR text will be here", nil
}

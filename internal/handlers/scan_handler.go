package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/middleware"
	"github.com/smartscanner/scanner-backend/internal/services"
)

type ScanHandler struct {
	quotaService *services.QuotaService
}

func NewScanHandler(quotaService *services.QuotaService) *ScanHandler {
	return &ScanHandler{quotaService: quotaService}
}

// RecordScan consumes one scan from the caller's monthly allowance.
func (h *ScanHandler) RecordScan(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	result, err := h.quotaService.RecordScan(userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User account not found",
			})
		case errors.Is(err, services.ErrScanLimitReached):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Scan limit reached. Upgrade to Premium.",
			})
		default:
			slog.Error("record scan failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}
	}

	return c.JSON(result)
}

// Allowance reports the caller's remaining allowance without consuming a scan.
func (h *ScanHandler) Allowance(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	allowance, err := h.quotaService.Allowance(userID)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User account not found",
			})
		}
		slog.Error("allowance check failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(allowance)
}

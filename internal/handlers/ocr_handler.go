package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/middleware"
	"github.com/smartscanner/scanner-backend/internal/services"
)

type OCRHandler struct {
	ocrService *services.OCRService
}

func NewOCRHandler(ocrService *services.OCRService) *OCRHandler {
	return &OCRHandler{ocrService: ocrService}
}

// Perform runs OCR for a premium caller, subject to the hourly rate limit.
func (h *OCRHandler) Perform(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.OCRRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.ocrService.PerformOCR(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User account not found",
			})
		case errors.Is(err, services.ErrPremiumRequired):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Premium subscription required for OCR",
			})
		case errors.Is(err, services.ErrRateLimitExceeded):
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Rate limit exceeded. Try again later.",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}

	return c.JSON(result)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/services"
)

// MaintenanceHandler exposes the periodic sweeps as admin-triggered
// endpoints, for operational use alongside the scheduler.
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

func (h *MaintenanceHandler) ResetScans(c *fiber.Ctx) error {
	n, err := h.maintenanceService.ResetMonthlyScans()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to reset scan counts",
		})
	}
	return c.JSON(dto.SweepResponse{Affected: n})
}

func (h *MaintenanceHandler) ExpireSubscriptions(c *fiber.Ctx) error {
	n, err := h.maintenanceService.CheckExpiredSubscriptions()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to expire subscriptions",
		})
	}
	return c.JSON(dto.SweepResponse{Affected: n})
}

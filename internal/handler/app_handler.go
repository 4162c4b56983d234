package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/filevault/internal/service"
)

// AppHandler answers the service health endpoints
type AppHandler struct {
	statusService *service.StatusService
}

// NewAppHandler creates a new app handler
func NewAppHandler(statusService *service.StatusService) *AppHandler {
	return &AppHandler{statusService: statusService}
}

// GetStatus handles GET /status
func (h *AppHandler) GetStatus(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.statusService.Status(c.Context()))
}

// GetStats handles GET /stats
func (h *AppHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.statusService.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

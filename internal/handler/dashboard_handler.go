package handler

import (
	"go-catalog-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStats returns catalog overview numbers
// GET /api/dashboard/stats?low_stock=10
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	lowStock := c.QueryInt("low_stock", service.DefaultLowStock)

	stats, err := h.service.GetCatalogStats(c.UserContext(), lowStock)
	if err != nil {
		log.Errorf("dashboard stats: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(fiber.Map{
		"low_stock": lowStock,
		"data":      stats,
	})
}

package handler

import (
	"strconv"
	"time"

	"go-retail-erp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStats returns overview statistics
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// GetSalesSummary returns revenue/profit for a date range
// Query params: range (7d, 1m, 3m, 6m, 12m; default 7d)
func (h *DashboardHandler) GetSalesSummary(c *fiber.Ctx) error {
	rangeParam := c.Query("range", "7d")
	now := time.Now()
	var startDate time.Time

	switch rangeParam {
	case "7d":
		startDate = now.AddDate(0, 0, -7)
	case "1m":
		startDate = now.AddDate(0, -1, 0)
	case "3m":
		startDate = now.AddDate(0, -3, 0)
	case "6m":
		startDate = now.AddDate(0, -6, 0)
	case "12m":
		startDate = now.AddDate(0, -12, 0)
	default:
		startDate = now.AddDate(0, 0, -7)
	}

	summary, err := h.service.GetSalesSummary(startDate, now)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// GetMonthlySales returns per-month sales data for charts
// Query params: months (default 6)
func (h *DashboardHandler) GetMonthlySales(c *fiber.Ctx) error {
	months, err := strconv.Atoi(c.Query("months", "6"))
	if err != nil || months <= 0 {
		months = 6
	}

	data, err := h.service.GetMonthlySales(months)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch monthly sales"})
	}

	return c.JSON(fiber.Map{
		"period": months,
		"data":   data,
	})
}

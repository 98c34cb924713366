package handler

import (
	"strconv"

	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.CatalogService
}

func NewDashboardHandler(s service.CatalogService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// GetStoreRanking returns stores ordered by product count
// Query params: limit (default all)
func (h *DashboardHandler) GetStoreRanking(c *fiber.Ctx) error {
	ranking := h.service.Stats().StoreRanking
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit < len(ranking) {
		ranking = ranking[:limit]
	}
	return c.JSON(fiber.Map{
		"data": ranking,
	})
}

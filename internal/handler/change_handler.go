package handler

import (
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ChangeHandler struct {
	service service.CatalogService
}

func NewChangeHandler(s service.CatalogService) *ChangeHandler {
	return &ChangeHandler{service: s}
}

// GetChanges lists pending change requests in submission order.
func (h *ChangeHandler) GetChanges(c *fiber.Ctx) error {
	return c.JSON(h.service.PendingChanges())
}

func (h *ChangeHandler) Approve(c *fiber.Ctx) error {
	outcome, err := h.service.ApproveChange(actor(c), param(c, "id"))
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Change approved"})
}

func (h *ChangeHandler) Reject(c *fiber.Ctx) error {
	outcome, err := h.service.RejectChange(actor(c), param(c, "id"))
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Change rejected"})
}

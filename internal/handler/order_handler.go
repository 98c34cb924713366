package handler

import (
	"bytes"
	"fmt"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.CatalogService
}

func NewOrderHandler(s service.CatalogService) *OrderHandler {
	return &OrderHandler{service: s}
}

// submitOrderRequest carries the header for the caller's draft. When Lines is
// set the order is saved from those lines instead of the draft.
type submitOrderRequest struct {
	model.OrderHeader
	ID    string            `json:"id"`
	Lines []model.OrderLine `json:"lines"`
}

func draftBody(d model.Draft) fiber.Map {
	return fiber.Map{"lines": d.Lines, "total": d.Total()}
}

func (h *OrderHandler) GetDraft(c *fiber.Ctx) error {
	return c.JSON(draftBody(h.service.Draft(actor(c))))
}

func (h *OrderHandler) AddDraftLine(c *fiber.Ctx) error {
	var req service.LineInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	draft, err := h.service.AddDraftLine(actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(draftBody(draft))
}

func (h *OrderHandler) UpdateDraftLine(c *fiber.Ctx) error {
	var req service.LineInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.Product = param(c, "product")
	draft, err := h.service.UpdateDraftLine(actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(draftBody(draft))
}

func (h *OrderHandler) RemoveDraftLine(c *fiber.Ctx) error {
	draft, err := h.service.RemoveDraftLine(actor(c), param(c, "product"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(draftBody(draft))
}

func (h *OrderHandler) ClearDraft(c *fiber.Ctx) error {
	if err := h.service.ClearDraft(actor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Draft cleared"})
}

// CreateOrder saves a purchase order.
// POST /api/v1/po
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req submitOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	var (
		po  model.PurchaseOrder
		err error
	)
	if len(req.Lines) > 0 {
		po, err = h.service.SavePurchaseOrder(actor(c), model.PurchaseOrder{
			ID:              req.ID,
			Supplier:        req.Supplier,
			DeliveryDate:    req.DeliveryDate,
			CompanyName:     req.CompanyName,
			DeliveryAddress: req.DeliveryAddress,
			Store:           req.Store,
			Lines:           req.Lines,
		})
	} else {
		po, err = h.service.SubmitDraft(actor(c), req.OrderHeader)
	}
	return respondWrite(c, 201, service.OutcomeApplied, err, fiber.Map{"message": "Purchase order saved", "data": po})
}

// GetOrders lists saved purchase orders, newest first.
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	return c.JSON(h.service.PurchaseOrders())
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	po, err := h.service.PurchaseOrder(param(c, "id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(po)
}

// ExportOrderCSV downloads the order as a spreadsheet.
// GET /api/v1/po/:id/csv
func (h *OrderHandler) ExportOrderCSV(c *fiber.Ctx) error {
	po, err := h.service.PurchaseOrder(param(c, "id"))
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := service.WritePurchaseOrderCSV(&buf, po); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to render purchase order"})
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", po.ID+".csv"))
	return c.Send(buf.Bytes())
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	outcome, err := h.service.DeletePurchaseOrder(actor(c), param(c, "id"))
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Purchase order deleted"})
}

package handler

import (
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

type mergeRequest struct {
	Keep   string `json:"keep"`
	Remove string `json:"remove"`
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}

type storeRequest struct {
	Name     string   `json:"name"`
	Products []string `json:"products"`
}

type storeProductsRequest struct {
	Products []string `json:"products"`
}

type addressRequest struct {
	Address string `json:"address"`
}

// GetProducts lists products, optionally filtered.
// GET /api/v1/products?q=&category=
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	category := model.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown category"})
	}
	return c.JSON(h.service.SearchProducts(c.Query("q"), category))
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	view, err := h.service.ProductDetails(param(c, "name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetAvailability reports which stores carry the product.
// GET /api/v1/products/:name/availability?store=
func (h *CatalogHandler) GetAvailability(c *fiber.Ctx) error {
	name := param(c, "name")
	return c.JSON(fiber.Map{
		"product":   name,
		"stores":    h.service.IsCarried(name, c.Query("store")),
		"locations": h.service.Locations(name),
	})
}

func (h *CatalogHandler) GetPriceEstimate(c *fiber.Ctx) error {
	name := param(c, "name")
	return c.JSON(fiber.Map{
		"product":  name,
		"price":    h.service.EstimatePrice(name),
		"category": h.service.Categorize(name),
	})
}

// CreateProduct applies for admins and queues a change request for everyone else.
// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req model.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	outcome, err := h.service.AddProduct(actor(c), req)
	return respondWrite(c, 201, outcome, err, fiber.Map{"message": "Product added", "product": req.Name})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var req model.ProductUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	outcome, err := h.service.UpdateProduct(actor(c), param(c, "name"), req)
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Product updated"})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	outcome, err := h.service.DeleteProduct(actor(c), param(c, "name"))
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Product deleted"})
}

func (h *CatalogHandler) MergeProducts(c *fiber.Ctx) error {
	var req mergeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	outcome, err := h.service.MergeProducts(actor(c), req.Keep, req.Remove)
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Products merged", "product": req.Keep})
}

func (h *CatalogHandler) SetStock(c *fiber.Ctx) error {
	var req stockRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	outcome, err := h.service.SetStockQuantity(actor(c), param(c, "name"), req.Quantity)
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Stock updated"})
}

func (h *CatalogHandler) GetStores(c *fiber.Ctx) error {
	return c.JSON(h.service.Stores())
}

func (h *CatalogHandler) CreateStore(c *fiber.Ctx) error {
	var req storeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	outcome, err := h.service.AddStore(actor(c), req.Name, req.Products)
	return respondWrite(c, 201, outcome, err, fiber.Map{"message": "Store added", "store": req.Name})
}

// GetStoreProducts lists a store's products in the order they were added.
// GET /api/v1/stores/:name/products?q=
func (h *CatalogHandler) GetStoreProducts(c *fiber.Ctx) error {
	products, err := h.service.StoreProducts(param(c, "name"), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *CatalogHandler) AddStoreProducts(c *fiber.Ctx) error {
	var req storeProductsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	outcome, err := h.service.AddProductsToStore(actor(c), param(c, "name"), req.Products)
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Products added to store"})
}

func (h *CatalogHandler) SetStoreAddress(c *fiber.Ctx) error {
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	outcome, err := h.service.SetStoreAddress(actor(c), param(c, "name"), req.Address)
	return respondWrite(c, 200, outcome, err, fiber.Map{"message": "Store address updated"})
}

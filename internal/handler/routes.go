package handler

import (
	"go-stock-ledger/internal/middleware"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Deps holds everything the HTTP surface talks to.
type Deps struct {
	Catalog            service.CatalogService
	Accounts           service.AccountService
	Hub                *ws.Hub // optional
	LoginRatePerMinute int
}

func RegisterRoutes(app *fiber.App, d Deps) {
	catalogHandler := NewCatalogHandler(d.Catalog)
	orderHandler := NewOrderHandler(d.Catalog)
	changeHandler := NewChangeHandler(d.Catalog)
	dashHandler := NewDashboardHandler(d.Catalog)
	authHandler := NewAuthHandler(d.Accounts)
	userHandler := NewUserHandler(d.Accounts)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	loginLimit := middleware.PerMinute(d.LoginRatePerMinute).Middleware()
	auth.Post("/login", loginLimit, authHandler.Login)
	auth.Post("/register", loginLimit, authHandler.Register)

	// ============ PROTECTED ROUTES ============
	requireAuth := middleware.RequireAuth(d.Accounts)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)
	auth.Get("/me", requireAuth, authHandler.Me)

	protected := api.Group("", requireAuth)

	// Dashboard
	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/dashboard/store-ranking", dashHandler.GetStoreRanking)

	// Products. Creation is open to every user: non-admins get a change request.
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Post("/products", catalogHandler.CreateProduct)
	protected.Post("/products/merge", middleware.RequirePrivilege(model.PrivProductMerge), catalogHandler.MergeProducts)
	protected.Get("/products/:name", catalogHandler.GetProduct)
	protected.Get("/products/:name/availability", catalogHandler.GetAvailability)
	protected.Get("/products/:name/price-estimate", catalogHandler.GetPriceEstimate)
	protected.Put("/products/:name", middleware.RequirePrivilege(model.PrivProductUpdate), catalogHandler.UpdateProduct)
	protected.Delete("/products/:name", middleware.RequirePrivilege(model.PrivProductDelete), catalogHandler.DeleteProduct)
	protected.Put("/products/:name/stock", middleware.RequirePrivilege(model.PrivStockUpdate), catalogHandler.SetStock)

	// Stores
	protected.Get("/stores", catalogHandler.GetStores)
	protected.Post("/stores", middleware.RequirePrivilege(model.PrivStoreCreate), catalogHandler.CreateStore)
	protected.Get("/stores/:name/products", catalogHandler.GetStoreProducts)
	protected.Post("/stores/:name/products", middleware.RequirePrivilege(model.PrivStoreUpdate), catalogHandler.AddStoreProducts)
	protected.Put("/stores/:name/address", middleware.RequirePrivilege(model.PrivStoreUpdate), catalogHandler.SetStoreAddress)

	// Purchase orders
	po := protected.Group("/po")
	po.Get("/draft", orderHandler.GetDraft)
	po.Delete("/draft", orderHandler.ClearDraft)
	po.Post("/draft/lines", orderHandler.AddDraftLine)
	po.Put("/draft/lines/:product", orderHandler.UpdateDraftLine)
	po.Delete("/draft/lines/:product", orderHandler.RemoveDraftLine)
	po.Post("", orderHandler.CreateOrder)
	po.Get("", orderHandler.GetOrders)
	po.Get("/:id", orderHandler.GetOrder)
	po.Get("/:id/csv", orderHandler.ExportOrderCSV)
	po.Delete("/:id", middleware.RequirePrivilege(model.PrivOrderDelete), orderHandler.DeleteOrder)

	// Change requests
	protected.Get("/changes", middleware.RequirePrivilege(model.PrivChangeResolve), changeHandler.GetChanges)
	protected.Post("/changes/:id/approve", middleware.RequirePrivilege(model.PrivChangeResolve), changeHandler.Approve)
	protected.Post("/changes/:id/reject", middleware.RequirePrivilege(model.PrivChangeResolve), changeHandler.Reject)

	// User management
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.GetUsers)
	protected.Get("/users/pending", middleware.RequirePrivilege(model.PrivUserApprove), userHandler.GetPendingUsers)
	protected.Get("/users/:username", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)
	protected.Post("/users/:username/approve", middleware.RequirePrivilege(model.PrivUserApprove), userHandler.ApproveUser)
	protected.Delete("/users/:username", middleware.RequirePrivilege(model.PrivUserDelete), userHandler.DeleteUser)

	// WebSocket Route
	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(d.Hub.Serve))
	}
}

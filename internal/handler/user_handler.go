package handler

import (
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.AccountService
}

func NewUserHandler(userService service.AccountService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.CreateUser(actor(c), req)
	return respondWrite(c, 201, "", err, fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// ApproveUser lets a registered account sign in
// POST /api/v1/users/:username/approve
func (h *UserHandler) ApproveUser(c *fiber.Ctx) error {
	user, err := h.userService.Approve(actor(c), param(c, "username"))
	return respondWrite(c, 200, "", err, fiber.Map{
		"message": "User approved",
		"data":    user,
	})
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:username
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	err := h.userService.DeleteUser(actor(c), param(c, "username"))
	return respondWrite(c, 200, "", err, fiber.Map{"message": "User deleted successfully"})
}

// GetUsers handles listing all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	return c.JSON(h.userService.Users())
}

// GetPendingUsers lists accounts waiting for approval
// GET /api/v1/users/pending
func (h *UserHandler) GetPendingUsers(c *fiber.Ctx) error {
	return c.JSON(h.userService.PendingUsers())
}

// GetUser handles getting a single user
// GET /api/v1/users/:username
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.Lookup(param(c, "username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

package handler

import (
	"errors"

	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AccountService
}

func NewAuthHandler(authService service.AccountService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username and password are required"})
	}

	response, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotApproved) {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, service.ErrUnknownUser) || errors.Is(err, service.ErrWrongPassword) {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// Register handles self-service sign-up; the account waits for approval
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	account, err := h.authService.Register(req)
	return respondWrite(c, 201, "", err, fiber.Map{
		"message": "Registration received, waiting for administrator approval",
		"data":    account,
	})
}

// ChangePassword handles password change for the signed-in user
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		return c.Status(400).JSON(fiber.Map{"error": "old_password and new_password are required"})
	}

	err := h.authService.ChangePassword(actor(c).Username, req.OldPassword, req.NewPassword)
	if errors.Is(err, service.ErrWrongPassword) {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return respondWrite(c, 200, "", err, fiber.Map{"message": "Password updated successfully"})
}

// Me returns the signed-in account
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, err := h.authService.Lookup(actor(c).Username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(account)
}

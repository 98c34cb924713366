package handler

import (
	"errors"
	"net/url"

	"go-stock-ledger/internal/middleware"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

// respondWrite reports a write. A persistence failure still means the change
// was applied, so it comes back as a success carrying a warning.
func respondWrite(c *fiber.Ctx, status int, outcome service.Outcome, err error, body fiber.Map) error {
	if !service.Applied(err) {
		return respondError(c, err)
	}
	if body == nil {
		body = fiber.Map{}
	}
	if outcome != "" {
		body["outcome"] = outcome
	}
	if outcome == service.OutcomePending {
		status = fiber.StatusAccepted
		body["message"] = "Submitted for administrator approval"
	}
	if err != nil {
		body["warning"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
}

// actor is only called behind RequireAuth.
func actor(c *fiber.Ctx) model.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

// param returns a path parameter with percent-escapes decoded; product and
// store names contain spaces. The value is copied out of the request buffer
// since services keep it as a map key.
func param(c *fiber.Ctx, key string) string {
	raw := utils.CopyString(c.Params(key))
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

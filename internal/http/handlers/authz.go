package handlers

import (
	"github.com/gofiber/fiber/v2"

	"foodlink/internal/domain"
	applog "foodlink/internal/log"
	"foodlink/internal/services"
)

// RequireAccount loads the session's account into locals or rejects with 401.
func RequireAccount(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		a, err := auth.CurrentAccount(sid)
		if err != nil || a == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		c.Locals("account", a)
		return c.Next()
	}
}

// RequireRole gates a route to one side of the marketplace. Runs after
// RequireAccount.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, _ := c.Locals("account").(*domain.Account)
		if a == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		if a.Role != role {
			applog.Security(c, "access.denied.role", map[string]any{"need": role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not permitted for this role"})
		}
		return c.Next()
	}
}

func actingAccount(c *fiber.Ctx) *domain.Account {
	a, _ := c.Locals("account").(*domain.Account)
	return a
}

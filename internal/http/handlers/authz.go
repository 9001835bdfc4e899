package handlers

import (
	applog "ecofinds/internal/log"
	"ecofinds/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireUser rejects requests while the auth store is anonymous.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := auth.CurrentUser()
		if u == nil {
			applog.Security(c, "access.denied", map[string]any{"sid": c.Cookies("sid")})
			return jsonError(c, fiber.StatusUnauthorized, "login required")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ecofinds/internal/domain"
	applog "ecofinds/internal/log"
	"ecofinds/internal/services"
	"ecofinds/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.Email(req.Email); !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"sid": sid, "reason": "bad_format"})
		return jsonError(c, fiber.StatusUnauthorized, services.ErrBadCreds.Error())
	}
	if !validate.Password(req.Password) {
		applog.Security(c, "auth.login.fail", map[string]any{"sid": sid, "reason": "bad_password_format"})
		return jsonError(c, fiber.StatusUnauthorized, services.ErrBadCreds.Error())
	}

	u, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"sid": sid})
		return jsonError(c, fiber.StatusUnauthorized, services.ErrBadCreds.Error())
	}

	applog.Audit(c, "auth.login.success", map[string]any{"sid": sid, "user_id": u.ID})
	return c.JSON(fiber.Map{"user": u})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req services.SignupData
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.Name(req.Name); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid name")
	}
	if _, ok := validate.Email(req.Email); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid email")
	}
	if !validate.Password(req.Password) {
		return jsonError(c, fiber.StatusBadRequest, "invalid password")
	}

	u, err := h.Auth.Signup(req)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			return jsonError(c, fiber.StatusConflict, err.Error())
		}
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	applog.Audit(c, "auth.signup.success", map[string]any{"sid": sid, "user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	h.Auth.Logout()
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := h.Auth.CurrentUser()
	if u == nil {
		return jsonError(c, fiber.StatusUnauthorized, "not logged in")
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var patch domain.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if patch.Email != nil {
		if _, ok := validate.Email(*patch.Email); !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid email")
		}
	}
	if patch.Name != nil {
		if _, ok := validate.Name(*patch.Name); !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid name")
		}
	}
	u, err := h.Auth.UpdateProfile(patch)
	if err != nil {
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	applog.Audit(c, "auth.profile.update", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"user": u})
}

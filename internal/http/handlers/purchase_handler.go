package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "ecofinds/internal/log"
	"ecofinds/internal/services"
	"ecofinds/internal/validate"
)

type PurchaseHandler struct {
	Cart *services.CartService
}

// Checkout converts a non-empty cart into an immutable purchase record.
func (h *PurchaseHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	p, err := h.Cart.Checkout()
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		applog.Error(c, "checkout.error", err, map[string]any{"sid": sid})
		return jsonError(c, fiber.StatusInternalServerError, "could not place order")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"purchase": p})
}

func (h *PurchaseHandler) History(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"purchases": h.Cart.Purchases()})
}

func (h *PurchaseHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid purchase id")
	}
	p := h.Cart.PurchaseByID(id)
	if p == nil {
		return jsonError(c, fiber.StatusNotFound, "purchase not found")
	}
	return c.JSON(fiber.Map{"purchase": p})
}

// Savings reports the implied-discount total over the purchase history.
func (h *PurchaseHandler) Savings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"totalSavings": h.Cart.TotalSavings()})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "ecofinds/internal/log"
	"ecofinds/internal/services"
	"ecofinds/internal/validate"
)

type CartHandler struct {
	Cart    *services.CartService
	Catalog *services.CatalogService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"items":     h.Cart.Items(),
		"total":     h.Cart.Total(),
		"itemCount": h.Cart.ItemCount(),
	})
}

type cartAddReq struct {
	ProductID string `json:"productId"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartAddReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	p := h.Catalog.GetProductByID(c.Context(), id)
	if p == nil {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	h.Cart.Add(*p)
	applog.Info(c, "cart.add", map[string]any{"sid": sid, "product_id": id})
	return h.View(c)
}

type cartQtyReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	var req cartQtyReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	h.Cart.UpdateQuantity(id, validate.Qty(req.Quantity))
	return h.View(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	var req cartAddReq
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	h.Cart.Remove(id)
	return h.View(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Cart.Clear()
	return h.View(c)
}

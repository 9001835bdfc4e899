package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ecofinds/internal/domain"
	applog "ecofinds/internal/log"
	"ecofinds/internal/services"
	"ecofinds/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List is the merged catalog view. q and category update the store's
// filters (they compose); the response always carries the cursor and any
// load error so the UI can render a banner next to stale data.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	rawQ := strings.TrimSpace(c.Query("q"))
	rawCat := strings.TrimSpace(c.Query("category"))

	if rawCat != "" {
		cat, ok := validate.Category(rawCat)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return jsonError(c, fiber.StatusBadRequest, "invalid category")
		}
		if err := h.Catalog.FilterByCategory(c.Context(), cat); err != nil {
			applog.Error(c, "catalog.load.error", err, nil)
		}
	}
	if rawQ != "" {
		q, ok := validate.Q(rawQ)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return jsonError(c, fiber.StatusBadRequest, "enter a valid keyword (letters/numbers only)")
		}
		if err := h.Catalog.SearchProducts(c.Context(), strings.ToLower(q)); err != nil {
			applog.Error(c, "catalog.load.error", err, nil)
		}
	}
	if rawQ == "" && rawCat == "" {
		if err := h.Catalog.LoadProducts(c.Context(), "", "all", 0, false); err != nil {
			applog.Error(c, "catalog.load.error", err, nil)
		}
	}

	return c.JSON(fiber.Map{
		"products": h.Catalog.AllProducts(),
		"cursor":   h.Catalog.Cursor(),
		"error":    h.Catalog.Err(),
	})
}

// More advances the pagination window; a no-op at the end of the catalog.
func (h *ProductHandler) More(c *fiber.Ctx) error {
	if err := h.Catalog.LoadMore(c.Context()); err != nil {
		applog.Error(c, "catalog.more.error", err, nil)
	}
	return c.JSON(fiber.Map{
		"products": h.Catalog.AllProducts(),
		"cursor":   h.Catalog.Cursor(),
		"error":    h.Catalog.Err(),
	})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	p := h.Catalog.GetProductByID(c.Context(), id)
	if p == nil {
		return jsonError(c, fiber.StatusNotFound, "this item is no longer available")
	}
	return c.JSON(fiber.Map{"product": p})
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.Catalog.Categories()})
}

// Availability maps a product's stock onto a coarse status for the UI.
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("productId"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid productId")
	}
	p := h.Catalog.GetProductByID(c.Context(), id)
	if p == nil {
		return c.JSON(domain.Availability{Status: "OUT_OF_STOCK", Qty: 0})
	}
	status := "OUT_OF_STOCK"
	switch {
	case p.Stock >= 5:
		status = "IN_STOCK"
	case p.Stock > 0:
		status = "LOW_STOCK"
	}
	return c.JSON(domain.Availability{Status: status, Qty: p.Stock})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	var data services.ProductData
	if err := c.BodyParser(&data); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(data.Title) == "" {
		return jsonError(c, fiber.StatusBadRequest, "title is required")
	}
	if !validate.Price(data.Price) {
		return jsonError(c, fiber.StatusBadRequest, "price must be non-negative")
	}
	if data.Condition != "" {
		if _, ok := validate.Condition(data.Condition); !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid condition")
		}
	}

	p := h.Catalog.AddProduct(data, u.ID)
	applog.Audit(c, "listing.create", map[string]any{"product_id": p.ID, "user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": p})
}

// ownedLocal resolves a listing id to a local product owned by u, or writes
// the error response and returns nil.
func (h *ProductHandler) ownedLocal(c *fiber.Ctx, u *domain.User) *domain.Product {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		_ = jsonError(c, fiber.StatusBadRequest, "invalid product id")
		return nil
	}
	p := h.Catalog.GetProductByID(c.Context(), id)
	if p == nil || p.Provenance != domain.ProvenanceLocal {
		_ = jsonError(c, fiber.StatusNotFound, "listing not found")
		return nil
	}
	if p.UserID != u.ID {
		applog.Security(c, "listing.forbidden", map[string]any{"product_id": p.ID, "user_id": u.ID})
		_ = jsonError(c, fiber.StatusForbidden, "not your listing")
		return nil
	}
	return p
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	p := h.ownedLocal(c, u)
	if p == nil {
		return nil
	}
	var patch services.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if patch.Price != nil && !validate.Price(*patch.Price) {
		return jsonError(c, fiber.StatusBadRequest, "price must be non-negative")
	}
	if patch.Condition != nil {
		if _, ok := validate.Condition(*patch.Condition); !ok {
			return jsonError(c, fiber.StatusBadRequest, "invalid condition")
		}
	}

	updated := h.Catalog.UpdateProduct(p.ID, patch)
	if updated == nil {
		return jsonError(c, fiber.StatusNotFound, "listing not found")
	}
	applog.Audit(c, "listing.update", map[string]any{"product_id": p.ID, "user_id": u.ID})
	return c.JSON(fiber.Map{"product": updated})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	p := h.ownedLocal(c, u)
	if p == nil {
		return nil
	}
	h.Catalog.DeleteProduct(p.ID)
	applog.Audit(c, "listing.delete", map[string]any{"product_id": p.ID, "user_id": u.ID})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *ProductHandler) Mine(c *fiber.Ctx) error {
	u := c.Locals("user").(*domain.User)
	return c.JSON(fiber.Map{"products": h.Catalog.UserProducts(u.ID)})
}

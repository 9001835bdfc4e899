package handlers

import (
	"ecofinds/internal/services"
)

type Deps struct {
	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	PurchaseHandler *PurchaseHandler
}

func NewDeps(auth *services.AuthService, catalog *services.CatalogService, cart *services.CartService) *Deps {
	return &Deps{
		AuthHandler:     &AuthHandler{Auth: auth},
		ProductHandler:  &ProductHandler{Catalog: catalog},
		CartHandler:     &CartHandler{Cart: cart, Catalog: catalog},
		PurchaseHandler: &PurchaseHandler{Cart: cart},
	}
}

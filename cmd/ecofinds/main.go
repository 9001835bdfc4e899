package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"ecofinds/internal/catalogapi"
	"ecofinds/internal/config"
	"ecofinds/internal/http/handlers"
	applog "ecofinds/internal/log"
	"ecofinds/internal/repos"
	"ecofinds/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	kv := repos.NewKV(db)
	client := catalogapi.New(cfg.CatalogAPIURL)

	// State stores: constructed here, initialized explicitly, injected into
	// the HTTP boundary. No store touches another.
	authSvc := services.NewAuthService(kv, cfg.AuthDelay)
	catalogSvc := services.NewCatalogService(client, kv)
	cartSvc := services.NewCartService(kv)

	authSvc.Init()
	catalogSvc.Init(context.Background())
	cartSvc.Init()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and return a friendly message without leaking internals
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
	}))

	deps := handlers.NewDeps(authSvc, catalogSvc, cartSvc)
	api := app.Group("/api/v1")

	// Auth (login throttled)
	auth := api.Group("/auth")
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), deps.AuthHandler.Login)
	auth.Post("/signup", deps.AuthHandler.Signup)
	auth.Post("/logout", deps.AuthHandler.Logout)
	auth.Get("/me", deps.AuthHandler.Me)
	auth.Patch("/profile", handlers.RequireUser(authSvc), deps.AuthHandler.UpdateProfile)

	// Catalog
	api.Get("/products", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.ProductHandler.List)
	api.Get("/products/more", deps.ProductHandler.More)
	api.Get("/products/mine", handlers.RequireUser(authSvc), deps.ProductHandler.Mine)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Post("/products", handlers.RequireUser(authSvc), deps.ProductHandler.Create)
	api.Patch("/products/:id", handlers.RequireUser(authSvc), deps.ProductHandler.Update)
	api.Delete("/products/:id", handlers.RequireUser(authSvc), deps.ProductHandler.Delete)
	api.Get("/categories", deps.ProductHandler.Categories)

	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.ProductHandler.Availability)

	// Cart & purchases
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/quantity", deps.CartHandler.UpdateQuantity)
	api.Post("/cart/remove", deps.CartHandler.Remove)
	api.Post("/cart/clear", deps.CartHandler.Clear)
	api.Post("/checkout", deps.PurchaseHandler.Checkout)
	api.Get("/purchases", deps.PurchaseHandler.History)
	api.Get("/purchases/savings", deps.PurchaseHandler.Savings)
	api.Get("/purchases/:id", deps.PurchaseHandler.Detail)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

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

	"foodlink/internal/config"
	"foodlink/internal/http/handlers"
	applog "foodlink/internal/log"
	"foodlink/internal/repos"
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

	deps := handlers.NewDeps(db, cfg.SweepInterval)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach account to context if logged in (for audit fields)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if a, err := deps.Auth.CurrentAccount(sid); err == nil && a != nil {
				c.Locals("account", a)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
	}))

	// ---------- Routes ----------
	api := app.Group("/api/v1")

	api.Post("/register", deps.AuthHandler.Register)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, please try again later"})
		},
	}), deps.AuthHandler.Login)
	api.Post("/logout", deps.AuthHandler.Logout)

	authed := api.Group("", handlers.RequireAccount(deps.Auth))
	authed.Get("/donations", deps.DonationHandler.List)
	authed.Post("/donations", handlers.RequireRole("business"), deps.DonationHandler.Create)
	authed.Get("/donations/:id", deps.DonationHandler.Detail)
	authed.Post("/donations/:id/claim", handlers.RequireRole("organization"), deps.DonationHandler.Claim)

	// Handoff-code checks get their own throttle on top of the lockout counter.
	validateLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|validate"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.validate.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	authed.Post("/donations/:id/validate", handlers.RequireRole("business"), validateLimiter, deps.HandoffHandler.Validate)
	authed.Post("/donations/:id/rating", handlers.RequireRole("organization"), deps.HandoffHandler.Rate)

	authed.Get("/donations/:id/messages", deps.MessageHandler.Thread)
	authed.Post("/donations/:id/messages", deps.MessageHandler.Post)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	// Background expiry sweep
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deps.Sweeper.Run(ctx)

	log.Fatal(app.Listen(cfg.Addr))
}

package routes

import (
	"purchases-api/internal/api/handlers"
	"purchases-api/internal/middleware"
	"purchases-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App             *fiber.App
	AuthHandler     handlers.AuthHandler
	PurchaseHandler handlers.PurchaseHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Auth()
	c.Sessions()
	c.Purchases()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/v1/auth")
	auth.Post("/telegram", c.AuthHandler.TelegramLogin)
}

func (c *Config) Sessions() {
	sessions := c.App.Group("/api/v1/sessions", c.Middleware.AuthMiddleware(c.JWTService))
	sessions.Post("", c.PurchaseHandler.OpenSession)
	sessions.Get("/:id", c.PurchaseHandler.GetSession)
	sessions.Put("/:id/purchases", c.PurchaseHandler.SaveSession)
	sessions.Delete("/:id", c.PurchaseHandler.CloseSession)
}

func (c *Config) Purchases() {
	purchases := c.App.Group("/api/v1/purchases", c.Middleware.AuthMiddleware(c.JWTService))
	purchases.Get("/summary", c.PurchaseHandler.GetSummary)
	purchases.Get("/export", c.PurchaseHandler.ExportXLSX)
	purchases.Post("/export/archive", c.PurchaseHandler.ArchiveExport)
}

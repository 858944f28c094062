package handlers

import (
	"advisorapi/internal/app"
	"advisorapi/internal/handlers/middleware"
	"advisorapi/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.RequestID(), app.Middleware.RequestMetrics())

	setupWebSocketRoute(router, app)
	router.Get("/metrics", adaptor.HTTPHandler(app.Metrics.Handler()))

	api := router.Group("/api")
	HealthHandler(api, app.Config, app.Database)
	NewAdvisorHandler(*app, api).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		app.Websocket.HandleWebSocket(c)
	}))
}

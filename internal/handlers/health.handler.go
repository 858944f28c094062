package handlers

import (
	"advisorapi/config"
	"advisorapi/internal/database"
	"advisorapi/internal/logger"

	"github.com/gofiber/fiber/v2"
)

func HealthHandler(router fiber.Router, config config.Config, db database.DB) {
	log := logger.New("handlers").File("health_handler").Function("health")

	router.Get("/health", func(c *fiber.Ctx) error {
		if err := db.Ping(c.UserContext()); err != nil {
			log.Er("database ping failed", err)
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"status": "unavailable", "version": config.GeneralVersion})
		}

		return c.JSON(fiber.Map{"status": "ok", "version": config.GeneralVersion})
	})
}

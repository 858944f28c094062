package middleware

import (
	"strconv"
	"time"

	"advisorapi/config"
	"advisorapi/internal/logger"
	"advisorapi/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RequestIDHeader = "X-Request-ID"
	APIKeyHeader    = "X-API-Key"
	RequestIDLocal  = "requestID"
)

type Middleware struct {
	Config  config.Config
	metrics *metrics.Metrics
	log     logger.Logger
}

func New(config config.Config, metrics *metrics.Metrics) Middleware {
	return Middleware{
		Config:  config,
		metrics: metrics,
		log:     logger.New("middleware"),
	}
}

// RequestID reuses the caller's X-Request-ID or mints one, and echoes it back.
func (m Middleware) RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Locals(RequestIDLocal, requestID)
		c.Set(RequestIDHeader, requestID)
		return c.Next()
	}
}

// RequestMetrics counts and times every request by its matched route.
func (m Middleware) RequestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
		}

		m.metrics.ObserveRequest(c.Method(), c.Route().Path, strconv.Itoa(status), start)

		m.log.Function("RequestMetrics").Debug(
			"Request handled",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
			"requestID", c.Locals(RequestIDLocal),
		)
		return err
	}
}

// RequireAdminKey guards write routes when an admin key hash is configured.
func (m Middleware) RequireAdminKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.Config.AdminKeyHash == "" {
			return c.Next()
		}

		key := c.Get(APIKeyHeader)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "missing api key"})
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.Config.AdminKeyHash), []byte(key)); err != nil {
			m.log.Function("RequireAdminKey").Warn("Rejected api key", "path", c.Path(), "requestID", c.Locals(RequestIDLocal))
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "invalid api key"})
		}

		return c.Next()
	}
}

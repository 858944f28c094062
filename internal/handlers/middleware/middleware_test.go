package middleware

import (
	"net/http/httptest"
	"testing"

	"advisorapi/config"
	"advisorapi/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(m Middleware) *fiber.App {
	app := fiber.New()
	app.Use(m.RequestID())
	app.Use(m.RequestMetrics())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(RequestIDLocal).(string))
	})
	app.Post("/write", m.RequireAdminKey(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequestID_Generated(t *testing.T) {
	app := newTestApp(New(config.Config{}, metrics.New()))

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
}

func TestRequestID_Propagated(t *testing.T) {
	app := newTestApp(New(config.Config{}, metrics.New()))

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestRequestMetrics_CountsByRoute(t *testing.T) {
	m := metrics.New()
	app := newTestApp(New(config.Config{}, m))

	for i := 0; i < 2; i++ {
		_, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/ping", "200")))
}

func TestRequireAdminKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		key      string
		expected int
	}{
		{name: "no key configured", hash: "", key: "", expected: fiber.StatusNoContent},
		{name: "missing key", hash: string(hash), key: "", expected: fiber.StatusUnauthorized},
		{name: "wrong key", hash: string(hash), key: "nope", expected: fiber.StatusUnauthorized},
		{name: "right key", hash: string(hash), key: "s3cret", expected: fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(New(config.Config{AdminKeyHash: tt.hash}, metrics.New()))

			req := httptest.NewRequest("POST", "/write", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}
}

package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDPropagation(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		require.Equal(t, GetCorrelationID(c), CorrelationIDFromContext(c.UserContext()))
		return c.SendString(GetCorrelationID(c))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-42", resp.Header.Get(HeaderCorrelationID))

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "upstream-7")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "upstream-7", resp.Header.Get(HeaderCorrelationID))
}

func TestCorrelationIDReplacesOversizedValue(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	oversized := strings.Repeat("x", maxCorrelationIDLength+1)
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, oversized)
	resp, err := app.Test(req)
	require.NoError(t, err)

	id := resp.Header.Get(HeaderCorrelationID)
	require.NotEmpty(t, id)
	require.NotEqual(t, oversized, id)
	require.Len(t, id, 36)
}

package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/http/middleware"
	"moodlens/internal/testsupport"
)

func newProtectedApp(apiKey string) *fiber.App {
	app := fiber.New()
	app.Post("/entries", middleware.APIKeyAuth(apiKey, testsupport.GetLogger()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	return app
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		header   string
		expected int
	}{
		{name: "open when no key configured", apiKey: "", header: "", expected: fiber.StatusCreated},
		{name: "missing header", apiKey: "secret", header: "", expected: fiber.StatusUnauthorized},
		{name: "wrong scheme", apiKey: "secret", header: "Basic secret", expected: fiber.StatusUnauthorized},
		{name: "wrong key", apiKey: "secret", header: "Bearer nope", expected: fiber.StatusUnauthorized},
		{name: "valid key", apiKey: "secret", header: "Bearer secret", expected: fiber.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tt.apiKey)

			req := httptest.NewRequest("POST", "/entries", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req, 30000)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}
}

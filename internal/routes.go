package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"moodlens/internal/config"
	"moodlens/internal/http"
	"moodlens/internal/http/middleware"
)

// apiCORSConfig is shared by every API endpoint so browser clients on other
// origins can log entries and read reports.
var apiCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()
	logger := srv.GetLogger()

	// Rate limiting only applies in production, it would get in the way of tests
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// 120 writes per minute per IP is far above what a person logging moods produces
	writeRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(120),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Reports read the whole store, keep them cheaper to abuse-proof
	reportRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(30),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	writeConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
		WriteConcurrency:   true,
		CustomMiddleware: []fiber.Handler{
			writeRateLimiter,
			middleware.APIKeyAuth(cfg.APIKey, logger),
		},
	}

	readConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
	}

	reportConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware:   []fiber.Handler{reportRateLimiter},
	}

	preflight := func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	// Health check endpoint
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === ENTRY API ===
	srv.Post("/api/v1/entries", http.EntriesCreateAction, writeConfig)
	srv.Options("/api/v1/entries", preflight, readConfig)
	srv.Get("/api/v1/entries", http.EntriesIndexAction, readConfig)
	srv.Get("/api/v1/entries/:id", http.EntryShowAction, readConfig)

	// === REPORT API ===
	srv.Get("/api/v1/report", http.ReportShowAction, reportConfig)
	srv.Options("/api/v1/report", preflight, readConfig)

	// === OBSERVABILITY ===
	srv.Get("/metrics", http.MetricsIndexAction)
}
